// Package ui implements the artist admin panel as a bubbletea program.
//
// The panel has two panes:
//  1. [ConfigPane] : one toggle per followed artist, with save and reset actions backed by a [form.Controller]
//  2. [SyncPane] : one progress indicator per saved artist, driven by a [tasks.Orchestrator]
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Commits and sync events run as commands; their results come back as messages, so every state change happens on the
// Update loop. A sync stream is consumed one event per command, mirroring how progress channels are drained elsewhere.
//
// Keyboard navigation uses vim-style bindings (j/k, space, s, r, y, tab, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
