// Package tasks drives per-artist sync progress from a stream of events.
//
// # Indicators
//
// A [ProgressIndicator] is the render target for one artist: idle, pending, active or error, plus the time of the
// last successful sync. Indicators are mutated only by the [Orchestrator] that owns them.
//
// # Sessions
//
// One call to [Orchestrator.Run] (or the [Orchestrator.Begin], [Orchestrator.Apply], [Orchestrator.Finish] triple
// used by event loops) is one sync session. Events are applied strictly in arrival order:
//
//	start              every indicator -> pending
//	itemStart(id)      pending -> active
//	itemError(id)      pending|active -> error
//	itemComplete(id)   pending|active -> idle, timestamp recorded
//	stream closed      pending|active -> error ("No sync performed")
//
// Events that do not satisfy the left-hand state, or that name an unknown artist, are ignored. Finishing a session
// always leaves every indicator in a terminal state and re-enables [Orchestrator.CanSync].
//
// # Event Sources
//
// [EventSource] is the one capability the orchestrator depends on. [ScriptedSource] replays a local sequence with
// delays for offline runs; the WebSocket source lives in package services.
//
// # Progress Reporting
//
// An optional progress channel receives one [ProgressUpdate] per transition. Sends never block: when the channel is
// full the update is dropped.
package tasks
