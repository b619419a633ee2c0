// Package form implements the dirty-tracking edit form of the artists panel.
//
// A [ToggleField] holds one boolean setting against its last-committed baseline and tells its [Listener] whenever it
// crosses between clean and dirty. A [Controller] subscribes once to every field, keeps the set of dirty ids
// incrementally from those notifications, and exposes save and reset as bulk operations over that set.
//
// Save sends only the dirty fields through a [Committer] in a single request. While the request is in flight every
// field is locked; on failure the form returns to exactly the state it had before the attempt so the user can retry.
//
// Nothing here renders or blocks except [Controller.Save]. Event loops that must not block (bubbletea) drive a save
// in two halves with [Controller.Begin] and [Controller.Complete].
package form
