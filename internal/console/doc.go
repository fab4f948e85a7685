// Package console is the operator dashboard for a supervised vehicle.
//
// It follows the Bubble Tea Model-Update-View split. The model never reaches
// into the feed or media managers: it waits on their event channels and
// redraws from the latest projected view. Operator keys turn into commands
// sent through the dispatcher, and nothing the operator does changes the
// displayed vehicle state until the backend reports it in a later snapshot.
//
// # Keyboard Shortcuts
//
//	space       - Engage e-stop (press twice to release)
//	i c n r     - Request IDLE, CTRL, NAV or REMOTE mode
//	v           - Restart the video session
//	f           - Reconnect the state feed
//	?           - Toggle help overlay
//	q, Ctrl+C   - Quit
package console
