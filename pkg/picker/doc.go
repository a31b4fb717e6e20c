// Package picker implements a generic selection list for terminal
// programs built on bubbletea.
//
// A picker is generic over its row type. Any type with a stable
// identity and a display name can be listed; types that also expose a
// code and a description get the default two column layout for free.
//
// Rows are loaded through a Source, a function the picker runs off the
// UI goroutine. While it runs the picker shows a loading state; a
// failed load shows the error with a retry affordance. Each fetch is
// numbered, and only the most recently issued one may change the
// picker, so results that arrive late or out of order are dropped.
//
// # Quick Start
//
//	m := picker.New("Choose an organization", loadOrgs, onPick, onDismiss,
//		picker.WithPreselect(lastOrgID),
//	)
//
// Inside a frame stack, use Open instead. It wires the callbacks so
// the frame closes exactly once no matter how the picker finishes:
//
//	handle, cmd := picker.Open(registry, "Choose an organization",
//		loadOrgs, onPick, onDismiss)
//
// # Keys
//
//	up/k, down/j   move the selection, clamped at the ends
//	home/end       jump to the first or last row
//	enter          confirm the selection
//	esc            cancel
//	r              retry a failed load
package picker
