// Package viz is the terminal front end for the living core.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: the live field, driven by mouse, wheel and keyboard tilt
//   - [Preloader]: the boot screen shown before the field starts
//   - [Cursor]: a dot that tracks the mouse and an outline that trails it
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	Arrows  - Tilt the device (emulated orientation)
//	0       - Level the tilt
//	F       - Toggle fine/coarse pointer
//	R       - Rebuild the field
//	M       - Mute/unmute audio
//	N / P   - Next/previous track
//	T       - Cycle color themes
//	G       - Toggle GIF recording
//	?       - Show help overlay
package viz
