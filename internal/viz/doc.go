// Package viz draws layouts in the terminal.
//
// [TerminalRenderer] fits a layout into a braille [Canvas], taking positions
// from the device texture when the engine renders directly from device
// memory. [Model] is the Bubble Tea live view built on it.
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	S       - Single tick while paused
//	R       - Restore the starting graph and parameters
//	V, 1-5  - Switch layout variant
//	Tab     - Select parameter
//	Up/Down - Scale the selected parameter by 1.1
//	T       - Cycle color themes
//	?       - Show help overlay
package viz
