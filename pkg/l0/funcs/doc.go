// Package funcs implements the L0 function dispatch engine.
package funcs

// An inbound frame is interpreted as a tiny self-describing instruction
// stream: each byte selects an entry in a fixed-size function table and
// invokes it. Invoked functions exchange arguments and results through
// a fixed-capacity parameter stack and may emit response frames back to
// the host. Interfaces (named groups of functions) are recorded in a
// registry so a host can discover, in one frame, which functions a
// device supports and where their ids begin.
//
// Producer: host (frames in)
// Consumer: device firmware (bound handlers)
//
// Everything here is single-threaded and run-to-completion: one frame
// is fully executed inside the transport callback before the next is
// delivered. All structures are fixed-capacity and allocated with the
// Dispatcher, so no allocation happens while a frame executes.
