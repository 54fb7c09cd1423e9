// Package transceiver drives a CM11-style serial powerline interface.
//
// Key Responsibilities:
//   - Open and own the serial port (4800 8N1 on the common hardware)
//   - Transmit encoded frames with the checksum handshake: write the
//     frame, verify the echoed checksum, acknowledge with 0x00, and
//     wait for the 0x55 interface-ready byte
//   - Service the 0x5A poll the interface raises when it has received
//     powerline traffic, decode the buffered messages, and dispatch
//     them into the device-state engine
//   - Map every failure onto a terminal send status; retry and timeout
//     policy lives here, not in the engine
//
// A single goroutine owns all port I/O. Outbound sends are queued to
// that goroutine, so a send never interleaves with poll servicing.
package transceiver
