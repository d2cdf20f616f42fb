// Package tty drives serial lines and terminals on Linux: it puts a device
// into raw, flow controlled mode for the lifetime of a Session, restores the
// device's original attributes afterwards, and runs simple expect/send
// exchanges over it, the way chat scripts talk to modems.
//
// Features:
//   - Raw syscall-based device I/O, one byte at a time, no buffering delays
//   - Attributes captured on open and restored on close, on every exit path
//   - Hardware (RTS/CTS), software (XON/XOFF) or no flow control
//   - Expect/send primitives over any io.ByteReader/io.ByteWriter
//   - Self-pipe mechanism so a blocked read can be interrupted
//   - PTY-based tests for reliability
//
// Attribute snapshots and the flag name registry live in the termios
// subpackage.
//
// This package does **not** support Windows.
//
// Example usage:
//
//	s, err := tty.Open(tty.Config{
//	    Device:   "/dev/ttyS3",
//	    Flow:     tty.FlowHardware,
//	    BaudRate: 38400,
//	    Modem:    true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if _, _, err := s.ExpectSend("", "ATZ"); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := s.Expect("OK\r\n"); err != nil {
//	    log.Fatal(err)
//	}
//
// Reads block until a byte arrives. To bound an exchange, call Interrupt on
// the session's *Port from another goroutine, e.g. with time.AfterFunc.
package tty
