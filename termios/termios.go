package termios

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// When selects the moment SetAttr takes effect.
type When int

const (
	Now        When = iota // TCSANOW
	AfterDrain             // TCSADRAIN: after pending output is transmitted
	AfterFlush             // TCSAFLUSH: after output drains, discarding unread input
)

// Queue selects the buffers Flush discards.
type Queue int

const (
	FlushInput  Queue = unix.TCIFLUSH
	FlushOutput Queue = unix.TCOFLUSH
	FlushBoth   Queue = unix.TCIOFLUSH
)

// FlowAction is a tcflow(3) action.
type FlowAction int

const (
	SuspendOutput FlowAction = unix.TCOOFF
	ResumeOutput  FlowAction = unix.TCOON
	SendStop      FlowAction = unix.TCIOFF
	SendStart     FlowAction = unix.TCION
)

// DeviceError reports a failed terminal driver request.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors reach the underlying errno.
func (e *DeviceError) Cause() error { return e.Err }

func deviceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DeviceError{Op: op, Err: err}
}

// GetAttr reads the current attributes of fd.
func GetAttr(fd int) (*Attrs, error) {
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, deviceErr("tcgetattr", err)
	}
	return FromUnix(t), nil
}

// SetAttr applies a to fd at the moment selected by when.
func SetAttr(fd int, when When, a *Attrs) error {
	var req uint
	switch when {
	case Now:
		req = unix.TCSETS
	case AfterDrain:
		req = unix.TCSETSW
	case AfterFlush:
		req = unix.TCSETSF
	default:
		return deviceErr("tcsetattr", unix.EINVAL)
	}
	return deviceErr("tcsetattr", unix.IoctlSetTermios(fd, req, a.Unix()))
}

// Flush discards data received but not read, written but not transmitted, or both.
func Flush(fd int, q Queue) error {
	return deviceErr("tcflush", unix.IoctlSetInt(fd, unix.TCFLSH, int(q)))
}

// Drain waits until all output written to fd has been transmitted.
func Drain(fd int) error {
	return deviceErr("tcdrain", unix.IoctlSetInt(fd, unix.TCSBRK, 1))
}

// SendBreak transmits a stream of zero bits. A zero duration sends for
// 0.25 to 0.5 seconds; otherwise duration is in tenths of a second.
func SendBreak(fd int, duration int) error {
	return deviceErr("tcsendbreak", unix.IoctlSetInt(fd, unix.TCSBRKP, duration))
}

// Flow suspends or restarts transmission or reception on fd.
func Flow(fd int, action FlowAction) error {
	return deviceErr("tcflow", unix.IoctlSetInt(fd, unix.TCXONC, int(action)))
}

// Pgrp returns the foreground process group of the terminal.
func Pgrp(fd int) (int, error) {
	pgrp, err := unix.IoctlGetInt(fd, unix.TIOCGPGRP)
	if err != nil {
		return 0, deviceErr("tcgetpgrp", err)
	}
	return pgrp, nil
}

// SetPgrp makes pgrp the foreground process group of the terminal.
func SetPgrp(fd int, pgrp int) error {
	return deviceErr("tcsetpgrp", unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, pgrp))
}

// ModemLines returns the TIOCM_* status bits of a serial line.
func ModemLines(fd int) (int, error) {
	bits, err := unix.IoctlGetInt(fd, unix.TIOCMGET)
	if err != nil {
		return 0, deviceErr("tiocmget", err)
	}
	return bits, nil
}
