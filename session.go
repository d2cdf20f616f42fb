package tty

import (
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/luhtfiimanal/go-linux-tty/termios"
)

// FlowControl selects how a session throttles the line.
type FlowControl int

const (
	FlowHardware FlowControl = iota // RTS/CTS
	FlowSoftware                    // XON/XOFF
	FlowNone
)

func (f FlowControl) String() string {
	switch f {
	case FlowHardware:
		return "hardware"
	case FlowSoftware:
		return "software"
	case FlowNone:
		return "none"
	}
	return "unknown"
}

// ParseFlowControl accepts "hardware" (or "rtscts"), "software" (or
// "xonxoff") and "none".
func ParseFlowControl(s string) (FlowControl, error) {
	switch strings.ToLower(s) {
	case "hardware", "rtscts", "crtscts":
		return FlowHardware, nil
	case "software", "xonxoff":
		return FlowSoftware, nil
	case "none", "":
		return FlowNone, nil
	}
	return 0, errors.Errorf("unknown flow control %q", s)
}

// Terminal is an open terminal handle a Session takes ownership of.
// *Port is the implementation backed by a real device.
type Terminal interface {
	ByteDevice
	io.Closer
	Attributes() (*termios.Attrs, error)
	SetAttributes(when termios.When, a *termios.Attrs) error
	Flush(q termios.Queue) error
}

// Config holds the parameters of a chat session.
type Config struct {
	Device   string
	Flow     FlowControl
	BaudRate int  // 0 keeps the speed the device already reports
	Modem    bool // false: ignore carrier and do not hang up on close
	Logger   logrus.FieldLogger
}

func (c Config) speed() (termios.Speed, error) {
	if c.BaudRate == 0 {
		return 0, nil
	}
	s, ok := termios.Default().SpeedForRate(c.BaudRate)
	if !ok {
		return 0, errors.Errorf("unsupported baud rate %d", c.BaudRate)
	}
	return s, nil
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

// Session owns a terminal configured for a raw, flow controlled serial
// line. Close restores the attributes the terminal had before the session.
type Session struct {
	term   Terminal
	orig   *termios.Attrs
	active *termios.Attrs
	log    logrus.FieldLogger

	closeOnce sync.Once
	closeErr  error
}

// Open opens cfg.Device and starts a session on it.
func Open(cfg Config) (*Session, error) {
	if _, err := cfg.speed(); err != nil {
		return nil, err
	}
	port, err := OpenPort(cfg.Device)
	if err != nil {
		return nil, err
	}
	return NewSession(port, cfg)
}

// NewSession starts a session on an already open terminal and takes
// ownership of it: if configuration fails, term is restored and closed
// before NewSession returns.
func NewSession(term Terminal, cfg Config) (*Session, error) {
	s := &Session{
		term: term,
		log:  cfg.logger().WithField("device", cfg.Device),
	}

	speed, err := cfg.speed()
	if err == nil {
		err = s.configure(cfg.Flow, speed, cfg.Modem)
	}
	if err != nil {
		s.log.WithError(err).Debug("session setup failed")
		return nil, multierr.Append(err, s.Close())
	}

	s.log.WithFields(logrus.Fields{
		"flow":  cfg.Flow,
		"speed": s.active.Ospeed,
		"modem": cfg.Modem,
	}).Debug("session configured")
	return s, nil
}

func (s *Session) configure(flow FlowControl, speed termios.Speed, modem bool) error {
	orig, err := s.term.Attributes()
	if err != nil {
		return errors.Wrap(err, "capture attributes")
	}
	s.orig = orig

	next := Derive(orig, flow, speed, modem)
	if err := s.term.Flush(termios.FlushBoth); err != nil {
		return errors.Wrap(err, "flush")
	}
	if err := s.term.SetAttributes(termios.Now, next); err != nil {
		return errors.Wrap(err, "apply attributes")
	}
	s.active = next
	return nil
}

// Derive computes the session attributes from the terminal's original ones:
// raw 8N1 input and output, receiver on, VMIN 1 and VTIME 0, the requested
// flow control, and speed (0 keeps the original speeds). orig is not
// modified. Derive always starts from the captured original; its result
// cannot be turned back into orig.
func Derive(orig *termios.Attrs, flow FlowControl, speed termios.Speed, modem bool) *termios.Attrs {
	next := orig.Clone()

	next.Iflag = unix.IGNBRK | unix.IGNPAR
	next.Oflag = 0
	next.Lflag = 0
	next.Cflag = orig.Cflag &^ (unix.CSIZE | unix.CSTOPB | unix.PARENB | unix.CLOCAL)
	next.Cflag |= unix.CS8 | unix.CREAD | unix.HUPCL

	next.Cc[unix.VMIN] = 1
	next.Cc[unix.VTIME] = 0

	if !modem {
		// +CLOCAL -HUPCL
		next.Cflag ^= unix.CLOCAL | unix.HUPCL
	}

	switch flow {
	case FlowHardware:
		next.Cflag |= unix.CRTSCTS
	case FlowSoftware:
		next.Cflag &^= unix.CRTSCTS
		next.Iflag |= unix.IXON | unix.IXOFF
		next.Cc[unix.VSTART] = 0x11 // ^Q
		next.Cc[unix.VSTOP] = 0x13  // ^S
	case FlowNone:
		next.Cflag &^= unix.CRTSCTS
	}

	if speed != 0 {
		next.SetSpeed(speed)
	}
	return next
}

// Terminal returns the terminal the session owns.
func (s *Session) Terminal() Terminal { return s.term }

// Original returns a copy of the attributes captured when the session started.
func (s *Session) Original() *termios.Attrs { return s.orig.Clone() }

// Active returns a copy of the attributes the session applied.
func (s *Session) Active() *termios.Attrs { return s.active.Clone() }

// Attributes queries the terminal. Drivers may coerce what was applied, so
// this, not Active, is the source of truth.
func (s *Session) Attributes() (*termios.Attrs, error) {
	return s.term.Attributes()
}

// Expect waits until the received bytes end with pattern.
func (s *Session) Expect(pattern string) (string, error) {
	recv, err := Expect(s.term, []byte(pattern))
	s.log.WithField("recv", string(recv)).Debug("expect")
	return string(recv), err
}

// SendLine transmits text followed by EOL and returns the echo.
func (s *Session) SendLine(text string) (string, int, error) {
	echo, n, err := SendLine(s.term, text)
	s.log.WithFields(logrus.Fields{"echo": string(echo), "sent": n}).Debug("send")
	return string(echo), n, err
}

// ExpectSend waits for expect, then sends send; either may be empty.
func (s *Session) ExpectSend(expect, send string) (string, string, error) {
	recv, echo, err := ExpectSend(s.term, expect, send)
	s.log.WithFields(logrus.Fields{"recv": recv, "echo": echo}).Debug("expect/send")
	return recv, echo, err
}

// Close flushes both queues, restores the original attributes and closes
// the terminal. Every step is attempted even if an earlier one fails; the
// failures are returned together, first failure first. Safe to call more
// than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var err error
		if s.orig != nil {
			if ferr := s.term.Flush(termios.FlushBoth); ferr != nil {
				s.log.WithError(ferr).Warn("flush on close failed")
				err = multierr.Append(err, errors.Wrap(ferr, "flush"))
			}
			if rerr := s.term.SetAttributes(termios.Now, s.orig); rerr != nil {
				s.log.WithError(rerr).Warn("restoring terminal attributes failed")
				err = multierr.Append(err, errors.Wrap(rerr, "restore attributes"))
			}
		}
		if cerr := s.term.Close(); cerr != nil {
			s.log.WithError(cerr).Warn("close failed")
			err = multierr.Append(err, errors.Wrap(cerr, "close"))
		}
		s.closeErr = err
	})
	return s.closeErr
}
