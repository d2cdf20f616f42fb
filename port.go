package tty

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/luhtfiimanal/go-linux-tty/termios"
)

// ErrInterrupted is returned by reads on a Port after Interrupt.
var ErrInterrupted = errors.New("port interrupted")

// Port is an open terminal device with killable, unbuffered single byte reads.
// Interrupt and Close may be called from another goroutine; everything else
// belongs to one goroutine at a time.
type Port struct {
	fd            int
	name          string
	file          *os.File
	done          chan struct{}
	closeOnce     sync.Once
	interruptOnce sync.Once
	pipeR         int // self-pipe read fd
	pipeW         int // self-pipe write fd
}

// OpenPort opens device read-write without making it the controlling
// terminal. The open is non-blocking so a modem without carrier cannot hang
// it; the descriptor is switched back to blocking before it is returned.
func OpenPort(device string) (*Port, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(&termios.DeviceError{Op: "open", Err: err}, "device %s", device)
	}

	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(&termios.DeviceError{Op: "fcntl", Err: err}, "device %s", device)
	}

	// Create self-pipe for killability
	pipeFds := make([]int, 2)
	if err := unix.Pipe2(pipeFds, unix.O_CLOEXEC); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "pipe")
	}

	return &Port{
		fd:    fd,
		name:  device,
		file:  os.NewFile(uintptr(fd), device),
		done:  make(chan struct{}),
		pipeR: pipeFds[0],
		pipeW: pipeFds[1],
	}, nil
}

// Name returns the device path the port was opened with.
func (p *Port) Name() string { return p.name }

// Fd returns the device descriptor.
func (p *Port) Fd() int { return p.fd }

// ReadByte blocks until one byte arrives. It returns io.EOF on hangup and
// ErrInterrupted once Interrupt has been called.
func (p *Port) ReadByte() (byte, error) {
	var b [1]byte
	for {
		select {
		case <-p.done:
			return 0, os.ErrClosed
		default:
		}

		// Use poll to wait for data or kill signal
		pfd := []unix.PollFd{
			{Fd: int32(p.fd), Events: unix.POLLIN},
			{Fd: int32(p.pipeR), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(pfd, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, errors.Wrap(err, "poll")
		}
		if pfd[1].Revents&unix.POLLIN != 0 {
			return 0, ErrInterrupted
		}
		if pfd[0].Revents&unix.POLLNVAL != 0 {
			return 0, os.ErrClosed
		}
		if pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) == 0 {
			continue
		}

		n, err := unix.Read(p.fd, b[:])
		switch {
		case err == unix.EINTR || err == unix.EAGAIN:
			continue
		case err == unix.EIO:
			// A hung up line (or a pty whose master went away).
			return 0, io.EOF
		case err != nil:
			return 0, errors.Wrap(err, "read")
		case n == 0:
			return 0, io.EOF
		}
		return b[0], nil
	}
}

// WriteByte transmits one byte.
func (p *Port) WriteByte(c byte) error {
	_, err := p.file.Write([]byte{c})
	return err
}

// Attributes reads the current terminal attributes.
func (p *Port) Attributes() (*termios.Attrs, error) {
	return termios.GetAttr(p.fd)
}

// SetAttributes applies a at the moment selected by when.
func (p *Port) SetAttributes(when termios.When, a *termios.Attrs) error {
	return termios.SetAttr(p.fd, when, a)
}

// Flush discards buffered input, output or both.
func (p *Port) Flush(q termios.Queue) error {
	return termios.Flush(p.fd, q)
}

// Drain waits until written bytes have left the device.
func (p *Port) Drain() error {
	return termios.Drain(p.fd)
}

// SendBreak transmits a break; see termios.SendBreak for duration.
func (p *Port) SendBreak(duration int) error {
	return termios.SendBreak(p.fd, duration)
}

// ModemLines returns the TIOCM_* modem status bits.
func (p *Port) ModemLines() (int, error) {
	return termios.ModemLines(p.fd)
}

// Interrupt unblocks a pending ReadByte. The port stays interrupted: every
// later read fails with ErrInterrupted, while attribute requests and writes
// still work so the owner can restore and close it.
func (p *Port) Interrupt() {
	p.interruptOnce.Do(func() {
		unix.Write(p.pipeW, []byte{1})
	})
}

// Close closes the device and unblocks any ReadByte call.
// Safe to call multiple times; subsequent calls are no-ops.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		p.Interrupt()
		if cerr := p.file.Close(); cerr != nil {
			err = &termios.DeviceError{Op: "close", Err: cerr}
		}
		unix.Close(p.pipeR)
		unix.Close(p.pipeW)
	})
	return err
}
