// Package termios exposes the Linux terminal attribute interface: a
// comparable snapshot of a terminal's configuration (Attrs), the driver
// requests that read, apply and flush it, and a read-only registry of flag,
// control character, baud rate and modem signal names.
//
// Every failed driver request is reported as a *DeviceError carrying the
// POSIX name of the operation. Requests are never retried.
//
//	a, err := termios.GetAttr(fd)
//	if err != nil {
//	    return err
//	}
//	saved := a.Clone()
//	a.Lflag &^= unix.ECHO
//	if err := termios.SetAttr(fd, termios.Now, a); err != nil {
//	    return err
//	}
//	defer termios.SetAttr(fd, termios.Now, saved)
package termios
