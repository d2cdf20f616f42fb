package termios

import (
	"golang.org/x/sys/unix"
)

// NCCS is the number of control character slots in a Linux termios.
const NCCS = len(unix.Termios{}.Cc)

// Disabled is the control character value that turns a terminal function off
// (_POSIX_VDISABLE on Linux).
const Disabled byte = 0

// speedMask covers the Cflag bits that encode the baud rates.
const speedMask = unix.CBAUD | unix.CIBAUD

// Speed is a symbolic baud rate encoding (unix.B9600, unix.B115200, ...).
type Speed uint32

// String returns the registry name of the speed, or "unknown".
func (s Speed) String() string {
	if b, ok := Default().Baud(s); ok {
		return b.Name
	}
	return "unknown"
}

// Discipline is the line discipline tag. Valid is false on a zero Attrs.
type Discipline struct {
	Value uint8
	Valid bool
}

// Attrs is a snapshot of one terminal's configuration.
// Attrs values are comparable: two snapshots are equal iff a == b.
type Attrs struct {
	Ispeed Speed
	Ospeed Speed
	Iflag  uint32
	Oflag  uint32
	Cflag  uint32 // without the baud bits, see Ispeed/Ospeed
	Lflag  uint32
	Cc     [NCCS]byte
	Line   Discipline
}

// Clone returns an independent copy of a.
func (a *Attrs) Clone() *Attrs {
	c := *a
	return &c
}

// Equal reports whether a and b hold the same configuration.
func (a *Attrs) Equal(b *Attrs) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Flags returns the flag word w.
func (a *Attrs) Flags(w FlagWord) uint32 {
	switch w {
	case Input:
		return a.Iflag
	case Output:
		return a.Oflag
	case Control:
		return a.Cflag
	case Local:
		return a.Lflag
	}
	return 0
}

// SetFlags replaces the flag word w with v.
func (a *Attrs) SetFlags(w FlagWord, v uint32) {
	switch w {
	case Input:
		a.Iflag = v
	case Output:
		a.Oflag = v
	case Control:
		a.Cflag = v &^ speedMask
	case Local:
		a.Lflag = v
	}
}

// SetSpeed sets both directions to s.
func (a *Attrs) SetSpeed(s Speed) {
	a.Ispeed = s
	a.Ospeed = s
}

// FromUnix converts a kernel termios into a snapshot.
func FromUnix(t *unix.Termios) *Attrs {
	ospeed := Speed(t.Cflag & unix.CBAUD)
	ispeed := Speed((t.Cflag & unix.CIBAUD) >> unix.IBSHIFT)
	if ispeed == 0 {
		ispeed = ospeed
	}
	return &Attrs{
		Ispeed: ispeed,
		Ospeed: ospeed,
		Iflag:  t.Iflag,
		Oflag:  t.Oflag,
		Cflag:  t.Cflag &^ speedMask,
		Lflag:  t.Lflag,
		Cc:     t.Cc,
		Line:   Discipline{Value: t.Line, Valid: true},
	}
}

// Unix converts the snapshot into the kernel layout.
// Equal input and output speeds leave the CIBAUD field zero.
func (a *Attrs) Unix() *unix.Termios {
	cflag := a.Cflag&^speedMask | uint32(a.Ospeed)&unix.CBAUD
	if a.Ispeed != a.Ospeed {
		cflag |= (uint32(a.Ispeed) << unix.IBSHIFT) & unix.CIBAUD
	}
	return &unix.Termios{
		Iflag:  a.Iflag,
		Oflag:  a.Oflag,
		Cflag:  cflag,
		Lflag:  a.Lflag,
		Line:   a.Line.Value,
		Cc:     a.Cc,
		Ispeed: uint32(a.Ispeed),
		Ospeed: uint32(a.Ospeed),
	}
}
