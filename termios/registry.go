package termios

import (
	"slices"
	"sync"

	"golang.org/x/sys/unix"
)

// FlagWord names one of the four termios flag words.
type FlagWord int

const (
	Input FlagWord = iota
	Output
	Control
	Local
	numFlagWords
)

func (w FlagWord) String() string {
	switch w {
	case Input:
		return "iflag"
	case Output:
		return "oflag"
	case Control:
		return "cflag"
	case Local:
		return "lflag"
	}
	return "unknown"
}

// Flag binds a symbolic name to a bit mask or a field value.
type Flag struct {
	Name string
	Mask uint32
}

// Choice is a group of mutually exclusive values sharing one mask,
// e.g. CSIZE with CS5..CS8.
type Choice struct {
	Name   string
	Mask   uint32
	Values []Flag
}

// ControlChar binds a control function name to its Cc index.
type ControlChar struct {
	Name  string
	Index int
}

// Baud binds a speed encoding to its name and rate in bits per second.
type Baud struct {
	Name  string
	Speed Speed
	Rate  int
}

// Registry is the read-only table of termios names. Use Default.
type Registry struct {
	flags       [numFlagWords][]Flag
	choices     [numFlagWords][]Choice
	cc          []ControlChar
	bauds       []Baud
	modem       []Flag
	disciplines []string
	visible     [256]string
}

// Default returns the process-wide registry. It is built on first use.
var Default = sync.OnceValue(newRegistry)

func newRegistry() *Registry {
	r := &Registry{}

	r.flags[Input] = []Flag{
		{"IGNBRK", unix.IGNBRK},
		{"BRKINT", unix.BRKINT},
		{"IGNPAR", unix.IGNPAR},
		{"PARMRK", unix.PARMRK},
		{"INPCK", unix.INPCK},
		{"ISTRIP", unix.ISTRIP},
		{"INLCR", unix.INLCR},
		{"IGNCR", unix.IGNCR},
		{"ICRNL", unix.ICRNL},
		{"IXON", unix.IXON},
		{"IXOFF", unix.IXOFF},
		{"IUCLC", unix.IUCLC},
		{"IXANY", unix.IXANY},
		{"IMAXBEL", unix.IMAXBEL},
		{"IUTF8", unix.IUTF8},
	}
	r.flags[Output] = []Flag{
		{"OPOST", unix.OPOST},
		{"OLCUC", unix.OLCUC},
		{"OCRNL", unix.OCRNL},
		{"ONLCR", unix.ONLCR},
		{"ONOCR", unix.ONOCR},
		{"ONLRET", unix.ONLRET},
		{"OFILL", unix.OFILL},
		{"OFDEL", unix.OFDEL},
	}
	r.choices[Output] = []Choice{
		{"NLDLY", unix.NLDLY, []Flag{{"NL0", unix.NL0}, {"NL1", unix.NL1}}},
		{"CRDLY", unix.CRDLY, []Flag{{"CR0", unix.CR0}, {"CR1", unix.CR1}, {"CR2", unix.CR2}, {"CR3", unix.CR3}}},
		{"TABDLY", unix.TABDLY, []Flag{{"TAB0", unix.TAB0}, {"TAB1", unix.TAB1}, {"TAB2", unix.TAB2}, {"TAB3", unix.TAB3}}},
		{"BSDLY", unix.BSDLY, []Flag{{"BS0", unix.BS0}, {"BS1", unix.BS1}}},
		{"VTDLY", unix.VTDLY, []Flag{{"VT0", unix.VT0}, {"VT1", unix.VT1}}},
		{"FFDLY", unix.FFDLY, []Flag{{"FF0", unix.FF0}, {"FF1", unix.FF1}}},
	}
	r.flags[Control] = []Flag{
		{"CSTOPB", unix.CSTOPB},
		{"CREAD", unix.CREAD},
		{"PARENB", unix.PARENB},
		{"PARODD", unix.PARODD},
		{"HUPCL", unix.HUPCL},
		{"CLOCAL", unix.CLOCAL},
		{"CMSPAR", unix.CMSPAR},
		{"CRTSCTS", unix.CRTSCTS},
	}
	r.choices[Control] = []Choice{
		{"CSIZE", unix.CSIZE, []Flag{{"CS5", unix.CS5}, {"CS6", unix.CS6}, {"CS7", unix.CS7}, {"CS8", unix.CS8}}},
	}
	r.flags[Local] = []Flag{
		{"ISIG", unix.ISIG},
		{"ICANON", unix.ICANON},
		{"XCASE", unix.XCASE},
		{"ECHO", unix.ECHO},
		{"ECHOE", unix.ECHOE},
		{"ECHOK", unix.ECHOK},
		{"ECHONL", unix.ECHONL},
		{"ECHOCTL", unix.ECHOCTL},
		{"ECHOPRT", unix.ECHOPRT},
		{"ECHOKE", unix.ECHOKE},
		{"FLUSHO", unix.FLUSHO},
		{"NOFLSH", unix.NOFLSH},
		{"TOSTOP", unix.TOSTOP},
		{"PENDIN", unix.PENDIN},
		{"IEXTEN", unix.IEXTEN},
		{"EXTPROC", unix.EXTPROC},
	}

	r.cc = []ControlChar{
		{"VINTR", unix.VINTR},
		{"VQUIT", unix.VQUIT},
		{"VERASE", unix.VERASE},
		{"VKILL", unix.VKILL},
		{"VEOF", unix.VEOF},
		{"VTIME", unix.VTIME},
		{"VMIN", unix.VMIN},
		{"VSWTC", unix.VSWTC},
		{"VSTART", unix.VSTART},
		{"VSTOP", unix.VSTOP},
		{"VSUSP", unix.VSUSP},
		{"VEOL", unix.VEOL},
		{"VREPRINT", unix.VREPRINT},
		{"VDISCARD", unix.VDISCARD},
		{"VWERASE", unix.VWERASE},
		{"VLNEXT", unix.VLNEXT},
		{"VEOL2", unix.VEOL2},
	}

	r.bauds = []Baud{
		{"B0", unix.B0, 0},
		{"B50", unix.B50, 50},
		{"B75", unix.B75, 75},
		{"B110", unix.B110, 110},
		{"B134", unix.B134, 134},
		{"B150", unix.B150, 150},
		{"B200", unix.B200, 200},
		{"B300", unix.B300, 300},
		{"B600", unix.B600, 600},
		{"B1200", unix.B1200, 1200},
		{"B1800", unix.B1800, 1800},
		{"B2400", unix.B2400, 2400},
		{"B4800", unix.B4800, 4800},
		{"B9600", unix.B9600, 9600},
		{"B19200", unix.B19200, 19200},
		{"B38400", unix.B38400, 38400},
		{"B57600", unix.B57600, 57600},
		{"B115200", unix.B115200, 115200},
		{"B230400", unix.B230400, 230400},
		{"B460800", unix.B460800, 460800},
		{"B500000", unix.B500000, 500000},
		{"B576000", unix.B576000, 576000},
		{"B921600", unix.B921600, 921600},
		{"B1000000", unix.B1000000, 1000000},
		{"B1152000", unix.B1152000, 1152000},
		{"B1500000", unix.B1500000, 1500000},
		{"B2000000", unix.B2000000, 2000000},
		{"B2500000", unix.B2500000, 2500000},
		{"B3000000", unix.B3000000, 3000000},
		{"B3500000", unix.B3500000, 3500000},
		{"B4000000", unix.B4000000, 4000000},
	}

	r.modem = []Flag{
		{"TIOCM_LE", unix.TIOCM_LE},
		{"TIOCM_DTR", unix.TIOCM_DTR},
		{"TIOCM_RTS", unix.TIOCM_RTS},
		{"TIOCM_ST", unix.TIOCM_ST},
		{"TIOCM_SR", unix.TIOCM_SR},
		{"TIOCM_CTS", unix.TIOCM_CTS},
		{"TIOCM_CAR", unix.TIOCM_CAR},
		{"TIOCM_RNG", unix.TIOCM_RNG},
		{"TIOCM_DSR", unix.TIOCM_DSR},
	}

	// Linux line disciplines, indexed by number (include/uapi/linux/tty.h).
	r.disciplines = []string{
		"N_TTY", "N_SLIP", "N_MOUSE", "N_PPP", "N_STRIP", "N_AX25", "N_X25", "N_6PACK",
		"N_MASC", "N_R3964", "N_PROFIBUS_FDL", "N_IRDA", "N_SMSBLOCK", "N_HDLC", "N_SYNC_PPP", "N_HCI",
	}

	for i := range r.visible {
		r.visible[i] = visibleByte(byte(i))
	}
	r.visible[Disabled] = "<undef>"

	return r
}

// visibleByte renders b in caret notation, with M- for the high bit.
func visibleByte(b byte) string {
	prefix := ""
	if b >= 0x80 {
		prefix = "M-"
		b -= 0x80
	}
	switch {
	case b < 0x20:
		return prefix + "^" + string(rune(b+'@'))
	case b == ' ':
		return prefix + "<sp>"
	case b == 0x7f:
		return prefix + "^?"
	}
	return prefix + string(rune(b))
}

// Flags returns the independent flags of word w.
func (r *Registry) Flags(w FlagWord) []Flag {
	if w < 0 || w >= numFlagWords {
		return nil
	}
	return slices.Clone(r.flags[w])
}

// Choices returns the choice groups of word w.
func (r *Registry) Choices(w FlagWord) []Choice {
	if w < 0 || w >= numFlagWords {
		return nil
	}
	out := make([]Choice, len(r.choices[w]))
	for i, c := range r.choices[w] {
		c.Values = slices.Clone(c.Values)
		out[i] = c
	}
	return out
}

// Mask resolves name within word w. The name may be an independent flag,
// a choice group mask or one of a choice group's values.
func (r *Registry) Mask(w FlagWord, name string) (uint32, bool) {
	if w < 0 || w >= numFlagWords {
		return 0, false
	}
	for _, f := range r.flags[w] {
		if f.Name == name {
			return f.Mask, true
		}
	}
	for _, c := range r.choices[w] {
		if c.Name == name {
			return c.Mask, true
		}
		for _, v := range c.Values {
			if v.Name == name {
				return v.Mask, true
			}
		}
	}
	return 0, false
}

// Choice returns the name of the value group selects within v.
func (r *Registry) Choice(w FlagWord, group string, v uint32) (string, bool) {
	if w < 0 || w >= numFlagWords {
		return "", false
	}
	for _, c := range r.choices[w] {
		if c.Name != group {
			continue
		}
		for _, val := range c.Values {
			if v&c.Mask == val.Mask {
				return val.Name, true
			}
		}
	}
	return "", false
}

// Names lists the independent flags set in v followed by the selected
// value of every choice group. Bits the registry does not know are skipped.
func (r *Registry) Names(w FlagWord, v uint32) []string {
	if w < 0 || w >= numFlagWords {
		return nil
	}
	var names []string
	for _, f := range r.flags[w] {
		if v&f.Mask != 0 {
			names = append(names, f.Name)
		}
	}
	for _, c := range r.choices[w] {
		if name, ok := r.Choice(w, c.Name, v); ok {
			names = append(names, name)
		}
	}
	return names
}

// ControlChars returns the control functions in registry order.
func (r *Registry) ControlChars() []ControlChar {
	return slices.Clone(r.cc)
}

// ControlCharIndex returns the Cc index of the named function.
func (r *Registry) ControlCharIndex(name string) (int, bool) {
	for _, c := range r.cc {
		if c.Name == name {
			return c.Index, true
		}
	}
	return 0, false
}

// ControlCharName returns the function bound to Cc index i.
func (r *Registry) ControlCharName(i int) (string, bool) {
	for _, c := range r.cc {
		if c.Index == i {
			return c.Name, true
		}
	}
	return "", false
}

// Bauds returns the baud table, slowest first.
func (r *Registry) Bauds() []Baud {
	return slices.Clone(r.bauds)
}

// Baud looks up a speed encoding.
func (r *Registry) Baud(s Speed) (Baud, bool) {
	for _, b := range r.bauds {
		if b.Speed == s {
			return b, true
		}
	}
	return Baud{}, false
}

// SpeedForRate maps a rate in bits per second to its encoding.
func (r *Registry) SpeedForRate(rate int) (Speed, bool) {
	for _, b := range r.bauds {
		if b.Rate == rate {
			return b.Speed, true
		}
	}
	return 0, false
}

// ModemSignals lists the TIOCM_* names set in bits.
func (r *Registry) ModemSignals(bits int) []string {
	var names []string
	for _, f := range r.modem {
		if uint32(bits)&f.Mask != 0 {
			names = append(names, f.Name)
		}
	}
	return names
}

// DisciplineName returns the name of line discipline n.
func (r *Registry) DisciplineName(n uint8) (string, bool) {
	if int(n) < len(r.disciplines) {
		return r.disciplines[n], true
	}
	return "", false
}

// Visible renders a control character value for diagnostics.
func (r *Registry) Visible(b byte) string {
	return r.visible[b]
}
