package flags

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	tty "github.com/luhtfiimanal/go-linux-tty"
)

// LogFlags holds the logging flags every example program accepts.
type LogFlags struct {
	LogLevel string
}

// SetLogFlags registers --log-level.
func SetLogFlags(flags *flag.FlagSet) *LogFlags {
	logFlags := &LogFlags{}
	flags.StringVar(&logFlags.LogLevel, "log-level", "info", "The log level to use (debug, info, warn, error)")
	return logFlags
}

// Logger returns a logger writing to stderr at the configured level.
func (f *LogFlags) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(f.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "parse --log-level")
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	return logger, nil
}

// SessionFlags holds the serial line flags.
type SessionFlags struct {
	*LogFlags

	Device   string
	BaudRate int
	Flow     string
	Modem    bool
}

// SetSessionFlags registers the serial line flags with the given defaults.
func SetSessionFlags(flags *flag.FlagSet, device string, baudRate int) *SessionFlags {
	sessionFlags := &SessionFlags{LogFlags: SetLogFlags(flags)}

	flags.StringVar(&sessionFlags.Device, "device", device, "The serial device to open")
	flags.IntVar(&sessionFlags.BaudRate, "baud", baudRate, "Line speed in bits per second, 0 keeps the current speed")
	flags.StringVar(&sessionFlags.Flow, "flow", "hardware", "Flow control: hardware, software or none")
	flags.BoolVar(&sessionFlags.Modem, "modem", true, "A modem is attached: honour carrier and hang up on close")
	return sessionFlags
}

// Config converts the flags into a session configuration.
func (f *SessionFlags) Config(logger logrus.FieldLogger) (tty.Config, error) {
	flow, err := tty.ParseFlowControl(f.Flow)
	if err != nil {
		return tty.Config{}, errors.Wrap(err, "parse --flow")
	}
	return tty.Config{
		Device:   f.Device,
		Flow:     flow,
		BaudRate: f.BaudRate,
		Modem:    f.Modem,
		Logger:   logger,
	}, nil
}
