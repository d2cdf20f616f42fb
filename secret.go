package tty

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/luhtfiimanal/go-linux-tty/termios"
)

// ReadSecret prints prompt to out and reads one line from the terminal in
// with local echo switched off. The original attributes are restored before
// it returns, whatever happened. The trailing line ending is removed.
func ReadSecret(in *os.File, out io.Writer, prompt string) (secret string, err error) {
	fd := int(in.Fd())

	orig, err := termios.GetAttr(fd)
	if err != nil {
		return "", err
	}
	noecho := orig.Clone()
	noecho.Lflag &^= unix.ECHO
	if err := termios.SetAttr(fd, termios.Now, noecho); err != nil {
		return "", err
	}
	defer func() {
		err = multierr.Append(err, termios.SetAttr(fd, termios.Now, orig))
	}()

	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	// the newline typed by the user was not echoed
	fmt.Fprintln(out)
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrap(err, "read secret")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
