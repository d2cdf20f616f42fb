package tty

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// EOL terminates every line SendLine transmits.
const EOL = "\r\n"

// ByteDevice is the capability the expect/send engine needs: one byte in,
// one byte out. Reads report end-of-stream as io.EOF.
type ByteDevice interface {
	io.ByteReader
	io.ByteWriter
}

// ProtocolErrorKind classifies a failed exchange.
type ProtocolErrorKind string

const (
	// KindExpect means the stream ended before the expected bytes arrived.
	KindExpect ProtocolErrorKind = "expect-timeout"
	// KindNoEcho means a transmitted byte was not echoed back.
	KindNoEcho ProtocolErrorKind = "send-no-echo"
)

// ProtocolError reports a failed expect or send. Partial holds what was
// received (for expect) or echoed (for send) before the failure.
type ProtocolError struct {
	Kind    ProtocolErrorKind
	Partial []byte
	Err     error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s (got %q): %v", e.Kind, e.Partial, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Cause() error { return e.Err }

// Expect reads one byte at a time until the bytes read so far end with
// pattern, and returns everything read. An empty pattern matches at once.
func Expect(r io.ByteReader, pattern []byte) ([]byte, error) {
	var recv []byte
	for !bytes.HasSuffix(recv, pattern) {
		c, err := r.ReadByte()
		if err != nil {
			return recv, &ProtocolError{Kind: KindExpect, Partial: recv, Err: err}
		}
		recv = append(recv, c)
	}
	return recv, nil
}

// SendLine terminates text with EOL, replacing any trailing line ending it
// already has, and transmits it one byte at a time, reading one echo byte
// back after each. It returns the echoed bytes and the number of bytes sent.
func SendLine(d ByteDevice, text string) ([]byte, int, error) {
	line := chomp(text) + EOL

	echo := make([]byte, 0, len(line))
	for i := 0; i < len(line); i++ {
		if err := d.WriteByte(line[i]); err != nil {
			return echo, i, &ProtocolError{Kind: KindNoEcho, Partial: echo, Err: err}
		}
		c, err := d.ReadByte()
		if err != nil {
			return echo, i + 1, &ProtocolError{Kind: KindNoEcho, Partial: echo, Err: err}
		}
		echo = append(echo, c)
	}
	return echo, len(line), nil
}

// ExpectSend waits for expect, then sends send. An empty expect skips the
// wait and an empty send skips the transmission.
func ExpectSend(d ByteDevice, expect, send string) (recv, echo string, err error) {
	if expect != "" {
		got, err := Expect(d, []byte(expect))
		recv = string(got)
		if err != nil {
			return recv, "", err
		}
	}
	if send != "" {
		sent, _, err := SendLine(d, send)
		echo = string(sent)
		if err != nil {
			return recv, echo, err
		}
	}
	return recv, echo, nil
}

func chomp(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(strings.TrimSuffix(s, "\n"), "\r")
}
