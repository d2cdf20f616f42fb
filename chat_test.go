package tty

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoDevice plays back pending bytes and, when echo is set, every byte
// written to it.
type echoDevice struct {
	pending  []byte
	written  []byte
	echo     bool
	writeErr error
}

func (d *echoDevice) ReadByte() (byte, error) {
	if len(d.pending) == 0 {
		return 0, io.EOF
	}
	c := d.pending[0]
	d.pending = d.pending[1:]
	return c, nil
}

func (d *echoDevice) WriteByte(c byte) error {
	if d.writeErr != nil {
		return d.writeErr
	}
	d.written = append(d.written, c)
	if d.echo {
		d.pending = append(d.pending, c)
	}
	return nil
}

func requireProtocolError(t *testing.T, err error, kind ProtocolErrorKind, partial string) {
	t.Helper()
	var perr *ProtocolError
	require.True(t, errors.As(err, &perr), "got %v", err)
	require.Equal(t, kind, perr.Kind)
	require.Equal(t, partial, string(perr.Partial))
}

func TestExpect_Match(t *testing.T) {
	got, err := Expect(bytes.NewReader([]byte("OK\r\n")), []byte("OK\r\n"))
	require.NoError(t, err)
	require.Equal(t, "OK\r\n", string(got))
}

func TestExpect_StopsAtFirstMatch(t *testing.T) {
	r := bytes.NewReader([]byte("ATZ\r\r\nOK\r\nRING\r\n"))

	got, err := Expect(r, []byte("OK\r\n"))
	require.NoError(t, err)
	require.Equal(t, "ATZ\r\r\nOK\r\n", string(got))
	require.Equal(t, 6, r.Len(), "bytes after the match stay unread")
}

func TestExpect_Truncated(t *testing.T) {
	got, err := Expect(bytes.NewReader([]byte("OK\r")), []byte("OK\r\n"))
	require.Equal(t, "OK\r", string(got))
	requireProtocolError(t, err, KindExpect, "OK\r")
	require.ErrorIs(t, err, io.EOF)
	require.Contains(t, err.Error(), "expect-timeout")
}

func TestExpect_EmptyPattern(t *testing.T) {
	got, err := Expect(bytes.NewReader(nil), nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSendLine_Echo(t *testing.T) {
	d := &echoDevice{echo: true}

	echo, n, err := SendLine(d, "AT")
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "AT\r\n", string(d.written))
	require.Equal(t, d.written, echo)
}

func TestSendLine_ReplacesLineEnding(t *testing.T) {
	for _, in := range []string{"AT", "AT\n", "AT\r", "AT\r\n"} {
		d := &echoDevice{echo: true}
		_, n, err := SendLine(d, in)
		require.NoError(t, err, "%q", in)
		assert.Equal(t, 4, n, "%q", in)
		assert.Equal(t, "AT\r\n", string(d.written), "%q", in)
	}
}

func TestSendLine_NoEcho(t *testing.T) {
	d := &echoDevice{}

	echo, n, err := SendLine(d, "AT")
	require.Empty(t, echo)
	require.Equal(t, 1, n)
	requireProtocolError(t, err, KindNoEcho, "")
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, "A", string(d.written))
}

func TestSendLine_PartialEcho(t *testing.T) {
	// The far end echoes two bytes, then goes quiet.
	d := &echoDevice{pending: []byte("AT")}

	echo, n, err := SendLine(d, "ATZ")
	require.Equal(t, "AT", string(echo))
	require.Equal(t, 3, n)
	requireProtocolError(t, err, KindNoEcho, "AT")
}

func TestSendLine_WriteError(t *testing.T) {
	broken := errors.New("write: input/output error")
	d := &echoDevice{writeErr: broken}

	_, n, err := SendLine(d, "AT")
	require.Zero(t, n)
	require.ErrorIs(t, err, broken)
}

func TestExpectSend(t *testing.T) {
	d := &echoDevice{pending: []byte("CONNECT 9600\r\n"), echo: true}

	recv, echo, err := ExpectSend(d, "CONNECT", "")
	require.NoError(t, err)
	require.Equal(t, "CONNECT", recv)
	require.Empty(t, echo)

	recv, echo, err = ExpectSend(d, "\r\n", "ATH")
	require.NoError(t, err)
	require.Equal(t, " 9600\r\n", recv)
	require.Equal(t, "ATH\r\n", echo)

	recv, echo, err = ExpectSend(d, "", "")
	require.NoError(t, err)
	require.Empty(t, recv)
	require.Empty(t, echo)
}

func TestExpectSend_ExpectFailureSkipsSend(t *testing.T) {
	d := &echoDevice{pending: []byte("NO CARRIER"), echo: true}

	recv, echo, err := ExpectSend(d, "CONNECT", "ATH")
	require.Equal(t, "NO CARRIER", recv)
	require.Empty(t, echo)
	requireProtocolError(t, err, KindExpect, "NO CARRIER")
	require.Empty(t, d.written)
}
