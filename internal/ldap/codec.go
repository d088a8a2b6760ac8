package ldap

import (
	"bufio"
	"io"
	"net"

	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/pkg/errors"
)

// MaxMessageSize is the largest LDAPMessage, header included, a Decoder
// accepts.
const MaxMessageSize = 16 * 1024 * 1024

// ErrMessageTooLarge is returned for messages larger than MaxMessageSize.
// It wraps ErrDecode.
var ErrMessageTooLarge = errors.Wrap(ErrDecode, "message too large")

// Decoder reads LDAPMessages from a byte stream.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// ReadMessage blocks until the next complete message has arrived and decodes
// it. It returns io.EOF when the stream ends cleanly between two messages.
// Malformed input, truncated messages and unsupported operations yield an
// error wrapping ErrDecode; failures of the underlying reader are returned
// as they are. Messages over MaxMessageSize are rejected from their header
// before the body is read.
func (d *Decoder) ReadMessage() (Operation, error) {
	if _, err := d.r.Peek(1); err != nil {
		return nil, err
	}

	size, err := d.peekMessageSize()
	if err != nil {
		return nil, readError(err)
	}
	if size > MaxMessageSize {
		return nil, errors.Wrapf(ErrMessageTooLarge, "%d bytes exceeds limit of %d", size, MaxMessageSize)
	}

	packet, err := ber.ReadPacket(io.LimitReader(d.r, int64(size)))
	if err != nil {
		return nil, readError(err)
	}
	return ParseOperation(packet)
}

// peekMessageSize returns the total encoded size of the next message from
// its identifier and length octets without consuming them.
func (d *Decoder) peekMessageSize() (int, error) {
	hdr, err := d.r.Peek(2)
	if err != nil {
		return 0, err
	}
	if hdr[0]&0x1f == 0x1f {
		return 0, decodeError("multi-byte tag in message envelope")
	}

	first := hdr[1]
	switch {
	case first < 0x80:
		return 2 + int(first), nil
	case first == 0x80:
		return 0, decodeError("indefinite length is not allowed")
	}

	n := int(first & 0x7f)
	if n > 4 {
		return 0, errors.Wrapf(ErrMessageTooLarge, "%d length octets", n)
	}
	hdr, err = d.r.Peek(2 + n)
	if err != nil {
		return 0, err
	}
	length := 0
	for _, b := range hdr[2:] {
		length = length<<8 | int(b)
	}
	if length > MaxMessageSize {
		return 0, errors.Wrapf(ErrMessageTooLarge, "%d bytes exceeds limit of %d", length, MaxMessageSize)
	}
	return 2 + n + length, nil
}

// readError passes network failures through and turns everything else,
// including a stream that ends inside a message, into a decode error.
func readError(err error) error {
	if errors.Is(err, ErrDecode) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, net.ErrClosed) {
		return err
	}
	return errors.Wrapf(ErrDecode, "read packet: %v", err)
}

// Encoder writes responses to a buffered byte stream. Nothing reaches the
// underlying writer until Flush is called or the buffer fills up.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// WriteResponse encodes resp into the output buffer.
func (e *Encoder) WriteResponse(resp Response) error {
	_, err := e.w.Write(resp.Packet().Bytes())
	return err
}

// WriteOperation encodes a request into the output buffer. Clients use it.
func (e *Encoder) WriteOperation(op Operation) error {
	_, err := e.w.Write(op.Packet().Bytes())
	return err
}

// Flush writes any buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}
