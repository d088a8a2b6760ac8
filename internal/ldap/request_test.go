package ldap

import (
	"bytes"
	"io"
	"strings"
	"testing"

	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode runs raw bytes through a Decoder.
func decode(t *testing.T, data []byte) (Operation, error) {
	t.Helper()
	return NewDecoder(bytes.NewReader(data)).ReadMessage()
}

func TestParseBindRequest_SimpleAuth(t *testing.T) {
	in := &BindRequest{MessageID: 1, Version: 3, Name: "cn=admin,dc=example,dc=com", Password: "secret"}

	op, err := decode(t, in.Packet().Bytes())
	require.NoError(t, err)

	req, ok := op.(*BindRequest)
	require.True(t, ok, "got %T", op)
	assert.Equal(t, in, req)
	assert.False(t, req.IsAnonymous())
	assert.Equal(t, "BindRequest", req.Type().String())
}

func TestParseBindRequest_AnonymousBind(t *testing.T) {
	in := &BindRequest{MessageID: 7, Version: 3}

	op, err := decode(t, in.Packet().Bytes())
	require.NoError(t, err)
	assert.True(t, op.(*BindRequest).IsAnonymous())
}

func TestParseBindRequest_InvalidVersion(t *testing.T) {
	in := &BindRequest{MessageID: 1, Version: 2, Name: "cn=admin", Password: "x"}

	_, err := decode(t, in.Packet().Bytes())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestParseBindRequest_SASLAuth(t *testing.T) {
	op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationBindRequest, nil, "Bind Request")
	op.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(3), "Version"))
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "Name"))
	sasl := ber.Encode(ber.ClassContext, ber.TypeConstructed, contextTagSASLAuth, nil, "SASL")
	sasl.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "EXTERNAL", "Mechanism"))
	op.AppendChild(sasl)

	_, err := decode(t, envelope(1, op).Bytes())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestParseSearchRequest_Basic(t *testing.T) {
	in := &SearchRequest{
		MessageID:  2,
		BaseObject: "dc=example,dc=com",
		Scope:      ScopeWholeSubtree,
		SizeLimit:  10,
		TimeLimit:  30,
		Attributes: []string{"cn", "objectClass"},
	}

	op, err := decode(t, in.Packet().Bytes())
	require.NoError(t, err)

	req, ok := op.(*SearchRequest)
	require.True(t, ok, "got %T", op)
	assert.Equal(t, 2, req.ID())
	assert.Equal(t, "dc=example,dc=com", req.BaseObject)
	assert.Equal(t, ScopeWholeSubtree, req.Scope)
	assert.Equal(t, 10, req.SizeLimit)
	assert.Equal(t, 30, req.TimeLimit)
	assert.False(t, req.TypesOnly)
	assert.Equal(t, []string{"cn", "objectClass"}, req.Attributes)
	require.NotNil(t, req.Filter)
	assert.Equal(t, ber.ClassContext, req.Filter.ClassType)
	assert.Equal(t, ber.Tag(7), req.Filter.Tag)
}

func TestParseSearchRequest_InvalidScope(t *testing.T) {
	in := &SearchRequest{MessageID: 2, BaseObject: "dc=example,dc=com", Scope: SearchScope(9)}

	_, err := decode(t, in.Packet().Bytes())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestParseWhoAmIRequest(t *testing.T) {
	in := &WhoAmIRequest{MessageID: 3}

	op, err := decode(t, in.Packet().Bytes())
	require.NoError(t, err)
	assert.Equal(t, in, op)
}

func TestParseExtendedRequest_UnknownOID(t *testing.T) {
	op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationExtendedRequest, nil, "Extended Request")
	op.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, contextTagRequestName, "1.3.6.1.4.1.1466.20037", "StartTLS"))

	_, err := decode(t, envelope(4, op).Bytes())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestParseWhoAmIRequest_RequestValue(t *testing.T) {
	build := func(value string) []byte {
		op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationExtendedRequest, nil, "Extended Request")
		op.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, contextTagRequestName, WhoAmIOID, "Request Name"))
		op.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, contextTagRequestValue, value, "Request Value"))
		return envelope(7, op).Bytes()
	}

	op, err := decode(t, build(""))
	require.NoError(t, err)
	assert.Equal(t, &WhoAmIRequest{MessageID: 7}, op)

	_, err = decode(t, build("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestParseUnbindRequest(t *testing.T) {
	in := &UnbindRequest{MessageID: 5}

	op, err := decode(t, in.Packet().Bytes())
	require.NoError(t, err)
	assert.Equal(t, in, op)
}

func TestParseOperation_Unsupported(t *testing.T) {
	del := ber.NewString(ber.ClassApplication, ber.TypePrimitive, ApplicationDelRequest, "cn=x,dc=example,dc=com", "Del Request")

	_, err := decode(t, envelope(6, del).Bytes())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Contains(t, err.Error(), "DelRequest")
}

func TestParseOperation_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not a sequence", []byte{0x04, 0x03, 'a', 'b', 'c'}},
		{"truncated", []byte{0x30, 0x10, 0x02, 0x01}},
		{"missing protocolOp", []byte{0x30, 0x03, 0x02, 0x01, 0x01}},
		{"universal protocolOp", []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x04, 0x01, 'x'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDecode), "got %v", err)
		})
	}
}

func TestDecoder_EOF(t *testing.T) {
	_, err := decode(t, nil)
	assert.Equal(t, io.EOF, err)
}

func TestDecoder_MessageTooLarge(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"declared length over limit", []byte{0x30, 0x84, 0x01, 0x00, 0x00, 0x01}},
		{"five length octets", []byte{0x30, 0x85, 0x01, 0x00, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMessageTooLarge), "got %v", err)
			assert.True(t, errors.Is(err, ErrDecode))
		})
	}
}

func TestDecoder_OversizedBind(t *testing.T) {
	req := &BindRequest{MessageID: 1, Version: 3, Name: "cn=a", Password: strings.Repeat("a", MaxMessageSize)}

	_, err := decode(t, req.Packet().Bytes())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMessageTooLarge), "got %v", err)
}

func TestDecoder_LargeBindWithinLimit(t *testing.T) {
	req := &BindRequest{MessageID: 1, Version: 3, Name: "cn=a", Password: strings.Repeat("a", 1<<20)}

	op, err := decode(t, req.Packet().Bytes())
	require.NoError(t, err)
	assert.Equal(t, req, op)
}

func TestDecoder_IndefiniteLength(t *testing.T) {
	_, err := decode(t, []byte{0x30, 0x80, 0x02, 0x01, 0x01, 0x00, 0x00})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.False(t, errors.Is(err, ErrMessageTooLarge))
}

func TestDecoder_TruncatedHeader(t *testing.T) {
	_, err := decode(t, []byte{0x30})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestDecoder_Sequence(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.WriteOperation(&BindRequest{MessageID: 1, Version: 3, Name: "cn=a", Password: "b"}))
	require.NoError(t, enc.WriteOperation(&WhoAmIRequest{MessageID: 2}))
	require.NoError(t, enc.WriteOperation(&UnbindRequest{MessageID: 3}))
	require.NoError(t, enc.Flush())

	dec := NewDecoder(&buf)
	var ids []int
	for {
		op, err := dec.ReadMessage()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		ids = append(ids, op.ID())
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}
