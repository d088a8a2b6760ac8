package ldap

import (
	ber "github.com/go-asn1-ber/asn1-ber"
)

// Operation is a decoded client request. The set of implementations is
// closed: BindRequest, SearchRequest, WhoAmIRequest and UnbindRequest.
type Operation interface {
	// ID returns the message ID the request arrived with.
	ID() int
	// Type returns the protocol operation carried by the request.
	Type() OperationType
	// Packet encodes the request as a complete LDAPMessage.
	Packet() *ber.Packet

	isOperation()
}

// BindRequest represents a simple LDAP Bind request.
// Per RFC 4511 Section 4.2:
// BindRequest ::= [APPLICATION 0] SEQUENCE {
//
//	version                 INTEGER (1 ..  127),
//	name                    LDAPDN,
//	authentication          AuthenticationChoice
//
// }
type BindRequest struct {
	MessageID int
	Version   int
	Name      string
	Password  string
}

// IsAnonymous returns true if this is an anonymous bind request.
func (r *BindRequest) IsAnonymous() bool {
	return r.Name == "" && r.Password == ""
}

func (r *BindRequest) ID() int             { return r.MessageID }
func (r *BindRequest) Type() OperationType { return OperationType(ApplicationBindRequest) }
func (r *BindRequest) isOperation()        {}

// Packet encodes the bind request.
func (r *BindRequest) Packet() *ber.Packet {
	op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationBindRequest, nil, "Bind Request")
	op.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(r.Version), "Version"))
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.Name, "Name"))
	op.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, contextTagSimpleAuth, r.Password, "Simple Password"))
	return envelope(r.MessageID, op)
}

// SearchRequest represents an LDAP Search request.
// Per RFC 4511 Section 4.5.1:
// SearchRequest ::= [APPLICATION 3] SEQUENCE {
//
//	baseObject      LDAPDN,
//	scope           ENUMERATED,
//	derefAliases    ENUMERATED,
//	sizeLimit       INTEGER (0 ..  maxInt),
//	timeLimit       INTEGER (0 ..  maxInt),
//	typesOnly       BOOLEAN,
//	filter          Filter,
//	attributes      AttributeSelection
//
// }
//
// The filter is kept as the raw BER element; evaluating it is up to the
// directory answering the search.
type SearchRequest struct {
	MessageID    int
	BaseObject   string
	Scope        SearchScope
	DerefAliases int
	SizeLimit    int
	TimeLimit    int
	TypesOnly    bool
	Filter       *ber.Packet
	Attributes   []string
}

func (r *SearchRequest) ID() int             { return r.MessageID }
func (r *SearchRequest) Type() OperationType { return OperationType(ApplicationSearchRequest) }
func (r *SearchRequest) isOperation()        {}

// Packet encodes the search request. A nil filter is sent as (objectClass=*).
func (r *SearchRequest) Packet() *ber.Packet {
	op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationSearchRequest, nil, "Search Request")
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.BaseObject, "Base DN"))
	op.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(r.Scope), "Scope"))
	op.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(r.DerefAliases), "Deref Aliases"))
	op.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(r.SizeLimit), "Size Limit"))
	op.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(r.TimeLimit), "Time Limit"))
	op.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, r.TypesOnly, "Types Only"))
	filter := r.Filter
	if filter == nil {
		filter = PresentFilter("objectClass")
	}
	op.AppendChild(filter)
	attrs := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Attributes")
	for _, attr := range r.Attributes {
		attrs.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, attr, "Attribute"))
	}
	op.AppendChild(attrs)
	return envelope(r.MessageID, op)
}

// PresentFilter builds the present filter (attr=*), context tag [7].
func PresentFilter(attr string) *ber.Packet {
	return ber.NewString(ber.ClassContext, ber.TypePrimitive, 7, attr, "Present")
}

// WhoAmIRequest is the Who Am I extended request (RFC 4532).
// ExtendedRequest ::= [APPLICATION 23] SEQUENCE {
//
//	requestName      [0] LDAPOID,
//	requestValue     [1] OCTET STRING OPTIONAL
//
// }
type WhoAmIRequest struct {
	MessageID int
}

func (r *WhoAmIRequest) ID() int             { return r.MessageID }
func (r *WhoAmIRequest) Type() OperationType { return OperationType(ApplicationExtendedRequest) }
func (r *WhoAmIRequest) isOperation()        {}

// Packet encodes the Who Am I request.
func (r *WhoAmIRequest) Packet() *ber.Packet {
	op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationExtendedRequest, nil, "Extended Request")
	op.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, contextTagRequestName, WhoAmIOID, "Request Name"))
	return envelope(r.MessageID, op)
}

// UnbindRequest represents an LDAP Unbind request.
// Per RFC 4511 Section 4.3:
// UnbindRequest ::= [APPLICATION 2] NULL
type UnbindRequest struct {
	MessageID int
}

func (r *UnbindRequest) ID() int             { return r.MessageID }
func (r *UnbindRequest) Type() OperationType { return OperationType(ApplicationUnbindRequest) }
func (r *UnbindRequest) isOperation()        {}

// Packet encodes the unbind request.
func (r *UnbindRequest) Packet() *ber.Packet {
	op := ber.Encode(ber.ClassApplication, ber.TypePrimitive, ApplicationUnbindRequest, nil, "Unbind Request")
	return envelope(r.MessageID, op)
}

// ParseOperation converts a decoded LDAPMessage packet into an Operation.
// Per RFC 4511 Section 4.1.1:
// LDAPMessage ::= SEQUENCE {
//
//	messageID       MessageID,
//	protocolOp      CHOICE { ... },
//	controls        [0] Controls OPTIONAL
//
// }
//
// Controls are accepted and ignored. Operations other than bind, search,
// unbind and the Who Am I extended operation are reported as decode errors.
func ParseOperation(p *ber.Packet) (Operation, error) {
	if p == nil {
		return nil, decodeError("empty message")
	}
	if p.ClassType != ber.ClassUniversal || p.TagType != ber.TypeConstructed || p.Tag != ber.TagSequence {
		return nil, decodeError("expected SEQUENCE for LDAPMessage")
	}
	if len(p.Children) < 2 {
		return nil, decodeError("LDAPMessage has %d elements, want at least 2", len(p.Children))
	}

	msgID, err := readInt(p.Children[0], ber.TagInteger, "messageID")
	if err != nil {
		return nil, err
	}

	op := p.Children[1]
	if op.ClassType != ber.ClassApplication {
		return nil, decodeError("protocolOp must have APPLICATION tag class")
	}

	switch op.Tag {
	case ApplicationBindRequest:
		return parseBindRequest(msgID, op)
	case ApplicationSearchRequest:
		return parseSearchRequest(msgID, op)
	case ApplicationUnbindRequest:
		return &UnbindRequest{MessageID: msgID}, nil
	case ApplicationExtendedRequest:
		return parseExtendedRequest(msgID, op)
	default:
		return nil, decodeError("unsupported operation %s", OperationType(op.Tag))
	}
}

func parseBindRequest(msgID int, op *ber.Packet) (Operation, error) {
	if op.TagType != ber.TypeConstructed || len(op.Children) != 3 {
		return nil, decodeError("malformed bind request")
	}
	version, err := readInt(op.Children[0], ber.TagInteger, "bind version")
	if err != nil {
		return nil, err
	}
	if version != ProtocolVersion {
		return nil, decodeError("unsupported protocol version %d", version)
	}
	name, err := readString(op.Children[1], "bind name")
	if err != nil {
		return nil, err
	}

	auth := op.Children[2]
	if auth.ClassType != ber.ClassContext {
		return nil, decodeError("bind authentication must be context-specific")
	}
	switch auth.Tag {
	case contextTagSimpleAuth:
		return &BindRequest{
			MessageID: msgID,
			Version:   version,
			Name:      name,
			Password:  contextString(auth),
		}, nil
	case contextTagSASLAuth:
		return nil, decodeError("SASL bind is not supported")
	default:
		return nil, decodeError("unknown authentication choice [%d]", auth.Tag)
	}
}

func parseSearchRequest(msgID int, op *ber.Packet) (Operation, error) {
	if op.TagType != ber.TypeConstructed || len(op.Children) != 8 {
		return nil, decodeError("malformed search request")
	}
	req := &SearchRequest{MessageID: msgID}

	var err error
	if req.BaseObject, err = readString(op.Children[0], "baseObject"); err != nil {
		return nil, err
	}
	scope, err := readInt(op.Children[1], ber.TagEnumerated, "scope")
	if err != nil {
		return nil, err
	}
	if scope < int(ScopeBaseObject) || scope > int(ScopeWholeSubtree) {
		return nil, decodeError("invalid search scope %d", scope)
	}
	req.Scope = SearchScope(scope)
	if req.DerefAliases, err = readInt(op.Children[2], ber.TagEnumerated, "derefAliases"); err != nil {
		return nil, err
	}
	if req.SizeLimit, err = readInt(op.Children[3], ber.TagInteger, "sizeLimit"); err != nil {
		return nil, err
	}
	if req.TimeLimit, err = readInt(op.Children[4], ber.TagInteger, "timeLimit"); err != nil {
		return nil, err
	}
	typesOnly, ok := op.Children[5].Value.(bool)
	if !ok {
		return nil, decodeError("typesOnly is not a BOOLEAN")
	}
	req.TypesOnly = typesOnly

	if op.Children[6].ClassType != ber.ClassContext {
		return nil, decodeError("filter must be context-specific")
	}
	req.Filter = op.Children[6]

	attrs := op.Children[7]
	if attrs.Tag != ber.TagSequence || attrs.TagType != ber.TypeConstructed {
		return nil, decodeError("attributes must be a SEQUENCE")
	}
	for _, child := range attrs.Children {
		attr, err := readString(child, "attribute selector")
		if err != nil {
			return nil, err
		}
		req.Attributes = append(req.Attributes, attr)
	}
	return req, nil
}

func parseExtendedRequest(msgID int, op *ber.Packet) (Operation, error) {
	if op.TagType != ber.TypeConstructed || len(op.Children) == 0 {
		return nil, decodeError("malformed extended request")
	}
	name := op.Children[0]
	if name.ClassType != ber.ClassContext || name.Tag != contextTagRequestName {
		return nil, decodeError("expected context tag [0] for requestName")
	}
	oid := contextString(name)
	if oid != WhoAmIOID {
		return nil, decodeError("unsupported extended operation %q", oid)
	}
	// Who Am I carries no value; an empty requestValue is tolerated.
	for _, child := range op.Children[1:] {
		if child.ClassType != ber.ClassContext || child.Tag != contextTagRequestValue {
			return nil, decodeError("unexpected element in extended request")
		}
		if contextString(child) != "" {
			return nil, decodeError("who am i request must not carry a value")
		}
	}
	return &WhoAmIRequest{MessageID: msgID}, nil
}

// readInt reads a universal INTEGER or ENUMERATED element.
func readInt(p *ber.Packet, tag ber.Tag, field string) (int, error) {
	if p.ClassType != ber.ClassUniversal || p.Tag != tag {
		return 0, decodeError("%s has unexpected tag %d", field, p.Tag)
	}
	v, ok := p.Value.(int64)
	if !ok {
		return 0, decodeError("%s is not an integer", field)
	}
	if v < MinMessageID || v > MaxMessageID {
		return 0, decodeError("%s value %d out of range", field, v)
	}
	return int(v), nil
}

// readString reads a universal OCTET STRING element.
func readString(p *ber.Packet, field string) (string, error) {
	if p.ClassType != ber.ClassUniversal || p.Tag != ber.TagOctetString {
		return "", decodeError("%s is not an OCTET STRING", field)
	}
	if s, ok := p.Value.(string); ok {
		return s, nil
	}
	return p.Data.String(), nil
}

// contextString returns the raw content of a primitive context-specific
// element; the codec leaves those undecoded.
func contextString(p *ber.Packet) string {
	if p.Data == nil {
		return ""
	}
	return p.Data.String()
}

// envelope wraps a protocol operation in an LDAPMessage SEQUENCE.
func envelope(messageID int, op *ber.Packet) *ber.Packet {
	msg := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "LDAP Message")
	msg.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, int64(messageID), "MessageID"))
	msg.AppendChild(op)
	return msg
}
