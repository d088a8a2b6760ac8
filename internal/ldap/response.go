package ldap

import (
	ber "github.com/go-asn1-ber/asn1-ber"
)

// Response is one protocol message sent by the server. The set of
// implementations is closed: BindResponse, SearchResultEntry,
// SearchResultDone, WhoAmIResponse and DisconnectionNotice.
type Response interface {
	// ID returns the message ID of the request this response answers.
	ID() int
	// Type returns the protocol operation carried by the response.
	Type() OperationType
	// Packet encodes the response as a complete LDAPMessage.
	Packet() *ber.Packet

	isResponse()
}

// Result holds the LDAPResult components shared by most responses.
// LDAPResult ::= SEQUENCE {
//
//	resultCode         ENUMERATED,
//	matchedDN          LDAPDN,
//	diagnosticMessage  LDAPString,
//	referral           [3] Referral OPTIONAL
//
// }
type Result struct {
	Code              ResultCode
	MatchedDN         string
	DiagnosticMessage string
}

func (r Result) appendTo(op *ber.Packet) {
	op.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(r.Code), "Result Code"))
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.MatchedDN, "Matched DN"))
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.DiagnosticMessage, "Diagnostic Message"))
}

// BindResponse ::= [APPLICATION 1] SEQUENCE {
//
//	COMPONENTS OF LDAPResult,
//	serverSaslCreds    [7] OCTET STRING OPTIONAL
//
// }
type BindResponse struct {
	MessageID int
	Result
}

// NewBindResponse answers req with the given result code.
func NewBindResponse(req *BindRequest, code ResultCode) *BindResponse {
	return &BindResponse{MessageID: req.MessageID, Result: Result{Code: code}}
}

func (r *BindResponse) ID() int             { return r.MessageID }
func (r *BindResponse) Type() OperationType { return OperationType(ApplicationBindResponse) }
func (r *BindResponse) isResponse()         {}

// Packet encodes the bind response.
func (r *BindResponse) Packet() *ber.Packet {
	op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationBindResponse, nil, "Bind Response")
	r.Result.appendTo(op)
	return envelope(r.MessageID, op)
}

// SearchResultEntry ::= [APPLICATION 4] SEQUENCE {
//
//	objectName      LDAPDN,
//	attributes      PartialAttributeList
//
// }
type SearchResultEntry struct {
	MessageID  int
	DN         string
	Attributes []Attribute
}

// NewSearchResultEntry answers req with one entry.
func NewSearchResultEntry(req *SearchRequest, dn string, attrs []Attribute) *SearchResultEntry {
	return &SearchResultEntry{MessageID: req.MessageID, DN: dn, Attributes: attrs}
}

func (r *SearchResultEntry) ID() int             { return r.MessageID }
func (r *SearchResultEntry) Type() OperationType { return OperationType(ApplicationSearchResultEntry) }
func (r *SearchResultEntry) isResponse()         {}

// Packet encodes the search result entry.
func (r *SearchResultEntry) Packet() *ber.Packet {
	op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationSearchResultEntry, nil, "Search Result Entry")
	op.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, r.DN, "Object Name"))

	attrs := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Attributes")
	for _, attr := range r.Attributes {
		partial := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Partial Attribute")
		partial.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, attr.Type, "Type"))
		vals := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSet, nil, "Values")
		for _, v := range attr.Values {
			vals.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, v, "Value"))
		}
		partial.AppendChild(vals)
		attrs.AppendChild(partial)
	}
	op.AppendChild(attrs)
	return envelope(r.MessageID, op)
}

// SearchResultDone ::= [APPLICATION 5] LDAPResult
type SearchResultDone struct {
	MessageID int
	Result
}

// NewSearchResultDone terminates the answer to req.
func NewSearchResultDone(req *SearchRequest, code ResultCode, diagnostic string) *SearchResultDone {
	return &SearchResultDone{
		MessageID: req.MessageID,
		Result:    Result{Code: code, DiagnosticMessage: diagnostic},
	}
}

func (r *SearchResultDone) ID() int             { return r.MessageID }
func (r *SearchResultDone) Type() OperationType { return OperationType(ApplicationSearchResultDone) }
func (r *SearchResultDone) isResponse()         {}

// Packet encodes the search done marker.
func (r *SearchResultDone) Packet() *ber.Packet {
	op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationSearchResultDone, nil, "Search Result Done")
	r.Result.appendTo(op)
	return envelope(r.MessageID, op)
}

// WhoAmIResponse is the extended response to a Who Am I request. Value holds
// the authorization identity.
// ExtendedResponse ::= [APPLICATION 24] SEQUENCE {
//
//	COMPONENTS OF LDAPResult,
//	responseName     [10] LDAPOID OPTIONAL,
//	responseValue    [11] OCTET STRING OPTIONAL
//
// }
type WhoAmIResponse struct {
	MessageID int
	Result
	Value string
}

// NewWhoAmIResponse answers req with a successful authzId.
func NewWhoAmIResponse(req *WhoAmIRequest, authzID string) *WhoAmIResponse {
	return &WhoAmIResponse{
		MessageID: req.MessageID,
		Result:    Result{Code: ResultSuccess},
		Value:     authzID,
	}
}

func (r *WhoAmIResponse) ID() int             { return r.MessageID }
func (r *WhoAmIResponse) Type() OperationType { return OperationType(ApplicationExtendedResponse) }
func (r *WhoAmIResponse) isResponse()         {}

// Packet encodes the Who Am I response.
func (r *WhoAmIResponse) Packet() *ber.Packet {
	op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationExtendedResponse, nil, "Extended Response")
	r.Result.appendTo(op)
	op.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, contextTagResponseValue, r.Value, "Response Value"))
	return envelope(r.MessageID, op)
}

// DisconnectionNotice is the unsolicited notification a server sends before
// dropping a connection (RFC 4511 Section 4.4.1). It always uses message ID 0.
type DisconnectionNotice struct {
	Result
}

// NewDisconnectionNotice builds a notice of disconnection.
func NewDisconnectionNotice(code ResultCode, message string) *DisconnectionNotice {
	return &DisconnectionNotice{Result: Result{Code: code, DiagnosticMessage: message}}
}

func (r *DisconnectionNotice) ID() int             { return 0 }
func (r *DisconnectionNotice) Type() OperationType { return OperationType(ApplicationExtendedResponse) }
func (r *DisconnectionNotice) isResponse()         {}

// Packet encodes the notice.
func (r *DisconnectionNotice) Packet() *ber.Packet {
	op := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationExtendedResponse, nil, "Extended Response")
	r.Result.appendTo(op)
	op.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, contextTagResponseName, NoticeOfDisconnectionOID, "Response Name"))
	return envelope(0, op)
}
