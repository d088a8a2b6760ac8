package ldap

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// LDAP protocol operation tags (APPLICATION class)
// Per RFC 4511 Section 4.2
const (
	ApplicationBindRequest       ber.Tag = 0  // [APPLICATION 0]
	ApplicationBindResponse      ber.Tag = 1  // [APPLICATION 1]
	ApplicationUnbindRequest     ber.Tag = 2  // [APPLICATION 2]
	ApplicationSearchRequest     ber.Tag = 3  // [APPLICATION 3]
	ApplicationSearchResultEntry ber.Tag = 4  // [APPLICATION 4]
	ApplicationSearchResultDone  ber.Tag = 5  // [APPLICATION 5]
	ApplicationModifyRequest     ber.Tag = 6  // [APPLICATION 6]
	ApplicationAddRequest        ber.Tag = 8  // [APPLICATION 8]
	ApplicationDelRequest        ber.Tag = 10 // [APPLICATION 10]
	ApplicationModifyDNRequest   ber.Tag = 12 // [APPLICATION 12]
	ApplicationCompareRequest    ber.Tag = 14 // [APPLICATION 14]
	ApplicationAbandonRequest    ber.Tag = 16 // [APPLICATION 16]
	ApplicationExtendedRequest   ber.Tag = 23 // [APPLICATION 23]
	ApplicationExtendedResponse  ber.Tag = 24 // [APPLICATION 24]
)

// Context-specific tags used inside operations.
const (
	// contextTagSimpleAuth is the [0] simple choice of AuthenticationChoice.
	contextTagSimpleAuth ber.Tag = 0
	// contextTagSASLAuth is the [3] sasl choice of AuthenticationChoice.
	contextTagSASLAuth ber.Tag = 3
	// contextTagRequestName is requestName [0] of ExtendedRequest.
	contextTagRequestName ber.Tag = 0
	// contextTagRequestValue is requestValue [1] of ExtendedRequest.
	contextTagRequestValue ber.Tag = 1
	// contextTagResponseName is responseName [10] of ExtendedResponse.
	contextTagResponseName ber.Tag = 10
	// contextTagResponseValue is responseValue [11] of ExtendedResponse.
	contextTagResponseValue ber.Tag = 11
)

// Object identifiers of the extended operations this package knows about.
const (
	// WhoAmIOID is the OID for the Who Am I extended operation (RFC 4532).
	WhoAmIOID = "1.3.6.1.4.1.4203.1.11.3"
	// NoticeOfDisconnectionOID identifies an unsolicited disconnection notice
	// (RFC 4511 Section 4.4.1).
	NoticeOfDisconnectionOID = "1.3.6.1.4.1.1466.20036"
)

// Message ID bounds per RFC 4511: MessageID ::= INTEGER (0 .. maxInt)
const (
	MinMessageID = 0
	MaxMessageID = 2147483647
)

// ProtocolVersion is the only LDAP version accepted in bind requests.
const ProtocolVersion = 3

// OperationType represents the type of LDAP operation
type OperationType int

// String returns the string representation of the operation type
func (o OperationType) String() string {
	switch ber.Tag(o) {
	case ApplicationBindRequest:
		return "BindRequest"
	case ApplicationBindResponse:
		return "BindResponse"
	case ApplicationUnbindRequest:
		return "UnbindRequest"
	case ApplicationSearchRequest:
		return "SearchRequest"
	case ApplicationSearchResultEntry:
		return "SearchResultEntry"
	case ApplicationSearchResultDone:
		return "SearchResultDone"
	case ApplicationModifyRequest:
		return "ModifyRequest"
	case ApplicationAddRequest:
		return "AddRequest"
	case ApplicationDelRequest:
		return "DelRequest"
	case ApplicationModifyDNRequest:
		return "ModifyDNRequest"
	case ApplicationCompareRequest:
		return "CompareRequest"
	case ApplicationAbandonRequest:
		return "AbandonRequest"
	case ApplicationExtendedRequest:
		return "ExtendedRequest"
	case ApplicationExtendedResponse:
		return "ExtendedResponse"
	default:
		return fmt.Sprintf("Unknown(%d)", o)
	}
}

// SearchScope defines the scope of a search operation.
type SearchScope int

const (
	ScopeBaseObject   SearchScope = 0
	ScopeSingleLevel  SearchScope = 1
	ScopeWholeSubtree SearchScope = 2
)

// String returns the string representation of the search scope.
func (s SearchScope) String() string {
	switch s {
	case ScopeBaseObject:
		return "base"
	case ScopeSingleLevel:
		return "one"
	case ScopeWholeSubtree:
		return "sub"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Attribute is a partial attribute returned in a search result entry.
type Attribute struct {
	Type   string
	Values []string
}
