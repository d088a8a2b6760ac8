// Package ldap implements the subset of the LDAP wire protocol (RFC 4511)
// served by lldap: simple bind, search, unbind and the Who Am I extended
// operation (RFC 4532).
//
// BER framing is delegated to github.com/go-asn1-ber/asn1-ber; this package
// maps BER packets to typed operations and responses.
//
// # Message Structure
//
// All LDAP messages follow the LDAPMessage envelope structure:
//
//	LDAPMessage ::= SEQUENCE {
//	    messageID       MessageID,
//	    protocolOp      CHOICE { ... },
//	    controls        [0] Controls OPTIONAL
//	}
//
// # Reading Requests
//
// A Decoder yields one Operation per message:
//
//	dec := ldap.NewDecoder(conn)
//	op, err := dec.ReadMessage()
//	switch {
//	case errors.Is(err, io.EOF):
//	    // peer closed the connection between messages
//	case errors.Is(err, ldap.ErrDecode):
//	    // malformed or unsupported request
//	}
//	switch req := op.(type) {
//	case *ldap.BindRequest:
//	    // req.Name, req.Password
//	case *ldap.SearchRequest:
//	case *ldap.WhoAmIRequest:
//	case *ldap.UnbindRequest:
//	}
//
// # Writing Responses
//
// Responses are buffered by an Encoder until Flush:
//
//	enc := ldap.NewEncoder(conn)
//	enc.WriteResponse(ldap.NewBindResponse(req, ldap.ResultSuccess))
//	enc.Flush()
//
// A server that drops a client because of a protocol violation first sends
// ldap.NewDisconnectionNotice(ldap.ResultOther, "Internal Server Error").
//
// # References
//
//   - RFC 4511: LDAP Protocol
//   - RFC 4532: LDAP "Who am I?" Operation
package ldap
