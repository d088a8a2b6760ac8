package ldap

import "fmt"

// ResultCode represents an LDAP result code as defined in RFC 4511 Section 4.1.9.
type ResultCode int

// LDAP result codes per RFC 4511 Section 4.1.9. Only the codes this server
// can emit, plus the ones clients commonly log, are listed.
const (
	ResultSuccess                  ResultCode = 0
	ResultOperationsError          ResultCode = 1
	ResultProtocolError            ResultCode = 2
	ResultTimeLimitExceeded        ResultCode = 3
	ResultSizeLimitExceeded        ResultCode = 4
	ResultAuthMethodNotSupported   ResultCode = 7
	ResultNoSuchObject             ResultCode = 32
	ResultInvalidDNSyntax          ResultCode = 34
	ResultInvalidCredentials       ResultCode = 49
	ResultInsufficientAccessRights ResultCode = 50
	ResultBusy                     ResultCode = 51
	ResultUnavailable              ResultCode = 52
	ResultUnwillingToPerform       ResultCode = 53
	ResultOther                    ResultCode = 80
)

var resultCodeNames = map[ResultCode]string{
	ResultSuccess:                  "success",
	ResultOperationsError:          "operationsError",
	ResultProtocolError:            "protocolError",
	ResultTimeLimitExceeded:        "timeLimitExceeded",
	ResultSizeLimitExceeded:        "sizeLimitExceeded",
	ResultAuthMethodNotSupported:   "authMethodNotSupported",
	ResultNoSuchObject:             "noSuchObject",
	ResultInvalidDNSyntax:          "invalidDNSyntax",
	ResultInvalidCredentials:       "invalidCredentials",
	ResultInsufficientAccessRights: "insufficientAccessRights",
	ResultBusy:                     "busy",
	ResultUnavailable:              "unavailable",
	ResultUnwillingToPerform:       "unwillingToPerform",
	ResultOther:                    "other",
}

// String returns the RFC 4511 name of the result code.
func (r ResultCode) String() string {
	if name, ok := resultCodeNames[r]; ok {
		return name
	}
	return fmt.Sprintf("resultCode(%d)", int(r))
}

// IsSuccess reports whether the result code indicates success.
func (r ResultCode) IsSuccess() bool {
	return r == ResultSuccess
}
