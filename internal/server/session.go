package server

import (
	"context"

	"github.com/KilimcininKorOglu/lldap/internal/backend"
	"github.com/KilimcininKorOglu/lldap/internal/ldap"
	"github.com/KilimcininKorOglu/lldap/internal/logging"
)

// Unauthenticated is the identity of a session that has not completed a
// successful bind.
const Unauthenticated = "Unauthenticated"

// Session holds the per-connection protocol state and turns operations into
// responses. A Session belongs to exactly one connection goroutine and is
// not safe for concurrent use.
type Session struct {
	identity  string
	backend   backend.Backend
	directory backend.Directory
	logger    logging.Logger
}

// NewSession creates a session in the unauthenticated state. A nil logger
// discards output.
func NewSession(be backend.Backend, dir backend.Directory, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		identity:  Unauthenticated,
		backend:   be,
		directory: dir,
		logger:    logger,
	}
}

// Identity returns the DN of the last successful bind, or Unauthenticated.
func (s *Session) Identity() string {
	return s.identity
}

// Dispatch executes op and returns the responses to send in order. ok is
// false when the connection must be closed without sending anything.
func (s *Session) Dispatch(ctx context.Context, op ldap.Operation) (responses []ldap.Response, ok bool) {
	switch req := op.(type) {
	case *ldap.BindRequest:
		return []ldap.Response{s.bind(ctx, req)}, true
	case *ldap.SearchRequest:
		return s.search(ctx, req), true
	case *ldap.WhoAmIRequest:
		return []ldap.Response{ldap.NewWhoAmIResponse(req, "dn: "+s.identity)}, true
	case *ldap.UnbindRequest:
		s.logger.Debug("unbind request received", "message_id", req.MessageID)
		return nil, false
	default:
		s.logger.Error("no dispatcher for operation", "operation", op.Type().String())
		return nil, false
	}
}

func (s *Session) bind(ctx context.Context, req *ldap.BindRequest) ldap.Response {
	if err := s.backend.Bind(ctx, req.Name, req.Password); err != nil {
		s.logger.Info("bind failed",
			"message_id", req.MessageID,
			"dn", req.Name,
			"anonymous", req.IsAnonymous(),
			"error", err.Error())
		return ldap.NewBindResponse(req, ldap.ResultInvalidCredentials)
	}

	s.identity = req.Name
	s.logger.Info("bind succeeded",
		"message_id", req.MessageID,
		"dn", req.Name)
	return ldap.NewBindResponse(req, ldap.ResultSuccess)
}

func (s *Session) search(ctx context.Context, req *ldap.SearchRequest) []ldap.Response {
	var entries []*backend.Entry
	if s.directory != nil {
		var err error
		entries, err = s.directory.Search(ctx, req.BaseObject)
		if err != nil {
			s.logger.Error("search failed",
				"message_id", req.MessageID,
				"base_dn", req.BaseObject,
				"error", err.Error())
			return []ldap.Response{ldap.NewSearchResultDone(req, ldap.ResultOperationsError, "")}
		}
	}

	code := ldap.ResultSuccess
	if req.SizeLimit > 0 && len(entries) > req.SizeLimit {
		entries = entries[:req.SizeLimit]
		code = ldap.ResultSizeLimitExceeded
	}

	responses := make([]ldap.Response, 0, len(entries)+1)
	for _, entry := range entries {
		responses = append(responses, ldap.NewSearchResultEntry(req, entry.DN, toWireAttributes(entry, req.TypesOnly)))
	}
	responses = append(responses, ldap.NewSearchResultDone(req, code, ""))

	s.logger.Debug("search completed",
		"message_id", req.MessageID,
		"base_dn", req.BaseObject,
		"scope", req.Scope.String(),
		"entries", len(entries),
		"result", code.String())
	return responses
}

// toWireAttributes converts entry attributes for a SearchResultEntry.
// typesOnly drops the values.
func toWireAttributes(entry *backend.Entry, typesOnly bool) []ldap.Attribute {
	attrs := make([]ldap.Attribute, len(entry.Attributes))
	for i, attr := range entry.Attributes {
		attrs[i].Type = attr.Type
		if !typesOnly {
			attrs[i].Values = attr.Values
		}
	}
	return attrs
}
