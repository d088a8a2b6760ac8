package server

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/KilimcininKorOglu/lldap/internal/backend"
	"github.com/KilimcininKorOglu/lldap/internal/ldap"
	"github.com/KilimcininKorOglu/lldap/internal/logging"
)

// ErrTransport is matched by every error caused by the underlying network
// connection failing while a message was read or written.
var ErrTransport = errors.New("server: transport error")

// noticeTimeout bounds the best-effort write of a disconnection notice.
const noticeTimeout = 5 * time.Second

// TransportError records which step of the connection loop failed on the
// network connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "server: transport error: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ConnState is the position of a connection in its read/dispatch/write cycle.
type ConnState int32

// Connection states.
const (
	StateReading ConnState = iota
	StateDispatching
	StateWriting
	StateClosed
)

// String returns the state name.
func (s ConnState) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateDispatching:
		return "dispatching"
	case StateWriting:
		return "writing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Connection represents an individual client connection to the LDAP server.
// It reads one message at a time, hands it to its Session and writes the
// responses back before reading the next message.
type Connection struct {
	conn    net.Conn
	session *Session
	decoder *ldap.Decoder
	encoder *ldap.Encoder

	logger    logging.Logger
	requestID string
	startTime time.Time

	readTimeout  time.Duration
	writeTimeout time.Duration

	state     atomic.Int32
	closeOnce sync.Once
}

// NewConnection creates a new Connection for the given network connection.
// Backend, directory, logger and timeouts come from srv. With a nil srv the
// connection rejects every bind and serves the default entries.
func NewConnection(conn net.Conn, srv *Server) *Connection {
	requestID := logging.GenerateRequestID()

	c := &Connection{
		conn:      conn,
		decoder:   ldap.NewDecoder(conn),
		encoder:   ldap.NewEncoder(conn),
		requestID: requestID,
		startTime: time.Now(),
	}

	if srv == nil {
		c.logger = logging.NewNop()
		c.session = NewSession(backend.NewMemoryBackend(),
			backend.NewStaticDirectory(backend.DefaultEntries()...), c.logger)
		return c
	}

	c.logger = srv.logger.WithRequestID(requestID).WithFields("client", c.RemoteAddr())
	c.readTimeout = srv.readTimeout
	c.writeTimeout = srv.writeTimeout
	c.session = NewSession(srv.backend, srv.directory, c.logger)
	return c
}

// Serve runs the message loop until the client unbinds, the stream ends,
// an error occurs or ctx is cancelled. It returns nil for every orderly
// close. Decode failures are reported wrapping ldap.ErrDecode after a
// disconnection notice has been attempted; network failures wrap
// ErrTransport.
func (c *Connection) Serve(ctx context.Context) error {
	c.logger.Info("connection established")

	defer func() {
		c.Close()
		c.logger.Info("connection closed",
			"identity", c.session.Identity(),
			"duration_ms", time.Since(c.startTime).Milliseconds())
	}()

	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		c.setState(StateReading)
		if c.readTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		}

		op, err := c.decoder.ReadMessage()
		if err != nil {
			switch {
			case ctx.Err() != nil, errors.Is(err, io.EOF):
				return nil
			case errors.Is(err, ldap.ErrDecode):
				c.sendDisconnectionNotice()
				return err
			default:
				return &TransportError{Op: "read", Err: err}
			}
		}

		c.setState(StateDispatching)
		c.logger.Debug("request received",
			"message_id", op.ID(),
			"operation", op.Type().String())

		responses, ok := c.session.Dispatch(ctx, op)
		if !ok {
			return nil
		}

		c.setState(StateWriting)
		if err := c.writeResponses(responses); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// writeResponses encodes responses in order and flushes them as one batch.
func (c *Connection) writeResponses(responses []ldap.Response) error {
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}

	for _, resp := range responses {
		if err := c.encoder.WriteResponse(resp); err != nil {
			return &TransportError{Op: "write", Err: err}
		}
	}
	if err := c.encoder.Flush(); err != nil {
		return &TransportError{Op: "flush", Err: err}
	}
	return nil
}

// sendDisconnectionNotice tries once to tell the client that the connection
// is being dropped. Failures are logged and otherwise ignored.
func (c *Connection) sendDisconnectionNotice() {
	timeout := c.writeTimeout
	if timeout <= 0 {
		timeout = noticeTimeout
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))

	notice := ldap.NewDisconnectionNotice(ldap.ResultOther, "Internal Server Error")
	if err := c.encoder.WriteResponse(notice); err != nil {
		c.logger.Warn("failed to write disconnection notice", "error", err.Error())
		return
	}
	if err := c.encoder.Flush(); err != nil {
		c.logger.Warn("failed to flush disconnection notice", "error", err.Error())
	}
}

// Close closes the underlying network connection. It is safe to call more
// than once and from any goroutine.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.setState(StateClosed)
		err = c.conn.Close()
	})
	return err
}

// State returns the current position in the message loop.
func (c *Connection) State() ConnState {
	return ConnState(c.state.Load())
}

// setState moves to s unless the connection is already closed.
func (c *Connection) setState(s ConnState) {
	for {
		cur := c.state.Load()
		if ConnState(cur) == StateClosed {
			return
		}
		if c.state.CompareAndSwap(cur, int32(s)) {
			return
		}
	}
}

// Session returns the protocol session of this connection.
func (c *Connection) Session() *Session {
	return c.session
}

// RequestID returns the unique identifier used in this connection's logs.
func (c *Connection) RequestID() string {
	return c.requestID
}

// RemoteAddr returns the client address as a string.
func (c *Connection) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
