package server

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/KilimcininKorOglu/lldap/internal/backend"
	"github.com/KilimcininKorOglu/lldap/internal/logging"
)

// Server errors.
var (
	// ErrNoBackend is returned by New when no backend was configured.
	ErrNoBackend = errors.New("server: backend is required")
	// ErrInvalidOption is returned by New for out-of-range option values.
	ErrInvalidOption = errors.New("server: invalid option")
)

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// Server accepts client connections and runs one Connection per client in
// its own goroutine.
type Server struct {
	backend        backend.Backend
	directory      backend.Directory
	logger         logging.Logger
	maxConnections int
	readTimeout    time.Duration
	writeTimeout   time.Duration

	active atomic.Int64
	wg     sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithBackend sets the backend used to authenticate binds. Required.
func WithBackend(be backend.Backend) Option {
	return func(s *Server) { s.backend = be }
}

// WithDirectory sets the entry source for searches. Defaults to a
// StaticDirectory holding backend.DefaultEntries.
func WithDirectory(dir backend.Directory) Option {
	return func(s *Server) { s.directory = dir }
}

// WithLogger sets the server logger. Defaults to a no-op logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMaxConnections limits the number of simultaneously served clients.
// Zero means unlimited.
func WithMaxConnections(n int) Option {
	return func(s *Server) { s.maxConnections = n }
}

// WithReadTimeout sets how long a connection may stay idle waiting for the
// next message. Zero disables the timeout.
func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) { s.readTimeout = d }
}

// WithWriteTimeout bounds writing one batch of responses. Zero disables the
// timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { s.writeTimeout = d }
}

// New creates a Server from the given options.
func New(opts ...Option) (*Server, error) {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}

	if s.backend == nil {
		return nil, ErrNoBackend
	}
	if s.maxConnections < 0 {
		return nil, errors.Wrapf(ErrInvalidOption, "max connections %d", s.maxConnections)
	}
	if s.readTimeout < 0 || s.writeTimeout < 0 {
		return nil, errors.Wrap(ErrInvalidOption, "timeouts must not be negative")
	}
	if s.directory == nil {
		s.directory = backend.NewStaticDirectory(backend.DefaultEntries()...)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return s, nil
}

// ListenAndServe listens on the TCP address addr and then calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or ln is closed.
// Cancelling ctx closes the listener and every active connection; Serve
// returns after all connection goroutines have finished. Errors of single
// connections are logged and never stop the accept loop.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })

	s.logger.Info("ldap server listening", "address", ln.Addr().String())

	defer func() {
		stop()
		cancel()
		_ = ln.Close()
		s.wg.Wait()
		s.logger.Info("ldap server stopped", "address", ln.Addr().String())
	}()

	var delay time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			delay = nextAcceptDelay(delay)
			s.logger.Warn("accept error", "error", err.Error(), "retry_in", delay.String())
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return nil
			}
		}
		delay = 0

		if s.maxConnections > 0 && s.active.Load() >= int64(s.maxConnections) {
			s.logger.Warn("connection limit reached, rejecting client",
				"client", nc.RemoteAddr().String(),
				"max_connections", s.maxConnections)
			_ = nc.Close()
			continue
		}

		s.active.Add(1)
		s.wg.Add(1)
		go s.handleConnection(ctx, nc)
	}
}

// handleConnection serves one client and isolates the accept loop from its
// failures.
func (s *Server) handleConnection(ctx context.Context, nc net.Conn) {
	defer s.wg.Done()
	defer s.active.Add(-1)

	c := NewConnection(nc, s)
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic in connection handler",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
			_ = c.Close()
		}
	}()

	if err := c.Serve(ctx); err != nil {
		c.logger.Warn("connection terminated with error",
			"client", c.RemoteAddr(),
			"error", err.Error())
	}
}

// ActiveConnections returns the number of clients currently being served.
func (s *Server) ActiveConnections() int {
	return int(s.active.Load())
}

func nextAcceptDelay(prev time.Duration) time.Duration {
	if prev == 0 {
		return minAcceptDelay
	}
	if prev *= 2; prev > maxAcceptDelay {
		return maxAcceptDelay
	}
	return prev
}
