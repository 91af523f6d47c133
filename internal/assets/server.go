package assets

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"webpreview/pkg/models"
)

// BindError reports a failure to allocate the loopback listener.
type BindError struct {
	Err error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind preview listener: %v", e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Server serves the build artifacts of exactly one application over a
// loopback HTTP endpoint. It maps a fixed set of URL patterns onto the roots
// of the active BundleContext and rejects everything else.
type Server struct {
	log *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	httpSrv  *http.Server
	handle   *models.ServerHandle

	bmu    sync.RWMutex
	bundle *models.BundleContext
}

// NewServer creates an unbound asset server.
func NewServer(log *zap.Logger) *Server {
	return &Server{log: log}
}

// SetBundle replaces the bundle context requests are resolved against.
// Passing nil makes the server fail closed (404) on every path.
func (s *Server) SetBundle(b *models.BundleContext) {
	s.bmu.Lock()
	s.bundle = b
	s.bmu.Unlock()
}

func (s *Server) bundleCtx() *models.BundleContext {
	s.bmu.RLock()
	defer s.bmu.RUnlock()
	return s.bundle
}

// Bind allocates a loopback listener on an OS-assigned port. A listener left
// over from a previous session is closed first so only one is ever bound.
func (s *Server) Bind() (*models.ServerHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, &BindError{Err: err}
	}

	addr := l.Addr().(*net.TCPAddr)
	handle := &models.ServerHandle{
		ID:   uuid.New().String(),
		Addr: addr.IP.String(),
		Port: addr.Port,
		URL:  fmt.Sprintf("http://%s/", addr.String()),
	}

	s.listener = l
	s.handle = handle
	s.log.Debug("preview listener bound",
		zap.String("session", handle.ID),
		zap.Int("port", handle.Port),
	)

	return handle, nil
}

// Serve starts handling requests on the bound listener. It returns
// immediately; requests are handled concurrently until Shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return errors.New("serve called before bind")
	}

	srv := &http.Server{Handler: s.routes()}
	s.httpSrv = srv

	l := s.listener
	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			s.log.Error("preview server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Handle returns the active session handle, or nil when unbound.
func (s *Server) Handle() *models.ServerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Shutdown closes the listener and any in-flight connections immediately.
// In-flight requests are cut off rather than drained, matching the
// stop-now semantics of a preview session. Safe to call repeatedly and on a
// server that never bound.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *Server) closeLocked() {
	if s.httpSrv != nil {
		_ = s.httpSrv.Close()
		s.httpSrv = nil
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	s.handle = nil
}
