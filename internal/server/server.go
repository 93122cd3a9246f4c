// Package server implements the static asset server: a listener on the
// configured port and a handler mapping request paths to files.
package server

import (
	"fmt"
	"net"
	"net/http"

	"golang.org/x/net/netutil"

	"github.com/f4ah6o/assetserve/internal/config"
	"github.com/f4ah6o/assetserve/internal/logging"
)

// ListenError indicates that the listener could not be bound. It is fatal to
// the process.
type ListenError struct {
	// Address is the address that was requested.
	Address string
	// Err is the underlying network error.
	Err error
}

// Error implements error.
func (e *ListenError) Error() string {
	return fmt.Sprintf("unable to listen on %q: %v", e.Address, e.Err)
}

// Unwrap returns the underlying network error.
func (e *ListenError) Unwrap() error {
	return e.Err
}

// Server couples an HTTP server with the asset handler.
type Server struct {
	config     *config.Config
	logger     *logging.Logger
	httpServer *http.Server
}

// New creates a server for the given configuration. The configuration must
// not be modified afterwards.
func New(cfg *config.Config, logger *logging.Logger) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		httpServer: &http.Server{
			Handler: NewHandler(cfg, logger),
		},
	}
}

// Listen binds a TCP listener on all interfaces at the configured port. The
// port is passed through unvalidated. Failures are returned as *ListenError.
func (s *Server) Listen() (net.Listener, error) {
	address := s.config.Address()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, &ListenError{Address: address, Err: err}
	}
	if s.config.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.config.MaxConnections)
	}
	return listener, nil
}

// Serve announces the bound port, whatever the log level, and serves requests from listener until it
// fails or the server is closed.
func (s *Server) Serve(listener net.Listener) error {
	port := s.config.Port
	if tcp, ok := listener.Addr().(*net.TCPAddr); ok {
		port = fmt.Sprint(tcp.Port)
	}
	s.logger.Noticef("Server running on port: %s", port)
	s.logger.Debugf("Serving assets from %s, entry point %s", s.config.AssetDir, s.config.EntryFile)
	if s.config.MaxConnections > 0 {
		s.logger.Debugf("Accepting at most %d simultaneous connections", s.config.MaxConnections)
	}

	return s.httpServer.Serve(listener)
}

// ListenAndServe binds the listener and serves forever. It only returns on
// error, a *ListenError if the port could not be bound.
func (s *Server) ListenAndServe() error {
	listener, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Close immediately closes the listener and all connections.
func (s *Server) Close() error {
	return s.httpServer.Close()
}
