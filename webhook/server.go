package webhook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"

	"github.com/tpp-lora/lora-app-sheets/log"
)

// Server receives the Particle cloud webhook callbacks.
type Server struct {
	Bind           string
	MaxConnections int
	Handler        http.Handler
}

// Run serves webhook requests until the context is cancelled and then shuts the
// server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Bind)
	if err != nil {
		return fmt.Errorf("unable to listen on %v (%w)", s.Bind, err)
	}

	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if s.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.MaxConnections)
	}

	srv := &http.Server{
		Handler:      s.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errs := make(chan error, 1)

	go func() {
		log.Infof("Listening on %v", listener.Addr())

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}

		close(errs)
	}()

	select {
	case err := <-errs:
		return err

	case <-ctx.Done():
		log.Infof("Shutting down webhook server")

		shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return srv.Shutdown(shutdown)
	}
}
