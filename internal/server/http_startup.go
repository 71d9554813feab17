package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"resumatch/internal/observability"

	"golang.org/x/sync/errgroup"
)

// Start runs the API server, the Prometheus scrape server and the certificate
// watcher until ctx is canceled or one of them fails, then shuts all down.
func (s *Server) Start(ctx context.Context) error {
	httpServer := s.newHTTPServer()

	reloader, err := s.configureTLS(httpServer)
	if err != nil {
		return err
	}

	s.displayServerInfo(httpServer.TLSConfig != nil)

	g, gctx := errgroup.WithContext(ctx)
	servers := []*http.Server{httpServer}

	g.Go(func() error {
		s.Logger.Info("Starting HTTP server",
			"address", httpServer.Addr,
			"tls_enabled", httpServer.TLSConfig != nil)
		return listen(httpServer)
	})

	if mux := s.om.PrometheusMux(); mux != nil {
		promServer := observability.NewPrometheusServer(s.om.PrometheusAddr(), mux)
		servers = append(servers, promServer)
		g.Go(func() error {
			s.Logger.Info("Starting Prometheus metrics server", "address", promServer.Addr)
			return listen(promServer)
		})
	}

	if reloader != nil {
		g.Go(func() error { return reloader.Watch(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(servers)
	})

	return g.Wait()
}

func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
	}
}

// configureTLS attaches a TLS config for the server and mutual modes and
// returns a reloader when certificate files are watched.
func (s *Server) configureTLS(httpServer *http.Server) (*CertReloader, error) {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		return nil, nil
	case "server", "mutual":
	default:
		return nil, fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	var reloader *CertReloader
	if s.TLSConfig.WatchFiles && s.TLSConfig.UsesCertFiles() {
		var err error
		reloader, err = NewCertReloader(s.TLSConfig.CertFile, s.TLSConfig.KeyFile,
			s.TLSConfig.DebounceDelay, s.Logger, s.metrics)
		if err != nil {
			return nil, err
		}
	}

	tlsConfig, err := buildTLSConfig(s.TLSConfig, reloader)
	if err != nil {
		return nil, fmt.Errorf("failed to set up TLS: %w", err)
	}
	httpServer.TLSConfig = tlsConfig
	return reloader, nil
}

// listen serves until Shutdown; certificates already live in TLSConfig.
func listen(server *http.Server) error {
	var err error
	if server.TLSConfig != nil {
		err = server.ListenAndServeTLS("", "")
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server %s failed: %w", server.Addr, err)
	}
	return nil
}

func (s *Server) shutdown(servers []*http.Server) error {
	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}

	s.Logger.Info("Shutting down HTTP server...")
	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close", "address", srv.Addr)
			errs = append(errs, srv.Close())
		}
	}
	s.Logger.Info("Server shutdown completed")
	return stderrors.Join(errs...)
}
