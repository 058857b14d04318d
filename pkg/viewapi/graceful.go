package viewapi

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-pathview/pkg/logging"
)

// DefaultShutdownTimeout bounds connection draining
const DefaultShutdownTimeout = 10 * time.Second

// ReloadFunc is called on SIGHUP
type ReloadFunc func(ctx context.Context) error

// GracefulServer wraps an HTTP server with signal-driven graceful shutdown
type GracefulServer struct {
	server          *http.Server
	logger          logging.Logger
	shutdownTimeout time.Duration
	shutdownCh      chan struct{}
	shutdownOnce    sync.Once
	shutdownErr     error

	reloadMu sync.RWMutex
	reloadFn ReloadFunc

	tlsConfig *tls.Config
}

// NewGracefulServer creates a new graceful HTTP server
func NewGracefulServer(addr string, handler http.Handler, shutdownTimeout time.Duration, logger logging.Logger) *GracefulServer {
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger:          logging.OrNop(logger).With(logging.Component("http")),
		shutdownTimeout: shutdownTimeout,
		shutdownCh:      make(chan struct{}),
	}
}

// SetTLSConfig makes Serve terminate TLS. Call before serving; nil serves plain HTTP.
func (gs *GracefulServer) SetTLSConfig(tc *tls.Config) {
	gs.tlsConfig = tc
}

// Serve accepts connections on ln until ctx is cancelled, SIGINT or SIGTERM
// arrives, or Shutdown is called. SIGHUP runs the reload function.
func (gs *GracefulServer) Serve(ctx context.Context, ln net.Listener) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go gs.watch(ctx, sigCh)

	if gs.tlsConfig != nil {
		ln = tls.NewListener(ln, gs.tlsConfig)
	}
	gs.logger.Info("serving",
		logging.String("addr", ln.Addr().String()),
		logging.Bool("tls", gs.tlsConfig != nil))
	if err := gs.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-gs.shutdownCh
	return gs.shutdownErr
}

// ListenAndServe listens on the configured address and serves
func (gs *GracefulServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}
	return gs.Serve(ctx, ln)
}

func (gs *GracefulServer) watch(ctx context.Context, sigCh <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			_ = gs.Shutdown()
			return
		case <-gs.shutdownCh:
			return
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				gs.logger.Info("reload requested")
				if err := gs.Reload(ctx); err != nil {
					gs.logger.Warn("reload failed", logging.Error(err))
				}
				continue
			}
			gs.logger.Info("shutdown signal", logging.String("signal", sig.String()))
			_ = gs.Shutdown()
			return
		}
	}
}

// Shutdown drains connections within the shutdown timeout. Safe to call more
// than once; later calls return the first result.
func (gs *GracefulServer) Shutdown() error {
	gs.shutdownOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), gs.shutdownTimeout)
		defer cancel()

		gs.logger.Info("initiating graceful shutdown", logging.Duration("timeout", gs.shutdownTimeout))
		if err := gs.server.Shutdown(ctx); err != nil {
			gs.shutdownErr = err
			gs.logger.Error("shutdown failed", logging.Error(err))
		} else {
			gs.logger.Info("shutdown complete")
		}
		close(gs.shutdownCh)
	})
	<-gs.shutdownCh
	return gs.shutdownErr
}

// IsShuttingDown returns true once shutdown has completed
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// OnShutdown registers fn to run when shutdown starts, so long-lived
// handlers can return before the drain deadline
func (gs *GracefulServer) OnShutdown(fn func()) {
	gs.server.RegisterOnShutdown(fn)
}

// SetReloadFunc sets the function to call on SIGHUP
func (gs *GracefulServer) SetReloadFunc(fn ReloadFunc) {
	gs.reloadMu.Lock()
	defer gs.reloadMu.Unlock()
	gs.reloadFn = fn
}

// Reload runs the reload function, if any
func (gs *GracefulServer) Reload(ctx context.Context) error {
	gs.reloadMu.RLock()
	fn := gs.reloadFn
	gs.reloadMu.RUnlock()

	if fn == nil {
		return nil
	}
	return fn(ctx)
}
