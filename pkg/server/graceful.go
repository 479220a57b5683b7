package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-faster/errors"

	"github.com/dd0wney/workpairs/pkg/logging"
)

// ConfigReloadFunc is a function that reloads configuration
type ConfigReloadFunc func() error

// GracefulServer wraps an HTTP server with graceful shutdown capabilities
type GracefulServer struct {
	server          *http.Server
	logger          logging.Logger
	shutdownTimeout time.Duration
	shutdownCh      chan struct{}
	shutdownOnce    sync.Once
	shutdownErr     error
	configReloadFn  ConfigReloadFunc
	configMu        sync.RWMutex
	onShutdown      []func()
}

// Option configures a GracefulServer.
type Option func(*GracefulServer)

// WithTimeouts sets the read and write timeouts of the underlying server.
func WithTimeouts(read, write time.Duration) Option {
	return func(gs *GracefulServer) {
		gs.server.ReadTimeout = read
		gs.server.WriteTimeout = write
	}
}

// WithShutdownTimeout bounds how long in-flight requests may drain.
func WithShutdownTimeout(d time.Duration) Option {
	return func(gs *GracefulServer) { gs.shutdownTimeout = d }
}

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(gs *GracefulServer) { gs.logger = l }
}

// OnShutdown registers fn to run as soon as shutdown begins, before
// connections are drained.
func OnShutdown(fn func()) Option {
	return func(gs *GracefulServer) { gs.onShutdown = append(gs.onShutdown, fn) }
}

// NewGracefulServer creates a new graceful HTTP server
func NewGracefulServer(addr string, handler http.Handler, opts ...Option) *GracefulServer {
	gs := &GracefulServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger:          logging.NewNopLogger(),
		shutdownTimeout: 30 * time.Second,
		shutdownCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(gs)
	}
	gs.logger = gs.logger.With(logging.Component("http-server"))
	return gs
}

// Run listens on the configured address and serves until ctx is cancelled
// or SIGINT/SIGTERM arrives, then shuts down gracefully. SIGHUP triggers a
// configuration reload.
func (gs *GracefulServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", gs.server.Addr)
	}
	return gs.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (gs *GracefulServer) Serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	go gs.handleSignals(ctx, stop)

	serveErr := make(chan error, 1)
	go func() {
		gs.logger.Info("starting HTTP server", logging.String("addr", ln.Addr().String()))
		if err := gs.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return errors.Wrap(err, "serve")
		}
		return nil
	case <-ctx.Done():
	case <-gs.shutdownCh:
	}

	return gs.Shutdown(gs.shutdownTimeout)
}

// Shutdown initiates a graceful shutdown. Later calls return the first
// call's result.
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)
		for _, fn := range gs.onShutdown {
			fn()
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("initiating graceful shutdown", logging.Duration("timeout", timeout))

		if err := gs.server.Shutdown(ctx); err != nil {
			gs.shutdownErr = errors.Wrap(err, "shutdown")
			gs.logger.Error("error during shutdown", logging.Error(err))
			return
		}
		gs.logger.Info("server shutdown complete")
	})
	return gs.shutdownErr
}

// handleSignals listens for OS signals until ctx is done.
func (gs *GracefulServer) handleSignals(ctx context.Context, stop context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh,
		syscall.SIGINT,  // Ctrl+C
		syscall.SIGTERM, // Termination signal (systemd, docker, k8s)
		syscall.SIGHUP,  // Reload configuration
	)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				gs.logger.Info("received signal, starting graceful shutdown", logging.String("signal", sig.String()))
				stop()
				return
			case syscall.SIGHUP:
				gs.logger.Info("received SIGHUP, reloading configuration")
				_ = gs.ReloadConfig()
			}
		}
	}
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}

// SetConfigReloadFunc sets the function to call when configuration reload is triggered
func (gs *GracefulServer) SetConfigReloadFunc(fn ConfigReloadFunc) {
	gs.configMu.Lock()
	defer gs.configMu.Unlock()
	gs.configReloadFn = fn
}

// ReloadConfig triggers a configuration reload
func (gs *GracefulServer) ReloadConfig() error {
	gs.configMu.RLock()
	reloadFn := gs.configReloadFn
	gs.configMu.RUnlock()

	if reloadFn == nil {
		gs.logger.Warn("configuration reload requested, but no reload function configured")
		return nil
	}

	if err := reloadFn(); err != nil {
		gs.logger.Error("configuration reload failed", logging.Error(err))
		return err
	}

	gs.logger.Info("configuration reload complete")
	return nil
}
