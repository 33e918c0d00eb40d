package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"labeld/internal/api"
	"labeld/internal/config"
	"labeld/internal/imagestore"
	"labeld/internal/logging"
	"labeld/internal/metrics"
)

// Daemon coordinates the HTTP API and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *imagestore.Store
	service *api.ImageService
	metrics *metrics.Metrics

	lockPath string
	lock     *flock.Flock

	listener  net.Listener
	server    *http.Server
	running   atomic.Bool
	startedAt time.Time
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *imagestore.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "labeld.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    store,
		service:  api.NewImageService(store),
		metrics:  metrics.New(),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.server = &http.Server{
		Handler:           d.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return d, nil
}

// Start acquires the daemon lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another labeld instance is already running")
	}

	bind := strings.TrimSpace(d.cfg.Paths.APIBind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	d.listener = listener

	go func() {
		if err := d.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		d.Stop()
	}()

	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("labeld started",
		slog.String("address", listener.Addr().String()),
		slog.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the HTTP server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("api shutdown", slog.String("error", err.Error()))
	}
	if d.listener != nil {
		_ = d.listener.Close()
		d.listener = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", slog.String("error", err.Error()))
	}
	d.running.Store(false)
	d.logger.Info("labeld stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr reports the bound listener address, empty when not running.
func (d *Daemon) Addr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Status reports daemon runtime information.
func (d *Daemon) Status() api.DaemonStatus {
	status := api.DaemonStatus{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		DatabasePath:  d.store.Path(),
		LockFilePath:  d.lockPath,
		LeaseTimeout:  d.store.LeaseTimeout().String(),
		UploadsBase:   d.cfg.Uploads.BasePath,
		AuthConfigred: strings.TrimSpace(d.cfg.Paths.APIToken) != "",
	}
	if !d.startedAt.IsZero() {
		status.StartedAt = d.startedAt.Format(time.RFC3339)
	}
	return status
}
