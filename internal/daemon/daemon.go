package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/api"
	"marquee/internal/batch"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/omdb"
	"marquee/internal/ratings"
	"marquee/internal/resolve"
	"marquee/internal/store"
)

// Daemon wires the resolution pipeline behind the HTTP API and enforces
// single-instance execution through a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	svc    *api.ResolveService

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	server    *apiServer
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	CacheDBPath  string
	LockFilePath string
	StartedAt    time.Time
}

// New constructs a daemon with an initialized resolution pipeline.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	provider, err := omdb.New(cfg.OMDB.APIKey, cfg.OMDB.BaseURL,
		omdb.WithTimeout(time.Duration(cfg.OMDB.TimeoutSeconds)*time.Second))
	if err != nil {
		return nil, fmt.Errorf("build provider client: %w", err)
	}

	engine := resolve.NewEngine(provider, ratings.PolicyFromConfig(cfg.TTL), logger, resolve.Options{
		VerificationTolerance: cfg.Resolver.VerificationTolerance,
		MinFragmentLength:     cfg.Resolver.MinFragmentLength,
	})
	orchestrator := batch.New(st, engine, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "marqueed.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		svc:      api.NewResolveService(orchestrator),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.server = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and brings up the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another marquee daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.server.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("marquee daemon started",
		logging.String("lock", d.lockPath),
		logging.String("cache_db", d.store.Path()))
	return nil
}

// Stop shuts down the HTTP API and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("marquee daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the API listen address, or "" before Start.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		CacheDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		StartedAt:    d.startedAt,
	}
}

// CacheStats reports cache-wide counters.
func (d *Daemon) CacheStats(ctx context.Context) (store.Stats, error) {
	return d.store.Stats(ctx)
}

// CacheList returns stored records, newest first.
func (d *Daemon) CacheList(ctx context.Context, limit int) ([]ratings.Record, error) {
	return d.store.List(ctx, limit)
}

// CacheClear removes every cached record.
func (d *Daemon) CacheClear(ctx context.Context) error {
	return d.store.Clear(ctx)
}
