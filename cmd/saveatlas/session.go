package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"saveatlas/internal/config"
	"saveatlas/internal/fault"
	"saveatlas/internal/logging"
	"saveatlas/internal/manifest"
	"saveatlas/internal/reports"
	"saveatlas/internal/resolve"
	"saveatlas/internal/resource"
	"saveatlas/internal/schema"
	"saveatlas/internal/steam"
	"saveatlas/internal/wiki"
)

// session bundles everything a command works on: configuration, logger,
// the data-dir lock, and the five resource files.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	lock   *flock.Flock

	wiki      *wiki.Cache
	meta      *wiki.Meta
	steam     *steam.Cache
	manifest  manifest.Manifest
	overrides manifest.Overrides
}

// withSession opens the data directory, runs fn, and persists the
// results. Caches and the manifest are saved even when fn fails,
// because completed fetches reflect real upstream data; only a
// schema-invalid manifest discards the run's writes, and the wiki
// checkpoint advances only on full success.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.unlock()

	runErr := fn(cmd.Context(), s)
	if persistErr := s.persist(runErr); persistErr != nil && runErr == nil {
		return persistErr
	}
	return runErr
}

// inspectSession is withSession without the persist step, for commands
// that only read the resource files.
func (c *commandContext) inspectSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.unlock()

	return fn(cmd.Context(), s)
}

func openSession(cfg *config.Config) (*session, error) {
	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data directory: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("data directory %s is in use by another run", cfg.Paths.DataDir)
	}

	s := &session{cfg: cfg, logger: logger, lock: lock}
	if err := s.load(); err != nil {
		s.unlock()
		return nil, err
	}
	return s, nil
}

func (s *session) load() error {
	cfg := s.cfg

	if err := schema.WriteDefaults(cfg.SchemaPath(), cfg.StrictSchemaPath()); err != nil {
		return err
	}

	client, err := wiki.NewClient(wiki.ClientConfig{
		BaseURL:   cfg.Wiki.APIURL,
		UserAgent: cfg.Wiki.UserAgent,
		PageLimit: cfg.Wiki.PageLimit,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	})
	if err != nil {
		return err
	}

	s.wiki, err = wiki.NewCache(cfg.WikiCachePath(), client, s.logger,
		wiki.WithSaveInterval(cfg.Wiki.SaveInterval),
		wiki.WithRecentChangesOverlap(time.Duration(cfg.Wiki.RecentChangesOverlapMinutes)*time.Minute))
	if err != nil {
		return err
	}

	s.meta = &wiki.Meta{}
	if err := resource.Load(cfg.WikiMetaPath(), s.meta); err != nil {
		return err
	}
	s.meta.Init()

	source := steam.NewScriptSource(cfg.Steam.Command, cfg.Steam.Args, s.logger)
	s.steam, err = steam.NewCache(cfg.SteamCachePath(), source, s.logger,
		steam.WithChunkSize(cfg.Steam.ChunkSize),
		steam.WithSaveInterval(cfg.Steam.SaveInterval))
	if err != nil {
		return err
	}

	s.manifest = manifest.Manifest{}
	if err := resource.Load(cfg.ManifestPath(), &s.manifest); err != nil {
		return err
	}
	s.overrides = manifest.Overrides{}
	if err := resource.Load(cfg.OverridesPath(), &s.overrides); err != nil {
		return err
	}

	return nil
}

func (s *session) persist(runErr error) error {
	if fault.DiscardsWork(runErr) {
		s.logger.Warn("discarding this run's writes", logging.Error(runErr))
		return nil
	}

	if err := s.wiki.Save(); err != nil {
		return err
	}
	if err := s.steam.Save(); err != nil {
		return err
	}
	if err := resource.Save(s.cfg.ManifestPath(), s.manifest); err != nil {
		return err
	}
	if err := reports.SaveMissing(s.cfg.MissingReportPath(), s.wiki, s.manifest, s.overrides); err != nil {
		return err
	}
	if err := reports.SaveMalformed(s.cfg.MalformedReportPath(), s.wiki); err != nil {
		return err
	}

	if runErr == nil {
		if err := resource.Save(s.cfg.WikiMetaPath(), s.meta); err != nil {
			return err
		}
	}

	return nil
}

func (s *session) unlock() {
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
}

// rebuild resolves the manifest from the caches and validates it.
func (s *session) rebuild() error {
	s.manifest = resolve.Resolve(s.overrides, s.wiki, s.steam, s.logger)
	return s.validate()
}

func (s *session) validate() error {
	return schema.Validate(s.manifest, []string{s.cfg.SchemaPath(), s.cfg.StrictSchemaPath()}, s.logger)
}
