package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"slotbook/internal/config"
)

// BackupService snapshots the sqlite database on a fixed interval.
// Snapshots use VACUUM INTO over the live connection pool, which is
// safe against concurrent writers, and old snapshots are pruned past
// the retention window.
type BackupService struct {
	db     *DB
	cfg    config.BackupConfig
	logger *zerolog.Logger
}

func NewBackupService(db *DB, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{db: db, cfg: cfg, logger: logger}
}

// Run takes a first snapshot immediately, then one per interval until
// the context is canceled.
func (s *BackupService) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info().Msg("database backups disabled")
		return
	}

	interval := s.cfg.Interval()
	s.logger.Info().
		Dur("interval", interval).
		Str("path", s.cfg.Path).
		Msg("backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.Backup(ctx); err != nil {
			s.logger.Error().Err(err).Msg("database backup failed")
		}
		s.prune()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Backup writes one timestamped snapshot into the backup directory.
func (s *BackupService) Backup(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.Path, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("slotbook_%s.db", time.Now().Format("20060102_150405"))
	target := filepath.Join(s.cfg.Path, name)

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", target)); err != nil {
		return fmt.Errorf("vacuum into %s: %w", target, err)
	}

	s.logger.Info().Str("path", target).Msg("database backup written")
	return nil
}

// prune removes snapshots older than the retention window.
func (s *BackupService) prune() {
	if s.cfg.RetentionDays <= 0 {
		return
	}

	entries, err := os.ReadDir(s.cfg.Path)
	if err != nil {
		s.logger.Error().Err(err).Msg("read backup directory for pruning")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", entry.Name()).Msg("pruning old backup")
			_ = os.Remove(filepath.Join(s.cfg.Path, entry.Name()))
		}
	}
}
