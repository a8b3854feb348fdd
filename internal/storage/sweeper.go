package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// AttachmentLister reports every file path still referenced by a post record.
type AttachmentLister interface {
	ListAttachmentPaths(ctx context.Context) ([]string, error)
}

// Sweeper is the best-effort janitor for the gap the write model accepts: a
// crash between file write and record write leaves a file nobody references.
// It only ever touches the filesystem, never the record store, and skips
// anything younger than the grace window so an in-flight create is not raced.
type Sweeper struct {
	root     string
	posts    AttachmentLister
	log      *slog.Logger
	grace    time.Duration
	interval time.Duration
}

func NewSweeper(root string, posts AttachmentLister, log *slog.Logger, interval, grace time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	if grace <= 0 {
		grace = time.Hour
	}

	return &Sweeper{root: root, posts: posts, log: log, grace: grace, interval: interval}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.log.Warn("attachment sweep failed", "err", err)
			}
		}
	}
}

// SweepOnce removes unreferenced files older than the grace window.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	referenced, err := s.posts.ListAttachmentPaths(ctx)

	if err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(referenced))

	for _, p := range referenced {
		keep[filepath.Clean(p)] = struct{}{}
	}

	entries, err := os.ReadDir(s.root)

	if err != nil {
		// nothing uploaded yet
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := time.Now().Add(-s.grace)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(s.root, entry.Name())

		if _, ok := keep[filepath.Clean(path)]; ok {
			continue
		}

		info, err := entry.Info()

		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			s.log.Warn("could not remove orphaned attachment", "path", path, "err", err)
			continue
		}

		removed++
	}

	if removed > 0 {
		s.log.Info("swept orphaned attachments", "removed", removed)
	}

	return nil
}
