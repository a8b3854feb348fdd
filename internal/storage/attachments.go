package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cafeblog/internal/domain/post"
)

var ErrEmptyAttachment = errors.New("attachment payload is empty")

// Upload is the raw file payload the transport hands over.
type Upload struct {
	Data        []byte
	Name        string
	ContentType string
}

// Metrics keeps the manager decoupled from the metrics registry; tests pass nil.
type Metrics interface {
	ObserveAttachment(op string, bytesWritten int, err error)
}

// Manager owns the physical side of post attachments: one configured root
// directory, files kept under their original upload name. Collisions are not
// namespaced; last write wins, at the record level and on disk alike.
type Manager struct {
	root    string
	log     *slog.Logger
	metrics Metrics
}

func NewManager(root string, log *slog.Logger, metrics Metrics) *Manager {
	return &Manager{root: root, log: log, metrics: metrics}
}

func (m *Manager) observe(op string, bytesWritten int, err error) {
	if m.metrics != nil {
		m.metrics.ObserveAttachment(op, bytesWritten, err)
	}
}

// Store writes the payload under its original name and returns the
// descriptor. An empty payload is rejected before anything touches disk.
func (m *Manager) Store(up Upload) (post.Attachment, error) {
	if len(up.Data) == 0 {
		return post.Attachment{}, ErrEmptyAttachment
	}

	if err := os.MkdirAll(m.root, 0o755); err != nil {
		m.observe("store", 0, err)
		return post.Attachment{}, fmt.Errorf("create upload dir: %w", err)
	}

	// strip any client-supplied directory components
	name := filepath.Base(up.Name)
	path := filepath.Join(m.root, name)

	err := os.WriteFile(path, up.Data, 0o644)
	m.observe("store", len(up.Data), err)

	if err != nil {
		return post.Attachment{}, fmt.Errorf("write attachment %q: %w", name, err)
	}

	return post.Attachment{
		FileName:    name,
		FilePath:    path,
		ContentType: up.ContentType,
	}, nil
}

// Replace removes the previous file, if any, then stores the new payload.
// A previous file that is already gone is not an error. The payload is
// validated first so a rejected upload leaves the old attachment in place.
func (m *Manager) Replace(existing *post.Attachment, up Upload) (post.Attachment, error) {
	if len(up.Data) == 0 {
		return post.Attachment{}, ErrEmptyAttachment
	}

	if err := m.Remove(existing); err != nil {
		return post.Attachment{}, err
	}

	return m.Store(up)
}

// Remove deletes the file behind the descriptor. Nil descriptor or a missing
// file are both no-ops so deletes stay idempotent.
func (m *Manager) Remove(a *post.Attachment) error {
	if a == nil {
		return nil
	}

	err := os.Remove(a.FilePath)

	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}

	m.observe("remove", 0, err)

	if err != nil {
		return fmt.Errorf("remove attachment %q: %w", a.FilePath, err)
	}

	return nil
}
