// Package media keeps downloaded media resources as files and reclaims them
// when the messages that referenced them go away.
package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/danhigham/telecache/internal/domain"
)

const removeQueueSize = 64

// Box is a directory of cached resources. Removals run on a background
// worker so callers inside a store transaction never block on the disk.
type Box struct {
	dir    string
	logger *zap.Logger

	mu       sync.Mutex
	closed   bool
	removals chan []domain.ResourceID
	wg       sync.WaitGroup
}

func NewBox(dir string, logger *zap.Logger) (*Box, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	b := &Box{
		dir:      dir,
		logger:   logger.Named("media"),
		removals: make(chan []domain.ResourceID, removeQueueSize),
	}
	b.wg.Add(1)
	go b.run()
	return b, nil
}

// Path returns the file backing a resource.
func (b *Box) Path(id domain.ResourceID) string {
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(string(id))
	return filepath.Join(b.dir, name)
}

// Put stores the resource content, replacing any previous file.
func (b *Box) Put(id domain.ResourceID, r io.Reader) error {
	path := b.Path(id)
	tmp, err := os.CreateTemp(b.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write resource %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (b *Box) Has(id domain.ResourceID) bool {
	_, err := os.Stat(b.Path(id))
	return err == nil
}

// RemoveCachedResources schedules deletion of the resources and returns
// immediately. Missing files are ignored. A batch arriving while the queue
// is full is dropped.
func (b *Box) RemoveCachedResources(ids []domain.ResourceID) {
	if len(ids) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		b.logger.Warn("Dropped removal after close", zap.Int("count", len(ids)))
		return
	}
	select {
	case b.removals <- append([]domain.ResourceID(nil), ids...):
	default:
		b.logger.Warn("Removal queue full, dropping batch", zap.Int("count", len(ids)))
	}
}

// Close stops accepting removals and waits for queued ones to finish.
func (b *Box) Close() error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.removals)
	}
	b.mu.Unlock()
	b.wg.Wait()
	return nil
}

func (b *Box) run() {
	defer b.wg.Done()
	for batch := range b.removals {
		removed := 0
		for _, id := range batch {
			err := os.Remove(b.Path(id))
			switch {
			case err == nil:
				removed++
			case errors.Is(err, fs.ErrNotExist):
			default:
				b.logger.Warn("Failed to remove resource", zap.String("resource", string(id)), zap.Error(err))
			}
		}
		b.logger.Debug("Removed cached resources", zap.Int("requested", len(batch)), zap.Int("removed", removed))
	}
}
