// Package qrstore caches QR bitmaps on disk keyed by document reference.
// Payloads are pure functions of booking-immutable fields, so concurrent
// writers may race on the same path; last writer wins and both readers see
// a valid file.
package qrstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/utils"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSizePx = 256

// Store is the process-wide QR cache. TTL 0 disables caching: every call
// re-renders and nothing is kept fresh.
type Store struct {
	Dir string
	TTL time.Duration
}

func New(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{Dir: dir, TTL: ttl}, nil
}

// GetOrCreate returns the cached bitmap path for {kind}_{reference}.png,
// re-rendering from payload when the file is missing or stale. When the
// cache write fails the freshly rendered PNG is returned in memory with an
// empty path so the render can still proceed.
func (s *Store) GetOrCreate(kind, reference, payload string) (string, []byte, error) {
	path := filepath.Join(s.Dir, fmt.Sprintf("%s_%s.png", kind, utils.SafeFilenamePart(reference)))

	if s.TTL > 0 {
		if info, err := os.Stat(path); err == nil && time.Since(info.ModTime()) < s.TTL {
			return path, nil, nil
		}
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, qrSizePx)
	if err != nil {
		return "", nil, fmt.Errorf("encode qr %s: %w", reference, err)
	}

	if err := writeAtomic(path, png); err != nil {
		utils.LogEvent("", "qrstore", "cache_write_failed", fmt.Sprintf("path=%s err=%v", path, err))
		return "", png, domain.ErrQRCacheWriteFailed
	}
	return path, nil, nil
}

// Sweep deletes cached bitmaps older than the TTL. Meant for a periodic job.
func (s *Store) Sweep() (removed int, err error) {
	if s.TTL <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-s.TTL)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".png" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if rmErr := os.Remove(filepath.Join(s.Dir, e.Name())); rmErr == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// RunSweeper sweeps on an interval until stop is closed.
func (s *Store) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n, err := s.Sweep(); err != nil {
				utils.LogEvent("", "qrstore", "sweep_failed", err.Error())
			} else if n > 0 {
				utils.LogEvent("", "qrstore", "sweep", fmt.Sprintf("removed=%d", n))
			}
		case <-stop:
			return
		}
	}
}

func writeAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
