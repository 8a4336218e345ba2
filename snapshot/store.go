package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/mediahub/vhub/errors"
)

// Store writes device snapshot uploads to local disk, the primary path
// spec.md §4.3.8/§6 requires, and optionally fans out to a SQLite upload
// index and an S3 mirror.
type Store struct {
	localRoot string
	webRoot   string
	index     *Index
	s3        *S3Sink
	logger    *slog.Logger
}

// NewStore constructs a Store rooted at localRoot for on-disk writes, serving
// back web-facing paths rooted at webRoot. index and s3 are both optional;
// either may be nil.
func NewStore(localRoot, webRoot string, index *Index, s3 *S3Sink, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{localRoot: localRoot, webRoot: webRoot, index: index, s3: s3, logger: logger}
}

// Write decodes nothing — data is already the raw decoded image bytes — and
// persists it at <localRoot>/<serial>/<serial>_<channel>_<YYYYMMDDHHMMSS>.<ext>
// (spec §6), returning the web-facing path clients are told about. The
// write is atomic (write-then-rename via renameio) so a half-written file is
// never observed by a concurrent getdeviceinfo read.
func (s *Store) Write(ctx context.Context, serial, channel string, data []byte, ext string, t time.Time) (string, error) {
	if serial == "" {
		return "", errors.WrapInvalid(errors.ErrAttrAbsent, "snapshot", "Write", "serial required")
	}
	if ext == "" {
		ext = "jpg"
	}

	dir := filepath.Join(s.localRoot, serial)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapFatal(err, "snapshot", "Write", "mkdir -p "+dir)
	}

	filename := fmt.Sprintf("%s_%s_%s.%s", serial, channel, t.Format("20060102150405"), ext)
	fullPath := filepath.Join(dir, filename)

	if err := renameio.WriteFile(fullPath, data, 0o644); err != nil {
		return "", errors.WrapFatal(err, "snapshot", "Write", "write "+fullPath)
	}

	webPath := path.Join(s.webRoot, serial, filename)

	if s.index != nil {
		if err := s.index.Record(ctx, serial, channel, webPath, t); err != nil {
			s.logger.Warn("snapshot index record failed", "serial", serial, "error", err)
		}
	}

	if s.s3 != nil {
		key := path.Join(serial, filename)
		go s.s3.Upload(context.WithoutCancel(ctx), key, data, s.logger)
	}

	return webPath, nil
}

// ParseTime parses the time field spec.md §4.3.8 describes: formatted
// YYYYMMDDHHMMSS with hyphens, colons, and spaces already stripped, or
// sometimes not — the device firmware is not perfectly consistent, so
// stripping here is cheaper than rejecting. An empty raw value defaults to
// now.
func ParseTime(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '-', ':', ' ':
			return -1
		default:
			return r
		}
	}, raw)
	t, err := time.Parse("20060102150405", stripped)
	if err != nil {
		return time.Now()
	}
	return t
}
