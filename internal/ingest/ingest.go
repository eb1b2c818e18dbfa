// Package ingest brings scan images under Gradr's management. Files are
// copied into the scans directory under a per-folder serial name and a
// transcription job is enqueued for each.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Favour-nine/Gradr/internal/config"
	"github.com/Favour-nine/Gradr/internal/logging"
	"github.com/Favour-nine/Gradr/internal/queue"
)

// imageExtensions lists the file types accepted by directory sweeps.
var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".tif":  {},
	".tiff": {},
	".webp": {},
}

// Ingestor copies scans into place and enqueues transcription jobs.
type Ingestor struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// New creates an Ingestor.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "ingest"),
	}
}

// IngestFile copies the image at sourcePath into the folder's scans
// directory under the next serial name and enqueues a transcription job with
// the given priority. The enqueued job is returned.
func (i *Ingestor) IngestFile(ctx context.Context, folder, sourcePath string, priority int) (*queue.Job, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		return nil, fmt.Errorf("ingest: folder required")
	}
	if strings.ContainsAny(folder, `/\`) {
		return nil, fmt.Errorf("ingest: folder %q must not contain path separators", folder)
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("ingest: source %s: %w", sourcePath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("ingest: source %s is a directory", sourcePath)
	}

	serial, err := i.store.NextSerial(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("ingest: allocate serial: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(sourcePath))
	if ext == "" {
		ext = ".png"
	}
	baseName := fmt.Sprintf("scan-%04d", serial)
	scanPath := filepath.Join(i.cfg.Paths.ScansDir, folder, baseName+ext)
	destPath := filepath.Join(i.cfg.Paths.TranscriptsDir, folder, baseName+".txt")

	if err := copyFile(sourcePath, scanPath); err != nil {
		return nil, fmt.Errorf("ingest: copy scan: %w", err)
	}

	job, err := i.store.Enqueue(ctx, folder, scanPath, destPath, priority, 0)
	if err != nil {
		return nil, fmt.Errorf("ingest: enqueue: %w", err)
	}

	i.logger.Info("scan ingested",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldFolder, folder),
		logging.Int64("serial", serial),
		logging.String("scan", scanPath),
	)
	return job, nil
}

// IngestDir ingests every image file directly inside dir, in name order, and
// returns the enqueued jobs. Non-image files are skipped.
func (i *Ingestor) IngestDir(ctx context.Context, folder, dir string, priority int) ([]*queue.Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imageExtensions[ext]; !ok {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	jobs := make([]*queue.Job, 0, len(names))
	for _, name := range names {
		job, err := i.IngestFile(ctx, folder, filepath.Join(dir, name), priority)
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func copyFile(sourcePath, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer source.Close()

	tmpPath := fmt.Sprintf("%s.partial-%d", destPath, time.Now().UnixNano())
	dest, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(dest, source); err != nil {
		dest.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("copy contents: %w", err)
	}
	if err := dest.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close destination: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize destination: %w", err)
	}
	return nil
}
