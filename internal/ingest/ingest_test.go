package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Favour-nine/Gradr/internal/ingest"
	"github.com/Favour-nine/Gradr/internal/logging"
	"github.com/Favour-nine/Gradr/internal/queue"
	"github.com/Favour-nine/Gradr/internal/testsupport"
)

func TestIngestFileCopiesAndEnqueues(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ing := ingest.New(cfg, store, logging.NewNop())

	source := filepath.Join(t.TempDir(), "page one.JPG")
	testsupport.WriteFile(t, source, []byte("fake image bytes"))

	job, err := ing.IngestFile(context.Background(), "math101", source, 5)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	wantScan := filepath.Join(cfg.Paths.ScansDir, "math101", "scan-0001.jpg")
	if job.SourcePath != wantScan {
		t.Fatalf("source path = %s, want %s", job.SourcePath, wantScan)
	}
	wantDest := filepath.Join(cfg.Paths.TranscriptsDir, "math101", "scan-0001.txt")
	if job.DestPath != wantDest {
		t.Fatalf("dest path = %s, want %s", job.DestPath, wantDest)
	}
	if job.Status != queue.StatusQueued {
		t.Fatalf("status = %s, want %s", job.Status, queue.StatusQueued)
	}
	if job.Priority != 5 {
		t.Fatalf("priority = %d, want 5", job.Priority)
	}

	contents, err := os.ReadFile(wantScan)
	if err != nil {
		t.Fatalf("read ingested scan: %v", err)
	}
	if string(contents) != "fake image bytes" {
		t.Fatalf("unexpected scan contents %q", contents)
	}
}

func TestIngestFileAssignsSequentialSerials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ing := ingest.New(cfg, store, logging.NewNop())

	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), []byte("img"))
	}

	first, err := ing.IngestFile(context.Background(), "math101", filepath.Join(dir, "a.png"), 0)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	second, err := ing.IngestFile(context.Background(), "math101", filepath.Join(dir, "b.png"), 0)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	other, err := ing.IngestFile(context.Background(), "bio202", filepath.Join(dir, "a.png"), 0)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	if base := filepath.Base(first.SourcePath); base != "scan-0001.png" {
		t.Fatalf("first serial name = %s", base)
	}
	if base := filepath.Base(second.SourcePath); base != "scan-0002.png" {
		t.Fatalf("second serial name = %s", base)
	}
	if base := filepath.Base(other.SourcePath); base != "scan-0001.png" {
		t.Fatalf("other folder should start its own sequence, got %s", base)
	}
}

func TestIngestFileRejectsBadFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ing := ingest.New(cfg, store, logging.NewNop())

	source := filepath.Join(t.TempDir(), "a.png")
	testsupport.WriteFile(t, source, []byte("img"))

	if _, err := ing.IngestFile(context.Background(), "", source, 0); err == nil {
		t.Fatal("expected error for empty folder")
	}
	if _, err := ing.IngestFile(context.Background(), "a/b", source, 0); err == nil {
		t.Fatal("expected error for folder with separator")
	}
}

func TestIngestDirSkipsNonImages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ing := ingest.New(cfg, store, logging.NewNop())

	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpeg", "notes.txt", ".DS_Store"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), []byte("x"))
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	jobs, err := ing.IngestDir(context.Background(), "math101", dir, 0)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("ingested %d jobs, want 2", len(jobs))
	}

	// Name order: a.jpeg before b.png.
	if base := filepath.Base(jobs[0].SourcePath); base != "scan-0001.jpeg" {
		t.Fatalf("first ingested = %s", base)
	}
	if base := filepath.Base(jobs[1].SourcePath); base != "scan-0002.png" {
		t.Fatalf("second ingested = %s", base)
	}
}
