package transcribe_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Favour-nine/Gradr/internal/logging"
	"github.com/Favour-nine/Gradr/internal/queue"
	"github.com/Favour-nine/Gradr/internal/testsupport"
	"github.com/Favour-nine/Gradr/internal/transcribe"
)

func TestProcessCopiesSourceToDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubTranscriber(""))
	source := filepath.Join(cfg.Paths.ScansDir, "math101", "scan-0001.png")
	dest := filepath.Join(cfg.Paths.TranscriptsDir, "math101", "scan-0001.txt")
	testsupport.WriteFile(t, source, []byte("fake image bytes"))

	tr := transcribe.New(cfg, logging.NewNop())
	job := &queue.Job{ID: 1, Folder: "math101", SourcePath: source, DestPath: dest}

	if err := tr.Process(context.Background(), job); err != nil {
		t.Fatalf("Process: %v", err)
	}
}

func TestProcessReportsMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubTranscriber(""))

	tr := transcribe.New(cfg, logging.NewNop())
	job := &queue.Job{
		ID:         1,
		Folder:     "math101",
		SourcePath: filepath.Join(cfg.Paths.ScansDir, "math101", "missing.png"),
		DestPath:   filepath.Join(cfg.Paths.TranscriptsDir, "math101", "missing.txt"),
	}

	err := tr.Process(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if !strings.Contains(err.Error(), "source") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProcessSurfacesCommandStderr(t *testing.T) {
	script := "#!/bin/sh\necho 'model not loaded' >&2\nexit 3\n"
	cfg := testsupport.NewConfig(t, testsupport.WithStubTranscriber(script))
	source := filepath.Join(cfg.Paths.ScansDir, "math101", "scan-0001.png")
	testsupport.WriteFile(t, source, []byte("fake image bytes"))

	tr := transcribe.New(cfg, logging.NewNop())
	job := &queue.Job{
		ID:         1,
		Folder:     "math101",
		SourcePath: source,
		DestPath:   filepath.Join(cfg.Paths.TranscriptsDir, "math101", "scan-0001.txt"),
	}

	err := tr.Process(context.Background(), job)
	if err == nil {
		t.Fatal("expected command failure")
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected stderr in error, got: %v", err)
	}
}

func TestProcessRejectsCleanExitWithoutOutput(t *testing.T) {
	script := "#!/bin/sh\nexit 0\n"
	cfg := testsupport.NewConfig(t, testsupport.WithStubTranscriber(script))
	source := filepath.Join(cfg.Paths.ScansDir, "math101", "scan-0001.png")
	testsupport.WriteFile(t, source, []byte("fake image bytes"))

	tr := transcribe.New(cfg, logging.NewNop())
	job := &queue.Job{
		ID:         1,
		Folder:     "math101",
		SourcePath: source,
		DestPath:   filepath.Join(cfg.Paths.TranscriptsDir, "math101", "scan-0001.txt"),
	}

	err := tr.Process(context.Background(), job)
	if err == nil {
		t.Fatal("expected error when no output was produced")
	}
	if !strings.Contains(err.Error(), "no output") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProcessUsesCustomRunner(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := filepath.Join(cfg.Paths.ScansDir, "math101", "scan-0001.png")
	dest := filepath.Join(cfg.Paths.TranscriptsDir, "math101", "scan-0001.txt")
	testsupport.WriteFile(t, source, []byte("fake image bytes"))

	tr := transcribe.New(cfg, logging.NewNop())
	var gotArgs []string
	tr.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = append([]string{name}, args...)
		testsupport.WriteFile(t, dest, []byte("transcript"))
		return nil
	})

	job := &queue.Job{ID: 1, Folder: "math101", SourcePath: source, DestPath: dest}
	if err := tr.Process(context.Background(), job); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(gotArgs) != 3 || gotArgs[1] != source || gotArgs[2] != dest {
		t.Fatalf("unexpected command invocation: %v", gotArgs)
	}
}
