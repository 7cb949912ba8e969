package preflight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autosub/internal/config"
	"autosub/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail for missing dir, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckGoogleTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]any{[]any{[]any{"merhaba", "hello"}}})
	}))
	defer srv.Close()

	result := CheckGoogleTranslate(context.Background(), srv.URL, "tr")
	if !result.Passed || !strings.Contains(result.Detail, "merhaba") {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestCheckGoogleTranslate_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if result := CheckGoogleTranslate(context.Background(), srv.URL, "tr"); result.Passed {
		t.Fatal("expected failure for 503")
	}
}

func TestCheckLLM_MissingKey(t *testing.T) {
	if result := CheckLLM(context.Background(), "LLM", config.LLMConfig{}); result.Passed || result.Detail != "API key missing" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_TranslationOff(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Translation.Enabled = false

	results := RunAll(context.Background(), &cfg)
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"FFmpeg", "uvx", "Output directory"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %s check in %v", want, names)
		}
	}
	if strings.Contains(joined, "Google") || strings.Contains(joined, "LLM") {
		t.Fatalf("translation checks must be skipped when disabled: %v", names)
	}
}

func TestRequireBinaries(t *testing.T) {
	cfg := config.Default()
	t.Setenv("PATH", t.TempDir())
	err := RequireBinaries(&cfg)
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "uvx") {
		t.Fatalf("expected missing uvx error, got %v", err)
	}

	binDir := t.TempDir()
	for _, name := range []string{"ffmpeg", "uvx"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", binDir)
	if err := RequireBinaries(&cfg); err != nil {
		t.Fatalf("expected required binaries satisfied, got %v", err)
	}
}

func TestFailedIgnoresOptional(t *testing.T) {
	failed := Failed([]Result{
		{Name: "a", Passed: true},
		{Name: "b", Optional: true},
		{Name: "c"},
	})
	if len(failed) != 1 || failed[0].Name != "c" {
		t.Fatalf("unexpected failed list %+v", failed)
	}
}
