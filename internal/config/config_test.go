package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"autosub/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_CACHE_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if cfg.Paths.OutputDir != wd {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wd)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "autosub", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	wantCache := filepath.Join(tempHome, ".cache", "autosub", "transcripts.db")
	if cfg.Cache.Path != wantCache {
		t.Fatalf("unexpected cache path: got %q want %q", cfg.Cache.Path, wantCache)
	}
	if cfg.Cache.Enabled {
		t.Fatal("expected transcript cache disabled by default")
	}
	if !cfg.Translation.Enabled || cfg.Translation.Target != "tr" {
		t.Fatalf("expected translation to tr by default, got enabled=%v target=%q", cfg.Translation.Enabled, cfg.Translation.Target)
	}
	if cfg.Translation.BatchSize != 10 {
		t.Fatalf("unexpected batch size: %d", cfg.Translation.BatchSize)
	}
	if cfg.Translation.MaxWorkers != 4 {
		t.Fatalf("unexpected max workers: %d", cfg.Translation.MaxWorkers)
	}
	if cfg.Translation.Provider != config.ProviderGoogle {
		t.Fatalf("unexpected provider: %q", cfg.Translation.Provider)
	}
	if cfg.Extraction.Workers != config.DefaultExtractWorkers() {
		t.Fatalf("unexpected extraction workers: %d", cfg.Extraction.Workers)
	}
	if cfg.Extraction.Workers < 1 {
		t.Fatal("extraction workers must never default below one")
	}
	if cfg.Transcription.Model != "small" {
		t.Fatalf("unexpected model: %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.Device != config.DeviceAuto {
		t.Fatalf("unexpected device: %q", cfg.Transcription.Device)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "autosub.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Transcription struct {
			Model string `toml:"model"`
		} `toml:"transcription"`
		Translation struct {
			Target     string `toml:"target"`
			BatchSize  int    `toml:"batch_size"`
			MaxWorkers int    `toml:"max_workers"`
		} `toml:"translation"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")
	custom.Transcription.Model = "medium"
	custom.Translation.Target = "DE"
	custom.Translation.BatchSize = 25
	custom.Translation.MaxWorkers = 2
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.OutputDir != custom.Paths.OutputDir {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Transcription.Model != "medium" {
		t.Fatalf("expected model from file, got %q", cfg.Transcription.Model)
	}
	if cfg.Translation.Target != "de" {
		t.Fatalf("expected canonical target de, got %q", cfg.Translation.Target)
	}
	if cfg.Translation.BatchSize != 25 || cfg.Translation.MaxWorkers != 2 {
		t.Fatalf("unexpected translation settings: %+v", cfg.Translation)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "autosub.toml")
	if err := os.WriteFile(configPath, []byte("[translation]\nbatchsize = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "autosub.toml")
	contents := "[translation]\ntarget = \"fr\"\nbatch_size = 5\n[llm]\napi_key = \"file-key\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("AUTOSUB_TRANSLATE_TO", "es")
	t.Setenv("AUTOSUB_BATCH_SIZE", "7")
	t.Setenv("AUTOSUB_LLM_API_KEY", "env-key")
	t.Setenv("AUTOSUB_TRANSLATION_PROVIDER", "llm")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Translation.Target != "es" {
		t.Errorf("expected target from env, got %q", cfg.Translation.Target)
	}
	if cfg.Translation.BatchSize != 7 {
		t.Errorf("expected batch size from env, got %d", cfg.Translation.BatchSize)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Translation.Provider != config.ProviderLLM {
		t.Errorf("expected provider from env, got %q", cfg.Translation.Provider)
	}
}

func TestEnvRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AUTOSUB_MAX_WORKERS", "many")
	if _, _, _, err := config.Load(""); err == nil {
		t.Fatal("expected error for non-numeric AUTOSUB_MAX_WORKERS")
	}
}

func TestLLMProviderRequiresKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	cfg := config.Default()
	cfg.Translation.Provider = config.ProviderLLM
	err := cfg.Finalize()
	if err == nil {
		t.Fatal("expected error when llm provider has no api key")
	}
	if !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnglishOnlyModelForcesEnglish(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Model = "small.en"
	cfg.Transcription.Language = "de"
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Transcription.Language != "en" {
		t.Fatalf("expected english for .en model, got %q", cfg.Transcription.Language)
	}
	notices := cfg.Notices()
	if len(notices) != 1 || !strings.Contains(notices[0], `"de"`) || !strings.Contains(notices[0], "small.en") {
		t.Fatalf("expected one notice about the replaced language, got %q", notices)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("second Finalize: %v", err)
	}
	if len(cfg.Notices()) != 1 {
		t.Fatalf("notice duplicated on re-finalize: %q", cfg.Notices())
	}
}

func TestEnglishOnlyModelWithoutLanguageIsSilent(t *testing.T) {
	for _, lang := range []string{"", "en", "English"} {
		cfg := config.Default()
		cfg.Transcription.Model = "base.en"
		cfg.Transcription.Language = lang
		if err := cfg.Finalize(); err != nil {
			t.Fatalf("Finalize(%q): %v", lang, err)
		}
		if cfg.Transcription.Language != "en" || len(cfg.Notices()) != 0 {
			t.Fatalf("language %q: got %q with notices %q", lang, cfg.Transcription.Language, cfg.Notices())
		}
	}
}

func TestExtractWorkersZeroMeansAutoNegativeRejected(t *testing.T) {
	cfg := config.Default()
	cfg.Extraction.Workers = 0
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Extraction.Workers != config.DefaultExtractWorkers() {
		t.Fatalf("expected default workers, got %d", cfg.Extraction.Workers)
	}

	cfg = config.Default()
	cfg.Extraction.Workers = -2
	err := cfg.Finalize()
	if err == nil || !strings.Contains(err.Error(), "extraction.workers") {
		t.Fatalf("expected extraction.workers error, got %v", err)
	}
}

func TestTranslateOffSkipsTargetValidation(t *testing.T) {
	cfg := config.Default()
	cfg.Translation.Enabled = false
	cfg.Translation.Target = ""
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.TranslationActive() {
		t.Fatal("expected translation inactive")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "batch_size = 10") {
		t.Fatalf("sample config missing batch size: %s", contents)
	}

	// The sample must load cleanly through the strict decoder.
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Translation.Target != "tr" {
		t.Fatalf("unexpected sample target: %q", cfg.Translation.Target)
	}
}

func TestEncodeRedactsAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "secret-value"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(data), "secret-value") {
		t.Fatalf("expected api key to be redacted: %s", data)
	}
	if cfg.LLM.APIKey != "secret-value" {
		t.Fatal("Encode must not mutate the receiver")
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "AUTOSUB_DOTENV_PROBE"
	t.Setenv(key, "")
	os.Unsetenv(key)
	t.Setenv("AUTOSUB_BATCH_SIZE", "3")

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(key+"=loaded\nAUTOSUB_BATCH_SIZE=99\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	loaded, err := config.LoadDotEnv(path)
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if loaded != path {
		t.Fatalf("unexpected loaded path: %q", loaded)
	}
	if got := os.Getenv(key); got != "loaded" {
		t.Fatalf("expected %s=loaded, got %q", key, got)
	}
	if got := os.Getenv("AUTOSUB_BATCH_SIZE"); got != "3" {
		t.Fatalf("existing variables must win, got %q", got)
	}

	if _, err := config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for explicit missing env file")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero batch size", func(c *config.Config) { c.Translation.BatchSize = 0 }},
		{"negative workers", func(c *config.Config) { c.Translation.MaxWorkers = -1 }},
		{"zero extract workers", func(c *config.Config) { c.Extraction.Workers = 0 }},
		{"bad device", func(c *config.Config) { c.Transcription.Device = "tpu" }},
		{"bad provider", func(c *config.Config) { c.Translation.Provider = "deepl" }},
		{"missing target", func(c *config.Config) { c.Translation.Target = "" }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
