package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	binDir     string
	outputDir  string
	configPath string
}

const uvxStub = `#!/bin/sh
src=""
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    whisperx) src="$2"; shift 2 ;;
    --output_dir) out="$2"; shift 2 ;;
    *) shift ;;
  esac
done
base="${src##*/}"
base="${base%.*}"
printf '%s' '{"language":"en","segments":[{"start":0,"end":1.5,"text":"Hello"},{"start":1.5,"end":3.25,"text":"World"}]}' > "$out/$base.json"
`

const ffmpegStub = `#!/bin/sh
for arg; do last="$arg"; done
: > "$last"
`

func setupCLITestEnv(t *testing.T, extraConfig string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	binDir := filepath.Join(base, "bin")
	writeExecutable(t, filepath.Join(binDir, "uvx"), uvxStub)
	writeExecutable(t, filepath.Join(binDir, "ffmpeg"), ffmpegStub)
	t.Setenv("PATH", binDir)

	env := &cliTestEnv{
		baseDir:    base,
		binDir:     binDir,
		outputDir:  filepath.Join(base, "out"),
		configPath: filepath.Join(base, "config.toml"),
	}
	content := fmt.Sprintf("[paths]\noutput_dir = %q\n\n[logging]\nlevel = \"error\"\n%s", env.outputDir, extraConfig)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func writeExecutable(t *testing.T, path, script string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// translateServer mimics the gtx endpoint by prefixing every line.
func translateServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lines := strings.Split(r.URL.Query().Get("q"), "\n")
		for i, line := range lines {
			lines[i] = r.URL.Query().Get("tl") + ":" + line
		}
		chunk := []any{strings.Join(lines, "\n"), r.URL.Query().Get("q")}
		_ = json.NewEncoder(w).Encode([]any{[]any{chunk}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunWritesTranslatedSubtitles(t *testing.T) {
	srv := translateServer(t)
	env := setupCLITestEnv(t, fmt.Sprintf("\n[translation]\ntarget = \"tr\"\ngoogle_base_url = %q\n", srv.URL))

	input := filepath.Join(env.baseDir, "clip.mp4")
	if err := os.WriteFile(input, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"-s", input}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "clip.mp4")
	requireContains(t, out, "skipped")
	requireContains(t, out, "1 succeeded, 0 failed")

	data, err := os.ReadFile(filepath.Join(env.outputDir, "clip.srt"))
	if err != nil {
		t.Fatalf("read subtitles: %v", err)
	}
	want := "1\n0:00:00.000 --> 0:00:01.500\nHello\ntr:Hello\n\n" +
		"2\n0:00:01.500 --> 0:00:03.250\nWorld\ntr:World\n\n"
	if string(data) != want {
		t.Fatalf("unexpected cue file:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, ".autosub.lock")); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed, stat err=%v", err)
	}
}

func TestRunTranslateOffAndBurnVideo(t *testing.T) {
	env := setupCLITestEnv(t, "")

	input := filepath.Join(env.baseDir, "talk.mkv")
	if err := os.WriteFile(input, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"--translate-off", "-s", "-v", "-a", input}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "video_muxed")

	data, err := os.ReadFile(filepath.Join(env.outputDir, "talk.srt"))
	if err != nil {
		t.Fatalf("read subtitles: %v", err)
	}
	if strings.Contains(string(data), ":Hello") || !strings.Contains(string(data), "Hello\n\n2\n") {
		t.Fatalf("expected untranslated cues, got:\n%s", data)
	}
	for _, name := range []string{"talk_subtitled.mp4", "talk.mp3"} {
		if _, err := os.Stat(filepath.Join(env.outputDir, name)); err != nil {
			t.Fatalf("expected %s in output dir: %v", name, err)
		}
	}
}

func TestRunPerFileFailureKeepsExitZero(t *testing.T) {
	env := setupCLITestEnv(t, "")
	writeExecutable(t, filepath.Join(env.binDir, "ffmpeg"), "#!/bin/sh\necho boom >&2\nexit 1\n")

	good := filepath.Join(env.baseDir, "voice.wav")
	bad := filepath.Join(env.baseDir, "movie.mp4")
	for _, p := range []string{good, bad} {
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := runCLI(t, []string{"--translate-off", "-s", good, bad}, env.configPath)
	if err != nil {
		t.Fatalf("per-file failures must not fail the command: %v", err)
	}
	requireContains(t, out, "1 succeeded, 1 failed")
	requireContains(t, out, "external_tool")
	if _, err := os.Stat(filepath.Join(env.outputDir, "voice.srt")); err != nil {
		t.Fatalf("expected audio input to still produce subtitles: %v", err)
	}
}

func TestRunNoMatchingInputs(t *testing.T) {
	env := setupCLITestEnv(t, "")
	_, _, err := runCLI(t, []string{"--translate-off", filepath.Join(env.baseDir, "*.mp4")}, env.configPath)
	if err == nil {
		t.Fatal("expected configuration error for unmatched inputs")
	}
}

func TestRunMissingUVXAborts(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if err := os.Remove(filepath.Join(env.binDir, "uvx")); err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(env.baseDir, "a.wav")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, []string{"--translate-off", input}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "uvx") {
		t.Fatalf("expected uvx startup error, got %v", err)
	}
}

func TestRunRejectsInvalidBatchSize(t *testing.T) {
	env := setupCLITestEnv(t, "")
	input := filepath.Join(env.baseDir, "a.wav")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, []string{"--batch-size", "0", input}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "batch_size") {
		t.Fatalf("expected batch size error, got %v", err)
	}
}

func TestRunRejectsNegativeExtractWorkers(t *testing.T) {
	env := setupCLITestEnv(t, "")
	input := filepath.Join(env.baseDir, "a.wav")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, []string{"--extract-workers", "-1", input}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "extraction.workers") {
		t.Fatalf("expected extraction.workers error, got %v", err)
	}
}
