package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"autosub/internal/services"
)

func TestExtractAudioArgs(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "audio", "clip.mp3")
	ff := NewFFmpeg("", nil)
	var name string
	var args []string
	ff.WithCommandRunner(func(ctx context.Context, n string, a ...string) error {
		name, args = n, a
		return nil
	})

	if err := ff.ExtractAudio(context.Background(), "/in/clip.mp4", dest); err != nil {
		t.Fatalf("ExtractAudio returned error: %v", err)
	}
	if name != FFmpegCommand {
		t.Fatalf("expected ffmpeg, got %s", name)
	}
	want := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", "/in/clip.mp4", "-ac", "1", "-async", "1", dest}
	if !slices.Equal(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	if _, err := os.Stat(filepath.Dir(dest)); err != nil {
		t.Fatalf("expected destination dir created: %v", err)
	}
}

func TestExtractAudioFailureIsExternalToolError(t *testing.T) {
	ff := NewFFmpeg("ffmpeg", nil)
	ff.WithCommandRunner(func(context.Context, string, ...string) error { return errors.New("exit 1") })
	err := ff.ExtractAudio(context.Background(), "in.mp4", filepath.Join(t.TempDir(), "out.mp3"))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestExtractAudioCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ff := NewFFmpeg("ffmpeg", nil)
	ff.WithCommandRunner(func(ctx context.Context, _ string, _ ...string) error { return ctx.Err() })
	err := ff.ExtractAudio(ctx, "in.mp4", filepath.Join(t.TempDir(), "out.mp3"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBurnSubtitles(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "trip.mkv")
	cues := filepath.Join(dir, "trip.srt")
	dest := filepath.Join(dir, "out", "trip_subtitled.mp4")
	if err := os.WriteFile(cues, []byte("1\n0:00:00.000 --> 0:00:01.000\nHi\n\n"), 0o644); err != nil {
		t.Fatalf("write cues: %v", err)
	}

	ff := NewFFmpeg("", nil)
	var args []string
	ff.WithCommandRunner(func(ctx context.Context, _ string, a ...string) error {
		args = a
		return os.WriteFile(a[len(a)-1], []byte("mp4"), 0o644)
	})
	if err := ff.BurnSubtitles(context.Background(), video, cues, dest); err != nil {
		t.Fatalf("BurnSubtitles returned error: %v", err)
	}

	i := slices.Index(args, "-vf")
	if i < 0 || args[i+1] != "subtitles=filename="+escapeFilterValue(cues) {
		t.Fatalf("missing subtitles filter in %v", args)
	}
	if j := slices.Index(args, "-c:v"); j < 0 || args[j+1] != "libx264" {
		t.Fatalf("expected libx264, got %v", args)
	}
	if j := slices.Index(args, "-c:a"); j < 0 || args[j+1] != "copy" {
		t.Fatalf("expected audio copy, got %v", args)
	}
	if data, err := os.ReadFile(dest); err != nil || string(data) != "mp4" {
		t.Fatalf("expected output at %s: %v", dest, err)
	}
	if _, err := os.Stat(args[len(args)-1]); !os.IsNotExist(err) {
		t.Fatalf("expected partial file renamed away, stat err %v", err)
	}
}

func TestBurnSubtitlesFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	cues := filepath.Join(dir, "a.srt")
	_ = os.WriteFile(cues, []byte("x"), 0o644)
	dest := filepath.Join(dir, "a_subtitled.mp4")

	ff := NewFFmpeg("", nil)
	var partial string
	ff.WithCommandRunner(func(ctx context.Context, _ string, a ...string) error {
		partial = a[len(a)-1]
		_ = os.WriteFile(partial, []byte("half"), 0o644)
		return errors.New("encoder died")
	})
	if err := ff.BurnSubtitles(context.Background(), "a.mp4", cues, dest); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	for _, path := range []string{dest, partial} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s absent, stat err %v", path, err)
		}
	}
}

func TestBurnSubtitlesMissingCueFile(t *testing.T) {
	ff := NewFFmpeg("", nil)
	err := ff.BurnSubtitles(context.Background(), "a.mp4", filepath.Join(t.TempDir(), "none.srt"), "out.mp4")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestEscapeFilterValue(t *testing.T) {
	tests := map[string]string{
		"/tmp/plain.srt":   "/tmp/plain.srt",
		"Don't.srt":        `Don\\\'t.srt`,
		"a:b.srt":          `a\\:b.srt`,
		"/tmp/x [1],y.srt": `/tmp/x \[1\]\,y.srt`,
		`C:\subs\a.srt`:    `C\\:\\\\subs\\\\a.srt`,
	}
	for in, want := range tests {
		if got := escapeFilterValue(in); got != want {
			t.Errorf("escapeFilterValue(%q) = %q, want %q", in, got, want)
		}
	}
}

// unescapeLevel undoes one level of ffmpeg backslash escaping and fails on
// an unescaped terminator or quote.
func unescapeLevel(t *testing.T, value, terminators string) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c == '\\' && i+1 < len(value):
			i++
			b.WriteByte(value[i])
		case c == '\'' || strings.IndexByte(terminators, c) >= 0:
			t.Fatalf("unescaped %q in %q", c, value)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func TestEscapeFilterValueSurvivesBothParsePasses(t *testing.T) {
	for _, name := range []string{
		"/videos/Don't Look Up.srt",
		"/videos/a:b.srt",
		"/videos/Tom, Dick [2024]; cut.srt",
		`/videos/back\slash=odd.srt`,
	} {
		graph := unescapeLevel(t, escapeFilterValue(name), "[],;")
		if got := unescapeLevel(t, graph, ":"); got != name {
			t.Errorf("round trip of %q gave %q", name, got)
		}
	}
}
