package ffprobe

import (
	"context"
	"errors"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		video    bool
		audio    bool
		duration float64
	}{
		{
			name:     "video with audio",
			result:   Result{Streams: []Stream{{CodecType: "video"}, {CodecType: "audio"}}, Format: Format{Duration: "123.45"}},
			video:    true,
			audio:    true,
			duration: 123.45,
		},
		{
			name:     "stream duration fallback",
			result:   Result{Streams: []Stream{{CodecType: "audio", Duration: "10.5"}, {CodecType: "audio", Duration: "12"}}, Format: Format{Duration: "N/A"}},
			audio:    true,
			duration: 12,
		},
		{
			name:   "nothing known",
			result: Result{Format: Format{Duration: "-3"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.HasVideo(); got != tt.video {
				t.Errorf("HasVideo = %v, want %v", got, tt.video)
			}
			if got := tt.result.HasAudio(); got != tt.audio {
				t.Errorf("HasAudio = %v, want %v", got, tt.audio)
			}
			if got := tt.result.DurationSeconds(); got != tt.duration {
				t.Errorf("DurationSeconds = %v, want %v", got, tt.duration)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	prober := New("")
	var gotBinary string
	var gotArgs []string
	prober.WithRunner(func(ctx context.Context, binary string, args ...string) ([]byte, error) {
		gotBinary, gotArgs = binary, args
		return []byte(`{"streams":[{"index":0,"codec_type":"video"}],"format":{"duration":"42.0"}}`), nil
	})

	result, err := prober.Inspect(context.Background(), "/media/movie.mkv")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if gotBinary != "ffprobe" || gotArgs[len(gotArgs)-1] != "/media/movie.mkv" {
		t.Fatalf("unexpected invocation %s %v", gotBinary, gotArgs)
	}
	if !result.HasVideo() || result.DurationSeconds() != 42 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestInspectErrors(t *testing.T) {
	prober := New("ffprobe")
	if _, err := prober.Inspect(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}

	prober.WithRunner(func(context.Context, string, ...string) ([]byte, error) { return nil, errors.New("exit status 1") })
	if _, err := prober.Inspect(context.Background(), "x.mp4"); err == nil {
		t.Fatal("expected runner error")
	}

	prober.WithRunner(func(context.Context, string, ...string) ([]byte, error) { return []byte("not json"), nil })
	if _, err := prober.Inspect(context.Background(), "x.mp4"); err == nil {
		t.Fatal("expected parse error")
	}
}
