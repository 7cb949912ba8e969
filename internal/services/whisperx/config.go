package whisperx

// Config captures runtime settings for WhisperX transcription.
type Config struct {
	// Model is the Whisper model name (e.g. "small", "large-v3", "base.en").
	Model string
	// Device is "cpu", "cuda", or "auto" (cuda when nvidia-smi is present).
	Device string
	// ComputeType is passed through on CPU runs.
	ComputeType string
	// Language forces the spoken language; empty lets the model detect it.
	Language string
	// EnhanceConsistency conditions each window on the previous text.
	EnhanceConsistency bool
}

// WhisperX invocation constants.
const (
	DefaultModel       = "small"
	DefaultComputeType = "float32"
	CUDAIndexURL       = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL       = "https://pypi.org/simple"
	OutputFormat       = "json"
	CPUDevice          = "cpu"
	CUDADevice         = "cuda"
	AutoDevice         = "auto"
)

// Command names for external tools.
const (
	UVXCommand       = "uvx"
	WhisperXPackage  = "whisperx"
	NvidiaSMICommand = "nvidia-smi"
)
