package preflight

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"autosub/internal/config"
	"autosub/internal/deps"
	"autosub/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional results never fail a run.
	Optional bool
	Detail   string
}

// RunAll executes all applicable checks for cfg: binaries, the output
// directory, and the configured translation provider.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, fromStatus(status))
	}
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	if cfg.Cache.Enabled {
		results = append(results, CheckDirectoryAccess("Cache directory", filepath.Dir(cfg.Cache.Path)))
	}

	if cfg.TranslationActive() {
		switch cfg.Translation.Provider {
		case config.ProviderLLM:
			results = append(results, CheckLLM(ctx, "Translation LLM", cfg.GetLLM()))
		default:
			results = append(results, CheckGoogleTranslate(ctx, cfg.Translation.GoogleBaseURL, cfg.Translation.Target))
		}
	}
	return results
}

// RequireBinaries fails when a required binary is missing.
func RequireBinaries(cfg *config.Config) error {
	missing := deps.MissingRequired(CheckSystemDeps(cfg))
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, m := range missing {
		names[i] = fmt.Sprintf("%s (%s)", m.Name, m.Detail)
	}
	return services.Wrap(services.ErrExternalTool, "preflight", "binaries", "missing "+strings.Join(names, ", "), nil)
}

// Failed returns the required results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

func fromStatus(status deps.Status) Result {
	r := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
	if status.Available {
		r.Detail = status.Path
	} else {
		r.Detail = status.Detail
		if status.Description != "" {
			r.Detail += " - " + status.Description
		}
	}
	return r
}
