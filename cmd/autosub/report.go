package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"autosub/internal/pipeline"
)

func renderReport(report pipeline.Report, colorize bool) string {
	columns := []column{
		{header: "File"},
		{header: "State"},
		{header: "Stage"},
		{header: "Language"},
		{header: "Cues", right: true},
		{header: "Failed Batches", right: true},
		{header: "Output"},
		{header: "Detail"},
	}
	rows := make([][]string, 0, len(report.Files))
	for _, f := range report.Files {
		rows = append(rows, []string{
			filepath.Base(f.Input),
			paint(string(f.State), stateKind(f), colorize),
			dash(f.Stage),
			dash(f.Language),
			strconv.Itoa(f.Segments),
			strconv.Itoa(f.FailedBatches),
			dash(outputPath(f)),
			dash(detail(f)),
		})
	}
	return renderTable(columns, rows, summarizeReport(report))
}

func summarizeReport(report pipeline.Report) string {
	succeeded, failed, cancelled := report.Counts()
	parts := []string{
		fmt.Sprintf("%d succeeded", succeeded),
		fmt.Sprintf("%d failed", failed),
	}
	if cancelled > 0 {
		parts = append(parts, fmt.Sprintf("%d cancelled", cancelled))
	}
	if partial := report.PartialTranslations(); partial > 0 {
		parts = append(parts, fmt.Sprintf("%d with partial translations", partial))
	}
	return fmt.Sprintf("Run %s: %s in %s", report.RunID, strings.Join(parts, ", "), report.Elapsed.Round(time.Millisecond))
}

func stateKind(f pipeline.FileResult) statusKind {
	switch {
	case f.OK() && f.FailedBatches > 0:
		return statusWarn
	case f.OK():
		return statusOK
	case f.State == pipeline.StateCancelled:
		return statusWarn
	default:
		return statusError
	}
}

func outputPath(f pipeline.FileResult) string {
	if f.VideoPath != "" {
		return f.VideoPath
	}
	return f.SubtitlePath
}

func detail(f pipeline.FileResult) string {
	switch {
	case f.Err != nil:
		if kind := f.ErrorKind(); kind != "" {
			return kind + ": " + f.Err.Error()
		}
		return f.Err.Error()
	case f.SkipReason != "":
		return f.SkipReason
	}
	return ""
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
