package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sentiment-aligner/src/models"
)

// WriteReportJSON encodes report as indented JSON. Absent values are null.
func WriteReportJSON(w io.Writer, report models.MReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// SaveReport writes report to dir/<TICKER>.json, replacing any previous file.
func SaveReport(dir string, report models.MReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, strings.ToUpper(report.Ticker)+".json")
	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteReportJSON(tmp, report); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move report into place: %w", err)
	}
	return path, nil
}
