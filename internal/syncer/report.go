// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package syncer

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/capsync/pkg/types"
)

// Report is the on-disk record of one batch run. A researcher can keep
// these alongside the library as a sync audit trail.
type Report struct {
	Timestamp time.Time          `yaml:"timestamp"`
	Summary   ReportSummary      `yaml:"summary"`
	Results   []types.SyncResult `yaml:"results"`
}

// ReportSummary stores run statistics.
type ReportSummary struct {
	Total  int `yaml:"total"`
	Synced int `yaml:"synced"`
	Failed int `yaml:"failed"`
}

// WriteReport saves a batch run to a YAML file.
func WriteReport(path string, results []types.SyncResult) error {
	sum := Summarize(results)
	report := Report{
		Timestamp: time.Now(),
		Summary: ReportSummary{
			Total:  sum.Total(),
			Synced: sum.Synced,
			Failed: sum.Failed,
		},
		Results: results,
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a previously written report.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &report, nil
}
