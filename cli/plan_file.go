package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// A plan document batches chunk jobs so many files can be split in one
// invocation. YAML is the default format; .json is also accepted.
type planDocument struct {
	Version  int           `json:"version" yaml:"version"`
	Defaults *planDefaults `json:"defaults" yaml:"defaults"`
	Jobs     []planJob     `json:"jobs" yaml:"jobs"`
}

type planDefaults struct {
	Prefix   string `json:"prefix" yaml:"prefix"`
	SizeMB   int64  `json:"size_mb" yaml:"size_mb"`
	Manifest *bool  `json:"manifest" yaml:"manifest"`
}

type planJob struct {
	Source   string `json:"source" yaml:"source"`
	Prefix   string `json:"prefix" yaml:"prefix"`
	SizeMB   int64  `json:"size_mb" yaml:"size_mb"`
	Manifest *bool  `json:"manifest" yaml:"manifest"`
}

type resolvedJob struct {
	Source        string
	Prefix        string
	SizeMB        int64
	WriteManifest bool
}

func loadPlanDocument(path string) (*planDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	format := strings.ToLower(filepath.Ext(path))
	if format != ".yaml" && format != ".yml" && format != ".json" {
		format = ".yaml"
	}

	var doc planDocument
	switch format {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse plan file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse plan file: %w", err)
		}
	}

	if doc.Version != 0 && doc.Version != 1 {
		return nil, fmt.Errorf("unsupported plan version %d", doc.Version)
	}
	if len(doc.Jobs) == 0 {
		return nil, fmt.Errorf("plan file %s declares no jobs", path)
	}
	return &doc, nil
}

// resolveJobs applies document defaults and per-job overrides. Jobs without a
// prefix derive one from the source filename stem.
func (doc *planDocument) resolveJobs() ([]resolvedJob, error) {
	defaults := planDefaults{SizeMB: 1}
	if doc.Defaults != nil {
		if doc.Defaults.Prefix != "" {
			defaults.Prefix = doc.Defaults.Prefix
		}
		if doc.Defaults.SizeMB > 0 {
			defaults.SizeMB = doc.Defaults.SizeMB
		}
		defaults.Manifest = doc.Defaults.Manifest
	}

	jobs := make([]resolvedJob, 0, len(doc.Jobs))
	for i, job := range doc.Jobs {
		source := strings.TrimSpace(job.Source)
		if source == "" {
			return nil, fmt.Errorf("job %d has no source", i+1)
		}

		prefix := strings.TrimSpace(job.Prefix)
		if prefix == "" {
			prefix = defaults.Prefix
		}
		if prefix == "" {
			base := filepath.Base(source)
			prefix = strings.TrimSuffix(base, filepath.Ext(base)) + "_part"
		}

		sizeMB := job.SizeMB
		if sizeMB <= 0 {
			sizeMB = defaults.SizeMB
		}

		writeManifest := true
		if job.Manifest != nil {
			writeManifest = *job.Manifest
		} else if defaults.Manifest != nil {
			writeManifest = *defaults.Manifest
		}

		jobs = append(jobs, resolvedJob{
			Source:        source,
			Prefix:        prefix,
			SizeMB:        sizeMB,
			WriteManifest: writeManifest,
		})
	}
	return jobs, nil
}
