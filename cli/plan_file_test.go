package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func writePlan(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	return path
}

func TestLoadPlanDocumentYAML(t *testing.T) {
	path := writePlan(t, "plan.yaml", `
version: 1
defaults:
  size_mb: 4
jobs:
  - source: /data/video.mp4
    prefix: video_part
  - source: /data/rows.csv
    size_mb: 1
`)
	doc, err := loadPlanDocument(path)
	if err != nil {
		t.Fatalf("load plan: %v", err)
	}
	jobs, err := doc.resolveJobs()
	if err != nil {
		t.Fatalf("resolve jobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Prefix != "video_part" || jobs[0].SizeMB != 4 {
		t.Fatalf("unexpected first job %+v", jobs[0])
	}
	if jobs[1].SizeMB != 1 {
		t.Fatalf("per-job size override lost: %+v", jobs[1])
	}
	if jobs[1].Prefix != "rows_part" {
		t.Fatalf("expected derived prefix rows_part, got %q", jobs[1].Prefix)
	}
	if !jobs[0].WriteManifest || !jobs[1].WriteManifest {
		t.Fatalf("manifest should default to true")
	}
}

func TestLoadPlanDocumentJSON(t *testing.T) {
	path := writePlan(t, "plan.json", `{
  "version": 1,
  "defaults": {"prefix": "p", "manifest": false},
  "jobs": [{"source": "a.bin", "size_mb": 2}]
}`)
	doc, err := loadPlanDocument(path)
	if err != nil {
		t.Fatalf("load plan: %v", err)
	}
	jobs, err := doc.resolveJobs()
	if err != nil {
		t.Fatalf("resolve jobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Prefix != "p" || jobs[0].SizeMB != 2 {
		t.Fatalf("unexpected job %+v", jobs[0])
	}
	if jobs[0].WriteManifest {
		t.Fatalf("default manifest=false should apply")
	}
}

func TestLoadPlanDocumentRejectsEmptyJobs(t *testing.T) {
	path := writePlan(t, "plan.yaml", "version: 1\njobs: []\n")
	if _, err := loadPlanDocument(path); err == nil {
		t.Fatalf("expected error for plan without jobs")
	}
}

func TestLoadPlanDocumentRejectsUnknownVersion(t *testing.T) {
	path := writePlan(t, "plan.yaml", "version: 9\njobs:\n  - source: a.bin\n")
	if _, err := loadPlanDocument(path); err == nil {
		t.Fatalf("expected error for unsupported version")
	}
}

func TestResolveJobsRejectsMissingSource(t *testing.T) {
	doc := &planDocument{Jobs: []planJob{{Source: "   "}}}
	if _, err := doc.resolveJobs(); err == nil {
		t.Fatalf("expected error for blank source")
	}
}
