package split

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		path     string
		expected Kind
	}{
		{"data.csv", KindCSV},
		{"/tmp/report.CSV", KindUnsupported},
		{"song.mp3", KindBinary},
		{"clip.mp4", KindBinary},
		{"blob.bin", KindBinary},
		{"notes.txt", KindUnsupported},
		{"noext", KindUnsupported},
		{"dir/archive.tar.bin", KindBinary},
	}
	for _, tc := range tests {
		if got := Detect(tc.path); got != tc.expected {
			t.Fatalf("Detect(%q)=%v want %v", tc.path, got, tc.expected)
		}
	}
}

func TestPartName(t *testing.T) {
	if got := PartName("part", 1, ".bin"); got != "part1.bin" {
		t.Fatalf("unexpected part name %q", got)
	}
	if got := PartName("out/chunk_", 12, ""); got != "out/chunk_12" {
		t.Fatalf("unexpected part name %q", got)
	}
	if got := PartName("p", 3, CSVExt); got != "p3.csv" {
		t.Fatalf("unexpected part name %q", got)
	}
}

func TestExt(t *testing.T) {
	if got := Ext("movie.mp4"); got != ".mp4" {
		t.Fatalf("unexpected extension %q", got)
	}
	if got := Ext("noext"); got != "" {
		t.Fatalf("expected empty extension, got %q", got)
	}
}
