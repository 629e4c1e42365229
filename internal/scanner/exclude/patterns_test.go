package exclude

import "testing"

func TestNew_NoPatterns(t *testing.T) {
	if m := New(nil); m != nil {
		t.Errorf("New(nil) = %v, want nil", m)
	}
	if m := New([]string{"", "  "}); m != nil {
		t.Errorf("New(blanks) = %v, want nil", m)
	}

	var m *Matcher
	if m.IsExcluded("anything", false) {
		t.Error("nil matcher should exclude nothing")
	}
	if m.Patterns() != nil {
		t.Error("nil matcher should have no patterns")
	}
}

func TestMatcher_IsExcluded(t *testing.T) {
	m := New([]string{"tmp/", "*.bai", "scratch/old", "README", "./cache/"})

	tests := []struct {
		name  string
		path  string
		isDir bool
		want  bool
	}{
		{"dir pattern matches dir", "tmp", true, true},
		{"dir pattern matches child", "tmp/a.fa", false, true},
		{"dir pattern matches nested dir by name", "reads/tmp", true, true},
		{"dir pattern does not match file by name", "reads/tmp", false, false},
		{"glob on base name", "reads/sample.bam.bai", false, true},
		{"glob miss", "reads/sample.bam", false, false},
		{"exact path", "scratch/old", true, true},
		{"below exact path", "scratch/old/x.gff", false, true},
		{"sibling of exact path", "scratch/older", true, false},
		{"bare name matches file anywhere", "genomes/README", false, true},
		{"bare name does not match dir elsewhere", "genomes/README", true, false},
		{"leading dot slash pattern", "cache/x", false, true},
		{"root is never excluded", ".", true, false},
		{"unrelated", "genomes/chr1.fa", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.IsExcluded(tt.path, tt.isDir); got != tt.want {
				t.Errorf("IsExcluded(%q, %v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
			}
		})
	}
}

func TestMatcher_NoDefaults(t *testing.T) {
	m := New([]string{"*.tmp"})
	for _, p := range []string{".git", ".DS_Store", "node_modules", "run.log"} {
		if m.IsExcluded(p, false) {
			t.Errorf("%q excluded without a matching pattern", p)
		}
	}
	if got := m.Patterns(); len(got) != 1 || got[0] != "*.tmp" {
		t.Errorf("Patterns() = %v", got)
	}
}
