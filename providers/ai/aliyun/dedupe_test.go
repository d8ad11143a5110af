package aliyun

import (
	"strings"
	"testing"
)

func TestDeduperFullFrames(t *testing.T) {
	tests := []struct {
		name   string
		frames []string
		want   []string
	}{
		{
			name:   "cumulative frames emit suffixes",
			frames: []string{"SELECT", "SELECT 1", "SELECT 1"},
			want:   []string{"SELECT", " 1", ""},
		},
		{
			name:   "shorter repeat is skipped",
			frames: []string{"Hello world", "world"},
			want:   []string{"Hello world", ""},
		},
		{
			name:   "no common prefix is incremental",
			frames: []string{"Hello", " there", " friend"},
			want:   []string{"Hello", " there", " friend"},
		},
		{
			name:   "partial prefix is a correction",
			frames: []string{"The cat sat", "The dog"},
			want:   []string{"The cat sat", "dog"},
		},
		{
			name:   "multi byte prefix stays on rune boundary",
			frames: []string{"你好", "你们"},
			want:   []string{"你好", "们"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &deduper{}
			for i, frame := range tt.frames {
				if got := d.full(frame); got != tt.want[i] {
					t.Errorf("frame %d (%q): got %q, want %q", i, frame, got, tt.want[i])
				}
			}
		})
	}
}

func TestDeduperMixedFraming(t *testing.T) {
	type step struct {
		full bool
		text string
	}
	tests := []struct {
		name  string
		steps []step
		want  string
	}{
		{
			name:  "full frame after deltas sends only the new suffix",
			steps: []step{{false, "SEL"}, {false, "ECT"}, {true, "SELECT 1"}},
			want:  "SELECT 1",
		},
		{
			name:  "delta between full frames is not repeated",
			steps: []step{{true, "SELECT"}, {false, " 1"}, {true, "SELECT 1 FROM t"}},
			want:  "SELECT 1 FROM t",
		},
		{
			name:  "full frame equal to the deltas sends nothing",
			steps: []step{{false, "Hello"}, {false, " world"}, {true, "Hello world"}},
			want:  "Hello world",
		},
		{
			name:  "correction keeps extending",
			steps: []step{{true, "The cat sat"}, {true, "The dog"}, {true, "The dog runs"}},
			want:  "The cat satdog runs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &deduper{}
			var out strings.Builder
			for _, s := range tt.steps {
				if s.full {
					out.WriteString(d.full(s.text))
				} else {
					out.WriteString(d.delta(s.text))
				}
			}
			if out.String() != tt.want {
				t.Errorf("got %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestDeduperDelta(t *testing.T) {
	d := &deduper{}
	var out strings.Builder
	for _, piece := range []string{"Hello", " world", " world", "!"} {
		out.WriteString(d.delta(piece))
	}
	if out.String() != "Hello world!" {
		t.Errorf("expected repeated delta to be dropped, got %q", out.String())
	}
	if d.delta("") != "" {
		t.Error("empty delta forwards nothing")
	}
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"abc", "abd", 2},
		{"abc", "xyz", 0},
		{"abc", "abc", 3},
		{"", "abc", 0},
		{"你好", "你们", len("你")},
	}
	for _, tt := range tests {
		if got := commonPrefix(tt.a, tt.b); got != tt.want {
			t.Errorf("commonPrefix(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
