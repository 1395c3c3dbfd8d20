package detection

import (
	"image"
	"strings"
	"testing"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	if p.Confidence != 0.3 {
		t.Errorf("Confidence: got %v, want 0.3", p.Confidence)
	}
	if p.IoU != 0.5 {
		t.Errorf("IoU: got %v, want 0.5", p.IoU)
	}
	if p.MaxDetections != 5 {
		t.Errorf("MaxDetections: got %d, want 5", p.MaxDetections)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ModelPath == "" {
		t.Error("DefaultConfig: ModelPath should not be empty")
	}
	if cfg.InputWidth <= 0 {
		t.Errorf("DefaultConfig: InputWidth should be positive, got %d", cfg.InputWidth)
	}
	if cfg.InputHeight <= 0 {
		t.Errorf("DefaultConfig: InputHeight should be positive, got %d", cfg.InputHeight)
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{0, "person"},
		{ClassBackpack, "backpack"},
		{ClassHandbag, "handbag"},
		{ClassSuitcase, "suitcase"},
		{79, "toothbrush"},
		{80, "class_80"},
		{-1, "class_-1"},
	}

	for _, tc := range tests {
		if got := ClassName(tc.id); got != tc.want {
			t.Errorf("ClassName(%d) = %q, want %q", tc.id, got, tc.want)
		}
	}

	if len(COCOClasses) != 80 {
		t.Errorf("COCOClasses: got %d names, want 80", len(COCOClasses))
	}
}

func TestDetection_String(t *testing.T) {
	d := Detection{ClassID: 24, Confidence: 0.4242, Box: image.Rect(10, 10, 50, 50)}
	s := d.String()
	if !strings.Contains(s, "class=24") || !strings.Contains(s, "conf=0.42") {
		t.Errorf("String: got %q", s)
	}
}
