// features_test.go - feature banner sorting and the no-features fallback.

package hollycore

import (
	"strings"
	"testing"
)

func TestPrintFeaturesSortsRegisteredNames(t *testing.T) {
	saved := compiledFeatures
	compiledFeatures = []string{"vulkan-render", "ebiten-video"}
	defer func() { compiledFeatures = saved }()

	var buf strings.Builder
	PrintFeatures(&buf)
	out := buf.String()

	ebiten := strings.Index(out, "ebiten-video")
	vulkan := strings.Index(out, "vulkan-render")
	if ebiten == -1 || vulkan == -1 {
		t.Fatalf("both feature names expected in output, got %q", out)
	}
	if ebiten > vulkan {
		t.Fatalf("expected ebiten-video (alphabetically first) before vulkan-render, got %q", out)
	}
}

func TestPrintFeaturesNoneRegistered(t *testing.T) {
	saved := compiledFeatures
	compiledFeatures = nil
	defer func() { compiledFeatures = saved }()

	var buf strings.Builder
	PrintFeatures(&buf)
	if !strings.Contains(buf.String(), "(none)") {
		t.Fatalf("expected the no-features fallback line, got %q", buf.String())
	}
}
