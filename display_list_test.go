// display_list_test.go - face color helpers: clamping, intensity scaling,
// and the packed-ARGB decode used by Type0 vertices.

package hollycore

import "testing"

func TestFaceColorFromFloatsClamps(t *testing.T) {
	// faceColorFromFloats takes channels in [0,1] and scales by 255;
	// out-of-range inputs clamp rather than wrap.
	c := faceColorFromFloats(-1, 2, 0.5, 1)
	if c.A != 0 || c.R != 255 || c.G != 127 || c.B != 255 {
		t.Fatalf("clamped color = %+v, want A=0 R=255 G=127 B=255", c)
	}
}

func TestScaleByIntensityPreservesAlpha(t *testing.T) {
	c := FaceColor{R: 200, G: 100, B: 50, A: 255}
	scaled := scaleByIntensity(c, 128)
	// 200*128/255 = 100 (integer division)
	if scaled.R != 100 {
		t.Fatalf("R = %d, want 100", scaled.R)
	}
	if scaled.A != 255 {
		t.Fatalf("A = %d, want preserved 255", scaled.A)
	}
}

func TestScaleByIntensityZeroBlacksOutRGB(t *testing.T) {
	c := FaceColor{R: 200, G: 100, B: 50, A: 255}
	scaled := scaleByIntensity(c, 0)
	if scaled.R != 0 || scaled.G != 0 || scaled.B != 0 {
		t.Fatalf("scaled = %+v, want RGB all 0", scaled)
	}
}

func TestPackedColorToFaceColorDecode(t *testing.T) {
	c := packedColorToFaceColor(0xFFCC8844)
	if c.A != 0xFF || c.R != 0xCC || c.G != 0x88 || c.B != 0x44 {
		t.Fatalf("decoded = %+v, want A=FF R=CC G=88 B=44", c)
	}
}
