package neural

import (
	"math"
	"testing"
)

func TestEncodeLayout(t *testing.T) {
	const coord float32 = 1.37
	const bands = 3
	const tol = 1e-6

	enc := Encode(coord, bands)

	if len(enc) != 1+2*bands {
		t.Fatalf("Encode returned %d values, want %d", len(enc), 1+2*bands)
	}

	if enc[0] != coord {
		t.Errorf("enc[0] = %f, want raw coordinate %f", enc[0], coord)
	}

	// Frequencies double starting at 1, sin before cos.
	freq := 1.0
	c := float64(coord)
	for b := 0; b < bands; b++ {
		wantSin := float32(math.Sin(freq * c))
		wantCos := float32(math.Cos(freq * c))
		if got := enc[1+2*b]; math.Abs(float64(got-wantSin)) > tol {
			t.Errorf("band %d sin = %f, want %f", b, got, wantSin)
		}
		if got := enc[2+2*b]; math.Abs(float64(got-wantCos)) > tol {
			t.Errorf("band %d cos = %f, want %f", b, got, wantCos)
		}
		freq *= 2
	}
}

func TestEncodeIntoAppends(t *testing.T) {
	dst := make([]float32, 0, 2*PosPerCoord)
	dst = EncodeInto(dst, 0.5, PosBands)
	dst = EncodeInto(dst, -0.5, PosBands)

	if len(dst) != 2*PosPerCoord {
		t.Fatalf("two encodes produced %d values, want %d", len(dst), 2*PosPerCoord)
	}
	if dst[0] != 0.5 || dst[PosPerCoord] != -0.5 {
		t.Errorf("raw coordinates not at expected offsets: %f, %f", dst[0], dst[PosPerCoord])
	}
}

func TestEncodeZero(t *testing.T) {
	enc := Encode(0, PosBands)
	// sin(0)=0, cos(0)=1 at every band.
	for b := 0; b < PosBands; b++ {
		if enc[1+2*b] != 0 {
			t.Errorf("band %d sin(0) = %f, want 0", b, enc[1+2*b])
		}
		if enc[2+2*b] != 1 {
			t.Errorf("band %d cos(0) = %f, want 1", b, enc[2+2*b])
		}
	}
}
