package buddha

import (
	"math/rand/v2"
	"testing"
)

func TestSampleOriginNeverEscapes(t *testing.T) {
	if traj := Sample(complex(0, 0), 10000, nil); traj != nil {
		t.Fatalf("origin escaped with trajectory of length %d", len(traj))
	}
}

func TestSampleInteriorPointsNeverEscape(t *testing.T) {
	// Period-2 cycle and main-cardioid points stay bounded forever.
	for _, c := range []complex128{
		complex(-1, 0),
		complex(-0.1, 0.1),
		complex(0.25, 0),
	} {
		if traj := Sample(c, 5000, nil); traj != nil {
			t.Errorf("Sample(%v) escaped after %d steps, want bounded", c, len(traj))
		}
	}
}

func TestSampleOutsideBailoutEscapesOnFirstIteration(t *testing.T) {
	// z1 = c, so any |c| > 2 fails the bailout test immediately.
	cases := []complex128{
		complex(3, 0),
		complex(0, -2.5),
		complex(-3, 3),
		complex(100, 100),
		complex(2.001, 0.001),
	}
	for _, c := range cases {
		traj := Sample(c, 1000, nil)
		if traj == nil {
			t.Errorf("Sample(%v) = nil, want escape", c)
			continue
		}
		if len(traj) != 1 {
			t.Errorf("Sample(%v) trajectory length = %d, want 1", c, len(traj))
		}
		if traj[0] != c {
			t.Errorf("Sample(%v) first point = %v, want c itself", c, traj[0])
		}
	}
}

func TestSampleRandomFarPointsEscapeImmediately(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 1000; i++ {
		// Random point with magnitude in (2, 10].
		re := rng.Float64()*16 - 8
		im := rng.Float64()*16 - 8
		c := complex(re, im)
		if real(c)*real(c)+imag(c)*imag(c) <= 4 {
			continue
		}
		if traj := Sample(c, 100, nil); len(traj) != 1 {
			t.Fatalf("Sample(%v) trajectory length = %d, want 1", c, len(traj))
		}
	}
}

func TestSampleEscapingTrajectoryShape(t *testing.T) {
	traj := Sample(complex(0.5, 0), 1000, nil)
	if traj == nil {
		t.Fatal("c=0.5 should escape")
	}
	for i, z := range traj[:len(traj)-1] {
		if real(z)*real(z)+imag(z)*imag(z) > 4 {
			t.Fatalf("point %d of trajectory already escaped; iteration should have stopped there", i)
		}
	}
	last := traj[len(traj)-1]
	if real(last)*real(last)+imag(last)*imag(last) <= 4 {
		t.Fatalf("last trajectory point %v is inside the bailout radius", last)
	}
}

func TestSampleIsPureAndReusesBacking(t *testing.T) {
	c := complex(0.4, 0.3)
	first := Sample(c, 1000, nil)
	if first == nil {
		t.Fatal("c=0.4+0.3i should escape")
	}
	got := Sample(c, 1000, make([]complex128, 0, len(first)))
	if len(got) != len(first) {
		t.Fatalf("repeat call length %d, want %d", len(got), len(first))
	}
	for i := range got {
		if got[i] != first[i] {
			t.Fatalf("point %d differs between calls: %v vs %v", i, got[i], first[i])
		}
	}
}
