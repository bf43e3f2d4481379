package buddha

import (
	"context"
	"fmt"
	"math/rand/v2"
)

// defaultBatchSize bounds how many sample points one batch tests. A batch is
// the unit of cancellation and progress reporting: nothing interrupts a
// batch mid-trajectory, and a render job yields between batches.
const defaultBatchSize = 8192

// sampleBatch tests n uniformly-random points from the viewport's visible
// region and collects the flat buffer index of every in-range trajectory
// point. It does not touch any buffer itself; the caller commits the
// returned hits (or discards them if the job was superseded meanwhile).
//
// traj and hits are reusable backing slices; both are returned grown.
func sampleBatch(rng *rand.Rand, vp Viewport, maxIter uint32, n int, traj []complex128, hits []int32) ([]int32, []complex128) {
	reg := vp.Region()
	dx := reg.Xmax - reg.Xmin
	dy := reg.Ymax - reg.Ymin
	for range n {
		c := complex(reg.Xmin+rng.Float64()*dx, reg.Ymin+rng.Float64()*dy)
		traj = Sample(c, maxIter, traj)
		for _, z := range traj {
			if x, y, ok := vp.ToScreen(z); ok {
				hits = append(hits, int32(y*vp.Width+x))
			}
		}
	}
	return hits, traj
}

// renderBuffer runs the full sampling loop synchronously into a fresh
// buffer, checking ctx once per batch. It backs upscaled exports, where the
// histogram is recomputed at the higher resolution instead of interpolated.
func renderBuffer(ctx context.Context, p Params, width, height, batchSize int) (*Buffer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	buf := NewBuffer(width, height)
	vp := Viewport{Width: width, Height: height, Zoom: p.Zoom, CenterX: p.CenterX, CenterY: p.CenterY}
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	var traj []complex128
	hits := make([]int32, 0, 4*batchSize)
	var processed uint64
	for processed < p.Samples {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render interrupted: %w", err)
		}
		n := batchSize
		if rem := p.Samples - processed; rem < uint64(n) {
			n = int(rem)
		}
		hits, traj = sampleBatch(rng, vp, p.Iterations, n, traj, hits[:0])
		for _, i := range hits {
			buf.add(int(i))
		}
		processed += uint64(n)
	}
	return buf, nil
}
