package buddha

// Sample iterates z = z*z + c from z = 0, recording every intermediate value.
// It returns the recorded trajectory as soon as |z|^2 exceeds 4 (the point
// escaped), or nil if the point stays bounded for maxIter steps. Bounded
// points contribute no density: only escaping trajectories are accumulated.
//
// dst, when non-nil, is reused as backing storage for the result so the hot
// loop allocates nothing; pass the previous return value back in.
// Sample is pure and safe to call from any number of goroutines.
func Sample(c complex128, maxIter uint32, dst []complex128) []complex128 {
	z := complex(0, 0)
	traj := dst[:0]
	for n := uint32(0); n < maxIter; n++ {
		z = z*z + c
		traj = append(traj, z)
		// Squared magnitude against the squared bailout radius; no sqrt
		// in the hot loop.
		if real(z)*real(z)+imag(z)*imag(z) > 4 {
			return traj
		}
	}
	return nil
}
