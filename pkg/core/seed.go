package core

// DeriveSeed maps a root seed and a trial index to that trial's private seed
// using a splitmix64 step. The derivation depends only on its inputs, so
// reruns with the same root seed reproduce every trial's random stream no
// matter how the scheduler interleaves them.
func DeriveSeed(root int64, index int) int64 {
	z := uint64(root) + uint64(index+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
