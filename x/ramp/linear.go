package ramp

import (
	"time"

	"hhgarden-go/x/mathx"
)

// Step applies one set of channel levels, each in [0..top].
type Step func(levels []uint16) error

// Tick waits for d and reports whether to continue (false => cancelled).
type Tick func(d time.Duration) bool

// Linear walks every channel from cur[i] to to[i] in equal integer steps.
// The final levels are always exactly to (clamped to top) unless tick
// cancels first, in which case Linear returns false. steps==0 or d==0
// snaps straight to the target.
func Linear(cur, to []uint16, top uint16, d time.Duration, steps uint16, tick Tick, set Step) (bool, error) {
	n := mathx.Min(len(cur), len(to))
	final := make([]uint16, n)
	for i := range final {
		final[i] = mathx.Min(to[i], top)
	}
	if steps == 0 || d <= 0 {
		return true, set(final)
	}

	stepDur := d / time.Duration(steps)
	if stepDur <= 0 {
		stepDur = time.Millisecond
	}
	st := int32(steps)
	delta := make([]int32, n)
	acc := make([]int32, n)
	level := make([]int32, n)
	for i := 0; i < n; i++ {
		delta[i] = int32(final[i]) - int32(cur[i])
		level[i] = int32(cur[i])
	}

	out := make([]uint16, n)
	for s := uint16(1); s < steps; s++ {
		if !tick(stepDur) {
			return false, nil
		}
		moved := false
		for i := 0; i < n; i++ {
			acc[i] += delta[i]
			if inc := acc[i] / st; inc != 0 {
				acc[i] -= inc * st
				level[i] = mathx.Clamp(level[i]+inc, 0, int32(top))
				moved = true
			}
			out[i] = uint16(level[i])
		}
		if moved {
			if err := set(out); err != nil {
				return false, err
			}
		}
	}
	if !tick(stepDur) {
		return false, nil
	}
	return true, set(final)
}
