package socketio

// stepThreshold is how many degrees of dial rotation produce one cursor step.
const stepThreshold = 30.0

// Dial converts raw rotary angle deltas from the client's disk surface into
// discrete cursor steps. Residual rotation below the threshold carries over
// to the next movement within the same gesture.
type Dial struct {
	accumulator float64
}

// Move feeds an angle delta in degrees (positive clockwise) and returns the
// cursor steps it yields: +1 steps for each full clockwise threshold, -1 for
// counterclockwise. Deltas are normalized into (-180, 180] so a gesture
// crossing the ±180° seam does not register as a full spin.
func (d *Dial) Move(delta float64) []int {
	for delta > 180 {
		delta -= 360
	}
	for delta < -180 {
		delta += 360
	}
	d.accumulator += delta

	var steps []int
	for d.accumulator > stepThreshold {
		steps = append(steps, 1)
		d.accumulator -= stepThreshold
	}
	for d.accumulator < -stepThreshold {
		steps = append(steps, -1)
		d.accumulator += stepThreshold
	}
	return steps
}

// Reset clears residual rotation at the end of a gesture.
func (d *Dial) Reset() {
	d.accumulator = 0
}
