package nav

import "math"

// Carousel layout tuning. Items fan out from the center with shrinking scale;
// side items are rotated toward the center, the closest pair the least.
const (
	centerScale  = 1.18
	scaleFalloff = 0.14
	minScale     = 0.55
	baseRotation = 28.0
	rotationStep = 7.0
	maxRotation  = 56.0
)

// Slot describes the presentation transform of one carousel item relative to
// the centered item.
type Slot struct {
	Offset   int     // signed distance from center
	Scale    float64
	Rotation float64 // degrees; negative left of center, positive right
	Depth    int     // stacking order, center highest
}

// CarouselLayout computes the transform of every item in an n-item carousel
// centered on the given index. The center item is unrotated and scaled up;
// items strictly left rotate one way and items strictly right the other, with
// scale and stacking falling off by distance.
func CarouselLayout(n, center int) []Slot {
	slots := make([]Slot, n)
	for i := 0; i < n; i++ {
		d := i - center
		dist := int(math.Abs(float64(d)))
		s := Slot{Offset: d, Depth: n - dist}
		if d == 0 {
			s.Scale = centerScale
			slots[i] = s
			continue
		}
		s.Scale = 1.0 - scaleFalloff*float64(dist)
		if s.Scale < minScale {
			s.Scale = minScale
		}
		rot := baseRotation + rotationStep*float64(dist-1)
		if rot > maxRotation {
			rot = maxRotation
		}
		if d < 0 {
			rot = -rot
		}
		s.Rotation = rot
		slots[i] = s
	}
	return slots
}
