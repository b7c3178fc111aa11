package lane

// Classify partitions segments into left and right boundary candidates.
//
// Segments whose slope sign is zero (horizontal) or undefined (vertical) are
// discarded. A nil or empty input yields two empty, non-nil groups. The input
// slice is not modified.
func Classify(segs []Segment) (left, right []Segment) {
	left = make([]Segment, 0, len(segs)/2)
	right = make([]Segment, 0, len(segs)/2)
	for _, s := range segs {
		switch s.Side() {
		case SideLeft:
			left = append(left, s)
		case SideRight:
			right = append(right, s)
		}
	}
	return left, right
}
