package timeline

// Span is one occupied [Start, End) frame range on a track.
type Span struct {
	Track int
	Start int
	End   int
}

func (s Span) overlaps(start, end int) bool {
	return s.Start < end && s.End > start
}

// FindFreeTrack returns the lowest track, starting at 1, on which [start, end)
// overlaps nothing in occupied. Tracks are scanned up to the highest used
// track plus one, so a free track always exists. The choice is greedy per
// call; callers pass the occupancy updated with every previous placement.
func FindFreeTrack(occupied []Span, start, end int) int {
	maxTrack := 0
	for _, s := range occupied {
		if s.Track > maxTrack {
			maxTrack = s.Track
		}
	}

	for track := 1; track <= maxTrack+1; track++ {
		free := true
		for _, s := range occupied {
			if s.Track == track && s.overlaps(start, end) {
				free = false
				break
			}
		}
		if free {
			return track
		}
	}

	return maxTrack + 1
}

// Occupy returns a new snapshot with span appended; occupied is not modified.
func Occupy(occupied []Span, span Span) []Span {
	next := make([]Span, len(occupied), len(occupied)+1)
	copy(next, occupied)
	return append(next, span)
}
