package timeline

import (
	"fmt"
	"sort"

	"github.com/mgpai22/subtrack/internal/cue"
)

// PlacedItem is a cue bound to a track and a frame range.
type PlacedItem struct {
	Track      int
	StartFrame int
	EndFrame   int
	Text       string
	Italic     bool
	Bold       bool
	Position   *cue.Position
}

func (p PlacedItem) Span() Span {
	return Span{Track: p.Track, Start: p.StartFrame, End: p.EndFrame}
}

// Place converts each cue to frames and assigns it the first free track.
// Items are returned in input order together with the updated occupancy.
func Place(
	cues []cue.Cue,
	occupied []Span,
	conv Converter,
) ([]PlacedItem, []Span, error) {
	if err := conv.Validate(); err != nil {
		return nil, occupied, err
	}

	items := make([]PlacedItem, 0, len(cues))
	for i, c := range cues {
		start, err := conv.Frame(c.Start)
		if err != nil {
			return nil, occupied, fmt.Errorf("cue %d: %w", i, err)
		}
		end, err := conv.Frame(c.End)
		if err != nil {
			return nil, occupied, fmt.Errorf("cue %d: %w", i, err)
		}
		// rounding can collapse a short cue to zero frames
		if end <= start {
			end = start + 1
		}

		track := FindFreeTrack(occupied, start, end)
		item := PlacedItem{
			Track:      track,
			StartFrame: start,
			EndFrame:   end,
			Text:       c.Text,
			Italic:     c.Italic,
			Bold:       c.Bold,
			Position:   c.Position,
		}
		occupied = Occupy(occupied, item.Span())
		items = append(items, item)
	}

	return items, occupied, nil
}

// SortByStart orders items by start frame, keeping document order for ties.
func SortByStart(items []PlacedItem) []PlacedItem {
	sorted := make([]PlacedItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartFrame < sorted[j].StartFrame
	})
	return sorted
}
