package cue

// screen coordinate normalized to [0,1], origin bottom-left
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Raw is a caption record as produced by a parser, before normalization.
// Start and End are in the caller's time unit (milliseconds for subtitle
// files, seconds for lyric files).
type Raw struct {
	Start float64
	End   float64
	Text  string
}

// Cue is a normalized caption unit. Text is free of inline markup and
// End is always greater than Start.
type Cue struct {
	Start    float64
	End      float64
	Text     string
	Italic   bool
	Bold     bool
	Position *Position
}

// video frame size used to convert pixel positions
type Resolution struct {
	Width  int
	Height int
}

// identity used for batch deduplication
func (c Cue) key() string {
	return formatKey(c.Start, c.End, c.Text)
}
