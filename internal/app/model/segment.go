package model

// AudioSegment is a time-bounded slice of the source audio produced by
// the segmenter. Index defines merge order. The file at Path is deleted
// by the controller right after its transcription call returns.
type AudioSegment struct {
	Index    int
	Start    float64 // source offset, seconds
	Duration float64 // seconds
	Overlap  float64 // duration shared with the previous segment, seconds
	Path     string
}

// TextUnit is one time-aligned span of transcript text, when the
// provider returns them.
type TextUnit struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SegmentTranscript is the provider output for one segment.
type SegmentTranscript struct {
	Index int
	Text  string
	Units []TextUnit
}
