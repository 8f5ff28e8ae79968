package transcript

// Line is one timed caption unit as returned by the transcript source.
// Offset and Duration are in milliseconds.
type Line struct {
	Text     string `json:"text"`
	Offset   int    `json:"offset"`
	Duration int    `json:"duration"`
}

// Segment is a merged run of lines representing one utterance. Offset is
// the first line's offset in milliseconds.
type Segment struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
}

// Transcript is the full fetch result for one video.
type Transcript struct {
	VideoID  string `json:"video_id"`
	Language string `json:"language"`
	Lines    []Line `json:"lines"`
}
