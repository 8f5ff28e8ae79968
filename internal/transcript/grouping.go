package transcript

import (
	"fmt"
	"strings"
)

// dashMarker prefixes caption lines that start a new utterance.
const dashMarker = "-"

// GroupLines folds consecutive caption lines into utterance segments. A line
// whose trimmed text starts with the dash marker opens a new segment, except
// for the very first line, which always opens the first segment. Other lines
// are space-joined onto the current segment. Each segment keeps the offset of
// its first line. Empty input yields an empty result.
func GroupLines(lines []Line) []Segment {
	if len(lines) == 0 {
		return nil
	}

	var segments []Segment
	current := Segment{
		Text:   trimMarker(lines[0].Text),
		Offset: lines[0].Offset,
	}

	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line.Text)
		if strings.HasPrefix(trimmed, dashMarker) {
			segments = append(segments, current)
			current = Segment{
				Text:   trimMarker(line.Text),
				Offset: line.Offset,
			}
			continue
		}
		if trimmed != "" {
			if current.Text != "" {
				current.Text += " "
			}
			current.Text += trimmed
		}
	}

	return append(segments, current)
}

// FormatSegments renders segments as "[<seconds>s] <text>" lines, one per
// segment, with the offset rounded up to whole seconds.
func FormatSegments(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = fmt.Sprintf("[%ds] %s", ceilSeconds(seg.Offset), seg.Text)
	}
	return strings.Join(parts, "\n")
}

func trimMarker(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, dashMarker)
	return strings.TrimSpace(trimmed)
}

func ceilSeconds(offsetMillis int) int {
	return (offsetMillis + 999) / 1000
}
