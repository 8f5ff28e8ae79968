package transcript

import (
	"errors"
	"regexp"
)

// ErrInvalidURL is returned when no video ID can be parsed from the input.
var ErrInvalidURL = errors.New("invalid YouTube URL or video ID")

var (
	videoIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/|/embed/|/shorts/|/v/)([0-9A-Za-z_-]{11})`)
	bareIDPattern  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
)

// ExtractVideoID parses the 11-character video ID out of a YouTube URL.
// A bare video ID is accepted as-is.
func ExtractVideoID(input string) (string, error) {
	if bareIDPattern.MatchString(input) {
		return input, nil
	}

	matches := videoIDPattern.FindStringSubmatch(input)
	if len(matches) < 2 {
		return "", ErrInvalidURL
	}
	return matches[1], nil
}
