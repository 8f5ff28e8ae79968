package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimedText(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
	<text start="0" dur="1.2">- Intro</text>
	<text start="1.2" dur="3.8">more &amp; more</text>
	<text start="5" dur="2">- Next part</text>
</transcript>`)

	lines, err := parseTimedText(body)
	require.NoError(t, err)

	assert.Equal(t, []Line{
		{Text: "- Intro", Offset: 0, Duration: 1200},
		{Text: "more & more", Offset: 1200, Duration: 3800},
		{Text: "- Next part", Offset: 5000, Duration: 2000},
	}, lines)
}

func TestParseTimedText_SkipsEmptyLines(t *testing.T) {
	body := []byte(`<transcript><text start="0" dur="1"> </text><text start="1" dur="1">ok</text></transcript>`)

	lines, err := parseTimedText(body)
	require.NoError(t, err)

	assert.Len(t, lines, 1)
	assert.Equal(t, "ok", lines[0].Text)
}

func TestParseTimedText_InvalidXML(t *testing.T) {
	_, err := parseTimedText([]byte(`{"not": "xml"}`))
	assert.Error(t, err)
}

func TestPickTrack_PrefersManualCaptions(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "auto", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "manual", LanguageCode: "en"},
	}

	assert.Equal(t, "manual", pickTrack(tracks).BaseURL)
}

func TestPickTrack_FallsBackToAutoGenerated(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "auto", LanguageCode: "en", Kind: "asr"},
	}

	assert.Equal(t, "auto", pickTrack(tracks).BaseURL)
}
