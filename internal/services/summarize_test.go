package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubebrief/tubebrief-backend/internal/llm"
	"github.com/tubebrief/tubebrief-backend/internal/models"
	"github.com/tubebrief/tubebrief-backend/internal/transcript"
)

type fakeSummaryRepo struct {
	mu      sync.Mutex
	records map[string]*models.Summary
	upserts int

	// onFind, when set, is invoked on every lookup.
	onFind func()
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{records: make(map[string]*models.Summary)}
}

func (r *fakeSummaryRepo) key(summaryType, externalID string) string {
	return summaryType + ":" + externalID
}

func (r *fakeSummaryRepo) FindByExternalID(ctx context.Context, summaryType, externalID string) (*models.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.onFind != nil {
		r.onFind()
	}
	rec, ok := r.records[r.key(summaryType, externalID)]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (r *fakeSummaryRepo) Upsert(ctx context.Context, summary *models.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if summary.ID == "" {
		summary.ID = fmt.Sprintf("id-%d", r.upserts)
	}
	copied := *summary
	r.records[r.key(summary.Type, summary.ExternalID)] = &copied
	return nil
}

func (r *fakeSummaryRepo) ListRecent(ctx context.Context, summaryType string, limit int) ([]*models.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Summary
	for _, rec := range r.records {
		if rec.Type == summaryType && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeFetcher struct {
	mu       sync.Mutex
	lines    []transcript.Line
	language string
	err      error
	fetches  int

	// block, when set, holds Fetch until the channel is closed.
	block chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, videoID string) (*transcript.Transcript, error) {
	f.mu.Lock()
	f.fetches++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &transcript.Transcript{VideoID: videoID, Language: f.language, Lines: f.lines}, nil
}

func (f *fakeFetcher) FetchMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	return &models.VideoMetadata{VideoID: videoID, Title: "Test Video", AuthorName: "Tester"}, nil
}

type fakeSummarizer struct {
	mu      sync.Mutex
	calls   int
	err     error
	summary string
}

func (s *fakeSummarizer) SummarizeTranscript(ctx context.Context, text string) (*llm.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Result{
		Data: models.SummaryData{
			Title:     "Test Video",
			Summary:   s.summary,
			KeyPoints: []string{"point"},
		},
		Usage: models.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}

// fakeSplitter treats every word as one token.
type fakeSplitter struct{}

func (fakeSplitter) CountTokens(text string) int { return len(splitWords(text)) }

func (fakeSplitter) Split(text string, maxTokens int) []string {
	words := splitWords(text)
	if len(words) <= maxTokens {
		return []string{text}
	}
	var chunks []string
	for start := 0; start < len(words); start += maxTokens {
		end := start + maxTokens
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, joinWords(words[start:end]))
	}
	return chunks
}

func splitWords(text string) []string {
	var words []string
	word := ""
	for _, r := range text {
		if r == ' ' || r == '\n' {
			if word != "" {
				words = append(words, word)
				word = ""
			}
			continue
		}
		word += string(r)
	}
	if word != "" {
		words = append(words, word)
	}
	return words
}

func joinWords(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}

func testLines() []transcript.Line {
	return []transcript.Line{
		{Text: "- Intro", Offset: 0},
		{Text: "more", Offset: 1200},
		{Text: "- Next part", Offset: 5000},
	}
}

func newTestService(repo *fakeSummaryRepo, fetcher *fakeFetcher, summarizer *fakeSummarizer, budget int) *SummarizeService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewSummarizeService(repo, fetcher, summarizer, fakeSplitter{}, budget, logger)
}

func TestSummarizeVideo_CreatesRecord(t *testing.T) {
	repo := newFakeSummaryRepo()
	fetcher := &fakeFetcher{lines: testLines(), language: "en"}
	summarizer := &fakeSummarizer{summary: "the summary"}
	svc := newTestService(repo, fetcher, summarizer, 1000)

	summary, err := svc.SummarizeVideo(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", nil, false)
	require.NoError(t, err)

	assert.Equal(t, models.SummaryTypeYouTube, summary.Type)
	assert.Equal(t, "dQw4w9WgXcQ", summary.ExternalID)
	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, 1, summarizer.calls)

	data, ok := summary.Output["en"].(models.SummaryData)
	require.True(t, ok)
	assert.Equal(t, "the summary", data.Summary)

	metadata, ok := summary.Output["metadata"].(*models.VideoMetadata)
	require.True(t, ok)
	assert.Equal(t, "Test Video", metadata.Title)
}

func TestSummarizeVideo_InvalidURL(t *testing.T) {
	repo := newFakeSummaryRepo()
	fetcher := &fakeFetcher{lines: testLines()}
	summarizer := &fakeSummarizer{summary: "unused"}
	svc := newTestService(repo, fetcher, summarizer, 1000)

	_, err := svc.SummarizeVideo(context.Background(), "not a video url", nil, false)

	assert.ErrorIs(t, err, transcript.ErrInvalidURL)
	assert.Equal(t, 0, fetcher.fetches)
	assert.Equal(t, 0, summarizer.calls)
	assert.Equal(t, 0, repo.upserts)
}

func TestSummarizeVideo_SecondCallIsIdempotent(t *testing.T) {
	repo := newFakeSummaryRepo()
	fetcher := &fakeFetcher{lines: testLines(), language: "en"}
	summarizer := &fakeSummarizer{summary: "first"}
	svc := newTestService(repo, fetcher, summarizer, 1000)

	first, err := svc.SummarizeVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ", nil, false)
	require.NoError(t, err)

	second, err := svc.SummarizeVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ", nil, false)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, summarizer.calls, "cached request must not summarize again")
	assert.Equal(t, 1, repo.upserts)
}

func TestSummarizeVideo_ConcurrentRequestsShareOneBuild(t *testing.T) {
	repo := newFakeSummaryRepo()
	lookups := make(chan struct{}, 4)
	repo.onFind = func() { lookups <- struct{}{} }

	release := make(chan struct{})
	fetcher := &fakeFetcher{lines: testLines(), language: "en", block: release}
	summarizer := &fakeSummarizer{summary: "shared"}
	svc := newTestService(repo, fetcher, summarizer, 1000)

	var wg sync.WaitGroup
	results := make([]*models.Summary, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.SummarizeVideo(context.Background(), "dQw4w9WgXcQ", nil, false)
		}(i)
	}

	// Both requests miss the cache before the blocked build is released, so
	// the second one must join the first's in-flight build.
	<-lookups
	<-lookups
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 1, summarizer.calls, "coalesced requests must summarize once")
	assert.Equal(t, 1, repo.upserts)
	assert.Equal(t, results[0].ID, results[1].ID)
}

func TestSummarizeVideo_BuildSurvivesCallerCancellation(t *testing.T) {
	repo := newFakeSummaryRepo()
	fetcher := &fakeFetcher{lines: testLines(), language: "en"}
	summarizer := &fakeSummarizer{summary: "detached"}
	svc := newTestService(repo, fetcher, summarizer, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := svc.SummarizeVideo(ctx, "dQw4w9WgXcQ", nil, false)
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", summary.ExternalID)
	assert.Equal(t, 1, repo.upserts)
}

func TestSummarizeVideo_RefreshIgnoredForUnprivilegedCaller(t *testing.T) {
	repo := newFakeSummaryRepo()
	fetcher := &fakeFetcher{lines: testLines(), language: "en"}
	summarizer := &fakeSummarizer{summary: "first"}
	svc := newTestService(repo, fetcher, summarizer, 1000)

	_, err := svc.SummarizeVideo(context.Background(), "dQw4w9WgXcQ", nil, false)
	require.NoError(t, err)

	caller := &models.UserContext{Role: models.RoleUser}
	_, err = svc.SummarizeVideo(context.Background(), "dQw4w9WgXcQ", caller, true)
	require.NoError(t, err)

	assert.Equal(t, 1, summarizer.calls)
}

func TestSummarizeVideo_PrivilegedRefreshOverwrites(t *testing.T) {
	repo := newFakeSummaryRepo()
	fetcher := &fakeFetcher{lines: testLines(), language: "en"}
	summarizer := &fakeSummarizer{summary: "first"}
	svc := newTestService(repo, fetcher, summarizer, 1000)

	first, err := svc.SummarizeVideo(context.Background(), "dQw4w9WgXcQ", nil, false)
	require.NoError(t, err)

	summarizer.summary = "rebuilt"
	caller := &models.UserContext{Role: models.RoleAuthor}
	refreshed, err := svc.SummarizeVideo(context.Background(), "dQw4w9WgXcQ", caller, true)
	require.NoError(t, err)

	assert.Equal(t, 2, summarizer.calls)
	assert.Equal(t, first.ID, refreshed.ID, "refresh keeps the record id")
	assert.Equal(t, first.ExternalID, refreshed.ExternalID)
	assert.Equal(t, first.Type, refreshed.Type)

	data, ok := refreshed.Output["en"].(models.SummaryData)
	require.True(t, ok)
	assert.Equal(t, "rebuilt", data.Summary)
}

func TestSummarizeVideo_TranscriptFailureWritesNothing(t *testing.T) {
	repo := newFakeSummaryRepo()
	fetcher := &fakeFetcher{err: fmt.Errorf("fetch exploded")}
	summarizer := &fakeSummarizer{summary: "unused"}
	svc := newTestService(repo, fetcher, summarizer, 1000)

	_, err := svc.SummarizeVideo(context.Background(), "dQw4w9WgXcQ", nil, false)

	assert.Error(t, err)
	assert.Equal(t, 0, summarizer.calls)
	assert.Equal(t, 0, repo.upserts)
}

func TestSummarizeVideo_SummarizerFailureWritesNothing(t *testing.T) {
	repo := newFakeSummaryRepo()
	fetcher := &fakeFetcher{lines: testLines()}
	summarizer := &fakeSummarizer{err: llm.ErrMalformedResponse}
	svc := newTestService(repo, fetcher, summarizer, 1000)

	_, err := svc.SummarizeVideo(context.Background(), "dQw4w9WgXcQ", nil, false)

	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
	assert.Equal(t, 0, repo.upserts)
}

func TestSummarizeVideo_LongTranscriptUsesFirstChunkOnly(t *testing.T) {
	lines := make([]transcript.Line, 0, 50)
	for i := 0; i < 50; i++ {
		lines = append(lines, transcript.Line{
			Text:   fmt.Sprintf("- word%d", i),
			Offset: i * 1000,
		})
	}

	repo := newFakeSummaryRepo()
	fetcher := &fakeFetcher{lines: lines, language: "en"}
	summarizer := &fakeSummarizer{summary: "long"}
	// Budget of 10 word-tokens forces splitting.
	svc := newTestService(repo, fetcher, summarizer, 10)

	_, err := svc.SummarizeVideo(context.Background(), "dQw4w9WgXcQ", nil, false)
	require.NoError(t, err)

	assert.Equal(t, 1, summarizer.calls)
	assert.Equal(t, 1, repo.upserts)
}

func TestListRecent(t *testing.T) {
	repo := newFakeSummaryRepo()
	fetcher := &fakeFetcher{lines: testLines(), language: "en"}
	summarizer := &fakeSummarizer{summary: "s"}
	svc := newTestService(repo, fetcher, summarizer, 1000)

	for _, id := range []string{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc", "ddddddddddd"} {
		_, err := svc.SummarizeVideo(context.Background(), id, nil, false)
		require.NoError(t, err)
	}

	recent, err := svc.ListRecent(context.Background())
	require.NoError(t, err)
	assert.Len(t, recent, RecentLimit)
}
