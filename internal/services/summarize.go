package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/tubebrief/tubebrief-backend/internal/llm"
	"github.com/tubebrief/tubebrief-backend/internal/models"
	"github.com/tubebrief/tubebrief-backend/internal/repository"
	"github.com/tubebrief/tubebrief-backend/internal/transcript"
)

// RecentLimit is how many records the listing endpoint returns.
const RecentLimit = 3

// buildTimeout bounds a summary build once it has been detached from the
// requesting caller's context.
const buildTimeout = 2 * time.Minute

// TranscriptFetcher retrieves transcripts and metadata for a video
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (*transcript.Transcript, error)
	FetchMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error)
}

// TokenSplitter bounds text by a token budget
type TokenSplitter interface {
	CountTokens(text string) int
	Split(text string, maxTokens int) []string
}

// SummarizeService orchestrates the transcript-to-summary pipeline
type SummarizeService struct {
	repo        repository.SummaryRepository
	transcripts TranscriptFetcher
	summarizer  llm.Summarizer
	splitter    TokenSplitter
	tokenBudget int
	logger      *logrus.Logger

	// group coalesces concurrent builds of the same uncached video so the
	// transcript fetch and LLM call run at most once per video at a time.
	group singleflight.Group
}

// NewSummarizeService creates a new summarize service. tokenBudget is the
// maximum number of transcript tokens sent to the model.
func NewSummarizeService(
	repo repository.SummaryRepository,
	transcripts TranscriptFetcher,
	summarizer llm.Summarizer,
	splitter TokenSplitter,
	tokenBudget int,
	logger *logrus.Logger,
) *SummarizeService {
	return &SummarizeService{
		repo:        repo,
		transcripts: transcripts,
		summarizer:  summarizer,
		splitter:    splitter,
		tokenBudget: tokenBudget,
		logger:      logger,
	}
}

// SummarizeVideo returns the summary record for the video behind url,
// computing and persisting it on first request. Repeat requests return the
// stored record unchanged. A privileged caller may set refresh to rebuild
// the record in place; the flag is ignored for everyone else.
func (s *SummarizeService) SummarizeVideo(ctx context.Context, url string, caller *models.UserContext, refresh bool) (*models.Summary, error) {
	videoID, err := transcript.ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	forceRefresh := refresh && caller != nil && caller.CanRefresh()

	existing, err := s.repo.FindByExternalID(ctx, models.SummaryTypeYouTube, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up summary: %w", err)
	}
	if existing != nil && !forceRefresh {
		return existing, nil
	}

	result, err, _ := s.group.Do(videoID, func() (interface{}, error) {
		// The build is shared by every coalesced caller, so it must not die
		// with whichever request happened to start it.
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()
		return s.build(buildCtx, videoID, existing)
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.Summary), nil
}

// ListRecent returns the newest summary records
func (s *SummarizeService) ListRecent(ctx context.Context) ([]*models.Summary, error) {
	return s.repo.ListRecent(ctx, models.SummaryTypeYouTube, RecentLimit)
}

// build runs the full pipeline for one video and upserts the result. It is
// only ever invoked through the singleflight group.
func (s *SummarizeService) build(ctx context.Context, videoID string, existing *models.Summary) (*models.Summary, error) {
	tr, err := s.transcripts.Fetch(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}

	metadata, err := s.transcripts.FetchMetadata(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video metadata: %w", err)
	}
	if metadata.Language == "" {
		metadata.Language = tr.Language
	}

	segments := transcript.GroupLines(tr.Lines)
	text := transcript.FormatSegments(segments)

	chunks := s.splitter.Split(text, s.tokenBudget)
	if len(chunks) > 1 {
		s.logger.WithFields(logrus.Fields{
			"video_id": videoID,
			"chunks":   len(chunks),
		}).Warn("transcript exceeds token budget, summarizing first chunk only")
	}

	result, err := s.summarizer.SummarizeTranscript(ctx, chunks[0])
	if err != nil {
		return nil, err
	}

	language := tr.Language
	if language == "" {
		language = "en"
	}

	summary := &models.Summary{
		Type:       models.SummaryTypeYouTube,
		ExternalID: videoID,
		Output: models.JSONB{
			"metadata": metadata,
			language:   result.Data,
		},
		Usage: models.JSONB{
			"prompt_tokens":     result.Usage.PromptTokens,
			"completion_tokens": result.Usage.CompletionTokens,
			"total_tokens":      result.Usage.TotalTokens,
		},
	}
	if existing != nil {
		// Refresh keeps the record's identity and overwrites its content.
		summary.ID = existing.ID
		summary.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Upsert(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to persist summary: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"video_id":     videoID,
		"total_tokens": result.Usage.TotalTokens,
	}).Info("summary created")

	return summary, nil
}
