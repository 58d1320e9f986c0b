// Package recommend turns free-text video queries into ranked recommendation
// lists: it normalizes the query with the focus context, fetches candidates
// plus statistics from the video provider, and orders them by a deterministic
// relevance score.
package recommend

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zenithmode/zenith/internal/models"
	"github.com/zenithmode/zenith/internal/youtube"
)

// fillerWords are stripped from raw queries as whole words before the search
// is issued; they carry no signal for the provider.
var fillerWords = regexp.MustCompile(`(?i)\b(show|find|recommend|suggest|me|some|a|the|videos?|youtube|tutorials?)\b`)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeQuery strips filler tokens, prefixes the focus mode when set, and
// adds a tutorial/guide hint when the remaining text asks to learn or asks
// how. Total: empty input yields an empty query for the caller to validate.
func NormalizeQuery(raw string, focus models.FocusState) string {
	stripped := fillerWords.ReplaceAllString(raw, " ")
	stripped = strings.TrimSpace(whitespace.ReplaceAllString(stripped, " "))

	var parts []string
	if focus.Mode != "" {
		parts = append(parts, string(focus.Mode))
	}

	lower := strings.ToLower(stripped)
	if strings.Contains(lower, "learn") {
		parts = append(parts, "tutorial")
	} else if strings.Contains(lower, "how") {
		parts = append(parts, "guide")
	}

	if stripped != "" {
		parts = append(parts, stripped)
	}
	return strings.Join(parts, " ")
}

// Score ranks a video by view count weighted with publication recency:
// log10(views+1) * (0.7 + 0.3 * max(0, 1 - daysSince/365)). The recency
// weight decays linearly to zero over a year and floors at 0.7 afterwards.
func Score(viewCount uint64, publishedAt, now time.Time) float64 {
	days := now.Sub(publishedAt).Hours() / 24
	recency := math.Max(0, 1-days/365)
	return math.Log10(float64(viewCount)+1) * (0.7 + 0.3*recency)
}

type Engine struct {
	client youtube.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewEngine(client youtube.Client, logger *zap.Logger) *Engine {
	return &Engine{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Search fetches up to maxResults candidates for query, enriches them with
// statistics, and returns them sorted by descending relevance score. Ties
// keep provider order. An empty provider result is an empty list, not an
// error.
func (e *Engine) Search(ctx context.Context, query string, maxResults int) ([]models.Recommendation, error) {
	items, err := e.client.Search(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("video search: %w", err)
	}
	if len(items) == 0 {
		return []models.Recommendation{}, nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.VideoID
	}

	details, err := e.client.Details(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("video details: %w", err)
	}

	now := e.now()
	recs := make([]models.Recommendation, len(items))
	for i, it := range items {
		rec := models.Recommendation{
			ID:           it.VideoID,
			Title:        it.Title,
			Description:  it.Description,
			ThumbnailURL: it.ThumbnailURL,
			ChannelTitle: it.ChannelTitle,
			PublishedAt:  it.PublishedAt,
		}
		if i < len(details) {
			rec.ViewCount = details[i].ViewCount
			rec.Duration = details[i].Duration
		}
		rec.RelevanceScore = Score(rec.ViewCount, rec.PublishedAt, now)
		recs[i] = rec
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].RelevanceScore > recs[j].RelevanceScore
	})

	e.logger.Debug("video search ranked",
		zap.String("query", query),
		zap.Int("results", len(recs)))
	return recs, nil
}
