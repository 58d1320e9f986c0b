// Package youtube is a thin client for the two YouTube Data API v3 endpoints
// the recommendation engine needs: search and videos.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zenithmode/zenith/internal/models"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// SearchItem is one candidate video from the search endpoint.
type SearchItem struct {
	VideoID      string
	Title        string
	Description  string
	ThumbnailURL string
	ChannelTitle string
	PublishedAt  time.Time
}

// VideoDetail carries the statistics/contentDetails for one video, aligned by
// index to the search results it was requested for.
type VideoDetail struct {
	ViewCount uint64
	Duration  string
}

type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchItem, error)
	Details(ctx context.Context, ids []string) ([]VideoDetail, error)
}

type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPClient(apiKey string, logger *zap.Logger) (*HTTPClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube: no api key configured: %w", models.ErrProviderUnavailable)
	}

	return &HTTPClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}, nil
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Thumbnails  struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
			ChannelTitle string    `json:"channelTitle"`
			PublishedAt  time.Time `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *HTTPClient) Search(ctx context.Context, query string, maxResults int) ([]SearchItem, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("key", c.apiKey)

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	items := make([]SearchItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, SearchItem{
			VideoID:      it.ID.VideoID,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			ThumbnailURL: it.Snippet.Thumbnails.Medium.URL,
			ChannelTitle: it.Snippet.ChannelTitle,
			PublishedAt:  it.Snippet.PublishedAt,
		})
	}
	return items, nil
}

type videosResponse struct {
	Items []struct {
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

func (c *HTTPClient) Details(ctx context.Context, ids []string) ([]VideoDetail, error) {
	params := url.Values{}
	params.Set("part", "statistics,contentDetails")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", c.apiKey)

	var resp videosResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return nil, err
	}

	details := make([]VideoDetail, 0, len(resp.Items))
	for _, it := range resp.Items {
		// The API reports viewCount as a decimal string.
		count, err := strconv.ParseUint(it.Statistics.ViewCount, 10, 64)
		if err != nil {
			count = 0
		}
		details = append(details, VideoDetail{
			ViewCount: count,
			Duration:  it.ContentDetails.Duration,
		})
	}
	return details, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("youtube %s: %v: %w", path, err, models.ErrTransport)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("YouTube request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("youtube %s: %v: %w", path, err, models.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("YouTube returned non-OK status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("youtube %s: status %d: %w", path, resp.StatusCode, models.ErrTransport)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("youtube %s: decode: %v: %w", path, err, models.ErrTransport)
	}
	return nil
}
