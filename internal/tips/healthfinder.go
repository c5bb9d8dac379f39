package tips

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"healthpage/internal/core"
	"healthpage/internal/logger"
)

// DefaultEndpoint is the MyHealthfinder personalized recommendations API.
const DefaultEndpoint = "https://odphp.health.gov/myhealthfinder/api/v3/myhealthfinder.json"

// HealthFinder queries the MyHealthfinder API.
type HealthFinder struct {
	endpoint string
	client   *http.Client
	sampler  *sampler
}

// NewHealthFinder creates a client for endpoint. A zero seed samples differently on every run.
func NewHealthFinder(endpoint string, timeout time.Duration, sampleSize int, seed int64) *HealthFinder {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HealthFinder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		sampler:  newSampler(sampleSize, seed),
	}
}

type healthFinderResponse struct {
	Result struct {
		Resources *struct {
			All *struct {
				Resource []healthFinderResource `json:"Resource"`
			} `json:"all"`
		} `json:"Resources"`
	} `json:"Result"`
}

type healthFinderResource struct {
	Title       string `json:"MyHFTitle"`
	Description string `json:"MyHFDescription"`
}

// Tips fetches recommendations for the profile and returns a random sample of them.
func (h *HealthFinder) Tips(ctx context.Context, p core.Profile) ([]core.Tip, error) {
	u, err := url.Parse(h.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid tips endpoint %s: %w", h.endpoint, err)
	}
	q := u.Query()
	q.Set("age", strconv.Itoa(p.Age))
	q.Set("sex", string(p.Gender))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tips: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch tips: status code %d", resp.StatusCode)
	}

	var payload healthFinderResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode tips response: %w", err)
	}
	if payload.Result.Resources == nil || payload.Result.Resources.All == nil {
		return nil, ErrNoResources
	}

	resources := payload.Result.Resources.All.Resource
	all := make([]core.Tip, 0, len(resources))
	for _, res := range resources {
		title := res.Title
		if title == "" {
			title = "No Title"
		}
		all = append(all, core.Tip{Title: title, Description: StripHTML(res.Description)})
	}

	sampled := h.sampler.sample(all)
	logger.Debug("Fetched health tips", "available", len(all), "sampled", len(sampled))
	return sampled, nil
}
