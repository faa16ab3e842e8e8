package images

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"imagefinder/pkg/logger"
)

const (
	defaultBaseURL = "https://api.unsplash.com"
	perPage        = 20
)

type ImageURLs struct {
	Small   string `json:"small"`
	Regular string `json:"regular"`
	Full    string `json:"full"`
}

type Attribution struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type ImageLinks struct {
	HTML string `json:"html"`
}

// Image is one Unsplash search result, trimmed to what the dashboard renders.
type Image struct {
	ID             string      `json:"id"`
	URLs           ImageURLs   `json:"urls"`
	AltDescription string      `json:"alt_description"`
	User           Attribution `json:"user"`
	Links          ImageLinks  `json:"links"`
}

type Client struct {
	BaseURL    string
	AccessKey  string
	HTTPClient *http.Client
}

func NewClient(accessKey string) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		AccessKey:  accessKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Search fetches one page of results for query. Pages are 1-based and
// capped at perPage results by the API call itself.
func (c *Client) Search(query string, page int) ([]Image, error) {
	if page < 1 {
		page = 1
	}

	endpoint := fmt.Sprintf("%s/search/photos?query=%s&page=%d&per_page=%d",
		c.BaseURL, url.QueryEscape(query), page, perPage)

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Client-ID "+c.AccessKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Sugar.Errorf("Unsplash request failed: %v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Sugar.Errorf("Unsplash returned status %d for query %q", resp.StatusCode, query)
		return nil, fmt.Errorf("failed to fetch images from Unsplash (status %d)", resp.StatusCode)
	}

	var body struct {
		Results []Image `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode Unsplash response: %w", err)
	}
	return body.Results, nil
}
