package edgestream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"coursecast/internal/httputil"
	"coursecast/internal/media"
)

// DefaultAPIBase is the EdgeStream management API endpoint.
const DefaultAPIBase = "https://api.edgestream.net"

// Client talks to the EdgeStream management API for one video library.
type Client struct {
	APIBase   string // override for tests; DefaultAPIBase when empty
	LibraryID string
	AccessKey string
	CustomCDN string // optional customer CDN hostname for direct-play URLs

	http *http.Client
}

// NewClient creates a management API client for the given library.
func NewClient(libraryID, accessKey, customCDN string) *Client {
	return &Client{
		APIBase:   DefaultAPIBase,
		LibraryID: libraryID,
		AccessKey: accessKey,
		CustomCDN: customCDN,
		http:      httputil.NewClient(),
	}
}

// apiVideo is the wire shape of one library video.
type apiVideo struct {
	GUID              string  `json:"guid"`
	Title             string  `json:"title"`
	Length            float64 `json:"length"` // seconds
	ThumbnailFileName string  `json:"thumbnailFileName"`
	Status            int     `json:"status"`
}

// apiListResponse is the wire shape of the paged listing endpoint.
type apiListResponse struct {
	Items        []apiVideo `json:"items"`
	TotalItems   int        `json:"totalItems"`
	CurrentPage  int        `json:"currentPage"`
	ItemsPerPage int        `json:"itemsPerPage"`
}

func (c *Client) creds() error {
	if c.LibraryID == "" {
		return fmt.Errorf("EdgeStream library ID is not configured")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("EdgeStream access key is not configured")
	}
	return nil
}

func (c *Client) apiBase() string {
	if c.APIBase != "" {
		return c.APIBase
	}
	return DefaultAPIBase
}

// toLibraryVideo converts a wire video into the domain shape, attaching the
// derived embed, HLS, and thumbnail URLs.
func (c *Client) toLibraryVideo(v apiVideo) media.LibraryVideo {
	return media.LibraryVideo{
		ID:              v.GUID,
		Title:           v.Title,
		DurationSeconds: int(v.Length + 0.5),
		Status:          v.Status,
		EmbedURL:        EmbedURL(c.LibraryID, v.GUID),
		HLSURL:          HLSURL(c.LibraryID, v.GUID, c.CustomCDN),
		ThumbnailURL:    ThumbnailURL(c.LibraryID, v.GUID, v.ThumbnailFileName),
	}
}

// ListVideos returns one page of the library plus the total item count.
// page starts at 1; perPage <= 0 selects the API default of 12.
func (c *Client) ListVideos(page, perPage int, search string) ([]media.LibraryVideo, int, error) {
	if err := c.creds(); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 12
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("itemsPerPage", strconv.Itoa(perPage))
	if search != "" {
		q.Set("search", search)
	}

	endpoint := fmt.Sprintf("%s/library/%s/videos?%s", c.apiBase(), url.PathEscape(c.LibraryID), q.Encode())
	body, err := httputil.GetJSON(c.http, endpoint, map[string]string{"AccessKey": c.AccessKey})
	if err != nil {
		return nil, 0, fmt.Errorf("listing library videos: %w", err)
	}

	var resp apiListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("decoding library listing: %w", err)
	}

	videos := make([]media.LibraryVideo, 0, len(resp.Items))
	for _, item := range resp.Items {
		videos = append(videos, c.toLibraryVideo(item))
	}
	return videos, resp.TotalItems, nil
}

// GetVideo fetches metadata for a single library video by GUID.
func (c *Client) GetVideo(videoID string) (*media.LibraryVideo, error) {
	if err := c.creds(); err != nil {
		return nil, err
	}
	if videoID == "" {
		return nil, fmt.Errorf("video ID cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/library/%s/videos/%s",
		c.apiBase(), url.PathEscape(c.LibraryID), url.PathEscape(videoID))
	body, err := httputil.GetJSON(c.http, endpoint, map[string]string{"AccessKey": c.AccessKey})
	if err != nil {
		return nil, fmt.Errorf("fetching video metadata: %w", err)
	}

	var item apiVideo
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("decoding video metadata: %w", err)
	}

	v := c.toLibraryVideo(item)
	return &v, nil
}
