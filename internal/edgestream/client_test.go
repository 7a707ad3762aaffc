package edgestream

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("901", "test-key", "")
	c.APIBase = srv.URL
	return c
}

func TestListVideos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("AccessKey"); got != "test-key" {
			t.Errorf("AccessKey header = %q, want %q", got, "test-key")
		}
		if r.URL.Path != "/library/901/videos" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("itemsPerPage") != "5" || q.Get("search") != "montage" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{
			"items": [
				{"guid": "abc-def", "title": "Plan large", "length": 125.6, "status": 4},
				{"guid": "ghi-jkl", "title": "Plan serre", "length": 30.2, "thumbnailFileName": "ghi-jkl/cover.jpg", "status": 4}
			],
			"totalItems": 37,
			"currentPage": 2,
			"itemsPerPage": 5
		}`)
	})

	videos, total, err := c.ListVideos(2, 5, "montage")
	if err != nil {
		t.Fatalf("ListVideos() error: %v", err)
	}
	if total != 37 {
		t.Errorf("total = %d, want 37", total)
	}
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(videos))
	}

	first := videos[0]
	if first.ID != "abc-def" || first.Title != "Plan large" {
		t.Errorf("first video = %+v", first)
	}
	if first.DurationSeconds != 126 {
		t.Errorf("DurationSeconds = %d, want 126 (rounded)", first.DurationSeconds)
	}
	if first.EmbedURL != "https://iframe.edgestream.net/embed/901/abc-def" {
		t.Errorf("EmbedURL = %q", first.EmbedURL)
	}
	if first.HLSURL != "https://vz-901-abc-def.es-cdn.net/playlist.m3u8" {
		t.Errorf("HLSURL = %q", first.HLSURL)
	}
	if first.ThumbnailURL != "https://vz-901.es-cdn.net/abc-def/thumbnail.jpg" {
		t.Errorf("ThumbnailURL = %q", first.ThumbnailURL)
	}
	if videos[1].ThumbnailURL != "https://vz-901.es-cdn.net/ghi-jkl/cover.jpg" {
		t.Errorf("named thumbnail = %q", videos[1].ThumbnailURL)
	}
}

func TestListVideosDefaultsPaging(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "1" || q.Get("itemsPerPage") != "12" {
			t.Errorf("query = %q, want defaulted paging", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"items": [], "totalItems": 0}`)
	})

	if _, _, err := c.ListVideos(0, -3, ""); err != nil {
		t.Fatalf("ListVideos() error: %v", err)
	}
}

func TestListVideosAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	if _, _, err := c.ListVideos(1, 12, ""); err == nil {
		t.Error("ListVideos() succeeded on a 401 response")
	}
}

func TestGetVideo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/901/videos/abc-def" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"guid": "abc-def", "title": "Plan large", "length": 12, "status": 4}`)
	})

	v, err := c.GetVideo("abc-def")
	if err != nil {
		t.Fatalf("GetVideo() error: %v", err)
	}
	if v.ID != "abc-def" || v.DurationSeconds != 12 {
		t.Errorf("GetVideo() = %+v", v)
	}
}

func TestClientRequiresCredentials(t *testing.T) {
	if _, _, err := NewClient("", "key", "").ListVideos(1, 12, ""); err == nil {
		t.Error("ListVideos() worked without a library ID")
	}
	if _, _, err := NewClient("901", "", "").ListVideos(1, 12, ""); err == nil {
		t.Error("ListVideos() worked without an access key")
	}
	if _, err := NewClient("901", "key", "").GetVideo(""); err == nil {
		t.Error("GetVideo() accepted an empty video ID")
	}
}
