// Package edgestream knows the EdgeStream CDN's URL grammar and talks to
// its management API.
//
// Recognized shapes:
//   - Direct-play page: https://iframe.edgestream.net/play/{LIBRARY_ID}/{VIDEO_ID}
//   - Embed page:       https://iframe.edgestream.net/embed/{LIBRARY_ID}/{VIDEO_ID}
//   - CDN HLS/MP4:      https://vz-{lib}-{vid}.es-cdn.net/playlist.m3u8 (or .mp4),
//     optionally on a customer-configured CDN hostname.
//
// "play" and "embed" are both iframe-only HTML pages; CDN URLs are raw
// media a native element can load.
package edgestream

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// iframeDomain hosts the "play" and "embed" pages.
	iframeDomain = "edgestream.net"
	// cdnSuffix is the shared suffix of EdgeStream's per-library CDN zones.
	cdnSuffix = ".es-cdn.net"
)

// safeURL parses a URL candidate, returning nil on any failure.
func safeURL(raw string) *url.URL {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}

// onDomain reports whether host is domain or a subdomain of it.
func onDomain(host, domain string) bool {
	h := strings.ToLower(host)
	if i := strings.LastIndex(h, ":"); i >= 0 {
		h = h[:i]
	}
	return h == domain || strings.HasSuffix(h, "."+domain)
}

// IsHost reports whether host belongs to EdgeStream. customCDN is the
// optional customer-configured CDN hostname; empty disables the check.
func IsHost(host, customCDN string) bool {
	h := strings.ToLower(host)
	if onDomain(h, iframeDomain) || strings.HasSuffix(h, cdnSuffix) {
		return true
	}
	return customCDN != "" && strings.Contains(h, strings.ToLower(customCDN))
}

// IsURL reports whether raw parses and sits on an EdgeStream domain.
func IsURL(raw, customCDN string) bool {
	u := safeURL(raw)
	return u != nil && IsHost(u.Host, customCDN)
}

// IsIframePage reports whether raw is an iframe-able "embed" or "play"
// page (as opposed to a raw CDN media URL).
func IsIframePage(raw string) bool {
	u := safeURL(raw)
	if u == nil || !onDomain(u.Host, iframeDomain) {
		return false
	}
	return strings.HasPrefix(u.Path, "/embed/") || strings.HasPrefix(u.Path, "/play/")
}

// PlayToEmbed rewrites a "play" page URL to the equivalent "embed" page,
// which is the form meant for iframing. Anything else passes through
// unchanged, so the rewrite is idempotent.
func PlayToEmbed(raw string) string {
	u := safeURL(raw)
	if u == nil || !onDomain(u.Host, iframeDomain) || !strings.HasPrefix(u.Path, "/play/") {
		return raw
	}
	u.Path = "/embed/" + strings.TrimPrefix(u.Path, "/play/")
	return u.String()
}

// EmbedURL builds the official iframe embed URL for a library video.
func EmbedURL(libraryID, videoID string) string {
	return fmt.Sprintf("https://iframe.%s/embed/%s/%s",
		iframeDomain, strings.TrimSpace(libraryID), strings.TrimSpace(videoID))
}

// HLSURL builds a direct-play HLS URL for a library video. The per-library
// zone naming is a common convention, not a contract; prefer URLs the
// provider hands out when available. A configured custom CDN hostname
// takes precedence.
func HLSURL(libraryID, videoID, customCDN string) string {
	if customCDN != "" {
		return fmt.Sprintf("https://%s/%s/playlist.m3u8", customCDN, videoID)
	}
	return fmt.Sprintf("https://vz-%s-%s%s/playlist.m3u8", libraryID, videoID, cdnSuffix)
}

// ThumbnailURL builds a best-effort thumbnail URL for a library video.
// The API-provided file name is preferred when present; otherwise the
// conventional {guid}/thumbnail.jpg path is assumed.
func ThumbnailURL(libraryID, videoID, thumbnailFileName string) string {
	zone := fmt.Sprintf("https://vz-%s%s", libraryID, cdnSuffix)
	if thumbnailFileName != "" {
		if !strings.HasPrefix(thumbnailFileName, "/") {
			thumbnailFileName = "/" + thumbnailFileName
		}
		return zone + thumbnailFileName
	}
	return fmt.Sprintf("%s/%s/thumbnail.jpg", zone, videoID)
}
