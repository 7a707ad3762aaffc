package resolve

import (
	"net/url"
)

// toVimeoEmbed converts a Vimeo page or player URL to the canonical
// player-domain form. The unlisted-access hash ("h") is preserved when
// present and a Do-Not-Track flag is always appended; neither affects
// playback. Inputs with no extractable numeric id pass through unchanged.
func toVimeoEmbed(u *url.URL, candidate string) string {
	if u == nil {
		return candidate
	}

	id := vimeoID(u)
	if id == "" {
		return candidate
	}

	keep := url.Values{}
	if h := u.Query().Get("h"); h != "" {
		keep.Set("h", h)
	}
	keep.Set("dnt", "1")

	out := url.URL{
		Scheme:   "https",
		Host:     "player.vimeo.com",
		Path:     "/video/" + id,
		RawQuery: keep.Encode(),
		Fragment: u.Fragment,
	}
	return out.String()
}

// vimeoID extracts the numeric video id from a Vimeo path. Handles
// /VIDEO_ID, /channels/staffpicks/VIDEO_ID, and /video/VIDEO_ID
// (player domain). An explicit /video/ segment is preferred; otherwise
// the last fully-numeric segment wins.
func vimeoID(u *url.URL) string {
	segments := pathSegments(u)

	for i, s := range segments {
		if s == "video" && i+1 < len(segments) && isDigits(segments[i+1]) {
			return segments[i+1]
		}
	}

	for i := len(segments) - 1; i >= 0; i-- {
		if isDigits(segments[i]) {
			return segments[i]
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
