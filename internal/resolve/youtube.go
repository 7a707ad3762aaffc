package resolve

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// startMarkerPattern matches compound duration strings like "1h2m3s",
// "1m30s", or "45s". Every component is optional.
var startMarkerPattern = regexp.MustCompile(`(?i)(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s)?`)

// toYouTubeEmbed converts any recognized YouTube URL shape to the
// canonical embed form, carrying the start-time marker over as a
// start=<seconds> parameter. Unrecognized shapes pass through unchanged.
func toYouTubeEmbed(u *url.URL, candidate string) string {
	if u == nil {
		return candidate
	}

	host := bareHost(u)
	segments := pathSegments(u)

	// youtu.be/VIDEO_ID
	if host == "youtu.be" {
		if len(segments) == 0 {
			return candidate
		}
		return embedURL(segments[0], startParam(u))
	}

	// youtube.com/watch?v=VIDEO_ID
	if u.Path == "/watch" {
		id := strings.TrimSpace(u.Query().Get("v"))
		if id == "" {
			return candidate
		}
		return embedURL(id, startParam(u))
	}

	// youtube.com/embed/VIDEO_ID is already the canonical form.
	if strings.HasPrefix(u.Path, "/embed/") {
		return candidate
	}

	// youtube.com/shorts/VIDEO_ID
	if strings.HasPrefix(u.Path, "/shorts/") && len(segments) >= 2 {
		return embedURL(segments[1], "")
	}

	return candidate
}

func embedURL(id, start string) string {
	if start != "" {
		return fmt.Sprintf("https://www.youtube.com/embed/%s?start=%s", id, start)
	}
	return "https://www.youtube.com/embed/" + id
}

// startParam reads the URL's time marker (t or time_continue) and
// renders it as whole seconds, or "" when absent.
func startParam(u *url.URL) string {
	q := u.Query()
	t := q.Get("t")
	if t == "" {
		t = q.Get("time_continue")
	}
	if t == "" {
		return ""
	}
	return strconv.Itoa(parseStartSeconds(t))
}

// parseStartSeconds converts a time marker to whole seconds. Supports
// plain integers ("90") and compound durations ("1h2m3s" -> 3723).
// Unparseable markers yield 0.
func parseStartSeconds(t string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}

	m := startMarkerPattern.FindStringSubmatch(t)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.Atoi(m[3])
	return h*3600 + min*60 + s
}

// pathSegments splits a URL path into its non-empty segments.
func pathSegments(u *url.URL) []string {
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
