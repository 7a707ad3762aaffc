package resolve

import (
	"net/url"
	"strings"
)

// driveIDStrip removes any character outside the base64url-ish set Drive
// file IDs use.
func driveIDStrip(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// driveFileID extracts the file identifier from a Google Drive URL:
// /file/d/{id}/view, /file/d/{id}/preview, or an id= query parameter on
// the open/uc endpoints. Returns "" when no id is present.
func driveFileID(u *url.URL) string {
	segments := pathSegments(u)
	for i, s := range segments {
		if s == "d" && i+1 < len(segments) {
			return driveIDStrip(segments[i+1])
		}
	}

	if id := u.Query().Get("id"); id != "" {
		return driveIDStrip(id)
	}
	return ""
}

// toDriveDownloadURL rewrites any Drive "view/open/preview" URL into the
// direct-download form a native media element can load. The file must be
// shared as "anyone with the link"; very large files may still hit
// Drive's virus-scan interstitial. URLs with no extractable id pass
// through unchanged.
func toDriveDownloadURL(u *url.URL, candidate string) string {
	if u == nil {
		return candidate
	}
	id := driveFileID(u)
	if id == "" {
		return candidate
	}
	return "https://drive.google.com/uc?export=download&id=" + id
}
