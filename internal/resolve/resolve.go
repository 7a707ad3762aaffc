// Package resolve turns loosely-formatted instructor input (a raw URL
// or a pasted embed snippet) into exactly one canonical playable
// descriptor.
//
// Classification and normalization are total: malformed input never
// errors, it degrades to an Unknown/passthrough descriptor so authoring
// cannot hard-fail on a bad paste.
package resolve

import (
	"net/url"
	"strings"

	"coursecast/internal/edgestream"
	"coursecast/internal/media"
)

// Resolver classifies and normalizes raw media input. The zero value is
// usable; CustomCDN adds a customer-configured EdgeStream hostname to
// host matching.
type Resolver struct {
	CustomCDN string
}

// New creates a Resolver with an optional custom EdgeStream CDN hostname.
func New(customCDN string) *Resolver {
	return &Resolver{CustomCDN: customCDN}
}

// sanitizeCandidate trims whitespace and the trailing punctuation people
// accidentally copy along with a URL (closing parens/brackets).
func sanitizeCandidate(input string) string {
	return strings.TrimRight(strings.TrimSpace(input), ")] \t\r\n")
}

// looksLikeMarkup reports whether input is an HTML fragment containing an
// iframe tag rather than a bare URL.
func looksLikeMarkup(input string) bool {
	trimmed := strings.TrimSpace(input)
	return strings.HasPrefix(trimmed, "<") && strings.Contains(strings.ToLower(trimmed), "<iframe")
}

// parseURL parses a sanitized candidate, returning nil on anything a
// browser would refuse to navigate to.
func parseURL(candidate string) *url.URL {
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return nil
	}
	return u
}

// bareHost lowercases a host and strips port and a leading "www.".
func bareHost(u *url.URL) string {
	h := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(h, "www.")
}

// hasSuffixIgnoringQuery reports whether the URL ends in ext (".m3u8",
// ".mp4") in either its path or, failing that, its query string.
func hasSuffixIgnoringQuery(u *url.URL, ext string) bool {
	if strings.HasSuffix(strings.ToLower(u.Path), ext) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(u.RawQuery), ext)
}

func isHLS(u *url.URL) bool { return hasSuffixIgnoringQuery(u, ".m3u8") }
func isMP4(u *url.URL) bool { return hasSuffixIgnoringQuery(u, ".mp4") }

// Classify determines the provider for a raw input string. Embed snippets
// are classified by their extracted src; snippets with no src are
// GenericEmbed. Unparseable strings are ProviderUnknown, never an error.
func (r *Resolver) Classify(raw string) media.Provider {
	candidate := sanitizeCandidate(raw)
	if looksLikeMarkup(candidate) {
		src, ok := ExtractEmbedSrc(candidate)
		if !ok {
			return media.ProviderGenericEmbed
		}
		candidate = sanitizeCandidate(src)
	}
	return r.classifyURL(candidate, looksLikeMarkup(raw))
}

// classifyURL classifies a sanitized URL candidate. fromMarkup marks
// candidates extracted from an embed snippet, which fall back to
// GenericEmbed rather than Unknown.
func (r *Resolver) classifyURL(candidate string, fromMarkup bool) media.Provider {
	u := parseURL(candidate)
	if u == nil {
		if fromMarkup {
			return media.ProviderGenericEmbed
		}
		return media.ProviderUnknown
	}

	switch host := bareHost(u); {
	case host == "youtube.com" || host == "youtu.be" || host == "m.youtube.com":
		return media.ProviderYouTube
	case host == "vimeo.com" || host == "player.vimeo.com":
		return media.ProviderVimeo
	case edgestream.IsHost(u.Host, r.CustomCDN):
		return media.ProviderEdgeStream
	case strings.Contains(host, "drive.google.com"):
		return media.ProviderGoogleDrive
	case isHLS(u) || isMP4(u):
		return media.ProviderDirectFile
	case fromMarkup:
		return media.ProviderGenericEmbed
	default:
		return media.ProviderUnknown
	}
}

// Normalize produces the canonical playable descriptor for a raw input.
// It is pure, deterministic, and total: the worst case is an Unknown
// provider passing the input through untouched.
func (r *Resolver) Normalize(raw string) media.ResolvedSource {
	candidate := sanitizeCandidate(raw)

	if looksLikeMarkup(candidate) {
		src, ok := ExtractEmbedSrc(candidate)
		if !ok {
			// Last-resort passthrough: keep the markup verbatim so the
			// rendering collaborator can still show something.
			return media.ResolvedSource{
				Provider:    media.ProviderGenericEmbed,
				PlayableURI: raw,
				Delivery:    media.DeliveryIframePage,
			}
		}
		return r.normalizeURL(sanitizeCandidate(src), true)
	}

	return r.normalizeURL(candidate, false)
}

func (r *Resolver) normalizeURL(candidate string, fromMarkup bool) media.ResolvedSource {
	provider := r.classifyURL(candidate, fromMarkup)
	u := parseURL(candidate)

	switch provider {
	case media.ProviderYouTube:
		return media.ResolvedSource{
			Provider:    media.ProviderYouTube,
			PlayableURI: toYouTubeEmbed(u, candidate),
			Delivery:    media.DeliveryIframePage,
		}

	case media.ProviderVimeo:
		return media.ResolvedSource{
			Provider:    media.ProviderVimeo,
			PlayableURI: toVimeoEmbed(u, candidate),
			Delivery:    media.DeliveryIframePage,
		}

	case media.ProviderEdgeStream:
		return r.normalizeEdgeStream(u, candidate)

	case media.ProviderGoogleDrive:
		return media.ResolvedSource{
			Provider:    media.ProviderGoogleDrive,
			PlayableURI: toDriveDownloadURL(u, candidate),
			Delivery:    media.DeliveryNativeVideo,
			Protocol:    media.ProtocolProgressive,
		}

	case media.ProviderGenericEmbed:
		return media.ResolvedSource{
			Provider:    media.ProviderGenericEmbed,
			PlayableURI: candidate,
			Delivery:    media.DeliveryIframePage,
		}

	default: // DirectFile and Unknown share passthrough semantics.
		return passthrough(provider, u, candidate)
	}
}

// normalizeEdgeStream handles the CDN's two delivery shapes: "play" and
// "embed" pages iframe (play is rewritten to embed), raw HLS/MP4 URLs
// stay untouched and play natively.
func (r *Resolver) normalizeEdgeStream(u *url.URL, candidate string) media.ResolvedSource {
	if edgestream.IsIframePage(candidate) {
		return media.ResolvedSource{
			Provider:    media.ProviderEdgeStream,
			PlayableURI: edgestream.PlayToEmbed(candidate),
			Delivery:    media.DeliveryIframePage,
		}
	}

	protocol := media.ProtocolProgressive
	if u != nil && isHLS(u) {
		protocol = media.ProtocolAdaptive
	}
	return media.ResolvedSource{
		Provider:    media.ProviderEdgeStream,
		PlayableURI: candidate,
		Delivery:    media.DeliveryNativeVideo,
		Protocol:    protocol,
	}
}

// passthrough keeps the URI as-is and infers the protocol from its
// suffix, defaulting to progressive when ambiguous.
func passthrough(provider media.Provider, u *url.URL, candidate string) media.ResolvedSource {
	protocol := media.ProtocolProgressive
	if u != nil && isHLS(u) {
		protocol = media.ProtocolAdaptive
	}
	return media.ResolvedSource{
		Provider:    provider,
		PlayableURI: candidate,
		Delivery:    media.DeliveryNativeVideo,
		Protocol:    protocol,
	}
}
