// Package media defines shared types for the coursecast application.
package media

// Provider identifies the third-party system hosting the actual video
// bytes or embeddable page.
type Provider int

const (
	ProviderUnknown Provider = iota
	ProviderYouTube
	ProviderVimeo
	ProviderEdgeStream
	ProviderGoogleDrive
	ProviderDirectFile
	ProviderGenericEmbed
)

func (p Provider) String() string {
	switch p {
	case ProviderYouTube:
		return "youtube"
	case ProviderVimeo:
		return "vimeo"
	case ProviderEdgeStream:
		return "edgestream"
	case ProviderGoogleDrive:
		return "gdrive"
	case ProviderDirectFile:
		return "file"
	case ProviderGenericEmbed:
		return "embed"
	default:
		return "unknown"
	}
}

// ParseProvider is the inverse of Provider.String. Unrecognized names map
// to ProviderUnknown, mirroring how classification treats unrecognized input.
func ParseProvider(s string) Provider {
	switch s {
	case "youtube":
		return ProviderYouTube
	case "vimeo":
		return ProviderVimeo
	case "edgestream":
		return ProviderEdgeStream
	case "gdrive":
		return ProviderGoogleDrive
	case "file":
		return ProviderDirectFile
	case "embed":
		return ProviderGenericEmbed
	default:
		return ProviderUnknown
	}
}

// MarshalText makes providers serialize as their short names.
func (p Provider) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText parses the short name form.
func (p *Provider) UnmarshalText(text []byte) error {
	*p = ParseProvider(string(text))
	return nil
}

// DeliveryMode says whether a video is shown via an embedded third-party
// page or via a natively controlled media element.
type DeliveryMode int

const (
	DeliveryIframePage DeliveryMode = iota
	DeliveryNativeVideo
)

func (d DeliveryMode) String() string {
	if d == DeliveryIframePage {
		return "iframe"
	}
	return "native"
}

// ParseDeliveryMode maps the stored form back to a DeliveryMode.
func ParseDeliveryMode(s string) DeliveryMode {
	if s == "iframe" {
		return DeliveryIframePage
	}
	return DeliveryNativeVideo
}

func (d DeliveryMode) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DeliveryMode) UnmarshalText(text []byte) error {
	*d = ParseDeliveryMode(string(text))
	return nil
}

// Protocol is the streaming protocol hint for native delivery.
type Protocol int

const (
	// ProtocolNone is the zero value used with iframe delivery, where no
	// protocol hint applies.
	ProtocolNone Protocol = iota
	// ProtocolProgressive is a single-file source the media element can
	// play directly (MP4 and friends).
	ProtocolProgressive
	// ProtocolAdaptive is a segmented, bitrate-switching stream (HLS)
	// requiring native or polyfilled decoding support.
	ProtocolAdaptive
)

func (p Protocol) String() string {
	switch p {
	case ProtocolProgressive:
		return "progressive"
	case ProtocolAdaptive:
		return "adaptive"
	default:
		return "none"
	}
}

// ParseProtocol maps the stored form back to a Protocol.
func ParseProtocol(s string) Protocol {
	switch s {
	case "progressive":
		return ProtocolProgressive
	case "adaptive":
		return ProtocolAdaptive
	default:
		return ProtocolNone
	}
}

func (p Protocol) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Protocol) UnmarshalText(text []byte) error {
	*p = ParseProtocol(string(text))
	return nil
}

// MIME types handed to a native media element alongside the playable URI.
const (
	MIMEProgressive = "video/mp4"
	MIMEAdaptive    = "application/x-mpegURL"
)

// ResolvedSource is the canonical, persisted description of a video's
// playable location. Computed once at authoring time, re-computed when the
// raw input is edited, read-only otherwise.
//
// Invariant: Protocol != ProtocolNone iff Delivery == DeliveryNativeVideo.
type ResolvedSource struct {
	Provider    Provider     `json:"provider"`
	PlayableURI string       `json:"playable_uri"`
	Delivery    DeliveryMode `json:"delivery_mode"`
	Protocol    Protocol     `json:"protocol_hint,omitempty"`
}

// MIME returns the content type for native delivery, or "" for iframes.
func (r ResolvedSource) MIME() string {
	switch {
	case r.Delivery != DeliveryNativeVideo:
		return ""
	case r.Protocol == ProtocolAdaptive:
		return MIMEAdaptive
	default:
		return MIMEProgressive
	}
}

// AccessDecision is the outcome of evaluating a viewer against a video's
// entitlement facts. Computed per view request, never persisted.
type AccessDecision int

const (
	AccessGranted AccessDecision = iota
	AccessLoginRequired
	AccessSubscriptionRequired
	AccessPeriodLocked
	AccessNotFound
)

// Allowed reports whether playback may proceed.
func (d AccessDecision) Allowed() bool { return d == AccessGranted }

func (d AccessDecision) String() string {
	switch d {
	case AccessGranted:
		return "granted"
	case AccessLoginRequired:
		return "login-required"
	case AccessSubscriptionRequired:
		return "subscribe-required"
	case AccessPeriodLocked:
		return "period-locked"
	case AccessNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Remediation returns the user-facing next step for a denial, or "" when
// access was granted. Each denial variant points at the first unmet
// precondition so the viewer knows exactly what to fix.
func (d AccessDecision) Remediation() string {
	switch d {
	case AccessLoginRequired:
		return "Log in to watch this video."
	case AccessSubscriptionRequired:
		return "Subscribe to this publisher to watch their videos."
	case AccessPeriodLocked:
		return "This video's period is not unlocked for your account. Ask the publisher to unlock it."
	case AccessNotFound:
		return "This video does not exist or is no longer available."
	default:
		return ""
	}
}

// VideoRecord is a catalog entry: the durable facts an access decision is
// computed from, plus the persisted resolved source.
type VideoRecord struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Category     string         `json:"category,omitempty"`
	RawSource    string         `json:"-"` // instructor input, kept only so edits can re-normalize
	Source       ResolvedSource `json:"source"`
	IsFree       bool           `json:"is_free"`
	UnlockPeriod *int           `json:"unlock_period,omitempty"` // nil means unset or malformed catalog data
	PublisherID  string         `json:"publisher_id"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`
}

// LibraryVideo is one entry from the EdgeStream management API, with the
// derived embed/HLS/thumbnail URLs already attached.
type LibraryVideo struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
	Status          int    `json:"status"`
	EmbedURL        string `json:"embed_url"`
	HLSURL          string `json:"hls_url"`
	ThumbnailURL    string `json:"thumbnail_url"`
}
