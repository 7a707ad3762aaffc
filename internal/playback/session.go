// Package playback owns the lifecycle of one playback attempt: strategy
// selection from a resolved source, protocol capability probing, polyfill
// fallback, error surfacing, and the moving watermark overlay.
//
// A Session drives a Sink (the mounted player surface) and never touches
// the network itself. All failure states are representable data; nothing
// here panics or unwinds across the component boundary.
package playback

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"coursecast/internal/media"
)

// State is the session lifecycle position.
type State int

const (
	StateIdle State = iota
	StateResolving
	StatePlaying
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StatePlaying:
		return "playing"
	case StateErrored:
		return "errored"
	default:
		return "idle"
	}
}

// Remediation texts surfaced with StateErrored.
const (
	msgDriveHint = "Could not load this Google Drive video. Ensure the file is shared as 'Anyone with the link can view'."
	msgLoadHint  = "Could not load the video. Paste an EdgeStream 'play'/'embed' URL, or an HLS .m3u8 link."
	msgStreamErr = "There was a problem loading the stream. Check the URL or use EdgeStream 'play'/'embed' URLs."
)

// Sink is the player surface a session drives: a native media element or
// iframe host in whatever shell embeds this core.
type Sink interface {
	// CanPlayNativeAdaptive probes for built-in adaptive-stream support
	// (the Safari/iOS case). Must be synchronous and non-blocking.
	CanPlayNativeAdaptive() bool

	// SetSource assigns a URI directly to the native media element.
	SetSource(uri, mimeType string)

	// ShowFrame renders a sandboxed iframe pointed at uri instead of the
	// native element.
	ShowFrame(uri string)

	// SetAntiDownload toggles download friction on the player surface:
	// picture-in-picture off, download control hidden, context-menu and
	// drag-initiated saves suppressed.
	SetAntiDownload(enabled bool)

	// PlaceWatermark positions the overlay text at the given percentage
	// coordinates.
	PlaceWatermark(text string, topPct, leftPct int)
}

// Decoder is an exclusively-owned streaming-protocol polyfill handle.
type Decoder interface {
	// OnFatal registers the callback invoked on unrecoverable decode
	// errors. Must be called before Open.
	OnFatal(func(error))

	// Open starts feeding uri into the sink's native element.
	Open(uri string, sink Sink) error

	// Destroy releases the decoder. Safe to call more than once.
	Destroy()
}

// DecoderFactory acquires a polyfill decoder. It is the only suspension
// point in the session: it may block (script fetch, runtime setup) and
// must honor ctx cancellation. Returning an error means the polyfill is
// unavailable and the session falls back to direct assignment.
type DecoderFactory func(ctx context.Context) (Decoder, error)

// Option configures a Session.
type Option func(*Session)

// WithDecoderFactory sets the polyfill acquisition function.
func WithDecoderFactory(f DecoderFactory) Option {
	return func(s *Session) { s.factory = f }
}

// WithWatermarkInterval overrides the repositioning interval.
func WithWatermarkInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.wmInterval = d
		}
	}
}

// WithRandSource fixes the randomness used for watermark placement.
func WithRandSource(src rand.Source) Option {
	return func(s *Session) { s.rng = rand.New(src) }
}

// Session owns one playback attempt at a time. A new Attach fully tears
// down the previous attempt, including any owned decoder, before the
// next begins, so no two decoders ever feed the same sink.
type Session struct {
	mu         sync.Mutex
	sink       Sink
	factory    DecoderFactory
	wmInterval time.Duration
	rng        *rand.Rand

	state    State
	provider media.Provider
	lastErr  string

	// gen invalidates in-flight polyfill acquisitions and late decoder
	// callbacks: completions that captured an older generation are
	// discarded silently.
	gen           uint64
	cancelAcquire context.CancelFunc
	decoder       Decoder

	wmStop        chan struct{}
	wmText        string
	wmTop, wmLeft int
}

// NewSession creates a session for one mounted player surface.
func NewSession(sink Sink, opts ...Option) *Session {
	s := &Session{
		sink:       sink,
		wmInterval: 30 * time.Second,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach begins playback of a granted resolved source, replacing any
// attempt already in flight.
func (s *Session) Attach(src media.ResolvedSource, watermarkText string, antiDownload bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.state = StateResolving
	s.provider = src.Provider
	s.lastErr = ""

	// EdgeStream always gets friction; other providers only on request.
	friction := antiDownload || src.Provider == media.ProviderEdgeStream

	if watermarkText != "" && friction {
		s.startWatermarkLocked(watermarkText)
	}

	if src.Delivery == media.DeliveryIframePage {
		// Iframe delegation: the third-party page owns the player, so no
		// decoder exists and anti-download toggles don't apply.
		s.sink.ShowFrame(src.PlayableURI)
		s.state = StatePlaying
		return
	}

	s.sink.SetAntiDownload(true)

	if src.Protocol == media.ProtocolAdaptive && !s.sink.CanPlayNativeAdaptive() {
		s.resolveViaPolyfillLocked(src)
		return
	}

	// Native adaptive support or a progressive file: direct assignment.
	s.sink.SetSource(src.PlayableURI, src.MIME())
	s.state = StatePlaying
}

// resolveViaPolyfillLocked kicks off asynchronous polyfill acquisition
// for the current generation. Caller holds s.mu.
func (s *Session) resolveViaPolyfillLocked(src media.ResolvedSource) {
	if s.factory == nil {
		// No polyfill available at all; direct assignment is the last
		// resort and some runtimes will still manage.
		s.sink.SetSource(src.PlayableURI, src.MIME())
		s.state = StatePlaying
		return
	}

	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelAcquire = cancel

	go s.acquireAndOpen(ctx, gen, src)
}

// acquireAndOpen runs off the session goroutine: it acquires a decoder,
// then re-checks the generation before letting it take effect.
func (s *Session) acquireAndOpen(ctx context.Context, gen uint64, src media.ResolvedSource) {
	dec, err := s.factory(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		// A newer source started resolving while we were acquiring; this
		// completion is stale and must not attach its decoder.
		if dec != nil {
			dec.Destroy()
		}
		return
	}
	s.cancelAcquire = nil

	if err != nil {
		// Polyfill unavailable: fall back to direct assignment.
		s.sink.SetSource(src.PlayableURI, src.MIME())
		s.state = StatePlaying
		return
	}

	dec.OnFatal(func(fatal error) { s.decoderFatal(gen, fatal) })
	if err := dec.Open(src.PlayableURI, s.sink); err != nil {
		dec.Destroy()
		s.state = StateErrored
		s.lastErr = msgStreamErr
		return
	}

	s.decoder = dec
	s.state = StatePlaying
}

// decoderFatal handles an unrecoverable polyfill error. Late callbacks
// from a superseded generation are discarded.
func (s *Session) decoderFatal(gen uint64, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return
	}
	s.state = StateErrored
	s.lastErr = msgStreamErr
}

// OnSinkError reports a native media element error signal into the
// session. The remediation text depends on the provider: Drive failures
// are almost always share-permission problems.
func (s *Session) OnSinkError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return
	}
	s.state = StateErrored
	if s.provider == media.ProviderGoogleDrive {
		s.lastErr = msgDriveHint
	} else {
		s.lastErr = msgLoadHint
	}
}

// Detach tears down the current attempt: the decoder handle is released,
// the in-flight acquisition (if any) is cancelled, and the watermark
// repositioner stops. Runs on every exit path so repeated source
// switches never leak decoder resources.
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked()
	s.state = StateIdle
	s.lastErr = ""
}

// teardownLocked invalidates the generation and releases everything the
// session exclusively owns. Caller holds s.mu.
func (s *Session) teardownLocked() {
	s.gen++

	if s.cancelAcquire != nil {
		s.cancelAcquire()
		s.cancelAcquire = nil
	}
	if s.decoder != nil {
		s.decoder.Destroy()
		s.decoder = nil
	}
	if s.wmStop != nil {
		close(s.wmStop)
		s.wmStop = nil
	}
	s.wmText = ""
}

// startWatermarkLocked places the overlay immediately and schedules
// periodic repositioning so the watermark cannot be cropped out once and
// forgotten. Caller holds s.mu.
func (s *Session) startWatermarkLocked(text string) {
	s.wmText = text
	s.placeWatermarkLocked()

	stop := make(chan struct{})
	s.wmStop = stop

	go func() {
		ticker := time.NewTicker(s.wmInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.wmStop == stop {
					s.placeWatermarkLocked()
				}
				s.mu.Unlock()
			}
		}
	}()
}

// placeWatermarkLocked picks a fresh pseudo-random position in the
// 10 to 79 percent range on both axes. Caller holds s.mu.
func (s *Session) placeWatermarkLocked() {
	s.wmTop = 10 + s.rng.Intn(70)
	s.wmLeft = 10 + s.rng.Intn(70)
	s.sink.PlaceWatermark(s.wmText, s.wmTop, s.wmLeft)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the remediation text for the current errored state,
// or "" when the session is healthy.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// WatermarkPosition returns the overlay's current percentage coordinates
// and whether a watermark is active.
func (s *Session) WatermarkPosition() (topPct, leftPct int, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wmTop, s.wmLeft, s.wmText != ""
}
