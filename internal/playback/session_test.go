package playback

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"coursecast/internal/media"
)

// fakeSink records everything a session tells it to do. Safe for
// concurrent use since the session calls it from multiple goroutines.
type fakeSink struct {
	mu           sync.Mutex
	nativeHLS    bool
	sources      []string
	frames       []string
	antiDownload bool
	placements   int
	lastTop      int
	lastLeft     int
}

func (f *fakeSink) CanPlayNativeAdaptive() bool { return f.nativeHLS }

func (f *fakeSink) SetSource(uri, mimeType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, uri+" "+mimeType)
}

func (f *fakeSink) ShowFrame(uri string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, uri)
}

func (f *fakeSink) SetAntiDownload(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.antiDownload = enabled
}

func (f *fakeSink) PlaceWatermark(text string, topPct, leftPct int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placements++
	f.lastTop, f.lastLeft = topPct, leftPct
}

func (f *fakeSink) snapshot() (sources, frames []string, anti bool, placements int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sources...), append([]string(nil), f.frames...), f.antiDownload, f.placements
}

// fakeDecoder is a polyfill stand-in.
type fakeDecoder struct {
	mu        sync.Mutex
	fatal     func(error)
	openedURI string
	destroyed int
}

func (d *fakeDecoder) OnFatal(fn func(error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fatal = fn
}

func (d *fakeDecoder) Open(uri string, sink Sink) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openedURI = uri
	return nil
}

func (d *fakeDecoder) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyed++
}

func (d *fakeDecoder) state() (string, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openedURI, d.destroyed
}

func (d *fakeDecoder) fireFatal(err error) {
	d.mu.Lock()
	fn := d.fatal
	d.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func iframeSource() media.ResolvedSource {
	return media.ResolvedSource{
		Provider:    media.ProviderYouTube,
		PlayableURI: "https://www.youtube.com/embed/abc",
		Delivery:    media.DeliveryIframePage,
	}
}

func hlsSource() media.ResolvedSource {
	return media.ResolvedSource{
		Provider:    media.ProviderEdgeStream,
		PlayableURI: "https://vz-1-2.es-cdn.net/playlist.m3u8",
		Delivery:    media.DeliveryNativeVideo,
		Protocol:    media.ProtocolAdaptive,
	}
}

func mp4Source() media.ResolvedSource {
	return media.ResolvedSource{
		Provider:    media.ProviderDirectFile,
		PlayableURI: "https://cdn.example.com/lecture.mp4",
		Delivery:    media.DeliveryNativeVideo,
		Protocol:    media.ProtocolProgressive,
	}
}

func TestAttachIframe(t *testing.T) {
	sink := &fakeSink{}
	s := NewSession(sink)
	defer s.Detach()

	s.Attach(iframeSource(), "", false)

	if got := s.State(); got != StatePlaying {
		t.Fatalf("state = %v, want playing", got)
	}
	sources, frames, anti, _ := sink.snapshot()
	if len(frames) != 1 || frames[0] != "https://www.youtube.com/embed/abc" {
		t.Errorf("frames = %v", frames)
	}
	if len(sources) != 0 {
		t.Errorf("native element was touched in iframe mode: %v", sources)
	}
	if anti {
		t.Errorf("anti-download applied in iframe mode")
	}
}

func TestAttachProgressive(t *testing.T) {
	sink := &fakeSink{}
	s := NewSession(sink)
	defer s.Detach()

	s.Attach(mp4Source(), "", false)

	if got := s.State(); got != StatePlaying {
		t.Fatalf("state = %v, want playing", got)
	}
	sources, _, anti, _ := sink.snapshot()
	if len(sources) != 1 || sources[0] != "https://cdn.example.com/lecture.mp4 video/mp4" {
		t.Errorf("sources = %v", sources)
	}
	if !anti {
		t.Errorf("anti-download affordances not applied in native mode")
	}
}

func TestAttachAdaptiveWithNativeSupport(t *testing.T) {
	sink := &fakeSink{nativeHLS: true}
	factoryCalled := false
	s := NewSession(sink, WithDecoderFactory(func(ctx context.Context) (Decoder, error) {
		factoryCalled = true
		return &fakeDecoder{}, nil
	}))
	defer s.Detach()

	s.Attach(hlsSource(), "", false)

	if got := s.State(); got != StatePlaying {
		t.Fatalf("state = %v, want playing", got)
	}
	sources, _, _, _ := sink.snapshot()
	if len(sources) != 1 || sources[0] != "https://vz-1-2.es-cdn.net/playlist.m3u8 application/x-mpegURL" {
		t.Errorf("sources = %v", sources)
	}
	if factoryCalled {
		t.Errorf("polyfill acquired despite native adaptive support")
	}
}

func TestAttachAdaptiveViaPolyfill(t *testing.T) {
	sink := &fakeSink{}
	dec := &fakeDecoder{}
	s := NewSession(sink, WithDecoderFactory(func(ctx context.Context) (Decoder, error) {
		return dec, nil
	}))
	defer s.Detach()

	s.Attach(hlsSource(), "", false)

	waitFor(t, "playing state", func() bool { return s.State() == StatePlaying })
	opened, _ := dec.state()
	if opened != "https://vz-1-2.es-cdn.net/playlist.m3u8" {
		t.Errorf("decoder opened %q", opened)
	}
	sources, _, _, _ := sink.snapshot()
	if len(sources) != 0 {
		t.Errorf("direct assignment happened despite polyfill path: %v", sources)
	}
}

func TestPolyfillUnavailableFallsBackToDirect(t *testing.T) {
	sink := &fakeSink{}
	s := NewSession(sink, WithDecoderFactory(func(ctx context.Context) (Decoder, error) {
		return nil, errors.New("polyfill not loadable")
	}))
	defer s.Detach()

	s.Attach(hlsSource(), "", false)

	waitFor(t, "playing state", func() bool { return s.State() == StatePlaying })
	sources, _, _, _ := sink.snapshot()
	if len(sources) != 1 {
		t.Fatalf("sources = %v, want one direct assignment", sources)
	}
}

func TestNoFactoryFallsBackToDirect(t *testing.T) {
	sink := &fakeSink{}
	s := NewSession(sink)
	defer s.Detach()

	s.Attach(hlsSource(), "", false)

	if got := s.State(); got != StatePlaying {
		t.Fatalf("state = %v, want playing", got)
	}
	sources, _, _, _ := sink.snapshot()
	if len(sources) != 1 {
		t.Errorf("sources = %v, want one direct assignment", sources)
	}
}

func TestStaleAcquisitionIsDiscarded(t *testing.T) {
	sink := &fakeSink{}
	release := make(chan struct{})
	dec := &fakeDecoder{}
	s := NewSession(sink, WithDecoderFactory(func(ctx context.Context) (Decoder, error) {
		<-release
		return dec, nil
	}))
	defer s.Detach()

	// First attach suspends in polyfill acquisition.
	s.Attach(hlsSource(), "", false)
	if got := s.State(); got != StateResolving {
		t.Fatalf("state = %v, want resolving", got)
	}

	// A newer source supersedes it before the acquisition completes.
	s.Attach(mp4Source(), "", false)
	close(release)

	waitFor(t, "stale decoder destruction", func() bool {
		_, destroyed := dec.state()
		return destroyed > 0
	})

	opened, _ := dec.state()
	if opened != "" {
		t.Errorf("stale decoder attached to %q after supersession", opened)
	}
	if got := s.State(); got != StatePlaying {
		t.Errorf("state = %v, want playing from the newer source", got)
	}
	sources, _, _, _ := sink.snapshot()
	if len(sources) != 1 || sources[0] != "https://cdn.example.com/lecture.mp4 video/mp4" {
		t.Errorf("sources = %v, want only the newer source", sources)
	}
}

func TestDecoderFatalTransitionsToErrored(t *testing.T) {
	sink := &fakeSink{}
	dec := &fakeDecoder{}
	s := NewSession(sink, WithDecoderFactory(func(ctx context.Context) (Decoder, error) {
		return dec, nil
	}))
	defer s.Detach()

	s.Attach(hlsSource(), "", false)
	waitFor(t, "playing state", func() bool { return s.State() == StatePlaying })

	dec.fireFatal(errors.New("manifest parse failure"))

	if got := s.State(); got != StateErrored {
		t.Fatalf("state = %v, want errored", got)
	}
	if s.LastError() == "" {
		t.Errorf("errored state has no remediation text")
	}
}

func TestLateDecoderFatalAfterDetachIsIgnored(t *testing.T) {
	sink := &fakeSink{}
	dec := &fakeDecoder{}
	s := NewSession(sink, WithDecoderFactory(func(ctx context.Context) (Decoder, error) {
		return dec, nil
	}))

	s.Attach(hlsSource(), "", false)
	waitFor(t, "playing state", func() bool { return s.State() == StatePlaying })

	s.Detach()
	dec.fireFatal(errors.New("late callback"))

	if got := s.State(); got != StateIdle {
		t.Errorf("state = %v, want idle after detach despite late fatal", got)
	}
	if _, destroyed := dec.state(); destroyed == 0 {
		t.Errorf("decoder not destroyed on detach")
	}
}

func TestSinkErrorMessages(t *testing.T) {
	t.Run("google drive hints at sharing", func(t *testing.T) {
		sink := &fakeSink{}
		s := NewSession(sink)
		defer s.Detach()

		s.Attach(media.ResolvedSource{
			Provider:    media.ProviderGoogleDrive,
			PlayableURI: "https://drive.google.com/uc?export=download&id=x",
			Delivery:    media.DeliveryNativeVideo,
			Protocol:    media.ProtocolProgressive,
		}, "", false)
		s.OnSinkError()

		if got := s.State(); got != StateErrored {
			t.Fatalf("state = %v, want errored", got)
		}
		if msg := s.LastError(); msg != msgDriveHint {
			t.Errorf("message = %q, want the Drive sharing hint", msg)
		}
	})

	t.Run("other providers get the generic hint", func(t *testing.T) {
		sink := &fakeSink{}
		s := NewSession(sink)
		defer s.Detach()

		s.Attach(mp4Source(), "", false)
		s.OnSinkError()

		if msg := s.LastError(); msg != msgLoadHint {
			t.Errorf("message = %q, want the generic load hint", msg)
		}
	})
}

func TestWatermarkRepositions(t *testing.T) {
	sink := &fakeSink{}
	s := NewSession(sink,
		WithWatermarkInterval(5*time.Millisecond),
		WithRandSource(rand.NewSource(1)),
	)

	s.Attach(hlsSource(), "student@example.com", false)

	waitFor(t, "several repositionings", func() bool {
		_, _, _, placements := sink.snapshot()
		return placements >= 3
	})

	top, left, active := s.WatermarkPosition()
	if !active {
		t.Fatalf("watermark inactive while configured")
	}
	if top < 10 || top > 79 || left < 10 || left > 79 {
		t.Errorf("position %d%%/%d%% outside the 10-79%% band", top, left)
	}
}

func TestWatermarkStopsOnDetach(t *testing.T) {
	sink := &fakeSink{}
	s := NewSession(sink, WithWatermarkInterval(5*time.Millisecond))

	s.Attach(hlsSource(), "student@example.com", false)
	waitFor(t, "first repositioning", func() bool {
		_, _, _, placements := sink.snapshot()
		return placements >= 2
	})

	s.Detach()
	_, _, _, after := sink.snapshot()

	time.Sleep(50 * time.Millisecond)
	_, _, _, later := sink.snapshot()
	if later != after {
		t.Errorf("watermark timer fired %d more times after detach", later-after)
	}
}

func TestWatermarkNeedsFriction(t *testing.T) {
	// A provider without required friction and no explicit anti-download
	// request gets no overlay even when text is configured.
	sink := &fakeSink{}
	s := NewSession(sink, WithWatermarkInterval(5*time.Millisecond))
	defer s.Detach()

	s.Attach(iframeSource(), "student@example.com", false)

	time.Sleep(20 * time.Millisecond)
	_, _, _, placements := sink.snapshot()
	if placements != 0 {
		t.Errorf("watermark placed %d times without friction", placements)
	}

	// Requesting anti-download turns the overlay on, iframe mode or not.
	s.Attach(iframeSource(), "student@example.com", true)
	waitFor(t, "placement with explicit anti-download", func() bool {
		_, _, _, p := sink.snapshot()
		return p >= 1
	})
}
