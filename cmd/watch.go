package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"coursecast/internal/access"
	"coursecast/internal/playback"
	"coursecast/internal/store"
	"coursecast/internal/ui"
)

var (
	flagWatchViewer    string
	flagWatchNativeHLS bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <video-id>",
	Short: "Evaluate access for a video and show the playback plan",
	Args:  cobra.ExactArgs(1),
	RunE:  watchRun,
}

func init() {
	watchCmd.Flags().StringVarP(&flagWatchViewer, "viewer", "v", "", "Viewer ID (empty = anonymous)")
	watchCmd.Flags().BoolVar(&flagWatchNativeHLS, "native-hls", false, "Assume the runtime decodes HLS natively")
}

func watchRun(cmd *cobra.Command, args []string) error {
	path, err := cfg.CatalogPath()
	if err != nil {
		return err
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer st.Close()

	video, err := st.GetVideo(args[0])
	if err != nil {
		return fmt.Errorf("reading video: %w", err)
	}

	decision := access.NewEvaluator(st).Evaluate(video, flagWatchViewer)
	fmt.Printf("%s  %s\n", ui.Label("decision:"), ui.Decision(decision))
	if !decision.Allowed() {
		fmt.Println(decision.Remediation())
		return nil
	}

	fmt.Printf("%s  %s\n", ui.Label("title:"), video.Title)
	printSource(video.Source)

	// Mount a real session against a recording sink so the printed plan
	// goes through the same strategy selection the player shell would.
	sink := &planSink{nativeHLS: flagWatchNativeHLS}
	session := playback.NewSession(sink)
	session.Attach(video.Source, cfg.Watermark, false)
	defer session.Detach()

	fmt.Printf("%s  %s\n", ui.Label("plan:"), "")
	for _, step := range sink.steps {
		fmt.Printf("  - %s\n", step)
	}
	fmt.Printf("%s  %s\n", ui.Label("state:"), session.State())
	if msg := session.LastError(); msg != "" {
		fmt.Println(ui.Faint(msg))
	}
	return nil
}

// planSink records what a player shell would be told to do.
type planSink struct {
	nativeHLS bool
	steps     []string
}

func (p *planSink) CanPlayNativeAdaptive() bool { return p.nativeHLS }

func (p *planSink) SetSource(uri, mimeType string) {
	p.steps = append(p.steps, fmt.Sprintf("assign %s (%s) to the native element", uri, mimeType))
}

func (p *planSink) ShowFrame(uri string) {
	p.steps = append(p.steps, fmt.Sprintf("render sandboxed iframe at %s", uri))
}

func (p *planSink) SetAntiDownload(enabled bool) {
	if enabled {
		p.steps = append(p.steps, "disable picture-in-picture, download control, context menu, drag-save")
	}
}

func (p *planSink) PlaceWatermark(text string, topPct, leftPct int) {
	p.steps = append(p.steps, fmt.Sprintf("overlay %q at %d%%/%d%%", text, topPct, leftPct))
}
