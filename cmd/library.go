package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coursecast/internal/edgestream"
	"coursecast/internal/ui"
)

var (
	flagLibrarySearch string
	flagLibraryPage   int
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Browse the EdgeStream library and pick a video to embed",
	RunE:  libraryRun,
}

func init() {
	libraryCmd.Flags().StringVarP(&flagLibrarySearch, "search", "s", "", "Filter videos by title")
	libraryCmd.Flags().IntVar(&flagLibraryPage, "page", 1, "Result page")
}

func libraryRun(cmd *cobra.Command, args []string) error {
	client := edgestream.NewClient(cfg.LibraryID, cfg.AccessKey(), cfg.CDNHostname)

	videos, total, err := client.ListVideos(flagLibraryPage, 0, flagLibrarySearch)
	if err != nil {
		return fmt.Errorf("listing library: %w", err)
	}
	if len(videos) == 0 {
		fmt.Println("No videos found.")
		return nil
	}
	debugf("listed %d of %d library videos", len(videos), total)

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(videos)
	}

	items := make([]string, len(videos))
	for i, v := range videos {
		items[i] = fmt.Sprintf("%s (%s)", v.Title, formatDuration(v.DurationSeconds))
	}

	idx, err := ui.Select("Library", items)
	if err != nil {
		return err
	}

	picked := videos[idx]
	fmt.Printf("%s  %s\n", ui.Label("embed:"), picked.EmbedURL)
	fmt.Printf("%s  %s\n", ui.Label("hls:"), picked.HLSURL)
	fmt.Printf("%s  %s\n", ui.Label("thumb:"), ui.Faint(picked.ThumbnailURL))
	return nil
}

// formatDuration formats seconds as H:MM:SS or M:SS.
func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
