package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"coursecast/internal/media"
	"coursecast/internal/resolve"
	"coursecast/internal/store"
)

var (
	flagAddTitle       string
	flagAddDescription string
	flagAddCategory    string
	flagAddPublisher   string
	flagAddThumbnail   string
	flagAddFree        bool
	flagAddPeriod      int
)

var addCmd = &cobra.Command{
	Use:   "add <url-or-embed>",
	Short: "Normalize a source and add it to the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE:  addRun,
}

func init() {
	addCmd.Flags().StringVarP(&flagAddTitle, "title", "t", "", "Video title (required)")
	addCmd.Flags().StringVar(&flagAddDescription, "description", "", "Video description")
	addCmd.Flags().StringVar(&flagAddCategory, "category", "", "Video category")
	addCmd.Flags().StringVarP(&flagAddPublisher, "publisher", "p", "", "Publisher ID (required)")
	addCmd.Flags().StringVar(&flagAddThumbnail, "thumbnail", "", "Thumbnail URL")
	addCmd.Flags().BoolVar(&flagAddFree, "free", false, "Mark the video as free to watch")
	addCmd.Flags().IntVar(&flagAddPeriod, "period", 0, "Unlock period index (paid videos)")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("publisher")
}

func addRun(cmd *cobra.Command, args []string) error {
	raw := strings.Join(args, " ")

	path, err := cfg.CatalogPath()
	if err != nil {
		return err
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer st.Close()

	v := &media.VideoRecord{
		ID:           uuid.New().String(),
		Title:        flagAddTitle,
		Description:  flagAddDescription,
		Category:     flagAddCategory,
		RawSource:    raw,
		Source:       resolve.New(cfg.CDNHostname).Normalize(raw),
		IsFree:       flagAddFree,
		PublisherID:  flagAddPublisher,
		ThumbnailURL: flagAddThumbnail,
	}
	if flagAddPeriod > 0 {
		period := flagAddPeriod
		v.UnlockPeriod = &period
	}

	if err := st.CreateVideo(v); err != nil {
		return fmt.Errorf("saving video: %w", err)
	}
	debugf("added video %s (%s)", v.ID, v.Source.Provider)

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(v)
	}
	fmt.Printf("Added %q as %s\n", v.Title, v.ID)
	printSource(v.Source)
	return nil
}
