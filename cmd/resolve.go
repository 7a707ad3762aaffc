package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"coursecast/internal/media"
	"coursecast/internal/resolve"
	"coursecast/internal/ui"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url-or-embed>",
	Short: "Normalize a pasted video source into its canonical playable form",
	Args:  cobra.MinimumNArgs(1),
	RunE:  resolveRun,
}

func resolveRun(cmd *cobra.Command, args []string) error {
	// Embed snippets often arrive shell-split; rejoin them.
	raw := strings.Join(args, " ")
	debugf("resolving: %s", raw)

	src := resolve.New(cfg.CDNHostname).Normalize(raw)

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(src)
	}
	printSource(src)
	return nil
}

func printSource(src media.ResolvedSource) {
	fmt.Printf("%s  %s\n", ui.Label("provider:"), src.Provider)
	fmt.Printf("%s  %s\n", ui.Label("delivery:"), src.Delivery)
	if src.Delivery == media.DeliveryNativeVideo {
		fmt.Printf("%s  %s (%s)\n", ui.Label("protocol:"), src.Protocol, src.MIME())
	}
	fmt.Printf("%s  %s\n", ui.Label("playable:"), src.PlayableURI)
}
