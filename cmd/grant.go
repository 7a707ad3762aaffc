package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"coursecast/internal/store"
)

var (
	flagGrantSubscribe bool
	flagGrantCancel    bool
	flagGrantPeriods   string
)

var grantCmd = &cobra.Command{
	Use:   "grant <viewer-id> <publisher-id>",
	Short: "Manage a viewer's subscription and unlocked periods",
	Args:  cobra.ExactArgs(2),
	RunE:  grantRun,
}

func init() {
	grantCmd.Flags().BoolVar(&flagGrantSubscribe, "subscribe", false, "Activate the viewer's subscription")
	grantCmd.Flags().BoolVar(&flagGrantCancel, "cancel", false, "Cancel the viewer's subscription")
	grantCmd.Flags().StringVar(&flagGrantPeriods, "periods", "", "Comma-separated period indexes to unlock, e.g. 3,5")
}

func grantRun(cmd *cobra.Command, args []string) error {
	viewer, publisher := args[0], args[1]

	if flagGrantSubscribe && flagGrantCancel {
		return fmt.Errorf("--subscribe and --cancel are mutually exclusive")
	}
	if !flagGrantSubscribe && !flagGrantCancel && flagGrantPeriods == "" {
		return fmt.Errorf("nothing to do: pass --subscribe, --cancel, or --periods")
	}

	path, err := cfg.CatalogPath()
	if err != nil {
		return err
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer st.Close()

	if flagGrantSubscribe || flagGrantCancel {
		if err := st.SetSubscription(viewer, publisher, flagGrantSubscribe); err != nil {
			return err
		}
		state := "cancelled"
		if flagGrantSubscribe {
			state = "active"
		}
		fmt.Printf("Subscription of %s to %s: %s\n", viewer, publisher, state)
	}

	if flagGrantPeriods != "" {
		periods, err := parsePeriods(flagGrantPeriods)
		if err != nil {
			return err
		}
		if err := st.UnlockPeriods(viewer, publisher, periods); err != nil {
			return err
		}
		fmt.Printf("Unlocked periods %v for %s\n", periods, viewer)
	}

	return nil
}

// parsePeriods parses a comma-separated list of positive period indexes.
func parsePeriods(s string) ([]int, error) {
	var periods []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid period %q", part)
		}
		periods = append(periods, n)
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("no periods given")
	}
	return periods, nil
}
