package cmd

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mandela/internal/selfupdate"
)

// version is set via -ldflags at build time.
var version = "(devel)"

// buildVersion prefers the ldflags value and falls back to the module
// version recorded by `go install ...@vX.Y.Z`.
func buildVersion() string {
	if version != "(devel)" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	RunE: func(cmd *cobra.Command, args []string) error {
		current := buildVersion()
		fmt.Printf("mandela %s (%s/%s, %s)\n", current, runtime.GOOS, runtime.GOARCH, runtime.Version())

		if check, _ := cmd.Flags().GetBool("check"); !check {
			return nil
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		res, err := selfupdate.NewChecker().Check(ctx, &selfupdate.CheckInput{Version: current})
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if res.UpdateAvailable {
			fmt.Printf("New version %s available: %s\nRun `mandela update` to install it.\n", res.LatestVersion, res.ReleaseURL)
		} else {
			fmt.Println("Up to date.")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Also check GitHub for a newer release")
}
