package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/mandela/internal/assets"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Check and publish quiz images",
}

var assetsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report catalog images the configured source cannot open",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := loadEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.withAssets(); err != nil {
			return err
		}

		var missing int
		for _, it := range e.catalog.Items() {
			for _, ref := range it.Assets() {
				rc, err := e.assets.Open(ctx, ref)
				if err != nil {
					missing++
					fmt.Printf("✗ %-32s %v\n", ref, err)
					continue
				}
				_ = rc.Close()
				fmt.Printf("✓ %s\n", ref)
			}
		}
		if missing > 0 {
			return fmt.Errorf("%d images missing", missing)
		}
		return nil
	},
}

var assetsPushCmd = &cobra.Command{
	Use:   "push <dir>",
	Short: "Upload the catalog's images from dir to object storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := loadEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.withAssets(); err != nil {
			return err
		}

		up, ok := e.assets.(assets.Uploader)
		if !ok {
			return fmt.Errorf("assets source %q does not accept uploads (set assets.source: minio)", e.cfg.Assets.Source)
		}

		for _, it := range e.catalog.Items() {
			for _, ref := range it.Assets() {
				local := filepath.Join(args[0], ref)
				if _, err := os.Stat(local); err != nil {
					warn("skip %s: %v", ref, err)
					continue
				}
				if err := up.Upload(ctx, ref, local); err != nil {
					return fmt.Errorf("upload %s: %w", ref, err)
				}
				fmt.Println("uploaded", ref)
			}
		}
		return nil
	},
}

func init() {
	assetsCmd.AddCommand(assetsCheckCmd)
	assetsCmd.AddCommand(assetsPushCmd)
}
