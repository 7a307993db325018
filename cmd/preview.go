package cmd

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-sigverify/common"
	"github.com/nvr-ai/go-sigverify/images"
)

var previewCmd = &cobra.Command{
	Use:   "preview <image>",
	Short: "Write a small thumbnail of a signature scan",
	Long: `Write a thumbnail of a signature scan, by default 160x100 pixels, as PNG.

Examples:
  # Writes reference_preview.png next to the input
  sigverify preview reference.jpg

  # Custom size and destination
  sigverify preview reference.jpg --width 320 --height 200 --out thumb.png`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().Int("width", images.PreviewWidth, "Thumbnail width in pixels")
	previewCmd.Flags().Int("height", images.PreviewHeight, "Thumbnail height in pixels")
	previewCmd.Flags().String("out", "", "Output PNG path (default: <input>_preview.png)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	path := args[0]
	out := mustGetString(cmd, "out")
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "_preview.png"
	}

	thumb, err := images.Preview(path, mustGetInt(cmd, "width"), mustGetInt(cmd, "height"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s\n", common.UserMessage(err))
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, thumb); err != nil {
		return err
	}

	b := thumb.Bounds()
	fmt.Printf("🖼️  Preview written to %s (%dx%d)\n", out, b.Dx(), b.Dy())
	return nil
}
