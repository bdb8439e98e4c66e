package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/memory-stitch/internal/render"
	"github.com/rcliao/memory-stitch/internal/stitch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export [identifier]",
		Short: "Export a pattern's stitch path",
		Long:  "Export a saved pattern as SVG, PNG, or the JSON vector description.",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}

	cmd.Flags().StringP("format", "f", "svg", "Output format: svg, png, or json")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().Float64("scale", render.DefaultScale, "PNG pixels per unit")
	cmd.Flags().Bool("label", false, "Caption PNG output with the identifier")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	scale, _ := cmd.Flags().GetFloat64("scale")
	label, _ := cmd.Flags().GetBool("label")

	switch format {
	case "svg", "png", "json":
	default:
		exitErr("export", fmt.Errorf("unknown format %q (valid: svg, png, json)", format))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.Lookup(cmd.Context(), args[0])
	if err != nil {
		exitErr("export", err)
	}

	desc, err := stitch.Export(p.Record)
	if err != nil {
		exitErr("export", err)
	}
	logger.Debug("pattern exported",
		zap.String("identifier", p.Record.Identifier),
		zap.Int("lines", desc.Count(stitch.KindLine)),
		zap.String("format", format))

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			exitErr("create output", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "svg":
		_, err = w.Write(render.SVG(desc))
	case "png":
		err = render.PNG(w, desc, render.PNGOptions{Scale: scale, Label: label})
	case "json":
		err = writeJSON(w, desc)
	}
	if err != nil {
		exitErr("write output", err)
	}
}
