package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/memory-stitch/internal/codec"
	"github.com/rcliao/memory-stitch/internal/optical"
)

func init() {
	cmd := &cobra.Command{
		Use:   "read [image]",
		Short: "Read a photographed pattern",
		Long: "Send a photo to the grid detection service, decode the grid, and look up its memory. " +
			"With --scores, classify a JSON matrix of per-cell dark-pixel ratios instead.",
		Args: cobra.MaximumNArgs(1),
		Run:  runRead,
	}

	cmd.Flags().String("scores", "", "JSON file of per-cell darkness ratios")
	cmd.Flags().Bool("health", false, "Probe the detection service and exit")
	cmd.Flags().Float64("min-confidence", -1, "Reject grids below this confidence (default: config optical.min_confidence)")
	cmd.Flags().Bool("preview", false, "Print the detected grid")

	RootCmd.AddCommand(cmd)
}

func runRead(cmd *cobra.Command, args []string) {
	scoresPath, _ := cmd.Flags().GetString("scores")
	health, _ := cmd.Flags().GetBool("health")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	preview, _ := cmd.Flags().GetBool("preview")
	if minConfidence < 0 {
		minConfidence = cfg.Optical.MinConfidence
	}

	c, err := codec.NewCodec(cfg.Scheme.IDLength)
	if err != nil {
		exitErr("scheme", err)
	}
	src := optical.NewHTTPSource(cfg.Optical.URL, c.Size(), cfg.Optical.Timeout, logger)

	if health {
		h, err := src.Health(cmd.Context())
		if err != nil {
			exitErr("health", err)
		}
		printJSON(h)
		return
	}

	var found optical.Found
	switch {
	case scoresPath != "":
		data, err := os.ReadFile(scoresPath)
		if err != nil {
			exitErr("read scores", err)
		}
		var scores [][]float64
		if err := json.Unmarshal(data, &scores); err != nil {
			exitErr("parse scores", err)
		}
		found, err = optical.Classify(scores)
		if err != nil {
			exitErr("classify", err)
		}
		logger.Debug("cells classified", zap.Float64("threshold", optical.Threshold(scores)))
	case len(args) == 1:
		img, err := os.ReadFile(args[0])
		if err != nil {
			exitErr("read image", err)
		}
		res, err := src.Analyze(cmd.Context(), img)
		if err != nil {
			exitErr("analyze", err)
		}
		switch r := res.(type) {
		case optical.Found:
			found = r
		case optical.Missing:
			exitErr("read", fmt.Errorf("no grid detected: %s", r.Reason))
		}
	default:
		exitErr("read", fmt.Errorf("an image path or --scores is required"))
	}

	if preview {
		printGrid(os.Stderr, found.Grid)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	out, err := resolve(cmd.Context(), s, c, found, minConfidence)
	if err != nil {
		exitErr("read", err)
	}
	printJSON(out)
}
