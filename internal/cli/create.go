package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/memory-stitch/internal/model"
	"github.com/rcliao/memory-stitch/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "create [body]",
		Short: "Create a pattern from a memory",
		Long: "Create a pattern from a memory and save both. The body can be a positional arg or piped via stdin. " +
			"An empty memory still gets a pattern, derived from the current time.",
		Run: runCreate,
	}

	cmd.Flags().StringP("title", "t", "", "Memory title")
	cmd.Flags().StringSliceP("image", "i", nil, "Image file (repeatable)")
	cmd.Flags().Bool("preview", false, "Print the grid after saving")

	RootCmd.AddCommand(cmd)
}

func runCreate(cmd *cobra.Command, args []string) {
	title, _ := cmd.Flags().GetString("title")
	imagePaths, _ := cmd.Flags().GetStringSlice("image")
	preview, _ := cmd.Flags().GetBool("preview")

	// Get body: positional arg first, then check stdin
	var body string
	if len(args) > 0 {
		body = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			body = string(b)
		}
	}

	mem := model.MemoryContent{
		Title: strings.TrimSpace(title),
		Body:  strings.TrimSpace(body),
	}
	for _, p := range imagePaths {
		img, err := os.ReadFile(p)
		if err != nil {
			exitErr("read image", err)
		}
		mem.Images = append(mem.Images, img)
	}
	if mem.IsEmpty() {
		logger.Warn("empty memory, identifier will be time-based")
	}

	b, err := newBuilder()
	if err != nil {
		exitErr("scheme", err)
	}
	rec, err := b.Build(mem)
	if err != nil {
		exitErr("create", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	saved, err := s.Save(cmd.Context(), store.SaveParams{Memory: mem, Record: rec})
	if err != nil {
		exitErr("save", err)
	}
	logger.Info("pattern created",
		zap.String("identifier", rec.Identifier),
		zap.String("pattern_id", saved.ID),
		zap.Int("images", len(mem.Images)))

	if preview {
		printGrid(os.Stderr, rec.Grid)
	}
	printJSON(summarize(*saved))
}

// patternSummary is the compact JSON shape for pattern listings.
type patternSummary struct {
	ID         string `json:"id"`
	MemoryID   string `json:"memory_id"`
	Identifier string `json:"identifier"`
	Title      string `json:"title,omitempty"`
	GridSize   int    `json:"grid_size"`
	Version    int    `json:"version"`
	Images     int    `json:"images,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func summarize(p model.SavedPattern) patternSummary {
	return patternSummary{
		ID:         p.ID,
		MemoryID:   p.MemoryID,
		Identifier: p.Record.Identifier,
		Title:      p.Memory.Title,
		GridSize:   p.Record.Scheme.GridSize,
		Version:    p.Version,
		Images:     len(p.Memory.Images),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

func summarizeAll(ps []model.SavedPattern) []patternSummary {
	out := make([]patternSummary, 0, len(ps))
	for _, p := range ps {
		out = append(out, summarize(p))
	}
	return out
}
