package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/memory-stitch/internal/model"
	"github.com/rcliao/memory-stitch/internal/stitch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show [identifier]",
		Short: "Show a saved pattern",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}

	cmd.Flags().Bool("json", false, "Print the full record as JSON")
	cmd.Flags().Bool("history", false, "Return all versions (newest first)")

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	asJSON, _ := cmd.Flags().GetBool("json")
	history, _ := cmd.Flags().GetBool("history")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	p, err := s.Lookup(cmd.Context(), args[0])
	if err != nil {
		exitErr("show", err)
	}

	if history {
		versions, err := s.History(cmd.Context(), p.MemoryID)
		if err != nil {
			exitErr("history", err)
		}
		printJSON(versions)
		return
	}
	if asJSON {
		printJSON(p)
		return
	}

	printPattern(p)
}

func printPattern(p *model.SavedPattern) {
	out := os.Stdout
	printIdentifier(out, p.Record.Identifier)
	if p.Memory.Title != "" {
		fmt.Fprintf(out, "%s\n", p.Memory.Title)
	}
	fmt.Fprintf(out, "grid %dx%d, version %d, %d image(s)\n\n",
		p.Record.Scheme.GridSize, p.Record.Scheme.GridSize, p.Version, len(p.Memory.Images))
	printGrid(out, p.Record.Grid)

	runs, err := stitch.ExtractRuns(p.Record.Grid, cornerCells(len(p.Record.Grid)))
	if err != nil {
		return
	}
	st := stitch.Summarize(p.Record.Grid, runs)
	fmt.Fprintf(out, "\n%d stitches in %d diagonal runs (%d without merging)\n", st.Cells, st.Runs, st.NaiveRuns)
}

func cornerCells(n int) model.CellSet {
	set := model.CellSet{}
	for _, c := range model.Corners(n) {
		set[c] = true
	}
	return set
}
