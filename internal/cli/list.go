package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/memory-stitch/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved patterns",
		Run:   runList,
	}

	cmd.Flags().Int("grid-size", 0, "Filter by grid size")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output identifiers")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	gridSize, _ := cmd.Flags().GetInt("grid-size")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	patterns, err := s.List(cmd.Context(), store.ListParams{
		GridSize: gridSize,
		Limit:    limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, p := range patterns {
			id := p.Record.Identifier
			if id == "" {
				id = "(none)"
			}
			fmt.Printf("%s\t%s\n", id, p.ID)
		}
		return
	}

	printJSON(summarizeAll(patterns))
}
