package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/memory-stitch/internal/migrate"
)

func init() {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Regenerate patterns from retired schemes",
		Long: "Find saved patterns whose scheme is stale (missing identifier, mismatched or retired grid size) " +
			"and regenerate them from their memories. Old versions are kept as history.",
		Run: runMigrate,
	}

	cmd.Flags().Bool("dry-run", false, "List stale patterns without changing anything")
	cmd.Flags().Int("concurrency", 0, "Patterns rebuilt in parallel (default: config migrate.concurrency)")

	RootCmd.AddCommand(cmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.Migrate.Concurrency
	}

	b, err := newBuilder()
	if err != nil {
		exitErr("scheme", err)
	}
	m := migrate.New(b, cfg.Scheme.LegacyGridSizes, concurrency, logger)

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if dryRun {
		stale, err := m.Plan(cmd.Context(), s)
		if err != nil {
			exitErr("migrate", err)
		}
		printJSON(summarizeAll(stale))
		return
	}

	report, err := m.Run(cmd.Context(), s)
	if err != nil {
		exitErr("migrate", err)
	}
	printJSON(report)
}
