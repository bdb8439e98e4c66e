package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up memories and patterns as JSON",
		Long:  "Write the latest pattern of every memory, with its memory content and images, as JSON.",
		Run:   runBackup,
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	RootCmd.AddCommand(cmd)
}

func runBackup(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	patterns, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("backup", err)
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			exitErr("create output", err)
		}
		defer f.Close()
		w = f
	}
	if err := writeJSON(w, patterns); err != nil {
		exitErr("write output", err)
	}
}
