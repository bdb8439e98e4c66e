package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/memory-stitch/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "restore [file]",
		Short: "Restore memories and patterns from JSON",
		Long:  "Restore from a file or stdin. Expects the format produced by backup. Run migrate afterwards to refresh stale patterns.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runRestore,
	}

	RootCmd.AddCommand(cmd)
}

func runRestore(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	var patterns []model.SavedPattern
	if err := json.Unmarshal(data, &patterns); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), patterns)
	if err != nil {
		exitErr("restore", err)
	}

	fmt.Printf(`{"ok":true,"imported":%d}`+"\n", imported)
}
