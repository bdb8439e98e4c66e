package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/memory-stitch/internal/codec"
	"github.com/rcliao/memory-stitch/internal/optical"
)

func init() {
	cmd := &cobra.Command{
		Use:   "decode [row...]",
		Short: "Decode a hand-copied grid",
		Long: "Decode a grid typed row by row ('#'/'1'/'x' for a stitch, '.'/'0'/'-' for blank) " +
			"and look up its memory. Rows can be positional args or piped via stdin.",
		Run: runDecode,
	}

	cmd.Flags().Bool("preview", false, "Print the parsed grid")

	RootCmd.AddCommand(cmd)
}

func runDecode(cmd *cobra.Command, args []string) {
	preview, _ := cmd.Flags().GetBool("preview")

	rows := args
	if len(rows) == 0 {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			rows = append(rows, sc.Text())
		}
		if err := sc.Err(); err != nil {
			exitErr("read stdin", err)
		}
	}

	c, err := codec.NewCodec(cfg.Scheme.IDLength)
	if err != nil {
		exitErr("scheme", err)
	}
	res, err := optical.Manual(rows, c.Size())
	if err != nil {
		exitErr("parse grid", err)
	}
	found, ok := res.(optical.Found)
	if !ok {
		exitErr("decode", fmt.Errorf("no grid entered"))
	}
	if preview {
		printGrid(os.Stderr, found.Grid)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	out, err := resolve(cmd.Context(), s, c, found, 0)
	if err != nil {
		exitErr("decode", err)
	}
	printJSON(out)
}
