package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/rcliao/memory-stitch/internal/codec"
	"github.com/rcliao/memory-stitch/internal/model"
)

var (
	stitchColor = color.New(color.FgCyan, color.Bold)
	cornerColor = color.New(color.FgYellow)
	blankColor  = color.New(color.Faint)
	wildColor   = color.New(color.FgRed, color.Bold)
	okColor     = color.New(color.FgGreen)
)

// printGrid draws g one row per line: corners as ◆, stitches as ■ and
// blank cells as ·.
func printGrid(w io.Writer, g model.Grid) {
	n := len(g)
	for r, row := range g {
		for c, v := range row {
			if c > 0 {
				fmt.Fprint(w, " ")
			}
			switch {
			case model.IsCorner(r, c, n):
				cornerColor.Fprint(w, "◆")
			case v:
				stitchColor.Fprint(w, "■")
			default:
				blankColor.Fprint(w, "·")
			}
		}
		fmt.Fprintln(w)
	}
}

// printIdentifier prints id with unresolved positions highlighted.
func printIdentifier(w io.Writer, id string) {
	for i := 0; i < len(id); i++ {
		if id[i] == codec.Wildcard {
			wildColor.Fprint(w, string(id[i]))
			continue
		}
		okColor.Fprint(w, string(id[i]))
	}
	fmt.Fprintln(w)
}

func printJSON(v any) {
	writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
