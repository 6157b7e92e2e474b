package sectorgraph

import (
	"fmt"
	"io"
	"math"
)

// Print writes g as an indented tree: sectors, their loops, and the lines of
// each loop.
func Print(w io.Writer, g *Graph) error {
	var err error
	printf := func(prefix, format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, prefix+"- "+format+"\n", args...)
		}
	}
	printLines := func(lines []DirectedLine, prefix string) {
		for _, l := range lines {
			printf(prefix, "%v", l)
		}
	}

	for _, s := range g.Sectors {
		printf("", "sector %d (%d subsectors)", s.Index, len(s.SubSectors))
		for i, sub := range s.SubSectors {
			lo, hi := sub.Bounds()
			winding := "counter-clockwise"
			if sub.Clockwise() {
				winding = "clockwise"
			}
			printf("   ", "subsector %d: %d lines, area %g, %s, bounds (%g,%g)-(%g,%g)",
				i, len(sub.Lines), math.Abs(sub.SignedArea()), winding, lo.X(), lo.Y(), hi.X(), hi.Y())
			printLines(sub.Lines, "      ")
		}
		for i, chain := range s.Open {
			printf("   ", "open chain %d: %d lines", i, len(chain))
			printLines(chain, "      ")
		}
	}
	return err
}
