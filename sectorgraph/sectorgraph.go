// Package sectorgraph decomposes the boundary lines of each sector into closed
// polygon loops (sub-sectors).
//
// Every linedef contributes a directed edge v1 -> v2 for its front side and,
// when it has a back side, an edge v2 -> v1 for the back. Edges are pooled per
// sector in linedef order. A loop starts from the first edge left in the pool
// and repeatedly takes the first remaining edge that starts where the loop
// currently ends, until it returns to its start vertex.
//
// When several remaining edges share the needed start vertex the first one in
// pool order is taken, so sectors whose outline touches itself at a vertex can
// split differently depending on linedef order.
package sectorgraph

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/slices"

	"github.com/stuarthighley/wadmap/internal/logging"
	"github.com/stuarthighley/wadmap/mapdata"
)

// DirectedLine is one side of a linedef, oriented so that its sector lies on
// the right.
type DirectedLine struct {
	StartVertex, EndVertex int
	Side                   int // SideDef index
	Line                   int // LineDef index
	Start, End             mgl64.Vec2
}

func (d DirectedLine) String() string {
	return fmt.Sprintf("line %d side %d: %d (%g,%g) -> %d (%g,%g)",
		d.Line, d.Side, d.StartVertex, d.Start.X(), d.Start.Y(), d.EndVertex, d.End.X(), d.End.Y())
}

// Length returns the length of the line.
func (d DirectedLine) Length() float64 {
	return d.End.Sub(d.Start).Len()
}

// SubSector is one closed loop: each line starts at the end vertex of the
// previous one and the last ends at the start of the first.
type SubSector struct {
	Lines []DirectedLine
}

// SignedArea returns the shoelace area of the loop, negative when the vertices
// run clockwise.
func (s SubSector) SignedArea() float64 {
	var sum float64
	for _, l := range s.Lines {
		sum += l.Start.X()*l.End.Y() - l.End.X()*l.Start.Y()
	}
	return sum / 2
}

// Clockwise reports whether the loop winds clockwise. Outer boundaries of a
// sector wind clockwise; holes inside it wind the other way.
func (s SubSector) Clockwise() bool {
	return s.SignedArea() < 0
}

// Perimeter returns the total length of the loop.
func (s SubSector) Perimeter() float64 {
	var p float64
	for _, l := range s.Lines {
		p += l.Length()
	}
	return p
}

// Bounds returns the lower left and upper right corners of the loop.
func (s SubSector) Bounds() (lo, hi mgl64.Vec2) {
	if len(s.Lines) == 0 {
		return lo, hi
	}
	lo, hi = s.Lines[0].Start, s.Lines[0].Start
	for _, l := range s.Lines {
		p := l.Start
		lo = mgl64.Vec2{math.Min(lo.X(), p.X()), math.Min(lo.Y(), p.Y())}
		hi = mgl64.Vec2{math.Max(hi.X(), p.X()), math.Max(hi.Y(), p.Y())}
	}
	return lo, hi
}

// Sector holds the loops of one mapdata.Sector.
type Sector struct {
	Index      int
	SubSectors []SubSector
	// Open holds chains that ran out of continuing edges before closing.
	Open [][]DirectedLine
}

// Graph is the decomposition of a whole map, one Sector per map sector in the
// same order.
type Graph struct {
	Sectors []Sector
}

// SubSectorCount returns the number of closed loops across all sectors.
func (g *Graph) SubSectorCount() int {
	n := 0
	for _, s := range g.Sectors {
		n += len(s.SubSectors)
	}
	return n
}

// IndexError reports a linedef or sidedef that refers past the end of a list.
type IndexError struct {
	Line  int    // LineDef index
	Kind  string // "vertex", "sidedef" or "sector"
	Index int32
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("linedef %d: %s index %d out of range [0,%d)", e.Line, e.Kind, e.Index, e.Len)
}

// Build decomposes m into sub-sectors. m must be valid; every vertex, side and
// sector reference is range checked.
func Build(m *mapdata.MapData) (*Graph, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	pools, err := edgePools(m)
	if err != nil {
		return nil, err
	}

	g := &Graph{Sectors: make([]Sector, len(m.Sectors))}
	for i, pool := range pools {
		g.Sectors[i] = walk(i, pool)
	}
	logging.Logger().Debug("Built sector graph", "sectors", len(g.Sectors), "subsectors", g.SubSectorCount())
	return g, nil
}

// edgePools derives the directed edges of every line and groups them by the
// sector their side faces.
func edgePools(m *mapdata.MapData) ([][]DirectedLine, error) {
	pools := make([][]DirectedLine, len(m.Sectors))

	vertex := func(line int, idx int32) (mgl64.Vec2, error) {
		if idx < 0 || int(idx) >= len(m.Vertices) {
			return mgl64.Vec2{}, &IndexError{Line: line, Kind: mapdata.BlockVertex, Index: idx, Len: len(m.Vertices)}
		}
		v := &m.Vertices[idx]
		return mgl64.Vec2{v.X.Or(0), v.Y.Or(0)}, nil
	}
	addEdge := func(line int, side, from, to int32) error {
		if side < 0 || int(side) >= len(m.SideDefs) {
			return &IndexError{Line: line, Kind: mapdata.BlockSideDef, Index: side, Len: len(m.SideDefs)}
		}
		sector := m.SideDefs[side].Sector.Or(-1)
		if sector < 0 || int(sector) >= len(m.Sectors) {
			return &IndexError{Line: line, Kind: mapdata.BlockSector, Index: sector, Len: len(m.Sectors)}
		}
		start, err := vertex(line, from)
		if err != nil {
			return err
		}
		end, err := vertex(line, to)
		if err != nil {
			return err
		}
		pools[sector] = append(pools[sector], DirectedLine{
			StartVertex: int(from),
			EndVertex:   int(to),
			Side:        int(side),
			Line:        line,
			Start:       start,
			End:         end,
		})
		return nil
	}

	for i := range m.LineDefs {
		l := &m.LineDefs[i]
		v1, v2 := l.V1.Or(-1), l.V2.Or(-1)
		if err := addEdge(i, l.SideFront.Or(-1), v1, v2); err != nil {
			return nil, err
		}
		if l.HasBack() {
			if err := addEdge(i, l.SideBack, v2, v1); err != nil {
				return nil, err
			}
		}
	}
	return pools, nil
}

// walk consumes one sector's edge pool into loops.
func walk(index int, pool []DirectedLine) Sector {
	s := Sector{Index: index}
	for len(pool) > 0 {
		loop := []DirectedLine{pool[0]}
		pool = slices.Delete(pool, 0, 1)
		first := loop[0].StartVertex

		for loop[len(loop)-1].EndVertex != first {
			end := loop[len(loop)-1].EndVertex
			next := slices.IndexFunc(pool, func(d DirectedLine) bool { return d.StartVertex == end })
			if next < 0 {
				break
			}
			loop = append(loop, pool[next])
			pool = slices.Delete(pool, next, next+1)
		}

		if loop[len(loop)-1].EndVertex != first {
			logging.Logger().Warn("Sector boundary does not close",
				"sector", index,
				"startVertex", first,
				"endVertex", loop[len(loop)-1].EndVertex,
				"lines", len(loop))
			s.Open = append(s.Open, loop)
			continue
		}
		s.SubSectors = append(s.SubSectors, SubSector{Lines: loop})
	}
	return s
}
