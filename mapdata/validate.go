package mapdata

import (
	"fmt"
	"strings"
)

// Block type names as they appear in UDMF.
const (
	BlockLineDef = "linedef"
	BlockSideDef = "sidedef"
	BlockVertex  = "vertex"
	BlockSector  = "sector"
	BlockThing   = "thing"
	BlockGlobal  = "global"
)

// MissingField names one required field that has not been set.
type MissingField struct {
	Block string
	Index int // -1 for global fields
	Field string
}

func (f MissingField) String() string {
	if f.Index < 0 {
		return fmt.Sprintf("%s field %q", f.Block, f.Field)
	}
	return fmt.Sprintf("%s #%d field %q", f.Block, f.Index, f.Field)
}

// ValidationError lists every required field missing from a map.
type ValidationError struct {
	Missing []MissingField
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		parts[i] = f.String()
	}
	return "missing required " + strings.Join(parts, ", ")
}

// Validate checks that every required field of the map and its entities is
// set. It returns a *ValidationError naming all missing fields, or nil.
func (m *MapData) Validate() error {
	var missing []MissingField
	need := func(set bool, block string, index int, field string) {
		if !set {
			missing = append(missing, MissingField{Block: block, Index: index, Field: field})
		}
	}

	need(m.Namespace.IsSet(), BlockGlobal, -1, "namespace")
	for i := range m.LineDefs {
		l := &m.LineDefs[i]
		need(l.V1.IsSet(), BlockLineDef, i, "v1")
		need(l.V2.IsSet(), BlockLineDef, i, "v2")
		need(l.SideFront.IsSet(), BlockLineDef, i, "sidefront")
	}
	for i := range m.SideDefs {
		need(m.SideDefs[i].Sector.IsSet(), BlockSideDef, i, "sector")
	}
	for i := range m.Vertices {
		v := &m.Vertices[i]
		need(v.X.IsSet(), BlockVertex, i, "x")
		need(v.Y.IsSet(), BlockVertex, i, "y")
	}
	for i := range m.Sectors {
		s := &m.Sectors[i]
		need(s.TextureFloor.IsSet(), BlockSector, i, "texturefloor")
		need(s.TextureCeiling.IsSet(), BlockSector, i, "textureceiling")
	}
	for i := range m.Things {
		t := &m.Things[i]
		need(t.X.IsSet(), BlockThing, i, "x")
		need(t.Y.IsSet(), BlockThing, i, "y")
		need(t.Type.IsSet(), BlockThing, i, "type")
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
