package udmf

import (
	"fmt"
	"strings"

	"github.com/stuarthighley/wadmap/internal/logging"
	"github.com/stuarthighley/wadmap/mapdata"
)

// SemanticError reports a well-formed assignment whose value does not fit its
// field.
type SemanticError struct {
	Pos      Pos
	Block    string
	Field    string
	Expected TokenKind // Set for type mismatches
	Got      TokenKind
	Msg      string
}

func (e *SemanticError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("udmf: %s: %s field %q: %s", e.Pos, e.Block, e.Field, e.Msg)
	}
	return fmt.Sprintf("udmf: %s: %s field %q: expected %s, got %s", e.Pos, e.Block, e.Field, e.Expected, e.Got)
}

// Analyze turns parsed expressions into a MapData. Known keys are matched
// case-insensitively; when a key repeats, the last assignment wins. Unknown
// keys and blocks are kept with their source text. The result is validated, so
// a missing required field fails with a *mapdata.ValidationError.
func Analyze(exprs []Expr) (*mapdata.MapData, error) {
	m := &mapdata.MapData{}
	for _, expr := range exprs {
		var err error
		switch e := expr.(type) {
		case *Assignment:
			m.Unknown, err = apply(globalSchema, m, m.Unknown, e)
		case *Block:
			err = analyzeBlock(m, e)
		default:
			err = fmt.Errorf("udmf: unexpected expression %T", expr)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	stats := m.Stats()
	logging.Logger().Debug("Analyzed UDMF",
		"namespace", m.Namespace.Or(""),
		"linedefs", stats.LineDefs,
		"sidedefs", stats.SideDefs,
		"vertices", stats.Vertices,
		"sectors", stats.Sectors,
		"things", stats.Things,
		"unknownBlocks", stats.UnknownBlocks)
	return m, nil
}

func analyzeBlock(m *mapdata.MapData, b *Block) error {
	var err error
	switch strings.ToLower(b.Name) {
	case mapdata.BlockLineDef:
		m.LineDefs, err = appendEntity(lineDefSchema, m.LineDefs, mapdata.NewLineDef(), lineDefUnknown, b)
	case mapdata.BlockSideDef:
		m.SideDefs, err = appendEntity(sideDefSchema, m.SideDefs, mapdata.NewSideDef(), sideDefUnknown, b)
	case mapdata.BlockVertex:
		m.Vertices, err = appendEntity(vertexSchema, m.Vertices, mapdata.Vertex{}, vertexUnknown, b)
	case mapdata.BlockSector:
		m.Sectors, err = appendEntity(sectorSchema, m.Sectors, mapdata.NewSector(), sectorUnknown, b)
	case mapdata.BlockThing:
		m.Things, err = appendEntity(thingSchema, m.Things, mapdata.NewThing(), thingUnknown, b)
	default:
		ub := mapdata.UnknownBlock{Name: b.Name}
		for _, a := range b.Assignments {
			ub.Properties = append(ub.Properties, unknownProperty(a))
		}
		m.UnknownBlocks = append(m.UnknownBlocks, ub)
	}
	return err
}

// appendEntity fills e from the block's assignments and appends it to list.
func appendEntity[E any](s *schema[E], list []E, e E, unknown func(*E) *[]mapdata.UnknownProperty, b *Block) ([]E, error) {
	for _, a := range b.Assignments {
		props, err := apply(s, &e, *unknown(&e), a)
		if err != nil {
			return nil, err
		}
		*unknown(&e) = props
	}
	return append(list, e), nil
}

// apply stores one assignment into e, or appends it to unknown when the key is
// not in the schema.
func apply[E any](s *schema[E], e *E, unknown []mapdata.UnknownProperty, a *Assignment) ([]mapdata.UnknownProperty, error) {
	f, ok := s.lookup(a.Name)
	if !ok {
		return append(unknown, unknownProperty(a)), nil
	}
	if !accepts(f.kind, a.Value.Kind) {
		return nil, &SemanticError{Pos: a.Value.Pos, Block: s.block, Field: f.name, Expected: f.kind, Got: a.Value.Kind}
	}
	if err := f.set(e, a.Value); err != nil {
		return nil, &SemanticError{Pos: a.Value.Pos, Block: s.block, Field: f.name, Msg: err.Error()}
	}
	return unknown, nil
}

func unknownProperty(a *Assignment) mapdata.UnknownProperty {
	return mapdata.UnknownProperty{Name: a.Name, Value: a.Value.Text}
}

func lineDefUnknown(l *mapdata.LineDef) *[]mapdata.UnknownProperty { return &l.Unknown }
func sideDefUnknown(s *mapdata.SideDef) *[]mapdata.UnknownProperty { return &s.Unknown }
func vertexUnknown(v *mapdata.Vertex) *[]mapdata.UnknownProperty   { return &v.Unknown }
func sectorUnknown(s *mapdata.Sector) *[]mapdata.UnknownProperty   { return &s.Unknown }
func thingUnknown(t *mapdata.Thing) *[]mapdata.UnknownProperty     { return &t.Unknown }
