package udmf

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/stuarthighley/wadmap/mapdata"
)

// field describes one known UDMF key of an entity type E: how to store a
// parsed value and how to write it back.
type field[E any] struct {
	name   string
	kind   TokenKind
	set    func(e *E, tok Token) error
	format func(e *E) (text string, write bool, err error)
}

// schema is the ordered field list of a block type. Required fields come
// first; the writer follows this order.
type schema[E any] struct {
	block  string
	fields []field[E]
	byName map[string]*field[E]
}

func newSchema[E any](block string, fields ...field[E]) *schema[E] {
	s := &schema[E]{block: block, fields: fields, byName: make(map[string]*field[E], len(fields))}
	for i := range s.fields {
		s.byName[s.fields[i].name] = &s.fields[i]
	}
	return s
}

// lookup finds a field by case-insensitive name.
func (s *schema[E]) lookup(name string) (*field[E], bool) {
	f, ok := s.byName[strings.ToLower(name)]
	return f, ok
}

func reqInt[E any](name string, ptr func(*E) *mapdata.Required[int32]) field[E] {
	return field[E]{
		name: name,
		kind: TokenInteger,
		set: func(e *E, tok Token) error {
			v, err := parseInt(tok)
			if err == nil {
				ptr(e).Set(v)
			}
			return err
		},
		format: func(e *E) (string, bool, error) {
			v, ok := ptr(e).Get()
			return formatInt(v), ok, nil
		},
	}
}

func optInt[E any](name string, def int32, ptr func(*E) *int32) field[E] {
	return field[E]{
		name: name,
		kind: TokenInteger,
		set: func(e *E, tok Token) error {
			v, err := parseInt(tok)
			if err == nil {
				*ptr(e) = v
			}
			return err
		},
		format: func(e *E) (string, bool, error) {
			v := *ptr(e)
			return formatInt(v), v != def, nil
		},
	}
}

func reqFloat[E any](name string, ptr func(*E) *mapdata.Required[float64]) field[E] {
	return field[E]{
		name: name,
		kind: TokenFloat,
		set: func(e *E, tok Token) error {
			v, err := parseFloat(tok)
			if err == nil {
				ptr(e).Set(v)
			}
			return err
		},
		format: func(e *E) (string, bool, error) {
			v, ok := ptr(e).Get()
			if !ok {
				return "", false, nil
			}
			text, err := formatFloat(v)
			return text, true, err
		},
	}
}

func optFloat[E any](name string, def float64, ptr func(*E) *float64) field[E] {
	return field[E]{
		name: name,
		kind: TokenFloat,
		set: func(e *E, tok Token) error {
			v, err := parseFloat(tok)
			if err == nil {
				*ptr(e) = v
			}
			return err
		},
		format: func(e *E) (string, bool, error) {
			v := *ptr(e)
			if v == def {
				return "", false, nil
			}
			text, err := formatFloat(v)
			return text, true, err
		},
	}
}

func optBool[E any](name string, ptr func(*E) *bool) field[E] {
	return field[E]{
		name: name,
		kind: TokenBool,
		set: func(e *E, tok Token) error {
			*ptr(e) = strings.EqualFold(tok.Text, "true")
			return nil
		},
		format: func(e *E) (string, bool, error) {
			return "true", *ptr(e), nil
		},
	}
}

func reqString[E any](name string, ptr func(*E) *mapdata.Required[string]) field[E] {
	return field[E]{
		name: name,
		kind: TokenString,
		set: func(e *E, tok Token) error {
			ptr(e).Set(tok.Value)
			return nil
		},
		format: func(e *E) (string, bool, error) {
			v, ok := ptr(e).Get()
			return quote(v), ok, nil
		},
	}
}

func optString[E any](name, def string, ptr func(*E) *string) field[E] {
	return field[E]{
		name: name,
		kind: TokenString,
		set: func(e *E, tok Token) error {
			*ptr(e) = tok.Value
			return nil
		},
		format: func(e *E) (string, bool, error) {
			v := *ptr(e)
			return quote(v), v != def, nil
		},
	}
}

// accepts reports whether a token of kind got can fill a field of kind want.
// Integers are allowed wherever a float is expected.
func accepts(want, got TokenKind) bool {
	return want == got || (want == TokenFloat && got == TokenInteger)
}

// parseInt accepts decimal, 0-prefixed octal and 0x hexadecimal literals.
func parseInt(tok Token) (int32, error) {
	v, err := strconv.ParseInt(tok.Text, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("integer %s out of range", tok.Text)
	}
	return int32(v), nil
}

func parseFloat(tok Token) (float64, error) {
	if tok.Kind == TokenInteger {
		v, err := strconv.ParseInt(tok.Text, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("integer %s out of range", tok.Text)
		}
		return float64(v), nil
	}
	v, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return 0, fmt.Errorf("float %s out of range", tok.Text)
	}
	return v, nil
}

func formatInt(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

// formatFloat writes the shortest text that reads back as v, always with a
// decimal point so it lexes as a float.
func formatFloat(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("cannot write %v", v)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

// Field tables for the five known block types.
var (
	lineDefSchema = newSchema(mapdata.BlockLineDef,
		reqInt("v1", func(l *mapdata.LineDef) *mapdata.Required[int32] { return &l.V1 }),
		reqInt("v2", func(l *mapdata.LineDef) *mapdata.Required[int32] { return &l.V2 }),
		reqInt("sidefront", func(l *mapdata.LineDef) *mapdata.Required[int32] { return &l.SideFront }),
		optInt("sideback", mapdata.DefaultSideBack, func(l *mapdata.LineDef) *int32 { return &l.SideBack }),
		optBool("blocking", func(l *mapdata.LineDef) *bool { return &l.Blocking }),
		optBool("blockmonsters", func(l *mapdata.LineDef) *bool { return &l.BlockMonsters }),
		optBool("twosided", func(l *mapdata.LineDef) *bool { return &l.TwoSided }),
		optBool("dontpegtop", func(l *mapdata.LineDef) *bool { return &l.DontPegTop }),
		optBool("dontpegbottom", func(l *mapdata.LineDef) *bool { return &l.DontPegBottom }),
		optBool("secret", func(l *mapdata.LineDef) *bool { return &l.Secret }),
		optBool("blocksound", func(l *mapdata.LineDef) *bool { return &l.BlockSound }),
		optBool("dontdraw", func(l *mapdata.LineDef) *bool { return &l.DontDraw }),
		optBool("mapped", func(l *mapdata.LineDef) *bool { return &l.Mapped }),
		optBool("passuse", func(l *mapdata.LineDef) *bool { return &l.PassUse }),
		optInt("special", 0, func(l *mapdata.LineDef) *int32 { return &l.Special }),
		optInt("arg0", 0, func(l *mapdata.LineDef) *int32 { return &l.Arg0 }),
		optInt("arg1", 0, func(l *mapdata.LineDef) *int32 { return &l.Arg1 }),
		optInt("arg2", 0, func(l *mapdata.LineDef) *int32 { return &l.Arg2 }),
		optInt("arg3", 0, func(l *mapdata.LineDef) *int32 { return &l.Arg3 }),
		optInt("arg4", 0, func(l *mapdata.LineDef) *int32 { return &l.Arg4 }),
		optInt("id", mapdata.DefaultLineID, func(l *mapdata.LineDef) *int32 { return &l.ID }),
	)

	sideDefSchema = newSchema(mapdata.BlockSideDef,
		reqInt("sector", func(s *mapdata.SideDef) *mapdata.Required[int32] { return &s.Sector }),
		optInt("offsetx", 0, func(s *mapdata.SideDef) *int32 { return &s.OffsetX }),
		optInt("offsety", 0, func(s *mapdata.SideDef) *int32 { return &s.OffsetY }),
		optString("texturetop", mapdata.DefaultTexture, func(s *mapdata.SideDef) *string { return &s.TextureTop }),
		optString("texturebottom", mapdata.DefaultTexture, func(s *mapdata.SideDef) *string { return &s.TextureBottom }),
		optString("texturemiddle", mapdata.DefaultTexture, func(s *mapdata.SideDef) *string { return &s.TextureMiddle }),
	)

	vertexSchema = newSchema(mapdata.BlockVertex,
		reqFloat("x", func(v *mapdata.Vertex) *mapdata.Required[float64] { return &v.X }),
		reqFloat("y", func(v *mapdata.Vertex) *mapdata.Required[float64] { return &v.Y }),
	)

	sectorSchema = newSchema(mapdata.BlockSector,
		reqString("texturefloor", func(s *mapdata.Sector) *mapdata.Required[string] { return &s.TextureFloor }),
		reqString("textureceiling", func(s *mapdata.Sector) *mapdata.Required[string] { return &s.TextureCeiling }),
		optInt("heightfloor", 0, func(s *mapdata.Sector) *int32 { return &s.HeightFloor }),
		optInt("heightceiling", 0, func(s *mapdata.Sector) *int32 { return &s.HeightCeiling }),
		optInt("lightlevel", mapdata.DefaultLightLevel, func(s *mapdata.Sector) *int32 { return &s.LightLevel }),
		optInt("special", 0, func(s *mapdata.Sector) *int32 { return &s.Special }),
		optInt("id", 0, func(s *mapdata.Sector) *int32 { return &s.ID }),
	)

	thingSchema = newSchema(mapdata.BlockThing,
		reqFloat("x", func(t *mapdata.Thing) *mapdata.Required[float64] { return &t.X }),
		reqFloat("y", func(t *mapdata.Thing) *mapdata.Required[float64] { return &t.Y }),
		reqInt("type", func(t *mapdata.Thing) *mapdata.Required[int32] { return &t.Type }),
		optFloat("height", 0, func(t *mapdata.Thing) *float64 { return &t.Height }),
		optInt("angle", 0, func(t *mapdata.Thing) *int32 { return &t.Angle }),
		optBool("skill1", func(t *mapdata.Thing) *bool { return &t.Skill1 }),
		optBool("skill2", func(t *mapdata.Thing) *bool { return &t.Skill2 }),
		optBool("skill3", func(t *mapdata.Thing) *bool { return &t.Skill3 }),
		optBool("skill4", func(t *mapdata.Thing) *bool { return &t.Skill4 }),
		optBool("skill5", func(t *mapdata.Thing) *bool { return &t.Skill5 }),
		optBool("ambush", func(t *mapdata.Thing) *bool { return &t.Ambush }),
		optBool("single", func(t *mapdata.Thing) *bool { return &t.Single }),
		optBool("dm", func(t *mapdata.Thing) *bool { return &t.DM }),
		optBool("coop", func(t *mapdata.Thing) *bool { return &t.Coop }),
	)

	globalSchema = newSchema(mapdata.BlockGlobal,
		reqString("namespace", func(m *mapdata.MapData) *mapdata.Required[string] { return &m.Namespace }),
		optString("comment", "", func(m *mapdata.MapData) *string { return &m.Comment }),
	)
)
