// Package mapdata is the in-memory form of a Doom map, shared by the binary
// and UDMF readers and consumed by the UDMF writer and the sector graph.
//
// Entities refer to each other by position in the owning MapData's lists.
// Fields without a default are Required; all others carry the defaults listed
// below and are only written out when they differ from them.
package mapdata

// Defaults for optional fields.
const (
	DefaultTexture    = "-"
	DefaultSideBack   = -1
	DefaultLineID     = -1
	DefaultLightLevel = 160
)

// UnknownProperty is an assignment the schema does not know. Value is the
// literal exactly as it appeared in the source, quotes included for strings.
type UnknownProperty struct {
	Name  string
	Value string
}

// UnknownBlock is a block whose name the schema does not know.
type UnknownBlock struct {
	Name       string
	Properties []UnknownProperty
}

// Vertex is a map point.
type Vertex struct {
	X, Y    Required[float64]
	Unknown []UnknownProperty
}

// NewVertex returns a vertex at (x, y).
func NewVertex(x, y float64) Vertex {
	return Vertex{X: Req(x), Y: Req(y)}
}

// SideDef is one side of a line: its textures and the sector it faces.
type SideDef struct {
	Sector        Required[int32]
	OffsetX       int32
	OffsetY       int32
	TextureTop    string
	TextureBottom string
	TextureMiddle string
	Unknown       []UnknownProperty
}

// NewSideDef returns a side with default textures and no sector.
func NewSideDef() SideDef {
	return SideDef{
		TextureTop:    DefaultTexture,
		TextureBottom: DefaultTexture,
		TextureMiddle: DefaultTexture,
	}
}

// LineDef is a line between two vertices with one or two sides.
type LineDef struct {
	V1, V2    Required[int32]
	SideFront Required[int32]
	SideBack  int32 // Meaningful only when the line is two-sided

	Blocking      bool
	BlockMonsters bool
	TwoSided      bool
	DontPegTop    bool
	DontPegBottom bool
	Secret        bool
	BlockSound    bool
	DontDraw      bool
	Mapped        bool
	PassUse       bool

	Special                      int32
	Arg0, Arg1, Arg2, Arg3, Arg4 int32
	ID                           int32
	Unknown                      []UnknownProperty
}

// NewLineDef returns a line with no back side and no id.
func NewLineDef() LineDef {
	return LineDef{SideBack: DefaultSideBack, ID: DefaultLineID}
}

// HasBack reports whether the line references a back side.
func (l *LineDef) HasBack() bool {
	return l.SideBack >= 0
}

// Sector is an area with floor and ceiling properties.
type Sector struct {
	TextureFloor   Required[string]
	TextureCeiling Required[string]
	HeightFloor    int32
	HeightCeiling  int32
	LightLevel     int32
	Special        int32
	ID             int32
	Unknown        []UnknownProperty
}

// NewSector returns a sector with default light and no textures.
func NewSector() Sector {
	return Sector{LightLevel: DefaultLightLevel}
}

// Thing is a placed object: player start, monster, item, decoration.
type Thing struct {
	X, Y   Required[float64]
	Type   Required[int32]
	Height float64
	Angle  int32

	Skill1 bool
	Skill2 bool
	Skill3 bool
	Skill4 bool
	Skill5 bool
	Ambush bool
	Single bool
	DM     bool
	Coop   bool

	Unknown []UnknownProperty
}

// NewThing returns a thing with no position or type.
func NewThing() Thing {
	return Thing{}
}

// MapData is one complete map.
type MapData struct {
	Namespace Required[string]
	Comment   string

	LineDefs []LineDef
	SideDefs []SideDef
	Vertices []Vertex
	Sectors  []Sector
	Things   []Thing

	Unknown       []UnknownProperty
	UnknownBlocks []UnknownBlock
}

// New returns an empty map in the given namespace.
func New(namespace string) *MapData {
	return &MapData{Namespace: Req(namespace)}
}

// Stats counts the entities of a map.
type Stats struct {
	LineDefs, SideDefs, Vertices, Sectors, Things, UnknownBlocks int
}

// Stats returns entity counts.
func (m *MapData) Stats() Stats {
	return Stats{
		LineDefs:      len(m.LineDefs),
		SideDefs:      len(m.SideDefs),
		Vertices:      len(m.Vertices),
		Sectors:       len(m.Sectors),
		Things:        len(m.Things),
		UnknownBlocks: len(m.UnknownBlocks),
	}
}

// Clone returns a deep copy that can be modified without affecting m.
func (m *MapData) Clone() *MapData {
	c := *m
	c.LineDefs = cloneEntities(m.LineDefs, func(l *LineDef) { l.Unknown = cloneProps(l.Unknown) })
	c.SideDefs = cloneEntities(m.SideDefs, func(s *SideDef) { s.Unknown = cloneProps(s.Unknown) })
	c.Vertices = cloneEntities(m.Vertices, func(v *Vertex) { v.Unknown = cloneProps(v.Unknown) })
	c.Sectors = cloneEntities(m.Sectors, func(s *Sector) { s.Unknown = cloneProps(s.Unknown) })
	c.Things = cloneEntities(m.Things, func(t *Thing) { t.Unknown = cloneProps(t.Unknown) })
	c.Unknown = cloneProps(m.Unknown)
	c.UnknownBlocks = cloneEntities(m.UnknownBlocks, func(b *UnknownBlock) { b.Properties = cloneProps(b.Properties) })
	return &c
}

func cloneEntities[T any](src []T, deep func(*T)) []T {
	if src == nil {
		return nil
	}
	dst := make([]T, len(src))
	copy(dst, src)
	for i := range dst {
		deep(&dst[i])
	}
	return dst
}

func cloneProps(p []UnknownProperty) []UnknownProperty {
	if p == nil {
		return nil
	}
	return append([]UnknownProperty(nil), p...)
}
