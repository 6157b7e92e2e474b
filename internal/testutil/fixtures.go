// Package testutil builds maps and archives for tests.
package testutil

import (
	"github.com/stuarthighley/wadmap/mapdata"
)

// Square appends a 100x100 square of one-sided lines with its lower left
// corner at (x, y), all facing sector. The lines run clockwise so the front
// side faces inwards.
func Square(m *mapdata.MapData, x, y float64, sector int32) {
	base := int32(len(m.Vertices))
	m.Vertices = append(m.Vertices,
		mapdata.NewVertex(x, y),
		mapdata.NewVertex(x, y+100),
		mapdata.NewVertex(x+100, y+100),
		mapdata.NewVertex(x+100, y),
	)
	for i := int32(0); i < 4; i++ {
		AddLine(m, base+i, base+(i+1)%4, sector, -1)
	}
}

// AddLine appends a line from v1 to v2 with a new front side facing front and,
// when back >= 0, a new back side facing back. It returns the line index.
func AddLine(m *mapdata.MapData, v1, v2 int32, front, back int32) int {
	l := mapdata.NewLineDef()
	l.V1.Set(v1)
	l.V2.Set(v2)
	l.SideFront.Set(addSide(m, front))
	l.Blocking = back < 0
	if back >= 0 {
		l.SideBack = addSide(m, back)
		l.TwoSided = true
	}
	m.LineDefs = append(m.LineDefs, l)
	return len(m.LineDefs) - 1
}

func addSide(m *mapdata.MapData, sector int32) int32 {
	s := mapdata.NewSideDef()
	s.Sector.Set(sector)
	s.TextureMiddle = "STARTAN3"
	m.SideDefs = append(m.SideDefs, s)
	return int32(len(m.SideDefs) - 1)
}

// AddSector appends a sector with plain textures and returns its index.
func AddSector(m *mapdata.MapData) int32 {
	s := mapdata.NewSector()
	s.TextureFloor.Set("FLOOR4_8")
	s.TextureCeiling.Set("CEIL3_5")
	s.HeightCeiling = 128
	m.Sectors = append(m.Sectors, s)
	return int32(len(m.Sectors) - 1)
}

// TwoDisjointSquares is one sector made of two 100x100 squares that share no
// vertex: 8 vertices, 8 one-sided lines.
func TwoDisjointSquares() *mapdata.MapData {
	m := mapdata.New("doom")
	sector := AddSector(m)
	Square(m, 0, 0, sector)
	Square(m, 200, 0, sector)
	return m
}

// TwoJoinedSquares is one sector made of two 100x100 squares side by side,
// split by a two-sided line whose both sides face the same sector: 6 vertices,
// 6 one-sided lines and 1 two-sided line.
//
//	v1 ---- v2 ---- v3
//	 |       |       |
//	v0 ---- v5 ---- v4
func TwoJoinedSquares() *mapdata.MapData {
	m := mapdata.New("doom")
	sector := AddSector(m)
	m.Vertices = append(m.Vertices,
		mapdata.NewVertex(0, 0),
		mapdata.NewVertex(0, 100),
		mapdata.NewVertex(100, 100),
		mapdata.NewVertex(200, 100),
		mapdata.NewVertex(200, 0),
		mapdata.NewVertex(100, 0),
	)
	// Line order matters: the walk takes the first edge that continues a
	// loop, and this order closes the left square before the right one.
	AddLine(m, 0, 1, sector, -1)
	AddLine(m, 1, 2, sector, -1)
	AddLine(m, 5, 0, sector, -1)
	AddLine(m, 2, 5, sector, sector)
	AddLine(m, 2, 3, sector, -1)
	AddLine(m, 3, 4, sector, -1)
	AddLine(m, 4, 5, sector, -1)
	return m
}

// AnnotatedMap is a small valid map that uses every optional field and some
// unknown data, for round-trip tests.
func AnnotatedMap() *mapdata.MapData {
	m := TwoDisjointSquares()
	m.Comment = "two rooms"
	m.Unknown = []mapdata.UnknownProperty{{Name: "author", Value: `"someone \"quoted\""`}}

	m.Vertices[0].Unknown = []mapdata.UnknownProperty{{Name: "zfloor", Value: "16.0"}}
	m.Vertices[1].X.Set(-0.5)
	m.Vertices[2].Y.Set(1e-3)

	l := &m.LineDefs[0]
	l.Special = 11
	l.Arg0 = 3
	l.Arg4 = -2
	l.ID = 7
	l.Secret = true
	l.DontPegTop = true
	l.Unknown = []mapdata.UnknownProperty{{Name: "user_note", Value: `"exit"`}, {Name: "alpha", Value: "0.5"}}

	s := &m.SideDefs[0]
	s.OffsetX = 16
	s.OffsetY = -8
	s.TextureTop = "BIGDOOR2"
	s.TextureBottom = ""

	sec := &m.Sectors[0]
	sec.HeightFloor = -16
	sec.LightLevel = 255
	sec.Special = 9
	sec.ID = 4
	sec.Unknown = []mapdata.UnknownProperty{{Name: "gravity", Value: "0.25"}, {Name: "user_flag", Value: "true"}}

	t := mapdata.NewThing()
	t.X.Set(50)
	t.Y.Set(50.25)
	t.Type.Set(1)
	t.Angle = 90
	t.Height = 8
	t.Skill1, t.Skill2, t.Skill3, t.Skill4, t.Skill5 = true, true, true, true, true
	t.Single, t.Coop = true, true
	t.Ambush = true
	t.Unknown = []mapdata.UnknownProperty{{Name: "user_tid", Value: "0x10"}}
	m.Things = append(m.Things, t)

	m.UnknownBlocks = []mapdata.UnknownBlock{
		{Name: "scripting", Properties: []mapdata.UnknownProperty{{Name: "entry", Value: `"main"`}, {Name: "delay", Value: "35"}}},
		{Name: "empty"},
	}
	return m
}
