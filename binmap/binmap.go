// Package binmap decodes the fixed-record map lumps of the original Doom
// format (THINGS, LINEDEFS, SIDEDEFS, VERTEXES, SECTORS) into mapdata.
//
// Record layouts are documented in The Unofficial DOOM Specs, chapter 4.
package binmap

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/stuarthighley/wadmap/internal/logging"
	"github.com/stuarthighley/wadmap/mapdata"
	"github.com/stuarthighley/wadmap/wad"
)

// Namespace is the UDMF namespace given to maps decoded from binary lumps.
const Namespace = "doom"

// Record sizes in bytes.
const (
	VertexSize  = 4
	LineDefSize = 14
	SideDefSize = 30
	SectorSize  = 26
	ThingSize   = 10
)

// CorruptLumpError reports a lump whose length is not a whole number of records.
type CorruptLumpError struct {
	Lump       string
	Size       int64
	RecordSize int
}

func (e *CorruptLumpError) Error() string {
	return fmt.Sprintf("corrupt %s lump: %d bytes is not a multiple of the %d byte record", e.Lump, e.Size, e.RecordSize)
}

type binVertex struct {
	X, Y int16
}

type binLineDef struct {
	VertexStart, VertexEnd uint16
	Flags                  uint16
	Special                int16
	SectorTag              int16
	SideR, SideL           uint16
}

type binSideDef struct {
	XOffset       int16
	YOffset       int16
	UpperTexture  wad.String8
	LowerTexture  wad.String8
	MiddleTexture wad.String8
	SectorNum     int16
}

type binSector struct {
	FloorHeight    int16
	CeilingHeight  int16
	FloorTexture   wad.String8
	CeilingTexture wad.String8
	LightLevel     int16
	Special        int16
	TagNum         int16
}

type binThing struct {
	X       int16
	Y       int16
	Angle   int16
	Type    int16
	Options uint16
}

// LineDef flag bits.
const (
	LineBlocking      = 0x0001
	LineBlockMonsters = 0x0002
	LineTwoSided      = 0x0004
	LineDontPegTop    = 0x0008
	LineDontPegBottom = 0x0010
	LineSecret        = 0x0020
	LineBlockSound    = 0x0040
	LineDontDraw      = 0x0080
	LineMapped        = 0x0100
	LinePassUse       = 0x0200 // Boom
)

// NoSide marks a missing sidedef in a LINEDEFS record.
const NoSide = 0xFFFF

// Thing option bits.
const (
	ThingEasy        = 0x0001 // Skills 1 and 2
	ThingMedium      = 0x0002 // Skill 3
	ThingHard        = 0x0004 // Skills 4 and 5
	ThingAmbush      = 0x0008
	ThingMultiplayer = 0x0010 // Not in single player or coop
)

func widen[T constraints.Signed](v T) int32 {
	return int32(v)
}

// sideIndex maps NoSide to -1 and keeps every other index unsigned.
func sideIndex(v uint16) int32 {
	if v == NoSide {
		return -1
	}
	return int32(v)
}

func hasBit[T constraints.Unsigned](flags, bit T) bool {
	return flags&bit != 0
}

// decodeRecords reads size bytes of fixed-length records from r and translates
// each one with conv.
func decodeRecords[B any, T any](lump string, r io.Reader, size int64, conv func(*B) T) ([]T, error) {
	logging.Logger().Debug("Reading lump", "lump", lump, "bytes", size)

	var zero B
	recordSize := binary.Size(&zero)
	if size < 0 || size%int64(recordSize) != 0 {
		return nil, &CorruptLumpError{Lump: lump, Size: size, RecordSize: recordSize}
	}

	// Read lump
	count := size / int64(recordSize)
	records := make([]B, count)
	if err := binary.Read(r, binary.LittleEndian, records); err != nil {
		return nil, errors.Wrapf(err, "reading %s", lump)
	}

	// Translate to canonical
	out := make([]T, 0, count)
	for i := range records {
		out = append(out, conv(&records[i]))
	}
	logging.Logger().Debug("Read lump", "lump", lump, "count", len(out))
	return out, nil
}

// DecodeVertexes decodes a VERTEXES lump of size bytes.
func DecodeVertexes(r io.Reader, size int64) ([]mapdata.Vertex, error) {
	return decodeRecords("VERTEXES", r, size, func(v *binVertex) mapdata.Vertex {
		return mapdata.NewVertex(float64(v.X), float64(v.Y))
	})
}

// DecodeLineDefs decodes a LINEDEFS lump of size bytes. Vertex and side
// indices are unsigned, with NoSide read as -1. The sector tag is stored in
// Arg0, where Doom-namespace UDMF keeps it.
func DecodeLineDefs(r io.Reader, size int64) ([]mapdata.LineDef, error) {
	return decodeRecords("LINEDEFS", r, size, func(b *binLineDef) mapdata.LineDef {
		l := mapdata.NewLineDef()
		l.V1.Set(int32(b.VertexStart))
		l.V2.Set(int32(b.VertexEnd))
		l.SideFront.Set(sideIndex(b.SideR))
		l.SideBack = sideIndex(b.SideL)
		l.Blocking = hasBit(b.Flags, LineBlocking)
		l.BlockMonsters = hasBit(b.Flags, LineBlockMonsters)
		l.TwoSided = hasBit(b.Flags, LineTwoSided)
		l.DontPegTop = hasBit(b.Flags, LineDontPegTop)
		l.DontPegBottom = hasBit(b.Flags, LineDontPegBottom)
		l.Secret = hasBit(b.Flags, LineSecret)
		l.BlockSound = hasBit(b.Flags, LineBlockSound)
		l.DontDraw = hasBit(b.Flags, LineDontDraw)
		l.Mapped = hasBit(b.Flags, LineMapped)
		l.PassUse = hasBit(b.Flags, LinePassUse)
		l.Special = widen(b.Special)
		l.Arg0 = widen(b.SectorTag)
		return l
	})
}

// DecodeSideDefs decodes a SIDEDEFS lump of size bytes.
func DecodeSideDefs(r io.Reader, size int64) ([]mapdata.SideDef, error) {
	return decodeRecords("SIDEDEFS", r, size, func(b *binSideDef) mapdata.SideDef {
		s := mapdata.NewSideDef()
		s.Sector.Set(widen(b.SectorNum))
		s.OffsetX = widen(b.XOffset)
		s.OffsetY = widen(b.YOffset)
		s.TextureTop = b.UpperTexture.String()
		s.TextureBottom = b.LowerTexture.String()
		s.TextureMiddle = b.MiddleTexture.String()
		return s
	})
}

// DecodeSectors decodes a SECTORS lump of size bytes. The sector tag becomes
// the sector ID.
func DecodeSectors(r io.Reader, size int64) ([]mapdata.Sector, error) {
	return decodeRecords("SECTORS", r, size, func(b *binSector) mapdata.Sector {
		s := mapdata.NewSector()
		s.TextureFloor.Set(b.FloorTexture.String())
		s.TextureCeiling.Set(b.CeilingTexture.String())
		s.HeightFloor = widen(b.FloorHeight)
		s.HeightCeiling = widen(b.CeilingHeight)
		s.LightLevel = widen(b.LightLevel)
		s.Special = widen(b.Special)
		s.ID = widen(b.TagNum)
		return s
	})
}

// DecodeThings decodes a THINGS lump of size bytes. Each skill bit covers a
// pair of skills. The multiplayer bit is inverted into Single and Coop; DM
// keeps its default.
func DecodeThings(r io.Reader, size int64) ([]mapdata.Thing, error) {
	return decodeRecords("THINGS", r, size, func(b *binThing) mapdata.Thing {
		t := mapdata.NewThing()
		t.X.Set(float64(b.X))
		t.Y.Set(float64(b.Y))
		t.Type.Set(widen(b.Type))
		t.Angle = widen(b.Angle)
		easy := hasBit(b.Options, ThingEasy)
		hard := hasBit(b.Options, ThingHard)
		t.Skill1 = easy
		t.Skill2 = easy
		t.Skill3 = hasBit(b.Options, ThingMedium)
		t.Skill4 = hard
		t.Skill5 = hard
		t.Ambush = hasBit(b.Options, ThingAmbush)
		t.Single = !hasBit(b.Options, ThingMultiplayer)
		t.Coop = t.Single
		return t
	})
}

// LumpOpener opens one lump of the map being decoded. The returned stream is
// closed by the decoder once the lump has been read.
type LumpOpener func(name wad.LumpName) (*wad.SubStream, error)

// Decode reads the five map lumps through open and assembles a MapData.
func Decode(open LumpOpener) (*mapdata.MapData, error) {
	m := mapdata.New(Namespace)
	var err error
	if m.Things, err = decodeLump(open, wad.LumpThings, DecodeThings); err != nil {
		return nil, err
	}
	if m.LineDefs, err = decodeLump(open, wad.LumpLineDefs, DecodeLineDefs); err != nil {
		return nil, err
	}
	if m.SideDefs, err = decodeLump(open, wad.LumpSideDefs, DecodeSideDefs); err != nil {
		return nil, err
	}
	if m.Vertices, err = decodeLump(open, wad.LumpVertexes, DecodeVertexes); err != nil {
		return nil, err
	}
	if m.Sectors, err = decodeLump(open, wad.LumpSectors, DecodeSectors); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeLump[T any](open LumpOpener, name wad.LumpName, decode func(io.Reader, int64) ([]T, error)) ([]T, error) {
	s, err := open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	defer s.Close()
	return decode(s, s.Size())
}
