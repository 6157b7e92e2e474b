package testutil

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stuarthighley/wadmap/wad"
)

func name8(s string) [8]byte {
	var n [8]byte
	copy(n[:], s)
	return n
}

// Records encodes fixed-size little-endian records back to back.
func Records(t testing.TB, records ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, r := range records {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, r))
	}
	return buf.Bytes()
}

// VertexRecord is the 4 byte VERTEXES record.
func VertexRecord(x, y int16) any {
	return struct{ X, Y int16 }{x, y}
}

// LineDefRecord is the 14 byte LINEDEFS record.
func LineDefRecord(v1, v2 int16, flags uint16, special, tag, front, back int16) any {
	return struct {
		V1, V2  int16
		Flags   uint16
		Special int16
		Tag     int16
		Front   int16
		Back    int16
	}{v1, v2, flags, special, tag, front, back}
}

// SideDefRecord is the 30 byte SIDEDEFS record.
func SideDefRecord(xoff, yoff int16, upper, lower, middle string, sector int16) any {
	return struct {
		XOff, YOff           int16
		Upper, Lower, Middle [8]byte
		Sector               int16
	}{xoff, yoff, name8(upper), name8(lower), name8(middle), sector}
}

// SectorRecord is the 26 byte SECTORS record.
func SectorRecord(floor, ceiling int16, floorTex, ceilingTex string, light, special, tag int16) any {
	return struct {
		Floor, Ceiling       int16
		FloorTex, CeilingTex [8]byte
		Light, Special, Tag  int16
	}{floor, ceiling, name8(floorTex), name8(ceilingTex), light, special, tag}
}

// ThingRecord is the 10 byte THINGS record.
func ThingRecord(x, y, angle, typ int16, options uint16) any {
	return struct {
		X, Y, Angle, Type int16
		Options           uint16
	}{x, y, angle, typ, options}
}

// BinarySquareLumps returns the five lumps of a one-sector square room with a
// player start, in the order they appear after a map marker.
func BinarySquareLumps(t testing.TB) map[string][]byte {
	t.Helper()
	return map[string][]byte{
		"THINGS": Records(t, ThingRecord(32, 32, 90, 1, 0x07)),
		"LINEDEFS": Records(t,
			LineDefRecord(0, 1, 0x01, 0, 0, 0, -1),
			LineDefRecord(1, 2, 0x01, 0, 0, 1, -1),
			LineDefRecord(2, 3, 0x01, 0, 0, 2, -1),
			LineDefRecord(3, 0, 0x01, 0, 0, 3, -1),
		),
		"SIDEDEFS": Records(t,
			SideDefRecord(0, 0, "-", "-", "STARTAN3", 0),
			SideDefRecord(0, 0, "-", "-", "STARTAN3", 0),
			SideDefRecord(0, 0, "-", "-", "STARTAN3", 0),
			SideDefRecord(0, 0, "-", "-", "STARTAN3", 0),
		),
		"VERTEXES": Records(t,
			VertexRecord(0, 0), VertexRecord(0, 128), VertexRecord(128, 128), VertexRecord(128, 0),
		),
		"SECTORS": Records(t, SectorRecord(0, 128, "FLOOR4_8", "CEIL3_5", 160, 0, 0)),
	}
}

// BinaryMapOrder is the lump order of a binary map.
var BinaryMapOrder = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SECTORS"}

// AddBinaryMap appends a marker and the given lumps in BinaryMapOrder.
func AddBinaryMap(b *wad.Builder, marker string, lumps map[string][]byte) {
	b.AddMarker(wad.MustLumpName(marker))
	for _, name := range BinaryMapOrder {
		b.AddLump(wad.MustLumpName(name), lumps[name])
	}
}

// Archive writes b to memory and opens the result.
func Archive(t testing.TB, b *wad.Builder) *wad.Archive {
	t.Helper()
	var buf bytes.Buffer
	_, err := b.WriteTo(&buf)
	require.NoError(t, err)
	a, err := wad.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return a
}
