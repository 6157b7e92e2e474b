package binmap

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuarthighley/wadmap/internal/testutil"
	"github.com/stuarthighley/wadmap/mapdata"
	"github.com/stuarthighley/wadmap/wad"
)

func TestRecordSizes(t *testing.T) {
	assert.Equal(t, VertexSize, len(testutil.Records(t, testutil.VertexRecord(0, 0))))
	assert.Equal(t, LineDefSize, len(testutil.Records(t, testutil.LineDefRecord(0, 0, 0, 0, 0, 0, 0))))
	assert.Equal(t, SideDefSize, len(testutil.Records(t, testutil.SideDefRecord(0, 0, "", "", "", 0))))
	assert.Equal(t, SectorSize, len(testutil.Records(t, testutil.SectorRecord(0, 0, "", "", 0, 0, 0))))
	assert.Equal(t, ThingSize, len(testutil.Records(t, testutil.ThingRecord(0, 0, 0, 0, 0))))
}

func TestDecodeLineDefs_Alignment(t *testing.T) {
	t.Parallel()

	lump := testutil.Records(t,
		testutil.LineDefRecord(0, 1, 0, 0, 0, 0, -1),
		testutil.LineDefRecord(1, 2, 0, 0, 0, 1, -1),
		testutil.LineDefRecord(2, 0, 0, 0, 0, 2, -1),
	)

	lines, err := DecodeLineDefs(bytes.NewReader(lump), int64(len(lump)))
	require.NoError(t, err)
	assert.Len(t, lines, len(lump)/LineDefSize)

	for _, cut := range []int{1, 13, 15, len(lump) - 1} {
		_, err := DecodeLineDefs(bytes.NewReader(lump[:cut]), int64(cut))
		var corrupt *CorruptLumpError
		require.ErrorAs(t, err, &corrupt, "length %d", cut)
		assert.Equal(t, "LINEDEFS", corrupt.Lump)
		assert.Equal(t, LineDefSize, corrupt.RecordSize)
		assert.Contains(t, err.Error(), "LINEDEFS")
	}
}

func TestDecodeEmptyLump(t *testing.T) {
	things, err := DecodeThings(bytes.NewReader(nil), 0)
	require.NoError(t, err)
	assert.Empty(t, things)
}

func TestDecodeShortStream(t *testing.T) {
	lump := testutil.Records(t, testutil.VertexRecord(1, 2))
	_, err := DecodeVertexes(bytes.NewReader(lump), 8)
	assert.Error(t, err)
}

func TestDecodeLineDefs_Flags(t *testing.T) {
	t.Parallel()

	lump := testutil.Records(t,
		testutil.LineDefRecord(3, 4, 0x03FF, 11, 7, 5, 6),
		testutil.LineDefRecord(0, 1, 0x0004|0x0020, 0, 0, 2, -1),
	)
	lines, err := DecodeLineDefs(bytes.NewReader(lump), int64(len(lump)))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	all := lines[0]
	assert.Equal(t, mapdata.Req[int32](3), all.V1)
	assert.Equal(t, mapdata.Req[int32](4), all.V2)
	assert.Equal(t, mapdata.Req[int32](5), all.SideFront)
	assert.Equal(t, int32(6), all.SideBack)
	assert.Equal(t, int32(11), all.Special)
	assert.Equal(t, int32(7), all.Arg0)
	assert.Equal(t, int32(-1), all.ID)
	for name, set := range map[string]bool{
		"blocking": all.Blocking, "blockmonsters": all.BlockMonsters, "twosided": all.TwoSided,
		"dontpegtop": all.DontPegTop, "dontpegbottom": all.DontPegBottom, "secret": all.Secret,
		"blocksound": all.BlockSound, "dontdraw": all.DontDraw, "mapped": all.Mapped, "passuse": all.PassUse,
	} {
		assert.True(t, set, name)
	}

	some := lines[1]
	assert.True(t, some.TwoSided)
	assert.True(t, some.Secret)
	assert.False(t, some.Blocking)
	assert.False(t, some.Mapped)
	assert.Equal(t, int32(-1), some.SideBack)
	assert.False(t, some.HasBack())
}

func TestDecodeLineDefs_UnsignedIndices(t *testing.T) {
	lump := testutil.Records(t, struct {
		V1, V2, Flags, Special, Tag, Front, Back uint16
	}{40000, 40001, 0, 0, 0, 50000, NoSide})

	lines, err := DecodeLineDefs(bytes.NewReader(lump), int64(len(lump)))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, mapdata.Req[int32](40000), lines[0].V1)
	assert.Equal(t, mapdata.Req[int32](40001), lines[0].V2)
	assert.Equal(t, mapdata.Req[int32](50000), lines[0].SideFront)
	assert.Equal(t, int32(-1), lines[0].SideBack)
	assert.False(t, lines[0].HasBack())
}

func TestDecodeThings_Options(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		options uint16
		skills  [5]bool
		ambush  bool
		single  bool
		dm      bool
		coop    bool
	}{
		{"none", 0, [5]bool{}, false, true, false, true},
		{"easy", ThingEasy, [5]bool{true, true, false, false, false}, false, true, false, true},
		{"medium", ThingMedium, [5]bool{false, false, true, false, false}, false, true, false, true},
		{"hard", ThingHard, [5]bool{false, false, false, true, true}, false, true, false, true},
		{"all skills ambush", 0x0F, [5]bool{true, true, true, true, true}, true, true, false, true},
		{"multiplayer only", ThingMultiplayer, [5]bool{}, false, false, false, false},
		{"multiplayer easy", ThingEasy | ThingMultiplayer, [5]bool{true, true, false, false, false}, false, false, false, false},
		{"unused high bits", 0x0060, [5]bool{}, false, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lump := testutil.Records(t, testutil.ThingRecord(-64, 128, 270, 3004, tt.options))
			things, err := DecodeThings(bytes.NewReader(lump), int64(len(lump)))
			require.NoError(t, err)
			require.Len(t, things, 1)
			th := things[0]
			assert.Equal(t, mapdata.Req(-64.0), th.X)
			assert.Equal(t, mapdata.Req(128.0), th.Y)
			assert.Equal(t, mapdata.Req[int32](3004), th.Type)
			assert.Equal(t, int32(270), th.Angle)
			assert.Equal(t, tt.skills, [5]bool{th.Skill1, th.Skill2, th.Skill3, th.Skill4, th.Skill5})
			assert.Equal(t, tt.ambush, th.Ambush)
			assert.Equal(t, tt.single, th.Single)
			assert.Equal(t, tt.dm, th.DM)
			assert.Equal(t, tt.coop, th.Coop)
		})
	}
}

func TestDecodeSideDefsAndSectors(t *testing.T) {
	sides := testutil.Records(t, testutil.SideDefRecord(-8, 16, "BIGDOOR2", "-", "STARTAN3", 2))
	got, err := DecodeSideDefs(bytes.NewReader(sides), int64(len(sides)))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mapdata.Req[int32](2), got[0].Sector)
	assert.Equal(t, int32(-8), got[0].OffsetX)
	assert.Equal(t, int32(16), got[0].OffsetY)
	assert.Equal(t, "BIGDOOR2", got[0].TextureTop)
	assert.Equal(t, "-", got[0].TextureBottom)
	assert.Equal(t, "STARTAN3", got[0].TextureMiddle)

	sectors := testutil.Records(t, testutil.SectorRecord(-24, 256, "NUKAGE1", "F_SKY1", 192, 5, 12))
	secs, err := DecodeSectors(bytes.NewReader(sectors), int64(len(sectors)))
	require.NoError(t, err)
	require.Len(t, secs, 1)
	s := secs[0]
	assert.Equal(t, mapdata.Req("NUKAGE1"), s.TextureFloor)
	assert.Equal(t, mapdata.Req("F_SKY1"), s.TextureCeiling)
	assert.Equal(t, int32(-24), s.HeightFloor)
	assert.Equal(t, int32(256), s.HeightCeiling)
	assert.Equal(t, int32(192), s.LightLevel)
	assert.Equal(t, int32(5), s.Special)
	assert.Equal(t, int32(12), s.ID)

	_, err = DecodeSectors(bytes.NewReader(sectors), 25)
	assert.ErrorAs(t, err, new(*CorruptLumpError))
}

func TestDecode(t *testing.T) {
	t.Parallel()

	b := wad.NewBuilder(wad.PWAD)
	testutil.AddBinaryMap(b, "E1M1", testutil.BinarySquareLumps(t))
	a := testutil.Archive(t, b)

	var opened, closed []*wad.SubStream
	m, err := Decode(func(name wad.LumpName) (*wad.SubStream, error) {
		i, ok := a.FindAfter(0, name.String())
		if !ok {
			return nil, wad.ErrLumpNotFound
		}
		s, err := a.Section(i)
		opened = append(opened, s)
		return s, err
	})
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, "doom", m.Namespace.Or(""))
	assert.Equal(t, mapdata.Stats{LineDefs: 4, SideDefs: 4, Vertices: 4, Sectors: 1, Things: 1}, m.Stats())
	assert.Equal(t, mapdata.Req(128.0), m.Vertices[2].X)

	// Every lump view is released once decoded
	require.Len(t, opened, 5)
	for _, s := range opened {
		_, err := s.Read(make([]byte, 1))
		if errors.Is(err, wad.ErrClosed) {
			closed = append(closed, s)
		}
	}
	assert.Len(t, closed, 5)
}

func TestDecode_MissingLump(t *testing.T) {
	_, err := Decode(func(name wad.LumpName) (*wad.SubStream, error) {
		return nil, errors.Wrapf(wad.ErrLumpNotFound, "%s", name)
	})
	assert.ErrorIs(t, err, wad.ErrLumpNotFound)
	assert.Contains(t, err.Error(), "THINGS")
}

func TestDecode_CorruptLumpReleasesStream(t *testing.T) {
	lumps := testutil.BinarySquareLumps(t)
	lumps["SIDEDEFS"] = lumps["SIDEDEFS"][:29]
	b := wad.NewBuilder(wad.PWAD)
	testutil.AddBinaryMap(b, "MAP01", lumps)
	a := testutil.Archive(t, b)

	var last *wad.SubStream
	_, err := Decode(func(name wad.LumpName) (*wad.SubStream, error) {
		i, _ := a.FindAfter(0, name.String())
		s, err := a.Section(i)
		last = s
		return s, err
	})
	var corrupt *CorruptLumpError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, "SIDEDEFS", corrupt.Lump)
	_, err = last.Read(make([]byte, 1))
	assert.ErrorIs(t, err, wad.ErrClosed)
}
