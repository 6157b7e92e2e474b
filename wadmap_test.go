package wadmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuarthighley/wadmap/internal/testutil"
	"github.com/stuarthighley/wadmap/mapdata"
	"github.com/stuarthighley/wadmap/udmf"
	"github.com/stuarthighley/wadmap/wad"
)

func TestLoad_Binary(t *testing.T) {
	t.Parallel()

	b := wad.NewBuilder(wad.IWAD)
	testutil.AddBinaryMap(b, "E1M1", testutil.BinarySquareLumps(t))
	second := testutil.BinarySquareLumps(t)
	second["THINGS"] = testutil.Records(t,
		testutil.ThingRecord(16, 16, 0, 1, 0x07),
		testutil.ThingRecord(64, 64, 180, 3004, 0x04),
	)
	testutil.AddBinaryMap(b, "E1M2", second)
	a := testutil.Archive(t, b)

	m, format, err := Load(a, "E1M1")
	require.NoError(t, err)
	assert.Equal(t, FormatBinary, format)
	assert.Len(t, m.Things, 1)

	m, _, err = Load(a, "e1m2")
	require.NoError(t, err)
	require.Len(t, m.Things, 2)
	assert.Equal(t, mapdata.Req[int32](3004), m.Things[1].Type)
	assert.Equal(t, "doom", m.Namespace.Or(""))
}

func TestLoad_UDMF(t *testing.T) {
	t.Parallel()

	want := testutil.AnnotatedMap()
	b := wad.NewBuilder(wad.PWAD)
	require.NoError(t, WriteUDMF(b, wad.MustLumpName("MAP01"), want))
	a := testutil.Archive(t, b)

	assert.Equal(t, []string{"MAP01"}, a.MapNames())
	assert.Equal(t, 3, a.Len())

	got, format, err := Load(a, "MAP01")
	require.NoError(t, err)
	assert.Equal(t, FormatUDMF, format)
	assert.Equal(t, want, got)
}

func TestLoad_BinaryToUDMF(t *testing.T) {
	b := wad.NewBuilder(wad.IWAD)
	testutil.AddBinaryMap(b, "MAP01", testutil.BinarySquareLumps(t))
	binary, _, err := Load(testutil.Archive(t, b), "MAP01")
	require.NoError(t, err)

	out := wad.NewBuilder(wad.PWAD)
	require.NoError(t, WriteUDMF(out, wad.MustLumpName("MAP01"), binary))
	converted, format, err := Load(testutil.Archive(t, out), "MAP01")
	require.NoError(t, err)
	assert.Equal(t, FormatUDMF, format)
	assert.Equal(t, binary, converted)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	b := wad.NewBuilder(wad.PWAD)
	b.AddMarker(wad.MustLumpName("MAP01"))
	b.AddLump(wad.LumpTextMap, []byte(`namespace = "doom"; vertex { x = "oops"; y = 0; }`))
	b.AddMarker(wad.LumpEndMap)
	b.AddMarker(wad.MustLumpName("MAP02"))
	b.AddLump(wad.LumpTextMap, []byte(`namespace = "doom" vertex`))
	b.AddMarker(wad.LumpEndMap)
	a := testutil.Archive(t, b)

	_, _, err := Load(a, "MAP03")
	assert.ErrorIs(t, err, ErrMapNotFound)

	_, format, err := Load(a, "MAP01")
	assert.Equal(t, FormatUDMF, format)
	var semErr *udmf.SemanticError
	require.ErrorAs(t, err, &semErr)
	assert.Equal(t, "x", semErr.Field)
	assert.Contains(t, err.Error(), "loading MAP01")

	_, _, err = Load(a, "MAP02")
	assert.ErrorAs(t, err, new(*udmf.SyntaxError))
}

func TestWriteUDMF_Invalid(t *testing.T) {
	m := testutil.TwoDisjointSquares()
	m.Namespace.Unset()

	b := wad.NewBuilder(wad.PWAD)
	err := WriteUDMF(b, wad.MustLumpName("MAP01"), m)
	assert.ErrorAs(t, err, new(*mapdata.ValidationError))
	assert.Zero(t, b.Len())

	var noName wad.LumpName
	err = WriteUDMF(b, noName, testutil.TwoJoinedSquares())
	assert.ErrorIs(t, err, wad.ErrInvalidName)
	assert.Zero(t, b.Len())
}

func TestLoadFile(t *testing.T) {
	b := wad.NewBuilder(wad.PWAD)
	require.NoError(t, WriteUDMF(b, wad.MustLumpName("E2M4"), testutil.TwoJoinedSquares()))
	path := filepath.Join(t.TempDir(), "joined.wad")
	require.NoError(t, b.Save(path))

	m, format, err := LoadFile(path, "E2M4")
	require.NoError(t, err)
	assert.Equal(t, FormatUDMF, format)
	assert.Equal(t, testutil.TwoJoinedSquares(), m)

	_, _, err = LoadFile(filepath.Join(t.TempDir(), "missing.wad"), "E2M4")
	assert.Error(t, err)
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "binary", FormatBinary.String())
	assert.Equal(t, "udmf", FormatUDMF.String())
	assert.Equal(t, "unknown", Format(9).String())
}
