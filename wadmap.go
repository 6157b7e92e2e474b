// Package wadmap loads Doom maps from WAD archives, whether stored as the
// original binary lumps or as a UDMF TEXTMAP, and writes maps back into a WAD
// as UDMF.
package wadmap

import (
	"github.com/pkg/errors"

	"github.com/stuarthighley/wadmap/binmap"
	"github.com/stuarthighley/wadmap/internal/logging"
	"github.com/stuarthighley/wadmap/mapdata"
	"github.com/stuarthighley/wadmap/udmf"
	"github.com/stuarthighley/wadmap/wad"
)

// Format is the storage format of a map inside a WAD.
type Format int

const (
	FormatBinary Format = iota // THINGS, LINEDEFS, SIDEDEFS, VERTEXES, SECTORS...
	FormatUDMF                 // TEXTMAP ... ENDMAP
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatUDMF:
		return "udmf"
	}
	return "unknown"
}

// ErrMapNotFound is returned when an archive has no map marker of the given name.
var ErrMapNotFound = errors.New("map not found")

// DetectFormat reports how the map whose marker is at index marker is stored.
func DetectFormat(a *wad.Archive, marker int) (Format, bool) {
	if _, ok := a.FindAfter(marker, wad.LumpTextMap.String()); ok {
		return FormatUDMF, true
	}
	if _, ok := a.FindAfter(marker, wad.LumpThings.String()); ok {
		return FormatBinary, true
	}
	return 0, false
}

// Load reads the named map from a. Every lump view it opens is closed before
// it returns, on success or failure.
func Load(a *wad.Archive, mapName string) (*mapdata.MapData, Format, error) {
	marker, ok := a.FindMap(mapName)
	if !ok {
		return nil, 0, errors.Wrapf(ErrMapNotFound, "%s", mapName)
	}
	format, ok := DetectFormat(a, marker)
	if !ok {
		return nil, 0, errors.Wrapf(wad.ErrLumpNotFound, "%s has neither TEXTMAP nor THINGS", mapName)
	}

	logging.Logger().Debug("Loading map", "map", mapName, "format", format)
	var m *mapdata.MapData
	var err error
	switch format {
	case FormatUDMF:
		m, err = loadTextMap(a, marker)
	default:
		m, err = binmap.Decode(func(name wad.LumpName) (*wad.SubStream, error) {
			i, ok := a.FindAfter(marker, name.String())
			if !ok {
				return nil, errors.Wrapf(wad.ErrLumpNotFound, "%s", name)
			}
			return a.Section(i)
		})
	}
	if err != nil {
		return nil, format, errors.Wrapf(err, "loading %s", mapName)
	}
	return m, format, nil
}

func loadTextMap(a *wad.Archive, marker int) (*mapdata.MapData, error) {
	i, _ := a.FindAfter(marker, wad.LumpTextMap.String())
	s, err := a.Section(i)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return udmf.Read(s)
}

// LoadFile opens the WAD at path and reads the named map from it.
func LoadFile(path, mapName string) (*mapdata.MapData, Format, error) {
	a, err := wad.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer a.Close()
	return Load(a, mapName)
}

// WriteUDMF appends m to b as a UDMF map: a marker called name, a TEXTMAP lump
// and an ENDMAP marker. Nothing is appended if m does not validate or name
// is the zero LumpName.
func WriteUDMF(b *wad.Builder, name wad.LumpName, m *mapdata.MapData) error {
	text, err := udmf.Marshal(m)
	if err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	if err := b.AddMarker(name); err != nil {
		return errors.Wrap(err, "writing map")
	}
	b.AddLump(wad.LumpTextMap, text)
	b.AddMarker(wad.LumpEndMap)
	return nil
}
