// Package wad provides access to Doom's data archives also known as WAD files.
// The file format is documented in The Unofficial DOOM Specs:
// http://www.gamers.org/dhs/helpdocs/dmsp1666.html
//
// An Archive reads the directory once and hands out lump bodies as bounded
// SubStreams, so a map can be decoded without loading the whole file. A Builder
// writes a new archive from an ordered list of lumps.
package wad

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Kind is the archive type stored in the header magic.
type Kind int

const (
	IWAD Kind = iota // Internal WAD: a complete game
	PWAD             // Patch WAD: adds to or replaces IWAD lumps
)

func (k Kind) String() string {
	if k == IWAD {
		return "IWAD"
	}
	return "PWAD"
}

func (k Kind) magic() [4]byte {
	var m [4]byte
	copy(m[:], k.String())
	return m
}

const (
	headerSize    = 12
	dirEntrySize  = 16
	maxDirEntries = 1 << 24
)

// Map lump names.
var (
	LumpThings   = MustLumpName("THINGS")
	LumpLineDefs = MustLumpName("LINEDEFS")
	LumpSideDefs = MustLumpName("SIDEDEFS")
	LumpVertexes = MustLumpName("VERTEXES")
	LumpSectors  = MustLumpName("SECTORS")
	LumpTextMap  = MustLumpName("TEXTMAP")
	LumpEndMap   = MustLumpName("ENDMAP")
)

// binaryMapLumps are the lumps that may follow a binary format map marker.
var binaryMapLumps = map[string]bool{
	"THINGS": true, "LINEDEFS": true, "SIDEDEFS": true, "VERTEXES": true,
	"SEGS": true, "SSECTORS": true, "NODES": true, "SECTORS": true,
	"REJECT": true, "BLOCKMAP": true, "BEHAVIOR": true, "SCRIPTS": true,
}

var mapNamePattern = regexp.MustCompile(`^(E[0-9]M[0-9]|MAP[0-9][0-9])$`)

// IsMapName reports whether name follows the ExMy or MAPxx convention.
func IsMapName(name LumpName) bool {
	return mapNamePattern.MatchString(name.String())
}

// FormatError reports an archive whose header or directory cannot be trusted.
type FormatError struct {
	Lump   string // Empty for header problems
	Reason string
}

func (e *FormatError) Error() string {
	if e.Lump == "" {
		return "wad format: " + e.Reason
	}
	return fmt.Sprintf("wad format: lump %s: %s", e.Lump, e.Reason)
}

// ErrLumpNotFound is returned by lookups that fail.
var ErrLumpNotFound = errors.New("lump not found")

type binHeader struct {
	Magic        [4]byte
	NumLumps     int32
	InfoTableOfs int32
}

type binLumpInfo struct {
	Filepos int32
	Size    int32
	Name    String8
}

// Lump is one directory entry. A lump with Size 0 is a marker.
type Lump struct {
	Name   LumpName
	Offset int64
	Size   int64
}

// IsMarker reports whether the lump carries no data.
func (l Lump) IsMarker() bool {
	return l.Size == 0
}

// Archive is an opened WAD file. Lumps keep the directory's order.
type Archive struct {
	kind   Kind
	r      io.ReaderAt
	size   int64
	closer io.Closer
	lumps  []Lump
	maps   []int // directory indices of map markers
}

// Open opens the named file and reads its directory.
func Open(filename string) (*Archive, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	a, err := NewReader(file, info.Size())
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	a.closer = file
	return a, nil
}

// NewReader reads the header and directory of an archive of the given size.
// Lump data is not read until requested.
func NewReader(r io.ReaderAt, size int64) (*Archive, error) {
	logger().Debug("Start reading WAD", "size", size)

	if size < headerSize {
		return nil, &FormatError{Reason: fmt.Sprintf("file of %d bytes is shorter than the header", size)}
	}

	// Read header
	var header binHeader
	if err := binary.Read(io.NewSectionReader(r, 0, headerSize), binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	a := &Archive{r: r, size: size}
	switch string(header.Magic[:]) {
	case "IWAD":
		a.kind = IWAD
	case "PWAD":
		a.kind = PWAD
	default:
		return nil, &FormatError{Reason: fmt.Sprintf("bad magic: %q", header.Magic[:])}
	}
	if header.NumLumps < 0 || header.NumLumps > maxDirEntries {
		return nil, &FormatError{Reason: fmt.Sprintf("bad lump count %d", header.NumLumps)}
	}
	dirEnd := int64(header.InfoTableOfs) + int64(header.NumLumps)*dirEntrySize
	if header.InfoTableOfs < headerSize || dirEnd > size {
		return nil, &FormatError{Reason: fmt.Sprintf("directory [%d,%d) outside file of %d bytes", header.InfoTableOfs, dirEnd, size)}
	}

	if err := a.readInfoTables(int64(header.InfoTableOfs), int(header.NumLumps)); err != nil {
		return nil, err
	}
	logger().Debug("Read WAD directory", "kind", a.kind, "lumps", len(a.lumps), "maps", len(a.maps))
	return a, nil
}

func (a *Archive) readInfoTables(offset int64, count int) error {
	infos := make([]binLumpInfo, count)
	if err := binary.Read(io.NewSectionReader(a.r, offset, int64(count)*dirEntrySize), binary.LittleEndian, infos); err != nil {
		return errors.Wrap(err, "reading directory")
	}
	a.lumps = make([]Lump, count)
	for i, info := range infos {
		name, err := lumpNameFromDisk(info.Name)
		if err != nil {
			return &FormatError{Lump: fmt.Sprintf("#%d %q", i, info.Name.String()), Reason: err.Error()}
		}
		start, n := int64(info.Filepos), int64(info.Size)
		if start < 0 || n < 0 || start+n > a.size {
			return &FormatError{Lump: name.String(), Reason: fmt.Sprintf("data [%d,%d) outside file of %d bytes", start, start+n, a.size)}
		}
		a.lumps[i] = Lump{Name: name, Offset: start, Size: n}

		// A map marker is a map-named marker right before THINGS or TEXTMAP
		if i > 0 && (name.Equal(LumpThings) || name.Equal(LumpTextMap)) {
			if prev := a.lumps[i-1]; prev.IsMarker() && IsMapName(prev.Name) {
				a.maps = append(a.maps, i-1)
			}
		}
	}
	return nil
}

// Close closes the underlying file if the archive was created with Open.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Kind returns the archive type.
func (a *Archive) Kind() Kind {
	return a.kind
}

// Len returns the number of lumps.
func (a *Archive) Len() int {
	return len(a.lumps)
}

// Lump returns the i-th directory entry.
func (a *Archive) Lump(i int) Lump {
	return a.lumps[i]
}

// All iterates the directory in order.
func (a *Archive) All() iter.Seq2[int, Lump] {
	return func(yield func(int, Lump) bool) {
		for i, l := range a.lumps {
			if !yield(i, l) {
				return
			}
		}
	}
}

// Find returns the index of the first lump called name, ignoring case.
func (a *Archive) Find(name string) (int, bool) {
	return a.findBetween(name, 0, len(a.lumps))
}

// FindAfter looks for name among the lumps that belong to the map whose marker
// is at index marker, so that e.g. THINGS of one map never resolves to the
// THINGS of the next.
func (a *Archive) FindAfter(marker int, name string) (int, bool) {
	if marker < 0 || marker >= len(a.lumps) {
		return -1, false
	}
	return a.findBetween(name, marker+1, a.mapGroupEnd(marker))
}

func (a *Archive) findBetween(name string, start, end int) (int, bool) {
	for i := start; i < end; i++ {
		if a.lumps[i].Name.Matches(name) {
			return i, true
		}
	}
	return -1, false
}

// mapGroupEnd returns the index one past the last lump of the map at marker.
func (a *Archive) mapGroupEnd(marker int) int {
	i := marker + 1
	if i < len(a.lumps) && a.lumps[i].Name.Equal(LumpTextMap) {
		for ; i < len(a.lumps); i++ {
			if a.lumps[i].Name.Equal(LumpEndMap) {
				return i + 1
			}
		}
		return len(a.lumps)
	}
	for i < len(a.lumps) && binaryMapLumps[a.lumps[i].Name.Key()] {
		i++
	}
	return i
}

// Maps returns the directory indices of map markers in archive order.
func (a *Archive) Maps() []int {
	return append([]int(nil), a.maps...)
}

// MapNames returns the names of the maps found in the archive, in archive order.
func (a *Archive) MapNames() []string {
	result := make([]string, 0, len(a.maps))
	for _, i := range a.maps {
		result = append(result, a.lumps[i].Name.String())
	}
	return result
}

// FindMap returns the marker index of the named map.
func (a *Archive) FindMap(name string) (int, bool) {
	for _, i := range a.maps {
		if a.lumps[i].Name.Matches(name) {
			return i, true
		}
	}
	return -1, false
}

// Section returns a read-only view of the body of lump i. The caller closes it
// once the lump has been consumed.
func (a *Archive) Section(i int) (*SubStream, error) {
	if i < 0 || i >= len(a.lumps) {
		return nil, errors.Wrapf(ErrLumpNotFound, "lump index %d of %d", i, len(a.lumps))
	}
	l := a.lumps[i]
	return NewSubStream(a.r, l.Offset, l.Size)
}

// ReadLump reads the entire body of lump i.
func (a *Archive) ReadLump(i int) ([]byte, error) {
	s, err := a.Section(i)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	lump := make([]byte, s.Size())
	if _, err := io.ReadFull(s, lump); err != nil {
		return nil, errors.Wrapf(err, "truncated lump %s", a.lumps[i].Name)
	}
	return lump, nil
}

// Checksum returns the BLAKE2b-256 digest of the body of lump i.
func (a *Archive) Checksum(i int) ([blake2b.Size256]byte, error) {
	var sum [blake2b.Size256]byte
	s, err := a.Section(i)
	if err != nil {
		return sum, err
	}
	defer s.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return sum, err
	}
	if _, err := io.Copy(h, s); err != nil {
		return sum, errors.Wrapf(err, "hashing lump %s", a.lumps[i].Name)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
