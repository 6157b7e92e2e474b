package wad

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

type pendingLump struct {
	name LumpName
	data []byte
}

// Builder collects lumps in order and writes them out as a new archive.
// Names are validated when the LumpName is constructed or appended, so a
// Builder never fails on a name at write time.
type Builder struct {
	kind  Kind
	lumps []pendingLump
}

// NewBuilder returns an empty Builder for an archive of the given kind.
func NewBuilder(kind Kind) *Builder {
	return &Builder{kind: kind}
}

// AddMarker appends a zero-length lump. It fails with a NameError if name is
// the zero LumpName.
func (b *Builder) AddMarker(name LumpName) error {
	return b.AddLump(name, nil)
}

// AddLump appends a data lump. The slice is retained, not copied. It fails
// with a NameError if name is the zero LumpName.
func (b *Builder) AddLump(name LumpName, data []byte) error {
	if name.IsZero() {
		return &NameError{Reason: "empty"}
	}
	b.lumps = append(b.lumps, pendingLump{name: name, data: data})
	return nil
}

// Len returns the number of lumps added so far.
func (b *Builder) Len() int {
	return len(b.lumps)
}

// WriteTo writes header, lump data and directory, in that order.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)

	// Lay out data blocks right after the header
	infos := make([]binLumpInfo, len(b.lumps))
	offset := int64(headerSize)
	for i, l := range b.lumps {
		if offset+int64(len(l.data)) > 1<<31-1 {
			return 0, errors.Errorf("archive exceeds 2GiB at lump %s", l.name)
		}
		infos[i] = binLumpInfo{Filepos: int32(offset), Size: int32(len(l.data)), Name: l.name.String8()}
		offset += int64(len(l.data))
	}

	header := binHeader{Magic: b.kind.magic(), NumLumps: int32(len(b.lumps)), InfoTableOfs: int32(offset)}
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return 0, errors.Wrap(err, "writing header")
	}
	for _, l := range b.lumps {
		if _, err := bw.Write(l.data); err != nil {
			return 0, errors.Wrapf(err, "writing lump %s", l.name)
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, infos); err != nil {
		return 0, errors.Wrap(err, "writing directory")
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	total := offset + int64(len(infos))*dirEntrySize
	logger().Debug("Wrote WAD", "kind", b.kind, "lumps", len(b.lumps), "bytes", total)
	return total, nil
}

// Save writes the archive to the named file.
func (b *Builder) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if _, err := b.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
