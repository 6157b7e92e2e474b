package udmf

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/stuarthighley/wadmap/internal/logging"
	"github.com/stuarthighley/wadmap/mapdata"
)

const indent = "  "

// Write validates m and writes it as canonical UDMF text: global assignments
// first, then linedef, sidedef, vertex, sector and thing blocks in list order,
// then unknown blocks. Optional fields are written only when they differ from
// their default. Unknown properties follow the known ones, verbatim.
func Write(w io.Writer, m *mapdata.MapData) error {
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	uw := &udmfWriter{w: bw}

	writeFields(uw, globalSchema.fields, m, "")
	uw.unknown(m.Unknown, "")
	writeBlocks(uw, lineDefSchema, m.LineDefs, lineDefUnknown)
	writeBlocks(uw, sideDefSchema, m.SideDefs, sideDefUnknown)
	writeBlocks(uw, vertexSchema, m.Vertices, vertexUnknown)
	writeBlocks(uw, sectorSchema, m.Sectors, sectorUnknown)
	writeBlocks(uw, thingSchema, m.Things, thingUnknown)
	for _, b := range m.UnknownBlocks {
		uw.open(b.Name)
		uw.unknown(b.Properties, indent)
		uw.close()
	}

	if uw.err != nil {
		return uw.err
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "writing udmf")
	}
	logging.Logger().Debug("Wrote UDMF", "namespace", m.Namespace.Or(""), "bytes", uw.n)
	return nil
}

// Marshal returns the UDMF text of m.
func Marshal(m *mapdata.MapData) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read lexes, parses and analyzes UDMF text from r.
func Read(r io.Reader) (*mapdata.MapData, error) {
	exprs, err := ParseReader(r)
	if err != nil {
		return nil, err
	}
	return Analyze(exprs)
}

// Unmarshal reads a map from UDMF text.
func Unmarshal(data []byte) (*mapdata.MapData, error) {
	return Read(bytes.NewReader(data))
}

// udmfWriter keeps the first error so callers can write unconditionally.
type udmfWriter struct {
	w   *bufio.Writer
	n   int
	err error
}

func (uw *udmfWriter) line(parts ...string) {
	if uw.err != nil {
		return
	}
	for _, p := range parts {
		n, err := uw.w.WriteString(p)
		uw.n += n
		if err != nil {
			uw.err = errors.Wrap(err, "writing udmf")
			return
		}
	}
	n, err := uw.w.WriteString("\n")
	uw.n += n
	if err != nil {
		uw.err = errors.Wrap(err, "writing udmf")
	}
}

func (uw *udmfWriter) open(name string) {
	uw.line()
	uw.line(name)
	uw.line("{")
}

func (uw *udmfWriter) close() {
	uw.line("}")
}

func (uw *udmfWriter) assign(prefix, name, value string) {
	uw.line(prefix, name, " = ", value, ";")
}

func (uw *udmfWriter) unknown(props []mapdata.UnknownProperty, prefix string) {
	for _, p := range props {
		uw.assign(prefix, p.Name, p.Value)
	}
}

// writeFields writes the known fields of e in schema order.
func writeFields[E any](uw *udmfWriter, fields []field[E], e *E, prefix string) {
	for _, f := range fields {
		text, write, err := f.format(e)
		if err != nil && uw.err == nil {
			uw.err = errors.Wrapf(err, "writing field %q", f.name)
		}
		if write {
			uw.assign(prefix, f.name, text)
		}
	}
}

func writeBlocks[E any](uw *udmfWriter, s *schema[E], list []E, unknown func(*E) *[]mapdata.UnknownProperty) {
	for i := range list {
		e := &list[i]
		uw.open(s.block)
		writeFields(uw, s.fields, e, indent)
		uw.unknown(*unknown(e), indent)
		uw.close()
	}
}
