package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/stuarthighley/wadmap"
	"github.com/stuarthighley/wadmap/internal/testutil"
	"github.com/stuarthighley/wadmap/wad"
)

// WadtoolSuite runs the command against one fixture WAD holding a binary E1M1
// and a UDMF MAP01, written once per suite.
type WadtoolSuite struct {
	suite.Suite
	dir     string
	fixture string
}

func (s *WadtoolSuite) SetupSuite() {
	s.dir = s.T().TempDir()
	b := wad.NewBuilder(wad.PWAD)
	testutil.AddBinaryMap(b, "E1M1", testutil.BinarySquareLumps(s.T()))
	s.Require().NoError(wadmap.WriteUDMF(b, wad.MustLumpName("MAP01"), testutil.TwoJoinedSquares()))
	s.fixture = filepath.Join(s.dir, "fixture.wad")
	s.Require().NoError(b.Save(s.fixture))
}

func (s *WadtoolSuite) run(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	base := []string{"-config", filepath.Join(s.dir, "none.yaml")}
	err := run(context.Background(), append(base, args...), &stdout, &stderr)
	return stdout.String(), err
}

func (s *WadtoolSuite) TestList() {
	out, err := s.run("list", s.fixture, s.fixture)
	s.Require().NoError(err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	s.Require().Len(lines, 2*(1+9))
	s.Equal(s.fixture+": PWAD, 9 lumps", lines[0])
	s.Regexp(`^\s+0 E1M1\s+12\s+0 [0-9a-f]{16}$`, lines[1])
	s.Contains(lines[7], "MAP01")
	s.Equal(lines[0], lines[10])
}

func (s *WadtoolSuite) TestMaps() {
	out, err := s.run("maps", s.fixture)
	s.Require().NoError(err)
	s.Equal(s.fixture+": 2 maps\n  E1M1     binary\n  MAP01    udmf\n", out)
}

func (s *WadtoolSuite) TestConvert() {
	outPath := filepath.Join(s.T().TempDir(), "e1m1.wad")

	out, err := s.run("convert", s.fixture, "E1M1", outPath)
	s.Require().NoError(err)
	s.Contains(out, "binary map E1M1 written as UDMF")
	s.Contains(out, "4 linedefs")

	want, _, err := wadmap.LoadFile(s.fixture, "E1M1")
	s.Require().NoError(err)
	got, format, err := wadmap.LoadFile(outPath, "E1M1")
	s.Require().NoError(err)
	s.Equal(wadmap.FormatUDMF, format)
	s.Equal(want, got)
}

func (s *WadtoolSuite) TestSectors() {
	out, err := s.run("sectors", s.fixture, "MAP01")
	s.Require().NoError(err)
	s.True(strings.HasPrefix(out, "- sector 0 (2 subsectors)\n"), out)
}

func (s *WadtoolSuite) TestUsageErrors() {
	for _, args := range [][]string{
		{},
		{"frobnicate"},
		{"list"},
		{"convert", s.fixture},
		{"sectors", s.fixture},
	} {
		_, err := s.run(args...)
		s.ErrorIs(err, errUsage, "%v", args)
	}
}

func (s *WadtoolSuite) TestMissingFile() {
	_, err := s.run("maps", filepath.Join(s.dir, "nope.wad"))
	s.Error(err)
	s.NotErrorIs(err, errUsage)
}

func TestWadtoolSuite(t *testing.T) {
	suite.Run(t, new(WadtoolSuite))
}
