package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/stuarthighley/wadmap"
	"github.com/stuarthighley/wadmap/internal/config"
	"github.com/stuarthighley/wadmap/sectorgraph"
	"github.com/stuarthighley/wadmap/wad"
)

// eachArchive opens every file on its own goroutine, at most cfg.WorkerCount()
// at a time, and prints the per-file reports in argument order.
func eachArchive(ctx context.Context, cfg config.Config, files []string, stdout io.Writer, report func(path string, a *wad.Archive, w io.Writer) error) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: no files given", errUsage)
	}

	out := make([]bytes.Buffer, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.WorkerCount())
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := wad.Open(path)
			if err != nil {
				return err
			}
			defer a.Close()
			slog.Debug("Inspecting", "file", path, "kind", a.Kind(), "lumps", a.Len())
			return report(path, a, &out[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range out {
		if _, err := out[i].WriteTo(stdout); err != nil {
			return err
		}
	}
	return nil
}

func listLumps(ctx context.Context, cfg config.Config, files []string, stdout io.Writer) error {
	return eachArchive(ctx, cfg, files, stdout, func(path string, a *wad.Archive, w io.Writer) error {
		fmt.Fprintf(w, "%s: %s, %d lumps\n", path, a.Kind(), a.Len())
		for i, l := range a.All() {
			if !cfg.Output.Checksums {
				fmt.Fprintf(w, "%5d %-8s %10d %8d\n", i, l.Name, l.Offset, l.Size)
				continue
			}
			sum, err := a.Checksum(i)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(w, "%5d %-8s %10d %8d %x\n", i, l.Name, l.Offset, l.Size, sum[:8])
		}
		return nil
	})
}

func listMaps(ctx context.Context, cfg config.Config, files []string, stdout io.Writer) error {
	return eachArchive(ctx, cfg, files, stdout, func(path string, a *wad.Archive, w io.Writer) error {
		fmt.Fprintf(w, "%s: %d maps\n", path, len(a.Maps()))
		for _, marker := range a.Maps() {
			format, ok := wadmap.DetectFormat(a, marker)
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %-8s %s\n", a.Lump(marker).Name, format)
		}
		return nil
	})
}

func convert(cfg config.Config, args []string, stdout io.Writer) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: convert IN MAP OUT", errUsage)
	}
	in, mapName, out := args[0], args[1], args[2]

	name, err := wad.ParseLumpName(mapName)
	if err != nil {
		return err
	}
	kind, err := cfg.Output.WADKind()
	if err != nil {
		return err
	}

	m, format, err := wadmap.LoadFile(in, name.String())
	if err != nil {
		return err
	}
	if cfg.Output.Namespace != "" {
		m.Namespace.Set(cfg.Output.Namespace)
	}

	b := wad.NewBuilder(kind)
	if err := wadmap.WriteUDMF(b, name, m); err != nil {
		return err
	}
	if err := b.Save(out); err != nil {
		return err
	}

	stats := m.Stats()
	fmt.Fprintf(stdout, "%s: %s map %s written as UDMF to %s (%d linedefs, %d sidedefs, %d vertices, %d sectors, %d things)\n",
		in, format, name, out, stats.LineDefs, stats.SideDefs, stats.Vertices, stats.Sectors, stats.Things)
	return nil
}

func sectors(args []string, stdout io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: sectors IN MAP", errUsage)
	}
	m, _, err := wadmap.LoadFile(args[0], args[1])
	if err != nil {
		return err
	}
	g, err := sectorgraph.Build(m)
	if err != nil {
		return err
	}
	return sectorgraph.Print(stdout, g)
}
