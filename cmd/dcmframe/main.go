// Command dcmframe decodes one frame of a DICOM file and writes it as a TIFF image.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cocosip/go-dicom-imageloader/codec"
	"github.com/cocosip/go-dicom-imageloader/external"
	"github.com/cocosip/go-dicom-imageloader/loader"
	"github.com/cocosip/go-dicom-imageloader/pixeldata"
	"github.com/rs/zerolog"
	"golang.org/x/image/tiff"
)

var (
	frameArg   = flag.Int("frame", 0, "zero-based frame index")
	outArg     = flag.String("o", "", "output file (default <input>_<frame>.tiff)")
	verboseArg = flag.Bool("v", false, "log decoder events")
)

func main() {
	flag.CommandLine.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [options] <file.dcm>\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintln(flag.CommandLine.Output(), "Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.CommandLine.Usage()
		os.Exit(2)
	}

	level := zerolog.InfoLevel
	if *verboseArg {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()

	in := flag.Arg(0)
	out := *outArg
	if out == "" {
		base := strings.TrimSuffix(in, filepath.Ext(in))
		out = fmt.Sprintf("%s_%d.tiff", base, *frameArg)
	}

	if err := run(logger, in, *frameArg, out); err != nil {
		logger.Error().Err(err).Str("input", in).Msg("decode failed")
		os.Exit(1)
	}
}

func run(logger zerolog.Logger, in string, frame int, out string) error {
	registry := codec.NewRegistry()
	external.Register(registry)
	dec := pixeldata.NewDecoder(pixeldata.WithRegistry(registry), pixeldata.WithLogger(logger))
	l := loader.New(loader.WithDecoder(dec), loader.WithLogger(logger))
	id := loader.ImageID{Scheme: loader.SchemeDICOMFile, URL: in, Frame: frame}.String()

	start := time.Now()
	f, err := l.LoadImage(context.Background(), id)
	if err != nil {
		return err
	}
	defer l.Release(id)

	img, err := frameImage(f)
	if err != nil {
		return err
	}

	w, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		w.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	logger.Info().
		Str("transferSyntax", f.TransferSyntaxUID).
		Int("rows", f.Rows).
		Int("columns", f.Columns).
		Stringer("photometric", f.Photometric).
		Int32("min", f.Min).
		Int32("max", f.Max).
		Dur("elapsed", time.Since(start)).
		Str("output", out).
		Msg("frame written")
	return nil
}
