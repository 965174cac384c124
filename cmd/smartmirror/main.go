// Command smartmirror mirrors part of a sketch stored as JSON.
//
//	smartmirror -in sketch.json -out mirrored.json Edge1 Edge2 Edge5
//
// The last selection token is the mirror reference.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/VorpalBlade/smartmirror/internal/config"
	"github.com/VorpalBlade/smartmirror/internal/document"
	"github.com/VorpalBlade/smartmirror/internal/mirror"
	"github.com/VorpalBlade/smartmirror/internal/sketch"
)

func main() {
	in := flag.String("in", "", "sketch JSON to read (default stdin)")
	out := flag.String("out", "", "file to write the mirrored sketch to (default stdout)")
	sample := flag.Bool("sample", false, "mirror the built-in sample sketch with its default selection")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*in, *out, *sample, flag.Args(), cfg.MirrorNameSuffix); err != nil {
		var ie *mirror.InternalError
		switch {
		case mirror.IsUsageError(err):
			fmt.Fprintln(os.Stderr, "smartmirror:", mirror.Describe(err))
			os.Exit(1)
		case errors.As(err, &ie):
			fmt.Fprintln(os.Stderr, "smartmirror:", mirror.Describe(err))
			os.Exit(3)
		default:
			fmt.Fprintln(os.Stderr, "smartmirror:", err)
			os.Exit(2)
		}
	}
}

func run(in, out string, sample bool, selection []string, suffix string) error {
	var sk *document.Sketch
	if sample {
		sk = document.NewSampleSketch()
		if len(selection) == 0 {
			selection = document.SampleSelection
		}
	} else {
		var err error
		if sk, err = readSketch(in); err != nil {
			return err
		}
	}

	st, err := sketch.NewStore(sk)
	if err != nil {
		return fmt.Errorf("load sketch: %w", err)
	}
	res, err := mirror.Apply(context.Background(), st, selection, mirror.Options{NameSuffix: suffix})
	if err != nil {
		return err
	}
	slog.Info("mirrored", "geometry", len(res.GeometryMap), "constraints", len(res.Copies))

	return writeSketch(out, st.Sketch())
}

func readSketch(path string) (*document.Sketch, error) {
	f := os.Stdin
	if path != "" {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, err
		}
		defer f.Close()
	}

	var sk document.Sketch
	if err := json.NewDecoder(f).Decode(&sk); err != nil {
		return nil, fmt.Errorf("decode sketch: %w", err)
	}
	return &sk, nil
}

func writeSketch(path string, sk *document.Sketch) error {
	f := os.Stdout
	if path != "" {
		var err error
		if f, err = os.Create(path); err != nil {
			return err
		}
		defer f.Close()
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(sk)
}
