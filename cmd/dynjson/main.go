// Command dynjson reads JSON or YAML documents into dynamic objects and writes
// them back out as JSON, pretty printed or on one line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alexflint/go-arg"
	pkgerrors "github.com/pkg/errors"
	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"github.com/nooga/dynvar/pkg/chk"
	"github.com/nooga/dynvar/pkg/config"
	"github.com/nooga/dynvar/pkg/dynobj"
	"github.com/nooga/dynvar/pkg/errors"
	"github.com/nooga/dynvar/pkg/jsonfmt"
	"github.com/nooga/dynvar/pkg/log"
	"github.com/nooga/dynvar/pkg/source"
	"github.com/nooga/dynvar/pkg/values"
)

// Exit codes follow sysexits.h.
const (
	exitOK      = 0
	exitUsage   = 64
	exitData    = 65
	exitNoInput = 66
	exitIO      = 74
	exitConfig  = 78
)

type runArgs struct {
	OneLine bool     `arg:"--one-line" help:"write each document on a single line"`
	Indent  int      `arg:"-i,--indent" help:"spaces per indent step, overrides DYNVAR_INDENT_SIZE when above 0"`
	Format  string   `arg:"-f,--format" default:"auto" help:"input format: auto, json or yaml"`
	Clone   bool     `arg:"--clone" help:"deep-clone each document before writing it"`
	Profile bool     `arg:"--profile" help:"write a CPU profile to the working directory"`
	Env     bool     `arg:"--env" help:"print the effective configuration as KEY=value lines and exit"`
	Files   []string `arg:"positional" help:"input files, standard input when none are given"`
}

func (runArgs) Description() string {
	return "dynjson reads JSON or YAML documents and writes them as JSON, keeping key order."
}

func (runArgs) Epilogue() string {
	var b strings.Builder
	config.Usage(&b)
	return b.String()
}

func main() {
	var args runArgs
	arg.MustParse(&args)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, args, os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// document is one input after loading. err is a parse error, a conversion
// error, or a failure to read the input at all.
type document struct {
	src   *source.SourceFile
	value values.Value
	err   error
}

func run(ctx context.Context, args runArgs, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(stderr, "dynjson: configuration: %v\n", err)
		return exitConfig
	}
	cfg.ApplyLogLevel()
	if args.Env {
		config.PrintEnv(cfg, stdout)
		return exitOK
	}
	switch args.Format {
	case "", "auto", "json", "yaml":
	default:
		fmt.Fprintf(stderr, "dynjson: unknown format %q, want auto, json or yaml\n", args.Format)
		return exitUsage
	}
	if args.Indent < 0 {
		fmt.Fprintf(stderr, "dynjson: indent must not be negative\n")
		return exitUsage
	}
	if args.Profile || cfg.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	opts := cfg.Options()
	if args.Indent > 0 {
		opts.IndentSize = args.Indent
	}
	oneLine := args.OneLine || cfg.OneLine

	docs := load(ctx, args, stdin)
	defer func() {
		for _, d := range docs {
			d.value.Release()
		}
	}()

	code := exitOK
	out := jsonfmt.NewSink(stdout, opts)
	for _, d := range docs {
		if d.err != nil {
			code = max(code, report(stderr, d.err))
			continue
		}
		if err = write(out, d.value, oneLine, args.Clone); err != nil {
			log.E.F("writing %s: %v", d.src.DisplayPath(), err)
			return exitIO
		}
	}
	if err = out.Flush(); chk.E(err) {
		return exitIO
	}
	return code
}

// load reads and decodes every input concurrently. The returned values hold
// a reference each.
func load(ctx context.Context, args runArgs, stdin io.Reader) []document {
	if len(args.Files) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return []document{{src: source.NewStdinSource(""), err: pkgerrors.Wrap(err, "reading standard input")}}
		}
		d := decode(source.NewStdinSource(string(b)), args.Format)
		return []document{d}
	}
	docs := make([]document, len(args.Files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range args.Files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				docs[i] = document{src: source.FromFile(name, ""), err: err}
				return nil
			}
			b, err := os.ReadFile(name)
			if err != nil {
				docs[i] = document{src: source.FromFile(name, ""), err: pkgerrors.Wrapf(err, "reading %s", name)}
				return nil
			}
			docs[i] = decode(source.FromFile(name, string(b)), args.Format)
			return nil
		})
	}
	_ = g.Wait()
	return docs
}

func decode(sf *source.SourceFile, format string) document {
	var (
		v   values.Value
		err error
	)
	if format == "yaml" || (format != "json" && isYAMLPath(sf.Path)) {
		v, err = dynobj.FromYAML(strings.NewReader(sf.Content), sf)
	} else {
		v, err = dynobj.FromJSON(strings.NewReader(sf.Content), sf)
	}
	if err != nil {
		return document{src: sf, err: err}
	}
	log.D.F("loaded %s as %s", sf.DisplayPath(), v.Type())
	return document{src: sf, value: v.Retain()}
}

func isYAMLPath(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func write(out *jsonfmt.Sink, v values.Value, oneLine, clone bool) error {
	if clone {
		if o, ok := v.ObjectOrNil().(*dynobj.Object); ok {
			c := o.Clone()
			defer c.Release()
			v = values.FromObject(c)
		} else {
			v = v.Clone().Retain()
			defer v.Release()
		}
	}
	if err := jsonfmt.Write(out, v, 0, oneLine); err != nil {
		return err
	}
	return out.NewLine()
}

// report prints err and returns the exit code it deserves.
func report(w io.Writer, err error) int {
	if de, ok := err.(errors.DynError); ok {
		errors.DisplayErrors(w, []errors.DynError{de})
		return exitData
	}
	fmt.Fprintf(w, "dynjson: %v\n", err)
	return exitNoInput
}
