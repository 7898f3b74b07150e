package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/refaktor/bridgegen/bridge"
	"github.com/refaktor/bridgegen/config"
	"github.com/refaktor/bridgegen/naming"
)

type options struct {
	outDir  string // overrides the output of every description
	prefix  string // overrides the prefix of every description
	verbose bool
	symbols bool
}

// result is the generated bridge of one description.
type result struct {
	file string
	dir  string
	out  *bridge.Output
}

func main() {
	var opts options
	flags := flag.NewFlagSet("bridgegen", flag.ExitOnError)
	flags.StringVar(&opts.outDir, "o", "", "output directory (default: output set in each description)")
	flags.StringVar(&opts.prefix, "prefix", "", "symbol prefix (default: prefix set in each description, or "+naming.DefaultPrefix+")")
	flags.BoolVar(&opts.verbose, "v", false, "verbose logging")
	flags.BoolVar(&opts.symbols, "symbols", false, "print the exchanged symbols of each module")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), `usage: bridgegen [options...] <description file>...

Generates cgo glue for each bridge description (.toml, .yaml or .yml).
Writes <module>_bridge.go and, if Go functions are exported,
<module>_bridge.c.

options:
`)
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[1:])
	if flags.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: expected at least one description file")
		fmt.Fprintln(os.Stderr)
		flags.Usage()
		os.Exit(2)
	}

	logger := newLogger(os.Stderr, opts.verbose, term.IsTerminal(int(os.Stderr.Fd())))
	defer logger.Sync()
	bridge.SetLogger(logger.Named("bridge"))

	results, err := run(context.Background(), logger, opts, flags.Args())
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
	if opts.symbols {
		printSymbols(os.Stdout, results)
	}
}

// run generates the bridges of all description files concurrently. The
// first error cancels the remaining ones. Results are in the order of files.
func run(ctx context.Context, logger *zap.Logger, opts options, files []string) ([]result, error) {
	var mu sync.Mutex
	written := map[string]string{} // output path to description
	results := make([]result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, dir, err := generate(opts, file)
			if err != nil {
				return err
			}

			goPath := filepath.Join(dir, bridge.GoFileName(out.Module))
			mu.Lock()
			other, dup := written[goPath]
			written[goPath] = file
			mu.Unlock()
			if dup {
				return fmt.Errorf("%v and %v both generate %v", other, file, goPath)
			}

			if err := writeOutput(out, dir); err != nil {
				return err
			}
			logger.Info("generated bridge",
				zap.String("description", file),
				zap.String("module", out.Module),
				zap.String("dir", dir),
			)
			results[i] = result{file: file, dir: dir, out: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// generate loads file and generates its bridge. It returns the output
// directory along with the generated code.
func generate(opts options, file string) (*bridge.Output, string, error) {
	cfg, err := config.Load(file)
	if err != nil {
		return nil, "", err
	}
	m, err := cfg.IR()
	if err != nil {
		return nil, "", err
	}
	bOpts := cfg.Options()
	if opts.prefix != "" {
		bOpts.Prefix = opts.prefix
	}
	out, err := bridge.Generate(m, bOpts)
	if err != nil {
		return nil, "", fmt.Errorf("%v: %w", file, err)
	}
	dir := cfg.OutputDir()
	if opts.outDir != "" {
		dir = opts.outDir
	}
	return out, dir, nil
}

// writeOutput writes the files of out to dir. A C file left over from an
// earlier run is removed if out no longer needs one.
func writeOutput(out *bridge.Output, dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, bridge.GoFileName(out.Module)), out.Go, 0666); err != nil {
		return err
	}
	cPath := filepath.Join(dir, bridge.CFileName(out.Module))
	if out.C == nil {
		if err := os.Remove(cPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return os.WriteFile(cPath, out.C, 0666)
}

// printSymbols writes a table of the symbols exchanged by each result.
func printSymbols(w io.Writer, results []result) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Module", "Symbol", "Implemented by", "Local name"})
	for _, res := range results {
		for _, sym := range res.out.Symbols {
			tbl.Append([]string{res.out.Module, sym.Link, sym.Side.String(), sym.Ident})
		}
	}
	tbl.SetAutoFormatHeaders(false)
	tbl.SetAutoWrapText(false)
	tbl.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})
	tbl.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	tbl.SetCenterSeparator("|")
	tbl.Render()
}
