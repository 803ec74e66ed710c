// Command h5frame inspects feature containers and builds them from
// per-unit CSV extracts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robert-malhotra/h5frame/frame"
	"github.com/robert-malhotra/h5frame/hdf5"
	"github.com/robert-malhotra/h5frame/internal/batch"
	"github.com/robert-malhotra/h5frame/internal/config"
	"github.com/robert-malhotra/h5frame/internal/logging"
	"github.com/robert-malhotra/h5frame/store"
)

const usage = `usage: h5frame [-config file] [-log-level level] <command> [args]

commands:
  inspect  <container>                 print groups, datasets and attributes
  keys     [-pattern p] <container>    list stored keys
  dump     [-dtype t] <container> <key>
  failures <container>                 print the failure log
  merge    [-pattern p] [-dtype t] <container> [key...]
  build    [-container f] [-data-dir d] [-file-list f] [-clobber] [-encoding e]
`

func main() {
	if err := mainImpl(); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "h5frame: %v\n", err)
		}
		os.Exit(1)
	}
}

func mainImpl() error {
	configFile := flag.String("config", "", "YAML config file")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return err
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return flag.ErrHelp
	}
	cmd := &command{cfg: cfg, log: logger, out: os.Stdout}
	switch args[0] {
	case "inspect":
		return cmd.inspect(args[1:])
	case "keys":
		return cmd.keys(args[1:])
	case "dump":
		return cmd.dump(args[1:])
	case "failures":
		return cmd.failures(args[1:])
	case "merge":
		return cmd.merge(args[1:])
	case "build":
		return cmd.build(ctx, args[1:])
	}
	return fmt.Errorf("unknown command %q", args[0])
}

type command struct {
	cfg *config.Config
	log *slog.Logger
	out io.Writer
}

func (c *command) store(path string, opts ...store.Option) (*store.Store, error) {
	enc, err := store.ParseEncoding(c.cfg.Encoding)
	if err != nil {
		return nil, err
	}
	opts = append([]store.Option{store.WithLogger(c.log), store.WithEncoding(enc)}, opts...)
	return store.New(path, opts...)
}

// parse parses a subcommand's flags and requires between lo and hi
// positional arguments; hi < 0 means unbounded.
func parse(fs *flag.FlagSet, args []string, lo, hi int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if len(rest) < lo || (hi >= 0 && len(rest) > hi) {
		return nil, fmt.Errorf("%s: wrong number of arguments", fs.Name())
	}
	return rest, nil
}

func (c *command) inspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	rest, err := parse(fs, args, 1, 1)
	if err != nil {
		return err
	}
	f, err := hdf5.Open(rest[0])
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(c.out, "superblock version %d\n", f.Version())
	return hdf5.Walk(f.Root(), func(p string, obj any, err error) error {
		indent := strings.Repeat("  ", strings.Count(strings.TrimSuffix(p, "/"), "/"))
		if err != nil {
			fmt.Fprintf(c.out, "%s%s: ERROR %v\n", indent, p, err)
			return nil
		}
		switch o := obj.(type) {
		case *hdf5.Group:
			fmt.Fprintf(c.out, "%sgroup %s (%d members)\n", indent, p, o.NumObjects())
			printAttrs(c.out, indent, o.Attrs(), o.Attr)
		case *hdf5.Dataset:
			fmt.Fprintf(c.out, "%sdataset %s %s %v\n", indent, p, o.Datatype(), o.Shape())
			printAttrs(c.out, indent, o.Attrs(), o.Attr)
		}
		return nil
	})
}

func printAttrs(w io.Writer, indent string, names []string, get func(string) *hdf5.Attribute) {
	for _, name := range names {
		v, err := get(name).Value()
		if err != nil {
			fmt.Fprintf(w, "%s  @%s: ERROR %v\n", indent, name, err)
			continue
		}
		fmt.Fprintf(w, "%s  @%s = %v\n", indent, name, v)
	}
}

func (c *command) keys(args []string) error {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	pattern := fs.String("pattern", "", "glob over keys; * stays within one level, ** crosses levels")
	rest, err := parse(fs, args, 1, 1)
	if err != nil {
		return err
	}
	s, err := c.store(rest[0])
	if err != nil {
		return err
	}
	keys, err := s.Keys(*pattern)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(c.out, k)
	}
	return nil
}

func dtypeFlag(fs *flag.FlagSet) *string {
	return fs.String("dtype", "", "cast values to int64, float64, bool, datetime64[ns] or object")
}

func callOptions(dt string) ([]store.CallOption, error) {
	if dt == "" {
		return nil, nil
	}
	d, err := frame.ParseDType(dt)
	if err != nil {
		return nil, err
	}
	return []store.CallOption{store.WithDType(d)}, nil
}

func (c *command) dump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	dt := dtypeFlag(fs)
	rest, err := parse(fs, args, 2, 2)
	if err != nil {
		return err
	}
	opts, err := callOptions(*dt)
	if err != nil {
		return err
	}
	s, err := c.store(rest[0])
	if err != nil {
		return err
	}
	h, err := s.OpenReadOnly()
	if err != nil {
		return err
	}
	defer h.Close()
	opts = append(opts, store.WithHandle(h))

	key := rest[1]
	if h.File().Exists(store.PathFor(key, store.SubkeyColumns)) {
		t, err := s.PullTable(key, opts...)
		if err != nil {
			return err
		}
		return writeTable(c.out, t)
	}
	sr, err := s.PullSeries(key, opts...)
	if err != nil {
		return err
	}
	vals, err := sr.Strings()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "# dtype %s\n", sr.DType)
	for i, l := range sr.Index.Strings() {
		fmt.Fprintf(c.out, "%s\t%s\n", l, vals[i])
	}
	return nil
}

// writeTable prints t as tab-separated text with a header row.
func writeTable(w io.Writer, t *frame.Table) error {
	rows, err := t.Strings()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\t%s\n", strings.Join(t.Columns.Strings(), "\t"))
	for i, l := range t.Index.Strings() {
		fmt.Fprintf(w, "%s\t%s\n", l, strings.Join(rows[i], "\t"))
	}
	return nil
}

func (c *command) failures(args []string) error {
	fs := flag.NewFlagSet("failures", flag.ContinueOnError)
	rest, err := parse(fs, args, 1, 1)
	if err != nil {
		return err
	}
	s, err := c.store(rest[0])
	if err != nil {
		return err
	}
	report, err := s.PullFailures()
	if err != nil {
		return err
	}
	if report.RunID != "" {
		fmt.Fprintf(c.out, "# run %s\n", report.RunID)
	}
	if len(report.Records) == 0 {
		fmt.Fprintln(c.out, "# nothing failed")
		return nil
	}
	fmt.Fprintln(c.out, strings.Join(store.FailureColumns, "\t"))
	for _, r := range report.Records {
		fmt.Fprintf(c.out, "%s\t%s\t%s\n", r.Case, r.SubUnit, r.Message)
	}
	return nil
}

func (c *command) merge(args []string) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	pattern := fs.String("pattern", "*", "glob selecting keys when none are listed")
	dt := dtypeFlag(fs)
	rest, err := parse(fs, args, 1, -1)
	if err != nil {
		return err
	}
	opts, err := callOptions(*dt)
	if err != nil {
		return err
	}
	s, err := c.store(rest[0])
	if err != nil {
		return err
	}
	keys := rest[1:]
	if len(keys) == 0 {
		if keys, err = s.Keys(*pattern); err != nil {
			return err
		}
	}
	t, err := s.Merge(keys, opts...)
	if err != nil {
		return err
	}
	return writeTable(c.out, t)
}

func (c *command) build(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	container := fs.String("container", c.cfg.Container, "container to write")
	dataDir := fs.String("data-dir", c.cfg.Batch.DataDir, "directory the file list paths are relative to")
	fileList := fs.String("file-list", c.cfg.Batch.FileList, "tab-separated case, sub-unit, path list")
	clobber := fs.Bool("clobber", c.cfg.Clobber, "remove an existing container first")
	encoding := fs.String("encoding", c.cfg.Encoding, "text or typed")
	if _, err := parse(fs, args, 0, 0); err != nil {
		return err
	}
	if *fileList == "" {
		return errors.New("build: -file-list is required")
	}
	c.cfg.Encoding = *encoding

	s, err := c.store(*container, store.WithClobber(*clobber))
	if err != nil {
		return err
	}
	r, err := batch.New(batch.Config{
		Store:     s,
		Metadata:  batch.FileList{Path: *fileList},
		Extractor: batch.CSVExtractor{Comma: c.cfg.CommaRune()},
		DataDir:   *dataDir,
		Logger:    c.log,
	})
	if err != nil {
		return err
	}
	res, err := r.Run(ctx)
	if res != nil {
		fmt.Fprintf(c.out, "run %s: %d/%d units pushed, %d failed\n", res.RunID, res.Pushed, res.Units, len(res.Failures))
	}
	return err
}
