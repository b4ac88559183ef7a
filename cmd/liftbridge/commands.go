package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sillsdev/liftbridge/core/featstruct"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/internal/bundle"
	"github.com/sillsdev/liftbridge/internal/export"
	"github.com/sillsdev/liftbridge/internal/importlog"
	"github.com/sillsdev/liftbridge/internal/logging"
	"github.com/sillsdev/liftbridge/internal/merge"
	"github.com/sillsdev/liftbridge/internal/progress"
)

// stdout is where reports are printed.
var stdout io.Writer = os.Stdout

// readLIFT parses a LIFT file and its ranges. When rangesPath is empty the
// companion <file>-ranges is used if it exists.
func readLIFT(path, rangesPath string) (*lift.Document, *lift.Ranges, error) {
	doc, err := lift.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	if rangesPath == "" {
		if _, err := os.Stat(path + "-ranges"); err == nil {
			rangesPath = path + "-ranges"
		}
	}
	if rangesPath == "" {
		return doc, nil, nil
	}
	ranges, err := lift.ParseRangesFile(rangesPath)
	if err != nil {
		return nil, nil, err
	}
	return doc, ranges, nil
}

// importFile merges a LIFT file into g.
func importFile(ctx context.Context, g *lexicon.Graph, path, rangesPath string, opts merge.Options, sink progress.Sink) (*merge.Report, error) {
	doc, ranges, err := readLIFT(path, rangesPath)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithImportID(ctx, filepath.Base(path))
	rep, err := merge.Merge(ctx, g, doc, ranges, opts, merge.WithSink(sink))
	if err != nil {
		return rep, fmt.Errorf("merge %s: %w", path, err)
	}
	return rep, nil
}

// logImport records rep in the import log when one is configured.
func (g *Globals) logImport(ctx context.Context, source string, policy merge.Policy, rep *merge.Report) {
	if g.cfg == nil || g.cfg.ImportLog.Path == "" {
		return
	}
	store, err := importlog.Open(g.cfg.ImportLog.Path)
	if err != nil {
		logging.WarnContext(ctx, "import log unavailable", "path", g.cfg.ImportLog.Path, "error", err)
		return
	}
	defer store.Close()
	if _, err := store.Save(ctx, source, policy, rep); err != nil {
		logging.WarnContext(ctx, "import not logged", "source", source, "error", err)
	}
}

// CheckCmd imports a file into an empty lexicon.
type CheckCmd struct {
	File   string `arg:"" help:"LIFT file to check" type:"existingfile"`
	Ranges string `name:"ranges" help:"LIFT-ranges file (default: <file>-ranges when present)" type:"existingfile"`
	Format string `name:"format" short:"f" help:"Report format (yaml, json, text)" default:"yaml" enum:"yaml,json,text"`
	Strict bool   `name:"strict" help:"Fail when the report lists any problem"`
}

func (c *CheckCmd) Run(ctx context.Context, g *Globals) error {
	opts := g.cfg.MergeOptions()
	rep, err := importFile(ctx, lexicon.NewGraph(), c.File, c.Ranges, opts, g.sink(ctx, "check"))
	if err != nil {
		return err
	}
	g.logImport(ctx, c.File, opts.Policy, rep)
	if err := writeReport(stdout, rep, c.Format); err != nil {
		return err
	}
	if c.Strict && rep.HasProblems() {
		return fmt.Errorf("%s: %s", c.File, rep.Summary())
	}
	return nil
}

// MergeCmd merges an incoming file into a base lexicon.
type MergeCmd struct {
	Incoming       string `arg:"" help:"LIFT file to merge in" type:"existingfile"`
	Ranges         string `name:"ranges" help:"LIFT-ranges file of the incoming file" type:"existingfile"`
	Base           string `name:"base" help:"Base LIFT file" type:"existingfile"`
	BaseRanges     string `name:"base-ranges" help:"LIFT-ranges file of the base" type:"existingfile"`
	Policy         string `name:"policy" help:"Merge policy (keep-old, keep-new, keep-both, keep-only-new)"`
	TrustModTimes  bool   `name:"trust-mod-times" help:"Skip entries whose modification time is unchanged"`
	Out            string `name:"out" short:"o" required:"" help:"Output bundle directory" type:"path"`
	Name           string `name:"name" help:"Bundle file name (default: output directory name)"`
	Pack           string `name:"pack" help:"Also pack the bundle (xz, gzip)"`
	MediaRoot      string `name:"media-root" help:"Directory media references are resolved against (default: incoming file directory)" type:"path"`
	NoMedia        bool   `name:"no-media" help:"Do not copy media into the bundle"`
	Format         string `name:"format" short:"f" help:"Report format (yaml, json, text)" default:"yaml" enum:"yaml,json,text"`
	ShowDiagnostic bool   `name:"show-diagnostics" help:"Print every diagnostic after the report"`
}

func (c *MergeCmd) Run(ctx context.Context, g *Globals) error {
	opts := g.cfg.MergeOptions()
	if c.Policy != "" {
		p, err := merge.ParsePolicy(c.Policy)
		if err != nil {
			return err
		}
		opts.Policy = p
	}
	if c.TrustModTimes {
		opts.TrustModTimes = true
	}

	graph := lexicon.NewGraph()
	if c.Base != "" {
		baseOpts := opts
		baseOpts.Policy = merge.KeepOld
		baseOpts.TrustModTimes = false
		rep, err := importFile(ctx, graph, c.Base, c.BaseRanges, baseOpts, progress.Nop{})
		if err != nil {
			return err
		}
		logging.Info("base loaded", "file", c.Base, "entries", len(graph.Entries()), "diagnostics", len(rep.Diagnostics))
	}

	rep, err := importFile(ctx, graph, c.Incoming, c.Ranges, opts, g.sink(ctx, "merge"))
	if err != nil {
		return err
	}
	g.logImport(ctx, c.Incoming, opts.Policy, rep)

	xopts := g.cfg.ExportOptions()
	xopts.MediaRoot = firstNonEmpty(c.MediaRoot, xopts.MediaRoot, filepath.Dir(c.Incoming))
	if c.NoMedia {
		xopts.CopyMedia = false
	}
	if err := writeBundle(ctx, graph, xopts, c.Out, c.Name, c.Pack); err != nil {
		return err
	}

	if err := writeReport(stdout, rep, c.Format); err != nil {
		return err
	}
	if c.ShowDiagnostic {
		for _, d := range rep.Diagnostics {
			fmt.Fprintln(stdout, d.String())
		}
	}
	return nil
}

// ExportCmd canonicalizes a file by importing and exporting it.
type ExportCmd struct {
	File      string `arg:"" help:"LIFT file to export" type:"existingfile"`
	Ranges    string `name:"ranges" help:"LIFT-ranges file" type:"existingfile"`
	Out       string `name:"out" short:"o" required:"" help:"Output bundle directory" type:"path"`
	Name      string `name:"name" help:"Bundle file name (default: output directory name)"`
	Pack      string `name:"pack" help:"Also pack the bundle (xz, gzip)"`
	MediaRoot string `name:"media-root" help:"Directory media references are resolved against" type:"path"`
	NoMedia   bool   `name:"no-media" help:"Do not copy media into the bundle"`
}

func (c *ExportCmd) Run(ctx context.Context, g *Globals) error {
	graph := lexicon.NewGraph()
	opts := g.cfg.MergeOptions()
	opts.Policy = merge.KeepOld
	rep, err := importFile(ctx, graph, c.File, c.Ranges, opts, g.sink(ctx, "export"))
	if err != nil {
		return err
	}
	if rep.HasProblems() {
		logging.Warn("import reported problems", "summary", rep.Summary())
	}

	xopts := g.cfg.ExportOptions()
	xopts.MediaRoot = firstNonEmpty(c.MediaRoot, xopts.MediaRoot, filepath.Dir(c.File))
	if c.NoMedia {
		xopts.CopyMedia = false
	}
	return writeBundle(ctx, graph, xopts, c.Out, c.Name, c.Pack)
}

// writeBundle exports graph into dir and packs it when pack names a
// compression.
func writeBundle(ctx context.Context, graph *lexicon.Graph, opts export.Options, dir, name, pack string) error {
	res, err := export.New(graph, opts).WriteBundle(ctx, dir, name)
	if err != nil {
		return err
	}
	logging.InfoContext(ctx, "bundle written", "lift", res.LIFTPath, "media_copied", res.MediaCopied, "media_renamed", res.MediaRenamed, "media_missing", len(res.MediaMissing))
	if pack == "" {
		return nil
	}
	c, err := bundle.ParseCompression(pack)
	if err != nil {
		return err
	}
	archive := filepath.Clean(dir) + c.Ext()
	if err := bundle.Pack(dir, archive, bundle.Options{Compression: c}); err != nil {
		return err
	}
	logging.InfoContext(ctx, "bundle packed", "archive", archive, "compression", string(c))
	return nil
}

// FeatureCmd parses a feature-structure expression.
type FeatureCmd struct {
	Expr   string `arg:"" help:"Feature expression, e.g. \"{Nom}[gender:f number:sg]\""`
	Ranges string `name:"ranges" help:"LIFT-ranges file holding the feature system" type:"existingfile"`
}

func (c *FeatureCmd) Run(ctx context.Context, g *Globals) error {
	if c.Ranges == "" {
		fs, err := featstruct.Parse(c.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, fs.String())
		return nil
	}
	ranges, err := lift.ParseRangesFile(c.Ranges)
	if err != nil {
		return err
	}
	graph := lexicon.NewGraph()
	if _, err := merge.Merge(ctx, graph, &lift.Document{}, ranges, g.cfg.MergeOptions()); err != nil {
		return err
	}
	resolved, err := featstruct.ParseAndResolve(c.Expr, graph.Features)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, featstruct.Format(resolved))
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
