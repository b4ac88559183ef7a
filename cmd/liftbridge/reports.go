package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/internal/importlog"
	"github.com/sillsdev/liftbridge/internal/merge"
)

// writeReport prints a merge report as YAML, JSON or a one-line summary.
func writeReport(w io.Writer, rep *merge.Report, format string) error {
	return writeValue(w, rep, format, func() string { return rep.Summary() })
}

func writeValue(w io.Writer, v any, format string, text func() string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text":
		_, err := fmt.Fprintln(w, text())
		return err
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

// ReportsCmd groups the import log commands.
type ReportsCmd struct {
	List ReportsListCmd `cmd:"" help:"List logged imports, newest first"`
	Show ReportsShowCmd `cmd:"" help:"Show the full report of one import"`
}

func (g *Globals) openLog() (*importlog.Store, error) {
	if g.cfg == nil || g.cfg.ImportLog.Path == "" {
		return nil, errors.NewValidation("import_log.path", "no import log configured")
	}
	return importlog.OpenReadOnly(g.cfg.ImportLog.Path)
}

// ReportsListCmd lists logged imports.
type ReportsListCmd struct {
	Limit  int    `name:"limit" short:"n" help:"Maximum number of imports to list" default:"20"`
	Format string `name:"format" short:"f" help:"Output format (text, yaml, json)" default:"text" enum:"text,yaml,json"`
}

func (c *ReportsListCmd) Run(ctx context.Context, g *Globals) error {
	store, err := g.openLog()
	if err != nil {
		return err
	}
	defer store.Close()
	recs, err := store.List(ctx, c.Limit)
	if err != nil {
		return err
	}
	if c.Format != "text" {
		return writeValue(stdout, recs, c.Format, nil)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tPOLICY\tSOURCE\tADDED\tMERGED\tDIAGNOSTICS")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.Started.Format("2006-01-02 15:04:05"), r.Policy, r.Source, r.Added, r.Merged, r.Diagnostics)
	}
	return tw.Flush()
}

// ReportsShowCmd prints one logged report.
type ReportsShowCmd struct {
	ID     int64  `arg:"" help:"Import id"`
	Format string `name:"format" short:"f" help:"Output format (yaml, json, text)" default:"yaml" enum:"yaml,json,text"`
}

func (c *ReportsShowCmd) Run(ctx context.Context, g *Globals) error {
	store, err := g.openLog()
	if err != nil {
		return err
	}
	defer store.Close()
	rec, err := store.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	return writeValue(stdout, rec, c.Format, func() string {
		return fmt.Sprintf("#%d %s (%s): %s", rec.ID, rec.Source, rec.Policy, rec.Summary)
	})
}
