// Package export writes a lexicon graph back out as LIFT 0.13 and its
// companion LIFT-ranges file, optionally as a bundle directory holding the
// referenced media.
//
// Output is deterministic: entries appear in graph order, alternatives in
// locale-registry order and list items in hierarchy order. Residue captured
// on import is written back inside the element it was found in.
package export

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/core/text"
	"github.com/sillsdev/liftbridge/internal/logging"
	"github.com/sillsdev/liftbridge/internal/progress"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// DefaultProducer is written in the producer attribute when none is set.
const DefaultProducer = "liftbridge"

// Options control an export.
type Options struct {
	Producer string
	// Locale is preferred when a label or headword has to be picked from
	// several alternatives.
	Locale string
	// CopyMedia copies pictures and pronunciation media into bundles.
	CopyMedia bool
	// MediaRoot is the directory relative media references are resolved
	// against; it normally holds audio/ and pictures/ folders.
	MediaRoot string
}

// DefaultOptions returns the options used by the command line.
func DefaultOptions() Options {
	return Options{Producer: DefaultProducer, Locale: "en", CopyMedia: true}
}

// Exporter writes one graph. It must not be used while the graph is being
// merged into.
type Exporter struct {
	graph  *lexicon.Graph
	opts   Options
	ranges *lift.RangeTable
	logger *slog.Logger
	sink   progress.Sink

	ids        map[lexicon.Object]string
	relations  map[lexicon.Object][]*lift.Relation
	elementIDs map[*lexicon.Possibility]string
	rangesHref string
	media      *mediaSet
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithSink reports progress to sink.
func WithSink(sink progress.Sink) Option {
	return func(x *Exporter) { x.sink = sink }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(x *Exporter) { x.logger = logger }
}

// WithRanges sets the field-name to range-id table, which must be the one
// the graph was imported with when it holds custom lists.
func WithRanges(t *lift.RangeTable) Option {
	return func(x *Exporter) { x.ranges = t }
}

// New returns an exporter for g.
func New(g *lexicon.Graph, opts Options, options ...Option) *Exporter {
	if opts.Producer == "" {
		opts.Producer = DefaultProducer
	}
	if opts.Locale == "" {
		opts.Locale = "en"
	}
	x := &Exporter{
		graph:  g,
		opts:   opts,
		ranges: lift.NewRangeTable(),
		logger: logging.GetLogger(),
		sink:   progress.Nop{},
	}
	for _, o := range options {
		o(x)
	}
	return x
}

// WriteLIFT writes entries as a LIFT document. A nil slice writes every
// entry of the graph.
func (x *Exporter) WriteLIFT(ctx context.Context, w io.Writer, entries []*lexicon.Entry) error {
	if entries == nil {
		entries = x.graph.Entries()
	}
	x.prepare()

	out := lift.NewWriter(x.graph.Locales)
	out.Header()
	out.Open("lift", "producer", x.opts.Producer, "version", lift.Version)
	x.writeHeader(out)
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		x.writeEntry(out, e)
		x.sink.Progress(i+1, len(entries), "export entries")
	}
	out.Close("lift")

	if _, err := io.WriteString(w, out.String()); err != nil {
		return errors.NewIO("write", "lift", err)
	}
	x.logger.Debug("lift written", "entries", len(entries), "bytes", out.Len())
	return nil
}

// WriteRanges writes the lists and the feature system as a LIFT-ranges
// document.
func (x *Exporter) WriteRanges(w io.Writer) error {
	x.prepare()
	out := lift.NewWriter(x.graph.Locales)
	out.Header()
	out.Open("lift-ranges")
	for _, l := range x.exportedLists() {
		x.writeList(out, l)
	}
	x.writeFeatureRanges(out)
	out.Close("lift-ranges")
	if _, err := io.WriteString(w, out.String()); err != nil {
		return errors.NewIO("write", "lift-ranges", err)
	}
	return nil
}

// prepare computes the ids and relation records every write needs.
func (x *Exporter) prepare() {
	x.ids = make(map[lexicon.Object]string)
	x.indexElementIDs()
	x.indexRelations()
}

// objectID returns the id an entry or sense is written under: the id it was
// imported under when one was recorded, else one built from its guid.
func (x *Exporter) objectID(obj lexicon.Object) string {
	if id, ok := x.ids[obj]; ok {
		return id
	}
	var id string
	if h, ok := obj.(lexicon.ResidueHolder); ok {
		id = residue.OriginalID(h)
	}
	if id == "" {
		if e, ok := obj.(*lexicon.Entry); ok {
			id = lift.MakeID(e.Headword(x.opts.Locale), e.GUID())
		} else {
			id = obj.GUID().String()
		}
	}
	x.ids[obj] = id
	return id
}

// label returns the name a possibility is referred to by in traits and
// grammatical info.
func (x *Exporter) label(p *lexicon.Possibility) string {
	if p == nil {
		return ""
	}
	return p.Label(x.opts.Locale)
}

func (x *Exporter) labels(ps []*lexicon.Possibility) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		if l := x.label(p); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// exportedLists returns the lists written to the ranges file: standard lists
// in their fixed order, then custom lists, leaving out empty ones.
func (x *Exporter) exportedLists() []*lexicon.List {
	var out []*lexicon.List
	for _, id := range lexicon.StandardLists {
		if l := x.graph.List(id); l.Len() > 0 {
			out = append(out, l)
		}
	}
	for _, l := range x.graph.Lists() {
		if !l.ID.IsStandard() && l.Len() > 0 {
			out = append(out, l)
		}
	}
	return out
}

// indexElementIDs assigns range-element ids: the label, or the guid when
// another item of the same list already uses the label.
func (x *Exporter) indexElementIDs() {
	x.elementIDs = make(map[*lexicon.Possibility]string)
	for _, l := range x.graph.Lists() {
		seen := make(map[string]bool)
		l.Walk(func(p *lexicon.Possibility) bool {
			id := x.label(p)
			if id == "" || seen[id] {
				id = p.GUID().String()
			}
			seen[id] = true
			x.elementIDs[p] = id
			return true
		})
	}
}

func (x *Exporter) writeHeader(w *lift.Writer) {
	lists := x.exportedLists()
	fields := x.graph.CustomFields()
	if len(lists) == 0 && len(fields) == 0 {
		return
	}
	w.Open("header")
	if len(lists) > 0 {
		w.Open("ranges")
		for _, l := range lists {
			w.Empty("range", "id", x.ranges.RangeID(l.ID), "href", x.rangesHref)
		}
		w.Close("ranges")
	}
	if len(fields) > 0 {
		w.Open("fields")
		for _, f := range fields {
			w.Open("field", "tag", f.Label)
			w.Forms(f.Description)
			w.Raw(`<form lang="` + lift.SpecLang + `">` + lift.TextXML(text.Plain(descriptorOf(f, x.ranges)), lift.SpecLang) + `</form>`)
			w.Close("field")
		}
		w.Close("fields")
	}
	w.Close("header")
}

// descriptorOf renders the compact type descriptor of a custom field.
func descriptorOf(f *lexicon.CustomField, ranges *lift.RangeTable) string {
	parts := []string{"Class=" + f.Class, "Type=" + string(f.Type)}
	if f.WsSelector != "" {
		parts = append(parts, "WsSelector="+f.WsSelector)
	}
	if f.DstClass != "" {
		parts = append(parts, "DstCls="+f.DstClass)
	}
	if f.ListID != "" {
		parts = append(parts, "range="+ranges.RangeID(f.ListID))
	}
	return strings.Join(parts, "; ")
}

// writeCustom writes the custom field values of h: text values as fields,
// the others as traits.
func (x *Exporter) writeCustom(w *lift.Writer, h lexicon.CustomHolder) {
	for _, name := range h.CustomLabels() {
		v, ok := h.Custom(name)
		if !ok || v.IsEmpty() {
			continue
		}
		cf, declared := x.graph.CustomField(h.CustomClass(), name)
		switch {
		case !declared || cf.Type.IsText():
			if !v.Text.IsEmpty() || len(v.Extra) > 0 {
				w.Field(&lift.Field{
					Type:         name,
					Content:      v.Text,
					DateCreated:  v.Created,
					DateModified: v.Modified,
					Residue:      v.Extra,
				})
			}
		case cf.Type == lexicon.CustomInteger:
			w.TraitValue(name, strconv.Itoa(v.Int))
		case cf.Type == lexicon.CustomGenDate:
			w.TraitValue(name, v.Date)
		default:
			for _, l := range x.labels(v.Refs) {
				w.TraitValue(name, l)
			}
		}
	}
}

// writeResidue replays the stored fragments of h.
func writeResidue(w *lift.Writer, h lexicon.ResidueHolder) {
	for _, frag := range residue.Fragments(h) {
		w.Raw(frag)
	}
}

func sortedNoteTypes(n lexicon.Notes) []string {
	types := make([]string, 0, len(n))
	for t := range n {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

func writeNotes(w *lift.Writer, n lexicon.Notes) {
	for _, t := range sortedNoteTypes(n) {
		w.Multi("note", n[t], "type", t)
	}
}
