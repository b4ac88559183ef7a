// Package merge applies a staged LIFT document to a lexicon graph.
//
// A merge runs in passes over one Session: ranges and header field
// declarations first, then every entry in document order, then the
// relations and entry references that were deferred because their targets
// might not exist yet, then the feature-system fix-up and finally, under
// KeepOnlyNew, the deletion of untouched entries and an orphan sweep.
//
// Problems with single items never abort the merge. They are recorded as
// Diagnostics in the Report and, where the data has no other home, kept as
// residue on the nearest graph object.
package merge

import (
	"context"
	"log/slog"

	"github.com/sillsdev/liftbridge/core/errors"
	"github.com/sillsdev/liftbridge/core/lexicon"
	"github.com/sillsdev/liftbridge/core/lift"
	"github.com/sillsdev/liftbridge/internal/logging"
	"github.com/sillsdev/liftbridge/internal/possibility"
	"github.com/sillsdev/liftbridge/internal/progress"
	"github.com/sillsdev/liftbridge/internal/residue"
)

// Session is the state of one import into one graph. It is not safe for
// concurrent use, and imports into the same graph must not overlap.
type Session struct {
	graph  *lexicon.Graph
	opts   Options
	ids    *IDMap
	lists  *possibility.Resolver
	ranges *lift.RangeTable
	report *Report
	sink   progress.Sink
	logger *slog.Logger

	// originals indexes objects by the LIFT id recorded in their residue.
	originals map[string]lexicon.Object
	// touched holds the entries this import matched, created or skipped.
	touched map[*lexicon.Entry]bool
	// duplicates are the KeepBoth siblings created by this import.
	duplicates map[*lexicon.Entry]bool
	// knownLocales are the locales the graph had before the import.
	knownLocales map[string]bool

	relations []*pendingRelation
	entryRefs []*pendingEntryRef
	msas      []*pendingMSA
	features  *featureTables
	// replacedMSAs were detached from a sense during the import and are
	// deleted at the end if nothing else uses them.
	replacedMSAs map[*lexicon.MSA]bool
	// preOrphans were orphaned before the import; the KeepOnlyNew sweep
	// leaves them alone.
	preOrphans map[lexicon.Object]bool

	headerFields map[string]*lift.FieldDef
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSink sends progress to sink.
func WithSink(sink progress.Sink) SessionOption {
	return func(s *Session) { s.sink = sink }
}

// WithLogger logs to logger instead of the logger carried by the context.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithRanges replaces the field-name to range-id table.
func WithRanges(t *lift.RangeTable) SessionOption {
	return func(s *Session) { s.ranges = t }
}

// NewSession prepares an import into g.
func NewSession(g *lexicon.Graph, opts Options, sessionOpts ...SessionOption) *Session {
	opts.normalize()
	s := &Session{
		graph:        g,
		opts:         opts,
		ids:          NewIDMap(),
		ranges:       lift.NewRangeTable(),
		sink:         progress.Nop{},
		originals:    make(map[string]lexicon.Object),
		touched:      make(map[*lexicon.Entry]bool),
		duplicates:   make(map[*lexicon.Entry]bool),
		knownLocales: make(map[string]bool),
		features:     newFeatureTables(),
		replacedMSAs: make(map[*lexicon.MSA]bool),
		headerFields: make(map[string]*lift.FieldDef),
		report:       &Report{Policy: opts.Policy},
	}
	for _, o := range sessionOpts {
		o(s)
	}
	s.lists = possibility.New(g,
		possibility.CaseInsensitive(opts.CaseInsensitiveLabels),
		possibility.Locale(opts.AnalysisLocale),
		possibility.OnCreate(s.listItemCreated),
	)
	for _, l := range g.Lists() {
		if l.Custom {
			s.ranges.AddCustom(l.ID)
		}
	}
	return s
}

// Merge imports doc, and ranges when not nil, into g.
func Merge(ctx context.Context, g *lexicon.Graph, doc *lift.Document, ranges *lift.Ranges, opts Options, sessionOpts ...SessionOption) (*Report, error) {
	return NewSession(g, opts, sessionOpts...).Merge(ctx, doc, ranges)
}

// IDs returns the id map built by the session.
func (s *Session) IDs() *IDMap { return s.ids }

// Merge runs every pass. It returns an error only when doc is missing, the
// context is cancelled or the graph refuses an update; the graph is then
// left as far as the merge got.
func (s *Session) Merge(ctx context.Context, doc *lift.Document, ranges *lift.Ranges) (*Report, error) {
	if doc == nil {
		return nil, errors.NewValidation("document", "no LIFT document to merge")
	}
	if s.logger == nil {
		s.logger = logging.LoggerFromContext(ctx)
	}
	s.report.Started = s.opts.Now()
	s.begin()

	logging.MergePhase(s.logger, "ranges", "start")
	if doc.Header != nil && len(doc.Header.Ranges) > 0 {
		if err := s.importRanges(&lift.Ranges{Ranges: doc.Header.Ranges}); err != nil {
			return s.report, err
		}
	}
	if ranges != nil {
		if err := s.importRanges(ranges); err != nil {
			return s.report, err
		}
	}
	if doc.Header != nil {
		s.declareHeaderFields(doc.Header.Fields)
	}

	logging.MergePhase(s.logger, "entries", "start", "count", len(doc.Entries))
	for i, e := range doc.Entries {
		if err := s.mergeEntry(e); err != nil {
			return s.report, err
		}
		s.sink.Progress(i+1, len(doc.Entries), "entries")
		if err := ctx.Err(); err != nil {
			return s.report, err
		}
	}
	for _, frag := range doc.Residue {
		s.diagnose(Diagnostic{
			Kind:    KindUnknownField,
			Owner:   "lift",
			Value:   frag,
			Message: "unrecognised top-level element dropped",
		})
	}

	logging.MergePhase(s.logger, "relations", "start", "pending", len(s.relations))
	if err := s.resolveRelations(ctx); err != nil {
		return s.report, err
	}
	logging.MergePhase(s.logger, "entry-refs", "start", "pending", len(s.entryRefs))
	if err := s.resolveEntryRefs(ctx); err != nil {
		return s.report, err
	}
	logging.MergePhase(s.logger, "features", "start")
	if err := s.fixupFeatures(); err != nil {
		return s.report, err
	}
	s.resolvePendingMSAs()

	logging.MergePhase(s.logger, "cleanup", "start")
	s.cleanup()

	s.finish()
	logging.MergePhase(s.logger, "merge", "end", "summary", s.report.Summary())
	s.sink.Done(s.report)
	return s.report, nil
}

// begin indexes what the graph already holds.
func (s *Session) begin() {
	if s.opts.Policy == KeepOnlyNew {
		s.preOrphans = s.orphans()
	}
	for _, tag := range s.graph.Locales.Tags() {
		s.knownLocales[tag] = true
	}
	for _, e := range s.graph.Entries() {
		if id := residue.OriginalID(e); id != "" {
			s.originals[id] = e
		}
		for _, sn := range e.AllSenses() {
			if id := residue.OriginalID(sn); id != "" {
				s.originals[id] = sn
			}
		}
	}
}

func (s *Session) finish() {
	for _, tag := range s.graph.Locales.Tags() {
		if !s.knownLocales[tag] {
			s.report.NewLocales = append(s.report.NewLocales, tag)
		}
	}
	s.report.Finished = s.opts.Now()
}

func (s *Session) listItemCreated(c possibility.Created) {
	s.report.ListItemsCreated = append(s.report.ListItemsCreated, ListItem{
		List:  string(c.List),
		Label: c.Label,
		GUID:  c.Item.GUID().String(),
	})
	s.logger.Debug("list item created", "list", c.List, "label", c.Label)
}

// diagnose records d and logs it.
func (s *Session) diagnose(d Diagnostic) {
	if d.Message == "" && d.Err != nil {
		d.Message = d.Err.Error()
	}
	s.report.Diagnostics = append(s.report.Diagnostics, d)
	logging.MergeDiagnostic(s.logger, string(d.Kind), d.OwnerID, d.Field, d.Message)
}

// diagnoseOn records a diagnostic about obj.
func (s *Session) diagnoseOn(obj lexicon.Object, kind DiagnosticKind, field, value string, err error) {
	d := Diagnostic{Kind: kind, Field: field, Value: value, Err: err}
	if obj != nil {
		d.Owner = obj.Kind().String()
		d.OwnerID = obj.GUID().String()
	}
	s.diagnose(d)
}
