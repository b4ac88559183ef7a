package merge

import (
	"slices"

	"github.com/sillsdev/liftbridge/core/lexicon"
)

// orphans returns every object the graph currently considers orphaned.
func (s *Session) orphans() map[lexicon.Object]bool {
	out := make(map[lexicon.Object]bool)
	for _, r := range s.graph.EmptyReferences() {
		out[r] = true
	}
	for _, r := range s.graph.EmptyEntryRefs() {
		out[r] = true
	}
	for _, m := range s.graph.UnreferencedMSAs() {
		out[m] = true
	}
	for _, r := range s.graph.OrphanReversals() {
		out[r] = true
	}
	return out
}

// cleanup drops the MSAs this import replaced and, under KeepOnlyNew,
// deletes the entries the import did not touch along with whatever their
// deletion orphaned. Objects that were orphaned before the import are left
// alone.
func (s *Session) cleanup() {
	s.dropReplacedMSAs()
	if s.opts.Policy != KeepOnlyNew {
		return
	}
	for _, e := range slices.Clone(s.graph.Entries()) {
		if s.touched[e] || !s.live(e) {
			continue
		}
		s.logger.Debug("untouched entry deleted", "guid", e.GUID())
		s.graph.DeleteEntry(e)
		s.report.EntriesDeleted++
	}
	for {
		n := s.sweep()
		if n == 0 {
			return
		}
		s.logger.Debug("orphans removed", "count", n)
	}
}

func (s *Session) dropReplacedMSAs() {
	if len(s.replacedMSAs) == 0 {
		return
	}
	for _, m := range s.graph.UnreferencedMSAs() {
		if s.replacedMSAs[m] {
			s.graph.DeleteMSA(m)
		}
	}
	clear(s.replacedMSAs)
}

// sweep deletes one round of orphans created by this import and returns how
// many it removed.
func (s *Session) sweep() int {
	n := 0
	for _, r := range s.graph.EmptyReferences() {
		if !s.preOrphans[r] {
			s.graph.DeleteReference(r)
			n++
		}
	}
	for _, r := range s.graph.EmptyEntryRefs() {
		if !s.preOrphans[r] {
			s.graph.DeleteEntryRef(r)
			n++
		}
	}
	for _, m := range s.graph.UnreferencedMSAs() {
		if !s.preOrphans[m] {
			s.graph.DeleteMSA(m)
			n++
		}
	}
	for _, r := range s.graph.OrphanReversals() {
		if !s.preOrphans[r] {
			s.graph.DeleteReversal(r)
			n++
		}
	}
	return n
}
