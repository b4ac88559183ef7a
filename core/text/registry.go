package text

import "sort"

// Handle is the numeric identifier of a locale within one graph.
type Handle int

// Registry maps locale tags to numeric handles and back.
// Handles are assigned in registration order starting at 1.
type Registry struct {
	byTag  map[string]Handle
	byHand []string
}

// NewRegistry returns a registry pre-populated with tags.
func NewRegistry(tags ...string) *Registry {
	r := &Registry{byTag: make(map[string]Handle)}
	for _, t := range tags {
		r.Handle(t)
	}
	return r
}

// Handle returns the handle for tag, registering it when new.
func (r *Registry) Handle(tag string) Handle {
	if h, ok := r.byTag[tag]; ok {
		return h
	}
	r.byHand = append(r.byHand, tag)
	h := Handle(len(r.byHand))
	r.byTag[tag] = h
	return h
}

// Lookup returns the handle for tag without registering it.
func (r *Registry) Lookup(tag string) (Handle, bool) {
	h, ok := r.byTag[tag]
	return h, ok
}

// Tag returns the tag for h.
func (r *Registry) Tag(h Handle) (string, bool) {
	if h < 1 || int(h) > len(r.byHand) {
		return "", false
	}
	return r.byHand[h-1], true
}

// Tags returns all registered tags in handle order.
func (r *Registry) Tags() []string {
	out := make([]string, len(r.byHand))
	copy(out, r.byHand)
	return out
}

// Sorted returns the alternatives of m ordered by handle; unregistered tags
// sort last, alphabetically.
func (r *Registry) Sorted(m Multi) []Alt {
	alts := append([]Alt(nil), m.Alts()...)
	sort.SliceStable(alts, func(i, j int) bool {
		hi, oki := r.byTag[alts[i].Lang]
		hj, okj := r.byTag[alts[j].Lang]
		switch {
		case oki && okj:
			return hi < hj
		case oki != okj:
			return oki
		default:
			return alts[i].Lang < alts[j].Lang
		}
	})
	return alts
}
