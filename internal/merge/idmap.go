package merge

import "github.com/sillsdev/liftbridge/core/lexicon"

// IDMap links the ids of a LIFT document to the graph objects they were
// merged into, in both directions. It is filled as entries and senses are
// merged and consulted when relations are resolved.
type IDMap struct {
	byID  map[string]lexicon.Object
	byObj map[lexicon.Object]string
}

// NewIDMap returns an empty map.
func NewIDMap() *IDMap {
	return &IDMap{
		byID:  make(map[string]lexicon.Object),
		byObj: make(map[lexicon.Object]string),
	}
}

// Put records that id resolved to obj. The first object recorded for an id
// keeps it.
func (m *IDMap) Put(id string, obj lexicon.Object) {
	if id == "" || obj == nil {
		return
	}
	if _, ok := m.byID[id]; !ok {
		m.byID[id] = obj
	}
	if _, ok := m.byObj[obj]; !ok {
		m.byObj[obj] = id
	}
}

// Get returns the object id resolved to.
func (m *IDMap) Get(id string) (lexicon.Object, bool) {
	obj, ok := m.byID[id]
	return obj, ok
}

// ID returns the first id recorded for obj.
func (m *IDMap) ID(obj lexicon.Object) (string, bool) {
	id, ok := m.byObj[obj]
	return id, ok
}

// Len returns the number of ids recorded.
func (m *IDMap) Len() int {
	return len(m.byID)
}
