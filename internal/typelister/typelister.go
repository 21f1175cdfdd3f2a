// Package typelister keeps one representative document per object type.
package typelister

import (
	"fmt"
	"sort"

	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/models"
)

// DefaultTypeKey is the field naming a document's object type.
const DefaultTypeKey = "type"

// DefaultDumpType is the type whose representative is printed in full
// unless another is requested.
const DefaultDumpType = "SignalStopLineRenderObject"

// RegisteredTypes lists the object types the map viewer can instantiate.
var RegisteredTypes = []string{
	"LineObject",
	"DashedStripeObject",
	"SimpleTexturedObject",
	"LaneRenderObject",
	"JunctionRenderObject",
	"LaneCenterCurveRenderObject",
	"PolygonObjectRenderObject",
	"SidewalkRenderObject",
	"SpeedBumpRenderObject",
	"SignalLaneRenderObject",
	"SignalStopLineRenderObject",
	"CrosswalkRenderObject",
	"GroupObject",
	"ClearAreaRenderObject",
	"StopLineRenderObject",
}

// Entry is the representative kept for one type.
type Entry struct {
	Type     string
	Document models.Document
	// Count is how many documents of this type were seen.
	Count int
}

// Registry maps type names to the first document seen with that type.
// It is not safe for concurrent use.
type Registry struct {
	typeKey string
	order   []string
	entries map[string]*Entry
}

// NewRegistry creates an empty Registry keyed by the default type field.
func NewRegistry() *Registry {
	return NewRegistryWithKey(DefaultTypeKey)
}

// NewRegistryWithKey creates an empty Registry keyed by typeKey.
func NewRegistryWithKey(typeKey string) *Registry {
	if typeKey == "" {
		typeKey = DefaultTypeKey
	}
	return &Registry{
		typeKey: typeKey,
		entries: make(map[string]*Entry),
	}
}

// TypeOf extracts the type name of a document.
func (r *Registry) TypeOf(doc models.Document) (string, error) {
	obj, ok := doc.Root.(models.Object)
	if !ok {
		return "", errors.NewKeyMissingError(doc.Path, r.typeKey)
	}
	raw, ok := obj[r.typeKey]
	if !ok {
		return "", errors.NewKeyMissingError(doc.Path, r.typeKey)
	}
	name, ok := raw.(models.String)
	if !ok {
		return "", errors.NewTypeMismatchError(doc.Path, fmt.Sprintf("%q field must be a string, got %s", r.typeKey, raw.Kind()))
	}
	return string(name), nil
}

// Add records doc as the representative of its type unless one was already
// recorded. It reports whether doc became the representative.
func (r *Registry) Add(doc models.Document) (bool, error) {
	name, err := r.TypeOf(doc)
	if err != nil {
		return false, err
	}
	if entry, seen := r.entries[name]; seen {
		entry.Count++
		return false, nil
	}
	r.entries[name] = &Entry{Type: name, Document: doc, Count: 1}
	r.order = append(r.order, name)
	return true, nil
}

// Len returns the number of distinct types.
func (r *Registry) Len() int {
	return len(r.order)
}

// Names returns the type names in first-seen order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Get returns the representative for name.
func (r *Registry) Get(name string) (Entry, bool) {
	entry, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Entries returns every entry in first-seen order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.entries[name])
	}
	return out
}

// Unregistered returns the recorded types missing from known, sorted.
func (r *Registry) Unregistered(known []string) []string {
	knownSet := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}
	var missing []string
	for _, name := range r.order {
		if _, ok := knownSet[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
