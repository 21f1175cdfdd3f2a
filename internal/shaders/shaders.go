// Package shaders collects the shader names referenced by map-data documents.
package shaders

import (
	"sort"

	json "github.com/goccy/go-json"

	"github.com/mcncl/mapdata/internal/models"
)

// DefaultShaderKey is the field holding a shader name.
const DefaultShaderKey = "shader"

// Set is a set of shader names.
type Set map[string]struct{}

// NewSet creates an empty Set.
func NewSet() Set {
	return make(Set)
}

// Add inserts name.
func (s Set) Add(name string) {
	s[name] = struct{}{}
}

// Contains reports whether name is in the set.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names.
func (s Set) Len() int {
	return len(s)
}

// Merge adds every name of other.
func (s Set) Merge(other Set) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collect adds to into every value found under the default shader key.
func Collect(v models.Value, into Set) {
	CollectKey(v, DefaultShaderKey, into)
}

// CollectKey adds to into every value found under key anywhere in v. The
// value under key is not descended into, but its sibling keys are. String
// values are added verbatim; any other value is added as its compact JSON
// text.
func CollectKey(v models.Value, key string, into Set) {
	switch node := v.(type) {
	case models.Object:
		for k, child := range node {
			if k == key {
				into.Add(shaderName(child))
				continue
			}
			CollectKey(child, key, into)
		}
	case models.Array:
		for _, elem := range node {
			CollectKey(elem, key, into)
		}
	}
}

func shaderName(v models.Value) string {
	if s, ok := v.(models.String); ok {
		return string(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
