// Package compactor packs the numeric arrays of mesh records into
// base64-encoded binary blobs.
//
// Attributes under the color key become one unsigned byte per scalar. Every
// other attribute becomes one little-endian IEEE-754 float32 per scalar. The
// resulting buffers are encoded with standard, padded base64.
package compactor

import (
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/models"
)

const (
	// DefaultMeshKey marks a mesh record.
	DefaultMeshKey = "mesh"
	// DefaultColorKey selects byte packing inside a mesh record.
	DefaultColorKey = "color"
)

// Compactor rewrites value trees, packing every mesh record it finds.
type Compactor struct {
	meshKey  string
	colorKey string
}

// New creates a Compactor using the default mesh and color keys.
func New() *Compactor {
	return &Compactor{meshKey: DefaultMeshKey, colorKey: DefaultColorKey}
}

// NewWithKeys creates a Compactor with custom mesh and color keys. Empty
// values fall back to the defaults.
func NewWithKeys(meshKey, colorKey string) *Compactor {
	c := New()
	if meshKey != "" {
		c.meshKey = meshKey
	}
	if colorKey != "" {
		c.colorKey = colorKey
	}
	return c
}

// ConvertArray packs a sequence of numeric tuples using the default color key.
func ConvertArray(key string, v models.Value) (models.String, error) {
	return New().ConvertArray(key, v)
}

// ConvertMesh packs every field of a mesh record using the default keys.
func ConvertMesh(mesh models.Value) (models.Value, error) {
	return New().ConvertMesh(mesh)
}

// ConvertJSON packs every mesh record in v using the default keys.
func ConvertJSON(v models.Value) (models.Value, error) {
	return New().ConvertJSON(v)
}

// ConvertArray flattens v, an array of equal-arity numeric tuples, packs it
// as bytes (for the color key) or float32s (otherwise) and returns the
// base64 text.
func (c *Compactor) ConvertArray(key string, v models.Value) (models.String, error) {
	return c.convertArray("$."+key, key, v)
}

func (c *Compactor) convertArray(path, key string, v models.Value) (models.String, error) {
	seq, arity, err := tupleShape(path, v)
	if err != nil {
		return "", err
	}

	var buf []byte
	if key == c.colorKey {
		buf, err = packBytes(path, seq, arity)
	} else {
		buf, err = packFloats(path, seq, arity)
	}
	if err != nil {
		return "", err
	}
	return models.String(base64.StdEncoding.EncodeToString(buf)), nil
}

// ConvertMesh returns a copy of the mesh object with each field replaced by
// its packed attribute.
func (c *Compactor) ConvertMesh(mesh models.Value) (models.Value, error) {
	return c.convertMesh("$", mesh)
}

func (c *Compactor) convertMesh(path string, mesh models.Value) (models.Value, error) {
	obj, ok := mesh.(models.Object)
	if !ok {
		return nil, errors.NewTypeMismatchError(path, fmt.Sprintf("expected mesh object, got %s", kindOf(mesh)))
	}

	out := make(models.Object, len(obj))
	for _, key := range sortedKeys(obj) {
		packed, err := c.convertArray(path+"."+key, key, obj[key])
		if err != nil {
			return nil, err
		}
		out[key] = packed
	}
	return out, nil
}

// ConvertJSON walks v and returns an equivalent tree in which every mesh
// record has been packed. Packed meshes are not walked again. The input is
// left untouched.
func (c *Compactor) ConvertJSON(v models.Value) (models.Value, error) {
	return c.convertJSON("$", v)
}

func (c *Compactor) convertJSON(path string, v models.Value) (models.Value, error) {
	switch node := v.(type) {
	case models.Object:
		out := make(models.Object, len(node))
		// Sorted so the first reported error is stable.
		for _, key := range sortedKeys(node) {
			child := node[key]
			childPath := path + "." + key
			var (
				converted models.Value
				err       error
			)
			if key == c.meshKey {
				converted, err = c.convertMesh(childPath, child)
			} else {
				converted, err = c.convertJSON(childPath, child)
			}
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case models.Array:
		out := make(models.Array, len(node))
		for i, elem := range node {
			converted, err := c.convertJSON(fmt.Sprintf("%s[%d]", path, i), elem)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	default:
		return v, nil
	}
}

func sortedKeys(obj models.Object) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
