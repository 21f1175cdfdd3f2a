package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/models"
)

func TestParse_SimpleObject(t *testing.T) {
	jsonStr := `{"name": "lane_12", "width": 3.5, "visible": false, "parent": null}`
	root, err := Parse(strings.NewReader(jsonStr))
	require.NoError(t, err)

	expected := models.Object{
		"name":    models.String("lane_12"),
		"width":   models.Number("3.5"),
		"visible": models.Bool(false),
		"parent":  models.Null{},
	}
	if diff := cmp.Diff(models.Value(expected), root); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NestedStructure(t *testing.T) {
	jsonStr := `{"type": "LineObject", "mesh": {"position": [[0, 1.5, 2], [3, 4, 5]]}, "tags": ["a", "b"]}`
	root, err := Parse(strings.NewReader(jsonStr))
	require.NoError(t, err)

	expected := models.Object{
		"type": models.String("LineObject"),
		"mesh": models.Object{
			"position": models.Array{
				models.Array{models.Number("0"), models.Number("1.5"), models.Number("2")},
				models.Array{models.Number("3"), models.Number("4"), models.Number("5")},
			},
		},
		"tags": models.Array{models.String("a"), models.String("b")},
	}
	if diff := cmp.Diff(models.Value(expected), root); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_RootPrimitives(t *testing.T) {
	testCases := []struct {
		name     string
		jsonStr  string
		expected models.Value
	}{
		{"RootString", `"hello world"`, models.String("hello world")},
		{"RootNumber", `123.45`, models.Number("123.45")},
		{"RootBooleanTrue", `true`, models.Bool(true)},
		{"RootBooleanFalse", `false`, models.Bool(false)},
		{"RootNull", `null`, models.Null{}},
		{"RootArray", `[1, "x"]`, models.Array{models.Number("1"), models.String("x")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root, err := ParseBytes([]byte(tc.jsonStr))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, root)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", errors.ErrEmptyInput},
		{"whitespace", "  \n\t ", errors.ErrEmptyInput},
		{"missing closing brace", `{"name": "x"`, errors.ErrInvalidJSON},
		{"multiple values", `{"a": 1} {"b": 2}`, errors.ErrMultipleJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "valid.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"shader": "basic"}`), 0644))

		root, err := ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, models.Object{"shader": models.String("basic")}, root)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(dir, "nope.json"))
		assert.ErrorIs(t, err, errors.ErrFileNotFound)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		_, err := ParseFile(path)
		assert.ErrorIs(t, err, errors.ErrFileEmpty)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := ParseFile("")
		assert.ErrorIs(t, err, errors.ErrInvalidFilePath)
	})
}

func TestParseDocument_KeepsRelativePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tiles"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiles", "a.json"), []byte(`[]`), 0644))

	doc, err := ParseDocument(dir, "tiles/a.json")
	require.NoError(t, err)
	assert.Equal(t, "tiles/a.json", doc.Path)
	assert.Equal(t, models.Array{}, doc.Root)
}

func TestEncode_RoundTrip(t *testing.T) {
	input := `{"b":[1,2.50,{"c":null}],"a":true,"s":"x"}`
	root, err := ParseBytes([]byte(input))
	require.NoError(t, err)

	data, err := Encode(root)
	require.NoError(t, err)
	// Keys come out sorted, number literals unchanged.
	assert.Equal(t, `{"a":true,"b":[1,2.50,{"c":null}],"s":"x"}`, string(data))

	again, err := ParseBytes(data)
	require.NoError(t, err)
	if diff := cmp.Diff(root, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.json")
	require.NoError(t, WriteFile(path, models.Object{"k": models.Number("1")}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"k":1}`, string(data))
}
