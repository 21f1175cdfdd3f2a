package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/mapdata/internal/config"
	"github.com/mcncl/mapdata/internal/errors"
	"github.com/mcncl/mapdata/internal/logging"
)

// writeTree creates files under dir from a relative-path to content map
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// newTestRuntime returns a runtime context writing to buffers and a config
// pointing at fresh temp directories
func newTestRuntime(t *testing.T) (*Context, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	cfg := config.NewConfig()
	cfg.SourceDir = filepath.Join(root, "src")
	cfg.OutputDir = filepath.Join(root, "out")
	cfg.Workers = 2
	require.NoError(t, os.MkdirAll(cfg.SourceDir, 0o755))

	var stdout, stderr bytes.Buffer
	return &Context{Config: cfg, Stdout: &stdout, Stderr: &stderr}, &stdout, &stderr
}

func testContext() context.Context {
	return logging.WithLogger(context.Background(), logging.Discard())
}

func TestRunCompact_WritesMirroredTree(t *testing.T) {
	rt, _, stderr := newTestRuntime(t)
	writeTree(t, rt.Config.SourceDir, map[string]string{
		"a.json":       `{"type":"A","mesh":{"color":[[1,2,3],[4,5,6]]}}`,
		"tiles/b.json": `{"type":"B","mesh":{"position":[[1,0,0]]},"name":"b"}`,
		"notes.txt":    `not json`,
	})

	err := runCompact(testContext(), rt, rt.Config, false)
	require.NoError(t, err)
	assert.Empty(t, stderr.String())

	data, err := os.ReadFile(filepath.Join(rt.Config.OutputDir, "a.json"))
	require.NoError(t, err)
	var a map[string]any
	require.NoError(t, json.Unmarshal(data, &a))
	assert.Equal(t, "AQIDBAUG", a["mesh"].(map[string]any)["color"])
	assert.Equal(t, "A", a["type"])

	data, err = os.ReadFile(filepath.Join(rt.Config.OutputDir, "tiles", "b.json"))
	require.NoError(t, err)
	var b map[string]any
	require.NoError(t, json.Unmarshal(data, &b))
	packed, err := base64.StdEncoding.DecodeString(b["mesh"].(map[string]any)["position"].(string))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0, 0, 0, 0, 0}, packed)
	assert.Equal(t, "b", b["name"])

	assert.NoFileExists(t, filepath.Join(rt.Config.OutputDir, "notes.txt"))
}

func TestRunCompact_SkipsFailedFiles(t *testing.T) {
	rt, _, stderr := newTestRuntime(t)
	writeTree(t, rt.Config.SourceDir, map[string]string{
		"bad.json":  `{"mesh":{"color":[[256]]}}`,
		"good.json": `{"mesh":{"color":[[7]]}}`,
	})

	err := runCompact(testContext(), rt, rt.Config, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFilesFailed)

	assert.FileExists(t, filepath.Join(rt.Config.OutputDir, "good.json"))
	assert.NoFileExists(t, filepath.Join(rt.Config.OutputDir, "bad.json"))
	assert.Contains(t, stderr.String(), "1 file(s) failed")
	assert.Contains(t, stderr.String(), "bad.json")
	assert.Contains(t, stderr.String(), "$.mesh.color[0][0]")
}

func TestRunCompact_AbortStopsOnFirstFailure(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	rt.Config.OnError = config.OnErrorAbort
	rt.Config.Workers = 1
	writeTree(t, rt.Config.SourceDir, map[string]string{
		"a.json": `{"mesh":{"color":[[1],[2,3]]}}`,
		"b.json": `{"mesh":{"color":[[1]]}}`,
	})

	err := runCompact(testContext(), rt, rt.Config, false)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
	assert.NoFileExists(t, filepath.Join(rt.Config.OutputDir, "b.json"))
}

func TestRunCompact_RejectsOutputInsideSource(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	rt.Config.OutputDir = filepath.Join(rt.Config.SourceDir, "compact")

	err := runCompact(testContext(), rt, rt.Config, false)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestRunCompact_MissingSource(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	rt.Config.SourceDir = filepath.Join(t.TempDir(), "missing")

	err := runCompact(testContext(), rt, rt.Config, false)
	require.Error(t, err)
}

func TestRunTypes_PrintsNamesAndRepresentative(t *testing.T) {
	rt, stdout, _ := newTestRuntime(t)
	rt.Config.Types.Dump = "SignalStopLineRenderObject"
	writeTree(t, rt.Config.SourceDir, map[string]string{
		"1.json": `{"type":"SignalStopLineRenderObject","id":1}`,
		"2.json": `{"type":"LaneRenderObject"}`,
		"3.json": `{"type":"SignalStopLineRenderObject","id":3}`,
	})

	err := runTypes(testContext(), rt, rt.Config, "")
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "\"SignalStopLineRenderObject\"\n\"LaneRenderObject\"\n")
	assert.Contains(t, out, "# SignalStopLineRenderObject (1.json, 2 seen)")
	assert.Contains(t, out, `"id": 1`)
	assert.NotContains(t, out, `"id": 3`)
}

func TestRunTypes_MissingTypeIsFailure(t *testing.T) {
	rt, stdout, stderr := newTestRuntime(t)
	writeTree(t, rt.Config.SourceDir, map[string]string{
		"a.json": `{"type":"LaneRenderObject"}`,
		"b.json": `{"name":"untyped"}`,
	})

	err := runTypes(testContext(), rt, rt.Config, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFilesFailed)
	assert.Contains(t, stdout.String(), `"LaneRenderObject"`)
	assert.Contains(t, stderr.String(), "b.json")
	assert.Contains(t, stderr.String(), `missing "type" field`)
}

func TestRunTypes_DumpDir(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	writeTree(t, rt.Config.SourceDir, map[string]string{
		"a.json": `{"type":"LaneRenderObject","id":1}`,
	})
	dumpDir := filepath.Join(t.TempDir(), "types")

	err := runTypes(testContext(), rt, rt.Config, dumpDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dumpDir, "lane_render_object.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": 1`)
}

func TestRunShaders_UnionSorted(t *testing.T) {
	rt, stdout, _ := newTestRuntime(t)
	writeTree(t, rt.Config.SourceDir, map[string]string{
		"a.json":     `{"shader":"lane","children":[{"shader":"arrow"}]}`,
		"sub/b.json": `{"items":[{"shader":"lane"},{"mesh":{"shader":"marking"}}]}`,
	})

	err := runShaders(testContext(), rt, rt.Config)
	require.NoError(t, err)
	assert.Equal(t, "arrow\nlane\nmarking\n", stdout.String())
}

func TestRunShaders_InvalidJSONIsReported(t *testing.T) {
	rt, stdout, stderr := newTestRuntime(t)
	writeTree(t, rt.Config.SourceDir, map[string]string{
		"a.json": `{"shader":"lane"}`,
		"b.json": `{"shader":`,
	})

	err := runShaders(testContext(), rt, rt.Config)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFilesFailed)
	assert.Equal(t, "lane\n", stdout.String())
	assert.Contains(t, stderr.String(), "b.json")
}

func TestCommandConfig_AppliesOverridesToCopy(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	original := rt.Config.SourceDir

	cfg, err := rt.commandConfig(config.Overrides{SourceDir: "elsewhere", DumpType: "LaneRenderObject"})
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.SourceDir)
	assert.Equal(t, "LaneRenderObject", cfg.Types.Dump)
	assert.Equal(t, original, rt.Config.SourceDir)
}

func TestCommandConfig_InvalidOnError(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	rt.Config.OnError = "explode"

	_, err := rt.commandConfig(config.Overrides{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestNewContext_UsesGlobalFlags(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".mapdata.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("source_dir: maps\nworkers: 3\n"), 0o644))

	CLI.Config = configPath
	CLI.Workers = 5
	CLI.Debug = true

	rt, err := newContext()
	require.NoError(t, err)
	assert.Equal(t, "maps", rt.Config.SourceDir)
	assert.Equal(t, 5, rt.Config.Workers)
	assert.True(t, rt.Debug)
}

func TestNewContext_BadConfigFile(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Config = filepath.Join(t.TempDir(), "missing.yml")

	_, err := newContext()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestFixtures_TypesAndShaders(t *testing.T) {
	rt, stdout, _ := newTestRuntime(t)
	rt.Config.SourceDir = filepath.Join("testdata", "dumped_map_data")

	require.NoError(t, runShaders(testContext(), rt, rt.Config))
	assert.Equal(t, "lane_marking\npole\nstop_line\n", stdout.String())

	stdout.Reset()
	require.NoError(t, runTypes(testContext(), rt, rt.Config, ""))
	assert.Contains(t, stdout.String(), "\"LaneRenderObject\"\n\"SignalStopLineRenderObject\"\n")
	assert.Contains(t, stdout.String(), "# SignalStopLineRenderObject (tiles/0_1.json, 1 seen)")
}

func TestFixtures_Compact(t *testing.T) {
	rt, _, _ := newTestRuntime(t)
	rt.Config.SourceDir = filepath.Join("testdata", "dumped_map_data")

	require.NoError(t, runCompact(testContext(), rt, rt.Config, false))

	data, err := os.ReadFile(filepath.Join(rt.Config.OutputDir, "tiles", "0_1.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "/wAA//8AAP8=", doc["mesh"].(map[string]any)["color"])
	child := doc["children"].([]any)[0].(map[string]any)
	assert.IsType(t, "", child["mesh"].(map[string]any)["position"])
}

func TestVersionCmd(t *testing.T) {
	rt, stdout, _ := newTestRuntime(t)

	require.NoError(t, (&VersionCmd{}).Run(rt))
	assert.Equal(t, "mapdata version "+Version+"\n", stdout.String())
}
