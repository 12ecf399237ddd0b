package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/gen"
)

func TestFeaturesByName(t *testing.T) {
	features, err := featuresByName([]string{"repl", "telemetry"})
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "repl", features[0].Name)
	assert.Equal(t, "telemetry", features[1].Name)

	_, err = featuresByName([]string{"bogus"})
	assert.ErrorContains(t, err, `unknown feature "bogus"`)
}

func TestLoadProjectConfigMissingFile(t *testing.T) {
	pc, err := loadProjectConfig(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, pc.Patterns)
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("patterns:\n  - ./cmd/...\nworkers: 4\nsnapshot_dir: .nuru\nfeatures:\n  - completion\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), raw, 0o644))

	pc, err := loadProjectConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"./cmd/..."}, pc.Patterns)
	assert.Equal(t, 4, pc.Workers)
	assert.Equal(t, ".nuru", pc.SnapshotDir)
	assert.Equal(t, []string{"completion"}, pc.Features)
}

func TestFlagsOverrideProjectConfig(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("patterns:\n  - ./pkg/...\nworkers: 2\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), raw, 0o644))

	flags := &generateFlags{dir: dir, patterns: []string{"./cmd/..."}, workers: 8}
	opts, err := flags.options()
	require.NoError(t, err)
	cfg, err := gen.NewConfig(opts...)
	require.NoError(t, err)
	assert.Equal(t, []string{"./cmd/..."}, cfg.Patterns)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, dir, cfg.Dir)
}

func TestProjectConfigFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	raw := []byte("workers: 3\nsnapshot_dir: .nuru\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), raw, 0o644))

	flags := &generateFlags{dir: dir}
	opts, err := flags.options()
	require.NoError(t, err)
	cfg, err := gen.NewConfig(opts...)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, ".nuru", cfg.SnapshotDir)
	assert.Equal(t, []string{"./..."}, cfg.Patterns)
}
