package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

func snapApp(version string) *ir.AppModel {
	return &ir.AppModel{Key: "main.go:10", Name: "tool", Version: version, Package: "main"}
}

func TestFingerprintStable(t *testing.T) {
	a, err := Fingerprint(snapApp("1.0"))
	require.NoError(t, err)
	b, err := Fingerprint(snapApp("1.0"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFingerprintChangesWithModel(t *testing.T) {
	a, err := Fingerprint(snapApp("1.0"))
	require.NoError(t, err)
	b, err := Fingerprint(snapApp("2.0"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	app := snapApp("1.0")
	assert.False(t, Unchanged(dir, app), "no snapshot written yet")
	require.NoError(t, WriteSnapshot(dir, app))
	assert.True(t, Unchanged(dir, app))
	assert.False(t, Unchanged(dir, snapApp("2.0")))
}

func TestUnchangedWithoutDirIsFalse(t *testing.T) {
	assert.False(t, Unchanged("", snapApp("1.0")))
}
