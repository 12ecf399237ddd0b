package gen

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	c, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"./..."}, c.Patterns)
	assert.Equal(t, DefaultHeader, c.Header)
	assert.Equal(t, runtime.GOMAXPROCS(0), c.Workers)
	assert.False(t, c.DryRun)
}

func TestWithPatterns(t *testing.T) {
	t.Run("sets patterns", func(t *testing.T) {
		c := &Config{}
		err := WithPatterns("./cmd/...", "./internal/...")(c)

		require.NoError(t, err)
		assert.Equal(t, []string{"./cmd/...", "./internal/..."}, c.Patterns)
	})

	t.Run("empty patterns return error", func(t *testing.T) {
		c := &Config{}
		err := WithPatterns()(c)

		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestWithHeader(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		c := &Config{}
		err := WithHeader("Custom header")(c)

		require.NoError(t, err)
		assert.Equal(t, "Custom header", c.Header)
	})

	t.Run("empty header returns error", func(t *testing.T) {
		c := &Config{Header: "existing"}
		err := WithHeader("")(c)

		require.Error(t, err)
		assert.True(t, IsConfigError(err))
		assert.Equal(t, "existing", c.Header)
	})
}

func TestWithWorkers(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{"one", 1, false},
		{"many", 16, false},
		{"zero", 0, true},
		{"negative", -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithWorkers(tt.n)(c)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.n, c.Workers)
			}
		})
	}
}

func TestWithFeatures(t *testing.T) {
	c := &Config{}
	err := WithFeatures(FeatureRepl, FeatureTelemetry)(c)

	require.NoError(t, err)
	require.Len(t, c.Features, 2)
	assert.Equal(t, "repl", c.Features[0].Name)
	assert.Equal(t, "telemetry", c.Features[1].Name)
}

func TestWithSnapshotDir(t *testing.T) {
	t.Run("sets directory", func(t *testing.T) {
		c := &Config{}
		err := WithSnapshotDir(".nuru")(c)

		require.NoError(t, err)
		assert.Equal(t, ".nuru", c.SnapshotDir)
	})

	t.Run("empty directory returns error", func(t *testing.T) {
		c := &Config{}
		err := WithSnapshotDir("")(c)

		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})
}

func TestWithDryRun(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithDryRun()(c))
	assert.True(t, c.DryRun)
}
