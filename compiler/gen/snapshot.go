package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/TimeWarpEngineering/timewarp-nuru-sub005/compiler/ir"
)

// Snapshot is the stored record of one generated app: the packed IR for
// tooling plus the fingerprint change detection keys on.
type Snapshot struct {
	Key         string `msgpack:"key"`
	Fingerprint string `msgpack:"fingerprint"`
	Model       []byte `msgpack:"model"`
}

// Fingerprint hashes the stable serialization of an app model. Identical
// input source yields an identical fingerprint across runs.
func Fingerprint(app *ir.AppModel) (string, error) {
	stable, err := app.MarshalStable()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(stable)
	return hex.EncodeToString(sum[:]), nil
}

func snapshotPath(dir string, app *ir.AppModel) string {
	return filepath.Join(dir, sanitizeIdent(app.Key)+".snap")
}

// Unchanged reports whether the stored snapshot fingerprint matches the
// current model. A missing or unreadable snapshot counts as changed.
func Unchanged(dir string, app *ir.AppModel) bool {
	if dir == "" {
		return false
	}
	raw, err := os.ReadFile(snapshotPath(dir, app))
	if err != nil {
		return false
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		return false
	}
	fp, err := Fingerprint(app)
	if err != nil {
		return false
	}
	return snap.Fingerprint == fp
}

// WriteSnapshot stores the packed model and its fingerprint.
func WriteSnapshot(dir string, app *ir.AppModel) error {
	fp, err := Fingerprint(app)
	if err != nil {
		return err
	}
	stable, err := app.MarshalStable()
	if err != nil {
		return err
	}
	raw, err := msgpack.Marshal(&Snapshot{Key: app.Key, Fingerprint: fp, Model: stable})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(snapshotPath(dir, app), raw, 0o644)
}
