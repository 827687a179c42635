package semantic

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed scripts/encoder.py scripts/requirements.txt
var scripts embed.FS

const (
	scriptName       = "encoder.py"
	requirementsName = "requirements.txt"
)

// installScripts writes the bundled encoder script and its requirements into
// dir. Files whose content already matches are left alone; updated reports
// whether the requirements changed, in which case pip has to run again.
func installScripts(dir string) (updated bool, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create python directory: %w", err)
	}

	if _, err := syncScript(dir, scriptName, 0755); err != nil {
		return false, err
	}
	return syncScript(dir, requirementsName, 0644)
}

func syncScript(dir, name string, perm os.FileMode) (bool, error) {
	want, err := scripts.ReadFile("scripts/" + name)
	if err != nil {
		return false, fmt.Errorf("read bundled %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	if have, err := os.ReadFile(path); err == nil && bytes.Equal(have, want) {
		return false, nil
	}

	if err := os.WriteFile(path, want, perm); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return true, nil
}
