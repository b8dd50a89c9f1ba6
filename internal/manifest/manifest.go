// Package manifest decodes a library's on-disk manifest file. The on-disk
// format itself is otherwise out of scope: this package owns exactly the two
// fields the Incremental Build Orchestrator needs to register a disk
// library, and nothing else.
package manifest

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFileName is the fixed name a disk library's root directory must
// contain for registerLibrary to recognize it as a disk library rather than
// discovering loose source files beneath it.
const ManifestFileName = "aya.toml"

// LibraryConfig is the decoded content of a library manifest.
type LibraryConfig struct {
	Name           string   `toml:"name"`
	LibrarySources []string `toml:"librarySources"`
}

// Load reads and decodes the manifest at path.
func Load(path string) (LibraryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LibraryConfig{}, fmt.Errorf("manifest: read %s: %w", path, err)
	}

	var cfg LibraryConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return LibraryConfig{}, fmt.Errorf("manifest: decode %s: %w", path, err)
	}

	return cfg, nil
}
