// Package migrations bundles the SQL schema migrations.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed *.sql
var FS embed.FS

// Scripts returns the contents of every migration, ordered by file name.
func Scripts() ([]string, error) {
	names, err := fs.Glob(FS, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	scripts := make([]string, 0, len(names))
	for _, name := range names {
		b, err := FS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		scripts = append(scripts, string(b))
	}
	return scripts, nil
}
