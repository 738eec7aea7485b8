// Package migrations embeds the SQL schema files.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.sql
var FS embed.FS

// Files returns migration file names for the given direction ("up" or "down"),
// ordered for application: ascending for up, descending for down.
func Files(direction string) ([]string, error) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		return nil, err
	}

	suffix := "." + direction + ".sql"
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)
	if direction == "down" {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}

	return names, nil
}

// Version returns the migration version shared by a file's up and down halves,
// e.g. "000001_join_applications" for "000001_join_applications.up.sql".
func Version(name string) string {
	name = strings.TrimSuffix(name, ".sql")
	name = strings.TrimSuffix(name, ".up")
	return strings.TrimSuffix(name, ".down")
}
