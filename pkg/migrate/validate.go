package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every SQL migration in dir: filename shape
// (YYYYMMDDHHMMSS_name.sql), unique versions, and goose Up/Down markers.
// All problems are reported together rather than stopping at the first.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var problems []string
	versions := map[string]string{}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			problems = append(problems, fmt.Sprintf("%s: filename must match YYYYMMDDHHMMSS_name.sql", name))
			continue
		}

		if prev, dup := versions[m[1]]; dup {
			problems = append(problems, fmt.Sprintf("%s: version %s already used by %s", name, m[1], prev))
		} else {
			versions[m[1]] = name
		}

		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(b), marker) {
				problems = append(problems, fmt.Sprintf("%s: missing %q", name, marker))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid migrations in %q:\n  %s", dir, strings.Join(problems, "\n  "))
	}
	return nil
}
