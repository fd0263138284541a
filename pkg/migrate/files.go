package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const (
	gooseUp   = "-- +goose Up"
	gooseDown = "-- +goose Down"

	versionLayout = "20060102150405"
)

var (
	fileNameRe     = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
)

// File is one goose SQL migration on disk.
type File struct {
	Version string
	Name    string
	Path    string
}

// ListFiles returns the migrations in dir ordered by version. Non-SQL
// entries are ignored; a malformed or duplicated SQL file name is an error.
func ListFiles(dir string) ([]File, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	files := make([]File, 0, len(entries))
	seen := map[string]string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		match := fileNameRe.FindStringSubmatch(name)
		if match == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[match[1]]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", match[1], prev, name)
		}
		seen[match[1]] = name
		files = append(files, File{Version: match[1], Name: match[2], Path: filepath.Join(dir, name)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

// ValidateDir checks file names and that every migration declares an Up
// section followed by a Down section.
func ValidateDir(dir string) error {
	files, err := ListFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	for _, file := range files {
		raw, err := os.ReadFile(file.Path)
		if err != nil {
			return fmt.Errorf("read file %q: %w", file.Path, err)
		}
		if err := validateSections(string(raw)); err != nil {
			return fmt.Errorf("migration %q: %w", filepath.Base(file.Path), err)
		}
	}
	return nil
}

func validateSections(sql string) error {
	up := strings.Index(sql, gooseUp)
	if up < 0 {
		return fmt.Errorf("missing %q", gooseUp)
	}
	down := strings.Index(sql, gooseDown)
	if down < 0 {
		return fmt.Errorf("missing %q", gooseDown)
	}
	if down < up {
		return fmt.Errorf("%q must precede %q", gooseUp, gooseDown)
	}
	return nil
}

// CreateSQLMigration writes <dir>/<version>_<name>.sql with empty goose sections.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", time.Now().UTC().Format(versionLayout), safe))
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	template := fmt.Sprintf(`%s
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

%s
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, gooseUp, safe, gooseDown, safe)

	if err := os.WriteFile(fullpath, []byte(template), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}
