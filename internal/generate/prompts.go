package generate

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultTemplate is the system-prompt file used when the caller names none.
const DefaultTemplate = "prompt.txt"

// ErrTemplateNotFound reports a template name with no backing file.
var ErrTemplateNotFound = errors.New("generate: prompt template not found")

// Library resolves named system-prompt templates from a directory. A template
// is any *.txt file whose name contains "prompt".
type Library struct {
	dir string
}

// NewLibrary constructs a Library over dir.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// List returns available template names, sorted.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isTemplateName(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the named template. Names are file basenames only; anything that
// smells like a path is rejected as not found.
func (l *Library) Load(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultTemplate
	}
	if filepath.Base(name) != name || !isTemplateName(name) {
		return "", ErrTemplateNotFound
	}
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrTemplateNotFound
		}
		return "", err
	}
	return string(data), nil
}

func isTemplateName(name string) bool {
	return strings.HasSuffix(name, ".txt") && strings.Contains(name, "prompt")
}
