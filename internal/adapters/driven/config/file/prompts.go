package file

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

var placeholder = regexp.MustCompile(`%(\[\d+\])?s`)

// PromptStore serves prompts from <dir>/<name>.txt so users can tune them.
//
// The directory is seeded with the defaults on first use. Files are re-read
// when their modification time or size changes, so edits apply to the next
// run of a long-lived watch. An override that is empty, unreadable, or
// drops placeholders of the default is ignored in favour of the default.
type PromptStore struct {
	dir      string
	defaults map[string]string
	seed     func() error

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

type cachedPrompt struct {
	mod  time.Time
	size int64
	text string
}

// NewPromptStore creates a prompt store over dir, HomeDir()/prompts when
// empty. Nothing touches the disk until the first Load.
func NewPromptStore(dir string, defaults map[string]string) (*PromptStore, error) {
	if dir == "" {
		home, err := HomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, "prompts")
	}
	s := &PromptStore{
		dir:      dir,
		defaults: maps.Clone(defaults),
		cache:    make(map[string]cachedPrompt),
	}
	if s.defaults == nil {
		s.defaults = map[string]string{}
	}
	s.seed = sync.OnceValue(s.writeDefaults)
	return s, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the prompt called name.
func (s *PromptStore) Load(name string) (string, error) {
	def, known := s.defaults[name]
	if err := s.seed(); err != nil {
		if known {
			return def, nil
		}
		return "", err
	}

	text, err := s.read(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil, text == "":
		return def, nil
	case known && !keepsPlaceholders(def, text):
		logger.Warn("prompt %s drops placeholders of the default, using the default", s.path(name))
		return def, nil
	}
	return text, nil
}

func (s *PromptStore) read(name string) (string, error) {
	path := s.path(name)
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	c, ok := s.cache[name]
	s.mu.Unlock()
	if ok && c.mod.Equal(info.ModTime()) && c.size == info.Size() {
		return c.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))

	s.mu.Lock()
	s.cache[name] = cachedPrompt{mod: info.ModTime(), size: info.Size(), text: text}
	s.mu.Unlock()
	return text, nil
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// keepsPlaceholders reports whether custom uses every verb def uses.
func keepsPlaceholders(def, custom string) bool {
	have := make(map[string]bool)
	for _, v := range placeholder.FindAllString(custom, -1) {
		have[v] = true
	}
	for _, v := range placeholder.FindAllString(def, -1) {
		if !have[v] {
			return false
		}
	}
	return true
}

// writeDefaults creates the directory, any missing default file and the README.
func (s *PromptStore) writeDefaults() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	files := maps.Clone(s.defaults)
	files["README"] = promptReadme
	for name, content := range files {
		path := s.path(name)
		if name == "README" {
			path = filepath.Join(s.dir, "README.md")
		}
		err := writeIfMissing(path, content)
		if err != nil {
			return fmt.Errorf("seed prompt %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

const promptReadme = `# reqsync prompts

These files are sent to the configured oracle. Edit them to change how
records are generated and how coverage is judged. Delete a file to restore
its default on the next run.

- generate_records.txt asks for records for a batch of requirements.
  Placeholders: %[1]s field list, %[2]s record delimiter, %[3]s requirements.
- coverage.txt asks for a JSON coverage verdict for one requirement.
  Placeholders: %[1]s requirement text, %[2]s requirement id,
  %[3]s existing record summary.

An edited prompt that loses a placeholder is ignored and the default is
used instead.
`
