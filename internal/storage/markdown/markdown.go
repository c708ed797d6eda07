package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/storage"
)

var markerPattern = regexp.MustCompile(`(?m)^<!-- entry ([a-z0-9]+) -->[ \t]*\r?\n?`)

// Store implements storage.Store as one Markdown file per identity. Entry
// metadata lives in the YAML front-matter; entry texts form the body.
type Store struct {
	baseDir string // e.g. ~/.murmur/journals/
	now     func() time.Time
}

// New creates a new Markdown file storage backend.
func New(dataDir string) (*Store, error) {
	journalsDir := filepath.Join(dataDir, "journals")
	if err := os.MkdirAll(journalsDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating journals directory: %v", storage.ErrStorage, err)
	}
	return &Store{baseDir: journalsDir, now: time.Now}, nil
}

// Close is a no-op for the Markdown backend.
func (s *Store) Close() error {
	return nil
}

func fileName(identity string) string {
	return url.PathEscape(storage.Key(identity)) + ".md"
}

// Path returns the file backing identity's journal.
func (s *Store) Path(identity string) string {
	return filepath.Join(s.baseDir, fileName(identity))
}

type fmEntry struct {
	ID          string `yaml:"id"`
	Timestamp   string `yaml:"timestamp"`
	Category    string `yaml:"category,omitempty"`
	Translation string `yaml:"translation,omitempty"`
}

type frontMatter struct {
	Identity  string    `yaml:"identity"`
	UpdatedAt string    `yaml:"updated_at"`
	Entries   []fmEntry `yaml:"entries"`
}

func (s *Store) marshal(identity string, c entry.Collection) ([]byte, error) {
	fm := frontMatter{
		Identity:  storage.Identity(identity),
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
		Entries:   make([]fmEntry, 0, len(c)),
	}
	for _, e := range c {
		m := fmEntry{ID: e.ID, Timestamp: e.Timestamp.Format(time.RFC3339Nano)}
		if a, ok := e.Annotated(); ok {
			m.Category = a.Category
			m.Translation = a.Translation
		}
		fm.Entries = append(fm.Entries, m)
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding front-matter: %v", storage.ErrStorage, err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n")
	for _, e := range c {
		fmt.Fprintf(&b, "\n<!-- entry %s -->\n%s\n", e.ID, e.Text)
	}
	return b.Bytes(), nil
}

func unmarshal(data []byte) (entry.Collection, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return entry.Collection{}, fmt.Errorf("%w: parsing front-matter: %v", storage.ErrCorrupt, err)
	}

	texts := make(map[string]string)
	locs := markerPattern.FindAllSubmatchIndex(body, -1)
	for i, loc := range locs {
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		id := string(body[loc[2]:loc[3]])
		texts[id] = strings.TrimSpace(string(body[loc[1]:end]))
	}

	c := make(entry.Collection, 0, len(fm.Entries))
	for _, m := range fm.Entries {
		ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
		if err != nil {
			return entry.Collection{}, fmt.Errorf("%w: parsing timestamp of %s: %v", storage.ErrCorrupt, m.ID, err)
		}
		text, ok := texts[m.ID]
		if !ok || text == "" {
			return entry.Collection{}, fmt.Errorf("%w: entry %s has no text", storage.ErrCorrupt, m.ID)
		}
		e := entry.Entry{ID: m.ID, Timestamp: ts, Text: text}
		if m.Category != "" || m.Translation != "" {
			e.Annotation = &entry.Annotation{Category: m.Category, Translation: m.Translation}
		}
		c = append(c, e)
	}
	return c, nil
}

// Load reads the identity's journal file.
func (s *Store) Load(identity string) (entry.Collection, error) {
	data, err := os.ReadFile(s.Path(identity))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entry.Collection{}, nil
		}
		return entry.Collection{}, fmt.Errorf("%w: reading file: %v", storage.ErrStorage, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return entry.Collection{}, nil
	}
	return unmarshal(data)
}

// Save rewrites the identity's journal file.
func (s *Store) Save(identity string, c entry.Collection) error {
	if err := storage.Validate(c); err != nil {
		return err
	}
	data, err := s.marshal(identity, c)
	if err != nil {
		return err
	}
	return atomicWrite(s.Path(identity), data)
}

// Watch reports changes to the identity's journal file.
func (s *Store) Watch(ctx context.Context, identity string) (<-chan struct{}, error) {
	return storage.WatchFile(ctx, s.baseDir, fileName(identity))
}

// atomicWrite writes data to a temp file then renames it to the target path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory: %v", storage.ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", storage.ErrStorage, err)
	}
	tmpName := tmp.Name()

	// Lock the temp file during write
	if err := syscall.Flock(int(tmp.Fd()), syscall.LOCK_EX); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: acquiring lock: %v", storage.ErrStorage, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing temp file: %v", storage.ErrStorage, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %v", storage.ErrStorage, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming file: %v", storage.ErrStorage, err)
	}

	return nil
}
