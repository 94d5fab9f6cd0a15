package task

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

const fileMode = 0o600

// Read parses a task file and returns the Task with body populated.
func Read(path string) (*Task, error) {
	data, err := os.ReadFile(path) //nolint:gosec // task path from trusted source
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}

	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	t.File = path

	return t, nil
}

// Decode parses markdown with YAML frontmatter into a Task.
func Decode(data []byte) (*Task, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	var t Task
	if err := yaml.Unmarshal(fm, &t); err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}
	if t.ID == "" {
		return nil, errors.New("frontmatter has no id")
	}
	t.Body = body

	return &t, nil
}

// Encode serializes a task to markdown with YAML frontmatter.
func Encode(t *Task) ([]byte, error) {
	fm, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	if t.Body != "" {
		buf.WriteString("\n")
		buf.WriteString(t.Body)
		if !strings.HasSuffix(t.Body, "\n") {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

// Write serializes a task to path. The content goes to a temporary file in
// the same directory first and is renamed into place, so readers never see
// a half-written task.
func Write(path string, t *Task) error {
	tmpName, err := WriteTemp(filepath.Dir(path), t)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming task file: %w", err)
	}
	return nil
}

// WriteTemp serializes a task to a new hidden file in dir and returns its
// path. The caller renames or removes it.
func WriteTemp(dir string, t *Task) (string, error) {
	data, err := Encode(t)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.md")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("writing task file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("writing task file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("writing task file: %w", err)
	}
	return tmpName, nil
}

// splitFrontmatter splits a markdown file into YAML frontmatter and body.
// The file must start with "---\n". Returns frontmatter bytes and body string.
func splitFrontmatter(data []byte) ([]byte, string, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(content, "---\n") {
		return nil, "", errors.New("file does not start with YAML frontmatter (---)")
	}

	rest := content[4:] // skip opening ---\n
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		closingLen := len("---")
		if strings.HasSuffix(rest, "\n---") {
			idx = len(rest) - closingLen
		} else {
			return nil, "", errors.New("unclosed frontmatter (missing closing ---)")
		}
	}

	fm := rest[:idx]
	body := ""
	closingEnd := idx + len("\n---\n")
	if closingEnd < len(rest) {
		body = strings.TrimLeft(rest[closingEnd:], "\n")
	}

	return []byte(fm), body, nil
}
