package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-voiceform/pkg/model"
)

type documentFile struct {
	Title    string          `json:"title" yaml:"title"`
	Sections []model.Section `json:"sections" yaml:"sections"`
}

// LoadFS reads and validates the schema document at path within fsys. JSON is
// attempted first, then YAML.
func LoadFS(fsys fs.FS, path string) (*model.Schema, error) {
	if fsys == nil {
		return nil, fmt.Errorf("schema: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFile reads a schema document from disk.
func LoadFile(path string) (*model.Schema, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return LoadFS(os.DirFS(dir), name)
}

// LoadDir loads the first schema document found in dir, in lexical order.
func LoadDir(dir string) (*model.Schema, error) {
	fsys := os.DirFS(dir)
	var found string
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || found != "" {
			return nil
		}
		if isSchemaFile(path) {
			found = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("schema: walk %s: %w", dir, err)
	}
	if found == "" {
		return nil, fmt.Errorf("schema: no schema document in %s", dir)
	}
	return LoadFS(fsys, found)
}

// Parse decodes a JSON or YAML document and validates the result. source is
// used only for error messages.
func Parse(data []byte, source string) (*model.Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML", source)
		}
	}

	for i := range doc.Sections {
		doc.Sections[i].Name = strings.TrimSpace(doc.Sections[i].Name)
		for j := range doc.Sections[i].Fields {
			field := &doc.Sections[i].Fields[j]
			field.ID = strings.TrimSpace(field.ID)
			field.Type = model.FieldType(strings.ToLower(strings.TrimSpace(string(field.Type))))
		}
	}

	s, err := model.NewSchema(doc.Title, doc.Sections...)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", source, err)
	}
	return s, nil
}

// Marshal encodes s as a YAML document accepted by Parse.
func Marshal(s *model.Schema) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("schema: nil schema")
	}
	return yaml.Marshal(documentFile{Title: s.Title, Sections: s.Sections})
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
