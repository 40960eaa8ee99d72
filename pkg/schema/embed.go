package schema

import (
	"embed"
	"io/fs"
	"sync"

	"github.com/goliatone/go-voiceform/pkg/model"
)

// DefaultDocument is the path of the bundled questionnaire inside EmbeddedFS.
const DefaultDocument = "life_insurance.yaml"

//go:embed data/*.yaml
var embeddedSchema embed.FS

var (
	defaultOnce   sync.Once
	defaultSchema *model.Schema
	defaultErr    error
)

// EmbeddedFS returns the bundled schema documents.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedSchema, "data")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Default returns the bundled life-insurance questionnaire. The document is
// parsed once; callers share the returned schema and must not mutate it.
func Default() (*model.Schema, error) {
	defaultOnce.Do(func() {
		defaultSchema, defaultErr = LoadFS(EmbeddedFS(), DefaultDocument)
	})
	return defaultSchema, defaultErr
}

// MustDefault is Default for callers that treat a broken bundle as fatal.
func MustDefault() *model.Schema {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}
