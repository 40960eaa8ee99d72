package review

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var templateFS embed.FS

// DefaultTemplate is the summary template shipped with the package.
const DefaultTemplate = "summary.tpl"

// RenderOption configures a Renderer.
type RenderOption func(*renderConfig)

type renderConfig struct {
	templates fs.FS
	name      string
	globals   pongo2.Context
}

// WithTemplateFS loads templates from fsys instead of the embedded set.
func WithTemplateFS(fsys fs.FS) RenderOption {
	return func(cfg *renderConfig) {
		if fsys != nil {
			cfg.templates = fsys
		}
	}
}

// WithTemplateName selects the template rendered by the Renderer.
func WithTemplateName(name string) RenderOption {
	return func(cfg *renderConfig) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if !strings.HasSuffix(name, ".tpl") {
			name += ".tpl"
		}
		cfg.name = name
	}
}

// WithGlobals seeds values available to every render.
func WithGlobals(data map[string]any) RenderOption {
	return func(cfg *renderConfig) {
		for key, value := range data {
			if key = strings.TrimSpace(key); key != "" {
				cfg.globals[key] = value
			}
		}
	}
}

// Renderer renders summaries through a pongo2 template.
type Renderer struct {
	tmpl *pongo2.Template
	name string
}

// NewRenderer parses the configured template up front so render calls cannot
// fail on syntax.
func NewRenderer(opts ...RenderOption) (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("review: templates: %w", err)
	}
	cfg := &renderConfig{
		templates: sub,
		name:      DefaultTemplate,
		globals:   pongo2.Context{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	set := pongo2.NewSet("voiceform-review", pongo2.NewFSLoader(cfg.templates))
	set.Globals.Update(cfg.globals)

	tmpl, err := set.FromFile(cfg.name)
	if err != nil {
		return nil, fmt.Errorf("review: load template %q: %w", cfg.name, err)
	}
	return &Renderer{tmpl: tmpl, name: cfg.name}, nil
}

// Render executes the template for summary and mirrors the output to out.
func (r *Renderer) Render(summary Summary, out ...io.Writer) (string, error) {
	if r == nil || r.tmpl == nil {
		return "", errors.New("review: renderer is nil")
	}

	ctx := pongo2.Context{
		"summary":  summary,
		"selected": len(summary.Selected()),
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("review: execute template %q: %w", r.name, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

var (
	defaultRenderer     *Renderer
	defaultRendererErr  error
	defaultRendererOnce sync.Once
)

// Render renders summary with the embedded template.
func Render(summary Summary, out ...io.Writer) (string, error) {
	defaultRendererOnce.Do(func() {
		defaultRenderer, defaultRendererErr = NewRenderer()
	})
	if defaultRendererErr != nil {
		return "", defaultRendererErr
	}
	return defaultRenderer.Render(summary, out...)
}
