package view

import (
	"context"
	"fmt"
	"html/template"
	"io"
)

// Template is a view backed by an html/template.
type Template struct {
	name string
	tmpl *template.Template
}

// NewTemplate parses src as the body of the named view.
func NewTemplate(name, src string) (*Template, error) {
	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing view %s: %w", name, err)
	}
	return &Template{name: name, tmpl: tmpl}, nil
}

// MustTemplate is like NewTemplate but panics on error.
// Use it for views compiled into the binary.
func MustTemplate(name, src string) *Template {
	t, err := NewTemplate(name, src)
	if err != nil {
		panic(err)
	}
	return t
}

// Name implements View.
func (t *Template) Name() string { return t.name }

// Render implements View.
func (t *Template) Render(ctx context.Context, w io.Writer, data Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.tmpl.Execute(w, data)
}

// TemplateLoader returns a Loader that fetches the named bundle from store
// and parses it as a Template.
func TemplateLoader(store Store, name string) Loader {
	return func(ctx context.Context) (View, error) {
		rc, err := store.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		src, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("reading view %s: %w", name, err)
		}
		return NewTemplate(name, string(src))
	}
}
