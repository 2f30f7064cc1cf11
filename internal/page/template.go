package page

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"sync"

	"github.com/dmorgan81/txt2img/internal/log"
)

//go:embed assets/form.html
var formTmpl string

type Params struct {
	Title       string
	Prompt      string
	Placeholder string
	Examples    []string
	Image       template.URL
	Width       int
	Height      int
	Error       string
	Pipeline    string
	ShareURL    string
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func (g *Templator) Template(ctx context.Context, params Params) ([]byte, error) {
	g.once.Do(func() {
		g.tmpl = template.Must(template.New("form").Parse(formTmpl))
	})

	log := log.FromContextOrDiscard(ctx).WithGroup("templator")
	log.Debug("rendering form", "image", params.Image != "", "error", params.Error != "")

	var data bytes.Buffer
	if err := g.tmpl.Execute(&data, params); err != nil {
		return nil, err
	}
	return data.Bytes(), nil
}
