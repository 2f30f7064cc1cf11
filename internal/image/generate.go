package image

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnknownModel = errors.New("model not served by backend")
	ErrEmptyImage   = errors.New("image without data")
)

type Params struct {
	Model  string
	Prompt string
	Width  int
	Height int
}

func (p Params) Size() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

// Generator is the binding to the model provider.
type Generator interface {
	// Resolve fails unless the backend can serve model.
	Resolve(ctx context.Context, model string) error
	// Generate returns the encoded images produced for params, in provider order.
	Generate(ctx context.Context, params Params) ([][]byte, error)
}
