// Package pipeline holds the process-wide handle to the pretrained
// text-to-image pipeline and the generation function built on it.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmorgan81/txt2img/internal/device"
	"github.com/dmorgan81/txt2img/internal/image"
	"github.com/dmorgan81/txt2img/internal/log"
)

var (
	ErrCheckpointUnresolvable = errors.New("checkpoint cannot be resolved")
	ErrNoImage                = errors.New("provider returned no image")
)

type Options struct {
	Checkpoint string
	Precision  string
	Device     device.Device
	Width      int
	Height     int
}

// Pipeline is immutable after Load and safe to share between requests.
type Pipeline struct {
	generator image.Generator
	opts      Options
}

// Load binds the checkpoint. It fails before anything is served if the
// backend does not know the checkpoint.
func Load(ctx context.Context, generator image.Generator, opts Options) (*Pipeline, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("pipeline").With(
		"checkpoint", opts.Checkpoint,
		"precision", opts.Precision,
		"device", opts.Device,
	)
	log.Info("loading pipeline")

	if err := generator.Resolve(ctx, opts.Checkpoint); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCheckpointUnresolvable, opts.Checkpoint, err)
	}

	log.Info("pipeline loaded", "width", opts.Width, "height", opts.Height)
	return &Pipeline{generator: generator, opts: opts}, nil
}

// Generate runs the prompt through the provider with its default sampling
// parameters and returns the first image. Provider errors are returned wrapped
// but otherwise untouched.
func (p *Pipeline) Generate(ctx context.Context, prompt string) (*image.Image, error) {
	log.FromContextOrDiscard(ctx).WithGroup("pipeline").Info("generating", "prompt", prompt)

	images, err := p.generator.Generate(ctx, image.Params{
		Model:  p.opts.Checkpoint,
		Prompt: prompt,
		Width:  p.opts.Width,
		Height: p.opts.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("generating image: %w", err)
	}
	if len(images) == 0 {
		return nil, ErrNoImage
	}
	return image.Decode(images[0])
}

func (p *Pipeline) Options() Options {
	return p.opts
}

func (p *Pipeline) Describe() string {
	return fmt.Sprintf("%s (%s on %s, %dx%d)", p.opts.Checkpoint, p.opts.Precision, p.opts.Device, p.opts.Width, p.opts.Height)
}
