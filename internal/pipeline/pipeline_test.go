package pipeline

import (
	"bytes"
	"context"
	"errors"
	stdimage "image"
	"image/png"
	"testing"

	"github.com/dmorgan81/txt2img/internal/device"
	"github.com/dmorgan81/txt2img/internal/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	known    string
	images   [][]byte
	err      error
	resolved int
	params   []image.Params
}

func (f *fakeGenerator) Resolve(_ context.Context, model string) error {
	f.resolved++
	if model != f.known {
		return image.ErrUnknownModel
	}
	return nil
}

func (f *fakeGenerator) Generate(_ context.Context, params image.Params) ([][]byte, error) {
	f.params = append(f.params, params)
	return f.images, f.err
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))))
	return buf.Bytes()
}

var opts = Options{
	Checkpoint: "runwayml/stable-diffusion-v1-5",
	Precision:  "float16",
	Device:     device.CPU,
	Width:      512,
	Height:     512,
}

func TestLoadFailsFast(t *testing.T) {
	gen := &fakeGenerator{known: "other"}

	p, err := Load(context.Background(), gen, opts)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrCheckpointUnresolvable)
	assert.ErrorIs(t, err, image.ErrUnknownModel)
	assert.Empty(t, gen.params)
}

func TestGenerateReturnsFirstImage(t *testing.T) {
	gen := &fakeGenerator{known: opts.Checkpoint, images: [][]byte{encodePNG(t, 512, 512), encodePNG(t, 8, 8)}}
	p, err := Load(context.Background(), gen, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.resolved)

	img, err := p.Generate(context.Background(), "a red bicycle on a beach")
	require.NoError(t, err)
	assert.Equal(t, 512, img.Width())
	assert.Equal(t, 512, img.Height())
	assert.NotEmpty(t, img.Data)

	require.Len(t, gen.params, 1)
	assert.Equal(t, image.Params{Model: opts.Checkpoint, Prompt: "a red bicycle on a beach", Width: 512, Height: 512}, gen.params[0])
}

func TestGenerateEmptyPrompt(t *testing.T) {
	gen := &fakeGenerator{known: opts.Checkpoint, images: [][]byte{encodePNG(t, 512, 512)}}
	p, err := Load(context.Background(), gen, opts)
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "", gen.params[0].Prompt)
}

func TestGeneratePropagatesErrors(t *testing.T) {
	oom := errors.New("CUDA out of memory")
	gen := &fakeGenerator{known: opts.Checkpoint, err: oom}
	p, err := Load(context.Background(), gen, opts)
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, oom)

	// the handle stays usable after a failed call
	gen.err = nil
	gen.images = [][]byte{encodePNG(t, 512, 512)}
	_, err = p.Generate(context.Background(), "x")
	assert.NoError(t, err)
}

func TestGenerateNoImage(t *testing.T) {
	gen := &fakeGenerator{known: opts.Checkpoint}
	p, err := Load(context.Background(), gen, opts)
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestDescribe(t *testing.T) {
	p, err := Load(context.Background(), &fakeGenerator{known: opts.Checkpoint}, opts)
	require.NoError(t, err)
	assert.Equal(t, "runwayml/stable-diffusion-v1-5 (float16 on cpu, 512x512)", p.Describe())
	assert.Equal(t, opts, p.Options())
}
