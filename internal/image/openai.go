package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/dmorgan81/txt2img/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator talks to any backend implementing the OpenAI images API,
// e.g. LocalAI running the diffusers backend.
type OpenAIGenerator struct {
	Client *openai.Client
	HTTP   *http.Client
}

func NewOpenAIGenerator(i *do.Injector) (Generator, error) {
	key := do.MustInvokeNamed[string](i, "api_key")
	url := do.MustInvokeNamed[string](i, "backend_url")
	client := do.MustInvoke[*http.Client](i)
	return NewOpenAIGeneratorWithClient(url, key, client), nil
}

func NewOpenAIGeneratorWithClient(url, key string, client *http.Client) *OpenAIGenerator {
	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = url
	cfg.HTTPClient = client
	return &OpenAIGenerator{Client: openai.NewClientWithConfig(cfg), HTTP: client}
}

func (g *OpenAIGenerator) Resolve(ctx context.Context, model string) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("openai").With("model", model)
	log.Info("resolving model")

	models, err := g.Client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("listing models: %w", err)
	}
	if !lo.ContainsBy(models.Models, func(m openai.Model) bool { return m.ID == model }) {
		return fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, params Params) ([][]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("openai").With("model", params.Model, "size", params.Size())
	log.Info("generating image")

	resp, err := g.Client.CreateImage(ctx, openai.ImageRequest{
		Model:          params.Model,
		Prompt:         params.Prompt,
		N:              1,
		Size:           params.Size(),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("creating image: %w", err)
	}
	log.Info("received images", "count", len(resp.Data))

	images := make([][]byte, 0, len(resp.Data))
	for _, d := range resp.Data {
		var data []byte
		switch {
		case d.B64JSON != "":
			data, err = base64.StdEncoding.DecodeString(d.B64JSON)
		case d.URL != "":
			data, err = g.download(ctx, d.URL)
		default:
			err = ErrEmptyImage
		}
		if err != nil {
			return nil, err
		}
		images = append(images, data)
	}
	return images, nil
}

func (g *OpenAIGenerator) download(ctx context.Context, url string) ([]byte, error) {
	log.FromContextOrDiscard(ctx).Debug("downloading image", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading image: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
