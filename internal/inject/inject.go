package inject

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/txt2img/internal/config"
	"github.com/dmorgan81/txt2img/internal/device"
	"github.com/dmorgan81/txt2img/internal/handler"
	"github.com/dmorgan81/txt2img/internal/image"
	"github.com/dmorgan81/txt2img/internal/log"
	"github.com/dmorgan81/txt2img/internal/metrics"
	"github.com/dmorgan81/txt2img/internal/page"
	"github.com/dmorgan81/txt2img/internal/param"
	"github.com/dmorgan81/txt2img/internal/pipeline"
	"github.com/dmorgan81/txt2img/internal/prompt"
	"github.com/dmorgan81/txt2img/internal/server"
	"github.com/samber/do"
)

func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[*config.Config](injector, cfg)
	do.ProvideValue[*slog.Logger](injector, log)
	do.ProvideValue[*http.Client](injector, http.DefaultClient)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)

	do.ProvideNamed[string](injector, "api_key", func(i *do.Injector) (string, error) {
		if cfg.APIKeyParam == "" {
			return cfg.APIKey, nil
		}
		return do.MustInvoke[param.Fetcher](i).Fetch(ctx, cfg.APIKeyParam)
	})
	do.ProvideNamedValue[string](injector, "backend_url", cfg.BackendURL)
	do.ProvideNamedValue[string](injector, "title", cfg.Title)
	do.ProvideNamedValue[string](injector, "share_url",
		server.ShareURL(cfg.Listen, cfg.PublicURL, cfg.Share, net.InterfaceAddrs))
	do.ProvideNamed[[]string](injector, "prompts", func(i *do.Injector) ([]string, error) {
		switch {
		case cfg.Examples != "":
			return prompt.LoadExamples(cfg.Examples)
		case cfg.ExamplesParam != "":
			return do.MustInvoke[param.Fetcher](i).FetchAll(ctx, cfg.ExamplesParam)
		}
		return prompt.DefaultExamples, nil
	})

	do.Provide[*device.Prober](injector, func(i *do.Injector) (*device.Prober, error) {
		return device.NewProber(), nil
	})
	do.Provide[image.Generator](injector, image.NewOpenAIGenerator)
	do.Provide[*pipeline.Pipeline](injector, func(i *do.Injector) (*pipeline.Pipeline, error) {
		width, height, err := cfg.Dimensions()
		if err != nil {
			return nil, err
		}
		dev := do.MustInvoke[*device.Prober](i).Resolve(ctx, device.Device(cfg.Device))
		generator, err := do.Invoke[image.Generator](i)
		if err != nil {
			return nil, err
		}
		return pipeline.Load(ctx, generator, pipeline.Options{
			Checkpoint: cfg.Checkpoint,
			Precision:  cfg.Precision,
			Device:     dev,
			Width:      width,
			Height:     height,
		})
	})

	do.Provide[*prompt.Randomizer](injector, prompt.NewRandomizer)
	do.Provide[*page.Templator](injector, func(i *do.Injector) (*page.Templator, error) {
		return &page.Templator{}, nil
	})
	do.Provide[*metrics.Metrics](injector, func(i *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(), nil
	})
	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*server.Server](injector, server.NewServer)

	return injector
}
