package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmorgan81/txt2img/internal/image"
	"github.com/dmorgan81/txt2img/internal/log"
	"github.com/dmorgan81/txt2img/internal/metrics"
	"github.com/dmorgan81/txt2img/internal/page"
	"github.com/dmorgan81/txt2img/internal/pipeline"
	"github.com/dmorgan81/txt2img/internal/prompt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

const failureMessage = "Generation failed. Check the server logs for details."

// Generator is satisfied by *pipeline.Pipeline.
type Generator interface {
	Generate(context.Context, string) (*image.Image, error)
	Describe() string
}

type Input struct {
	Prompt string `json:"prompt" form:"prompt"`
}

type Handler struct {
	generator  Generator
	templator  *page.Templator
	randomizer *prompt.Randomizer
	metrics    *metrics.Metrics
	logger     *slog.Logger
	title      string
	shareURL   string
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		generator:  do.MustInvoke[*pipeline.Pipeline](i),
		templator:  do.MustInvoke[*page.Templator](i),
		randomizer: do.MustInvoke[*prompt.Randomizer](i),
		metrics:    do.MustInvoke[*metrics.Metrics](i),
		logger:     do.MustInvoke[*slog.Logger](i),
		title:      do.MustInvokeNamed[string](i, "title"),
		shareURL:   do.MustInvokeNamed[string](i, "share_url"),
	}, nil
}

func (h *Handler) Register(e *echo.Echo) {
	e.Use(h.requestLogger)
	e.GET("/", h.Form)
	e.POST("/", h.Submit)
	e.POST("/api/generate", h.Generate)
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))
}

func (h *Handler) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, id)

		logger := h.logger.With("request_id", id, "method", c.Request().Method, "path", c.Path())
		c.SetRequest(c.Request().WithContext(log.NewContext(c.Request().Context(), logger)))
		return next(c)
	}
}

func (h *Handler) Form(c echo.Context) error {
	return h.render(c, http.StatusOK, page.Params{})
}

func (h *Handler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	input := Input{Prompt: c.FormValue("prompt")}
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("input", input)
	log.Info("handling form submission")

	img, err := h.generate(ctx, input.Prompt)
	if err != nil {
		log.Error("generation failed", "error", err)
		return h.render(c, http.StatusInternalServerError, page.Params{Prompt: input.Prompt, Error: failureMessage})
	}

	return h.render(c, http.StatusOK, page.Params{
		Prompt: input.Prompt,
		Image:  template.URL(img.DataURI()),
		Width:  img.Width(),
		Height: img.Height(),
	})
}

func (h *Handler) Generate(c echo.Context) error {
	ctx := c.Request().Context()
	var input Input
	if err := c.Bind(&input); err != nil {
		return err
	}
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("input", input)
	log.Info("handling api request")

	img, err := h.generate(ctx, input.Prompt)
	if err != nil {
		log.Error("generation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.Blob(http.StatusOK, img.MediaType, img.Data)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "ok",
		"pipeline": h.generator.Describe(),
	})
}

func (h *Handler) generate(ctx context.Context, prompt string) (*image.Image, error) {
	start := time.Now()
	img, err := h.generator.Generate(ctx, prompt)
	h.metrics.Observe(start, err)
	return img, err
}

func (h *Handler) render(c echo.Context, status int, params page.Params) error {
	params.Title = h.title
	params.Placeholder = h.randomizer.Randomize(c.Request().Context())
	params.Examples = h.randomizer.Examples()
	params.Pipeline = h.generator.Describe()
	params.ShareURL = h.shareURL

	html, err := h.templator.Template(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.HTMLBlob(status, html)
}
