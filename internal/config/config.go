package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var ErrInvalidSize = errors.New("invalid size")

// EnvFiles are loaded, in order, before flags are parsed. Variables already
// present in the environment win.
var EnvFiles = []string{".env", "txt2img.env"}

type Config struct {
	Checkpoint    string `name:"checkpoint" help:"Pretrained checkpoint served by the backend." default:"runwayml/stable-diffusion-v1-5" env:"SD_CHECKPOINT"`
	Precision     string `name:"precision" help:"Numeric precision the checkpoint is loaded with." enum:"float16,float32" default:"float16" env:"SD_PRECISION"`
	Device        string `name:"device" help:"Execution device. auto probes for an accelerator." enum:"auto,cuda,cpu" default:"auto" env:"SD_DEVICE"`
	Size          string `name:"size" help:"Default output size of the checkpoint, WxH." default:"512x512" env:"SD_SIZE"`
	BackendURL    string `name:"backend-url" help:"Base URL of the OpenAI compatible image backend." default:"http://localhost:8080/v1" env:"SD_BACKEND_URL"`
	APIKey        string `name:"api-key" help:"API key for the image backend." env:"SD_API_KEY"`
	APIKeyParam   string `name:"api-key-param" help:"AWS SSM parameter holding the backend API key." env:"SD_API_KEY_PARAM"`
	Listen        string `name:"listen" help:"Address the form is served on." default:"127.0.0.1:7860" env:"SD_LISTEN"`
	Share         bool   `name:"share" help:"Listen on all interfaces and advertise a public link." env:"SD_SHARE"`
	PublicURL     string `name:"public-url" help:"Public link advertised when sharing." env:"SD_PUBLIC_URL"`
	Title         string `name:"title" help:"Form title." default:"Text to Image Generator using Stable Diffusion" env:"SD_TITLE"`
	Examples      string `name:"examples" help:"YAML file with example prompts." type:"path" env:"SD_EXAMPLES"`
	ExamplesParam string `name:"examples-param" help:"AWS SSM path whose parameters are example prompts." env:"SD_EXAMPLES_PARAM"`
	LogLevel      string `name:"log-level" help:"Log level." enum:"debug,info,warn,error" default:"info" env:"SD_LOG_LEVEL"`
}

func (c *Config) Validate() error {
	_, _, err := c.Dimensions()
	return err
}

// Dimensions parses Size.
func (c *Config) Dimensions() (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(c.Size)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, c.Size)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, c.Size)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSize, c.Size)
	}
	return width, height, nil
}

func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

func Parse(args []string, options ...kong.Option) (*Config, error) {
	var cfg Config
	options = append([]kong.Option{
		kong.Name("txt2img"),
		kong.Description("Serve a pretrained text-to-image pipeline through a single-field web form."),
	}, options...)

	parser, err := kong.New(&cfg, options...)
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
