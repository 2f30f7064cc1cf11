package prompt

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmorgan81/txt2img/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var ErrNoExamples = errors.New("no example prompts")

var DefaultExamples = []string{
	"a red bicycle on a beach",
	"an astronaut riding a horse, photorealistic",
	"a watercolor painting of a lighthouse at dawn",
	"a cozy cabin in a snowy forest, digital art",
}

type examplesFile struct {
	Examples []string `yaml:"examples"`
}

// LoadExamples reads a YAML file holding either a plain list of prompts or a
// mapping with an examples key. Blank entries are dropped.
func LoadExamples(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []string
	if err := yaml.Unmarshal(data, &list); err != nil {
		var file examplesFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		list = file.Examples
	}

	list = lo.FilterMap(list, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	if len(list) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoExamples, path)
	}
	return list, nil
}

type Randomizer struct {
	prompts []string
	rnd     *rand.Rand
	mu      sync.Mutex
}

func NewRandomizer(i *do.Injector) (*Randomizer, error) {
	prompts := do.MustInvokeNamed[[]string](i, "prompts")
	return NewRandomizerWithPrompts(prompts)
}

func NewRandomizerWithPrompts(prompts []string) (*Randomizer, error) {
	if len(prompts) == 0 {
		return nil, ErrNoExamples
	}
	rnd := rand.New(rand.NewSource(time.Now().UTC().UnixNano()))
	return &Randomizer{prompts: prompts, rnd: rnd}, nil
}

func (r *Randomizer) Examples() []string {
	return r.prompts
}

func (r *Randomizer) Randomize(ctx context.Context) string {
	log.FromContextOrDiscard(ctx).Debug("picking example prompt")
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prompts[r.rnd.Intn(len(r.prompts))]
}
