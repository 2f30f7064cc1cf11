// Package device picks the execution device the pipeline is bound to.
package device

import (
	"context"
	"strings"

	"github.com/dmorgan81/txt2img/internal/log"
	"github.com/jaypipes/ghw"
	"github.com/jaypipes/ghw/pkg/gpu"
	"github.com/samber/lo"
)

type Device string

const (
	CUDA Device = "cuda"
	CPU  Device = "cpu"
	Auto Device = "auto"
)

// Vendors whose cards count as an accelerator.
var acceleratorVendors = []string{"nvidia", "amd", "advanced micro devices"}

// Lister returns a description of each graphics card on the host.
type Lister func() ([]string, error)

func GraphicsCards() ([]string, error) {
	info, err := ghw.GPU()
	if err != nil {
		return nil, err
	}
	return lo.Map(info.GraphicsCards, func(c *gpu.GraphicsCard, _ int) string {
		return c.String()
	}), nil
}

type Prober struct {
	List Lister
}

func NewProber() *Prober {
	return &Prober{List: GraphicsCards}
}

// Resolve returns requested unless it is Auto, in which case the host is probed.
func (p *Prober) Resolve(ctx context.Context, requested Device) Device {
	if requested == CUDA || requested == CPU {
		return requested
	}
	return p.Probe(ctx)
}

func (p *Prober) Probe(ctx context.Context) Device {
	log := log.FromContextOrDiscard(ctx).WithGroup("device")

	cards, err := p.List()
	if err != nil {
		log.Debug("graphics card probe failed", "error", err)
		return CPU
	}

	card, ok := lo.Find(cards, func(c string) bool {
		c = strings.ToLower(c)
		return lo.SomeBy(acceleratorVendors, func(v string) bool { return strings.Contains(c, v) })
	})
	if !ok {
		log.Info("no accelerator found", "cards", len(cards))
		return CPU
	}
	log.Info("accelerator found", "card", card)
	return CUDA
}
