package device

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lister(cards []string, err error) Lister {
	return func() ([]string, error) { return cards, err }
}

func TestProbe(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name  string
		cards []string
		err   error
		want  Device
	}{
		{"nvidia", []string{"card #0 @0000:01:00.0 -> driver: 'nvidia' class: 'Display controller' vendor: 'NVIDIA Corporation'"}, nil, CUDA},
		{"amd", []string{"card #0 vendor: 'Advanced Micro Devices, Inc. [AMD/ATI]'"}, nil, CUDA},
		{"integrated only", []string{"card #0 vendor: 'Intel Corporation'"}, nil, CPU},
		{"no cards", nil, nil, CPU},
		{"probe error", nil, errors.New("no pci"), CPU},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &Prober{List: lister(c.cards, c.err)}
			assert.Equal(t, c.want, p.Probe(ctx))
		})
	}
}

func TestResolveExplicitSkipsProbe(t *testing.T) {
	probed := false
	p := &Prober{List: func() ([]string, error) {
		probed = true
		return []string{"NVIDIA"}, nil
	}}

	assert.Equal(t, CPU, p.Resolve(context.Background(), CPU))
	assert.Equal(t, CUDA, p.Resolve(context.Background(), CUDA))
	assert.False(t, probed)

	assert.Equal(t, CUDA, p.Resolve(context.Background(), Auto))
	assert.True(t, probed)
}
