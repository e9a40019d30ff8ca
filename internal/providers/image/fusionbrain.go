package image

import (
	"context"
	"fmt"
	"time"

	"artbot/internal/domain"
	"artbot/internal/providers/fusionbrain"
)

type fusionBrainClient interface {
	Submit(ctx context.Context, prompt string, params domain.GenerationParams) (fusionbrain.JobHandle, error)
	WaitForResult(ctx context.Context, handle fusionbrain.JobHandle, interval time.Duration, maxAttempts int) (*fusionbrain.Asset, error)
	Styles(ctx context.Context) ([]fusionbrain.Style, error)
}

// FusionBrainGenerator adapts the FusionBrain client to the Generator
// contract, applying the configured poll cadence.
type FusionBrainGenerator struct {
	client      fusionBrainClient
	interval    time.Duration
	maxAttempts int
}

// NewFusionBrainGenerator wires a FusionBrain client with the poll settings.
func NewFusionBrainGenerator(client fusionBrainClient, interval time.Duration, maxAttempts int) *FusionBrainGenerator {
	return &FusionBrainGenerator{client: client, interval: interval, maxAttempts: maxAttempts}
}

// Generate fulfils the Generator interface.
func (g *FusionBrainGenerator) Generate(ctx context.Context, req Request) (*Asset, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("fusionbrain generator not configured")
	}
	params := domain.DefaultParams()
	if req.Style != "" {
		params.Style = req.Style
	}
	handle, err := g.client.Submit(ctx, req.Prompt, params)
	if err != nil {
		return nil, err
	}
	asset, err := g.client.WaitForResult(ctx, handle, g.interval, g.maxAttempts)
	if err != nil {
		return nil, err
	}
	return &Asset{Data: asset.Data, MIME: asset.MIME}, nil
}

// Styles fulfils the Generator interface with the live CDN catalog.
func (g *FusionBrainGenerator) Styles(ctx context.Context) ([]Style, error) {
	raw, err := g.client.Styles(ctx)
	if err != nil {
		return nil, err
	}
	styles := make([]Style, 0, len(raw))
	for _, s := range raw {
		styles = append(styles, Style{Title: s.Title, Name: s.Name})
	}
	return styles, nil
}

func (g *FusionBrainGenerator) String() string {
	return "fusionbrain"
}

var _ Generator = (*FusionBrainGenerator)(nil)
