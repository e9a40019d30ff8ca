package image

import (
	"context"
	"fmt"
	"time"

	"artbot/internal/domain"
	"artbot/internal/providers/yandexart"
)

type yandexArtClient interface {
	Submit(ctx context.Context, prompt string, params domain.GenerationParams) (yandexart.JobHandle, error)
	WaitForResult(ctx context.Context, handle yandexart.JobHandle, interval time.Duration, maxAttempts int) (*yandexart.Asset, error)
}

// YandexArtGenerator adapts the Yandex ART client to the Generator contract.
// The provider has no style catalog, so a single default entry is offered.
type YandexArtGenerator struct {
	client      yandexArtClient
	interval    time.Duration
	maxAttempts int
}

// NewYandexArtGenerator wires a Yandex ART client with the poll settings.
func NewYandexArtGenerator(client yandexArtClient, interval time.Duration, maxAttempts int) *YandexArtGenerator {
	return &YandexArtGenerator{client: client, interval: interval, maxAttempts: maxAttempts}
}

// Generate fulfils the Generator interface.
func (g *YandexArtGenerator) Generate(ctx context.Context, req Request) (*Asset, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("yandexart generator not configured")
	}
	params := domain.DefaultParams()
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

// Styles fulfils the Generator interface.
func (g *YandexArtGenerator) Styles(ctx context.Context) ([]Style, error) {
	return []Style{{Title: "Basic", Name: "DEFAULT"}}, nil
}

func (g *YandexArtGenerator) String() string {
	return "yandexart"
}

var _ Generator = (*YandexArtGenerator)(nil)
