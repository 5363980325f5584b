package gateway

import (
	"context"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

func (c *Client) FetchPresets(ctx context.Context) (*domain.PresetSettings, error) {
	settings := &domain.PresetSettings{}
	if err := c.do(ctx, "fetch presets", http.MethodGet, "/shift-weight-settings", nil, settings); err != nil {
		return nil, err
	}

	if settings.Presets == nil {
		settings.Presets = map[string]domain.ScoringPreset{}
	}
	if settings.Current == "" && settings.CurrentObject != nil {
		settings.Current = settings.CurrentObject.Name
	}
	settings.CurrentObject = nil

	return settings, nil
}

func (c *Client) SavePreset(ctx context.Context, preset domain.ScoringPreset) error {
	return c.do(ctx, "save preset", http.MethodPost, "/shift-weight-settings/preset", preset, nil)
}

func (c *Client) SelectPreset(ctx context.Context, name string) error {
	body := map[string]string{"currentPreset": name}
	return c.do(ctx, "select preset", http.MethodPost, "/shift-weight-settings/current-preset", body, nil)
}
