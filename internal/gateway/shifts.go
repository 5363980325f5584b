package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

func (c *Client) FetchShifts(ctx context.Context) ([]domain.AssignedShift, error) {
	shifts := []domain.AssignedShift{}
	if err := c.do(ctx, "fetch shifts", http.MethodGet, "/shifts", nil, &shifts); err != nil {
		return nil, err
	}
	for i := range shifts {
		shifts[i].IsPending = false
	}
	return shifts, nil
}

func (c *Client) SaveShifts(ctx context.Context, shifts []domain.AssignedShift) error {
	return c.do(ctx, "save shifts", http.MethodPost, "/shifts", shifts, nil)
}

func (c *Client) DeleteShift(ctx context.Context, shift domain.ShiftKey) error {
	return c.do(ctx, "delete shift", http.MethodDelete, "/shifts", shift, nil)
}

func (c *Client) SuggestShifts(ctx context.Context, req domain.SuggestRequest) ([]domain.AssignedShift, error) {
	shifts := []domain.AssignedShift{}
	if err := c.do(ctx, "suggest shifts", http.MethodPost, "/shifts/suggest", req, &shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

func (c *Client) DeleteWeek(ctx context.Context, weekStart time.Time) error {
	body := map[string]string{"weekStart": weekStart.Format(time.DateOnly)}
	return c.do(ctx, "delete week", http.MethodDelete, "/shifts/week", body, nil)
}

func (c *Client) RecalculateScores(ctx context.Context) error {
	return c.do(ctx, "recalculate scores", http.MethodPost, "/shifts/recalculateAllUsersScores", nil, nil)
}

func (c *Client) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	subjects := []domain.Subject{}
	if err := c.do(ctx, "list subjects", http.MethodGet, "/users", nil, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}
