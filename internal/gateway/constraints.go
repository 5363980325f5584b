package gateway

import (
	"context"
	"net/http"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/domain"
)

func (c *Client) FetchConstraints(ctx context.Context) ([]domain.Constraint, error) {
	constraints := []domain.Constraint{}
	if err := c.do(ctx, "fetch constraints", http.MethodGet, "/constraints", nil, &constraints); err != nil {
		return nil, err
	}
	for i := range constraints {
		constraints[i].IsPending = false
	}
	return constraints, nil
}

func (c *Client) SaveConstraints(ctx context.Context, constraints []domain.Constraint) error {
	return c.do(ctx, "save constraints", http.MethodPost, "/constraints", constraints, nil)
}

func (c *Client) DeleteConstraint(ctx context.Context, subjectID string, shift domain.ShiftKey) error {
	body := struct {
		SubjectID string           `json:"userId"`
		Date      string           `json:"date"`
		Kind      domain.ShiftKind `json:"shiftType"`
	}{
		SubjectID: subjectID,
		Date:      shift.Date.Format("2006-01-02T15:04:05.000Z07:00"),
		Kind:      shift.Kind,
	}
	return c.do(ctx, "delete constraint", http.MethodDelete, "/constraints", body, nil)
}
