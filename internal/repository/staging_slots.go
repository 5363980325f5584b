package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

func (r *Repository) Load(scope string) ([]byte, error) {
	query := `
		SELECT payload FROM staging_slots WHERE scope = ?
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Staging.OperationTimeout)*time.Second)
	defer cancel()

	var payload string
	if err := r.dbpool.QueryRowContext(ctx, query, scope).Scan(&payload); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}

	return []byte(payload), nil
}

func (r *Repository) Save(scope string, data []byte) error {
	query := `
		INSERT INTO staging_slots (scope, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (scope) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Staging.OperationTimeout)*time.Second)
	defer cancel()

	params := []any{
		scope,
		string(data),
		time.Now().UnixMilli(),
	}

	if _, err := r.dbpool.ExecContext(ctx, query, params...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) Delete(scope string) error {
	query := `
		DELETE FROM staging_slots WHERE scope = ?
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Staging.OperationTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, scope); err != nil {
		return err
	}

	return nil
}

// Scopes 按最近修改时间倒序列出所有身份
func (r *Repository) Scopes() ([]string, error) {
	query := `
		SELECT scope FROM staging_slots ORDER BY updated_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Staging.OperationTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scopes := []string{}
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return scopes, nil
}
