package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/client/internal/config"

	_ "modernc.org/sqlite"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// OpenSQLite 打开本地数据库并完成建表
func OpenSQLite(cfg *config.Config) (*Repository, error) {
	// modernc.org/sqlite 注册的驱动名是 sqlite
	dbpool, err := sql.Open("sqlite", cfg.Staging.Path)
	if err != nil {
		return nil, err
	}

	// 命令行可能同时运行多个进程，WAL 加 busy_timeout 避免 database is locked
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Staging.OperationTimeout)*time.Second)
	defer cancel()

	for _, p := range pragmas {
		if _, err := dbpool.ExecContext(ctx, p); err != nil {
			_ = dbpool.Close()
			return nil, err
		}
	}

	repo := NewRepository(cfg, dbpool)
	if err := repo.Migrate(); err != nil {
		_ = dbpool.Close()
		return nil, err
	}

	return repo, nil
}

func (r *Repository) Migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS staging_slots (
			scope TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Staging.OperationTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query); err != nil {
		return err
	}

	return nil
}

func (r *Repository) Close() error {
	return r.dbpool.Close()
}
