package migrations

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var FS embed.FS

func prepare() error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// Up применяет все миграции. Соединения берутся из пула, пул остается открытым.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	if err := prepare(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, stdlib.OpenDBFromPool(pool), "."); err != nil {
		return fmt.Errorf("применение миграций: %w", err)
	}
	return nil
}

func Down(ctx context.Context, pool *pgxpool.Pool) error {
	if err := prepare(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, stdlib.OpenDBFromPool(pool), "."); err != nil {
		return fmt.Errorf("откат миграции: %w", err)
	}
	return nil
}

func Status(ctx context.Context, pool *pgxpool.Pool) error {
	if err := prepare(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, stdlib.OpenDBFromPool(pool), ".")
}
