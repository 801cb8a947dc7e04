package override

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/studydesk/prio/internal/config"
)

// Open returns the repository selected by cfg. The returned closer releases
// backend resources beyond db (nil-safe to call).
func Open(ctx context.Context, cfg config.OverridesConfig, db *sql.DB) (Repository, io.Closer, error) {
	switch cfg.Backend {
	case "", "sqlite":
		return NewSQLiteRepository(db), nopCloser{}, nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, nil, fmt.Errorf("overrides.backend is redis but overrides.redis_url is empty")
		}
		repo, err := DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	default:
		return nil, nil, fmt.Errorf("unknown override backend %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
