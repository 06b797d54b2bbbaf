package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

// RunMigrations applies the *.sql files under migrations/ in lexical
// order. The schema files are written idempotent (CREATE ... IF NOT
// EXISTS), so rerunning on startup is safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("postgres pool unavailable, skipping schema migrations")
		return nil
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}

	arquivos := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		arquivos = append(arquivos, entry.Name())
	}
	sort.Strings(arquivos)

	for _, nome := range arquivos {
		sql, err := os.ReadFile(filepath.Join(migrationsDir, nome))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", nome, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", nome, err)
		}
		logger.Info("schema migration applied", zap.String("migration", nome))
	}

	logger.Info("chamados schema up to date", zap.Int("applied", len(arquivos)))
	return nil
}
