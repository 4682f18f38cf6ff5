package config

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/warden/mod-bot/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PGSource loads guild configs from Postgres. Each row of guild_configs
// holds one guild's YAML document, so hosted deployments can edit configs
// without shipping files.
type PGSource struct {
	DB *sql.DB
}

// OpenPG connects to Postgres, verifies the connection, and applies any
// pending schema migrations.
func OpenPG(ctx context.Context, dsn string) (*PGSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("config: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("config: postgres ping: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &PGSource{DB: db}, nil
}

func migrateUp(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("config: migrations source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("config: migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("config: migrations init: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("config: migrations up: %w", err)
	}
	return nil
}

// Load reads and compiles every guild row. Like DirSource, the snapshot
// is all-or-nothing: one invalid row fails the load.
func (s *PGSource) Load(ctx context.Context) (*Snapshot, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT guild_id, document FROM guild_configs`)
	if err != nil {
		return nil, fmt.Errorf("config: select guild_configs: %w", err)
	}
	defer rows.Close()

	snapshot := &Snapshot{Guilds: make(map[model.Snowflake]*GuildConfig)}
	for rows.Next() {
		var guildID int64
		var document string
		if err := rows.Scan(&guildID, &document); err != nil {
			return nil, fmt.Errorf("config: scan guild_configs: %w", err)
		}

		file, err := ParseGuildFile([]byte(document))
		if err != nil {
			return nil, fmt.Errorf("config: guild %d: %w", guildID, err)
		}
		if file.GuildID == "" {
			file.GuildID = fmt.Sprintf("%d", guildID)
		}

		cfg, problems := Compile(file)
		if len(problems) > 0 {
			return nil, fmt.Errorf("config: guild %d is invalid:\n  %s", guildID, strings.Join(problems, "\n  "))
		}
		snapshot.Guilds[cfg.ID] = cfg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("config: iterate guild_configs: %w", err)
	}

	return snapshot, nil
}
