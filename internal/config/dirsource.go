package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warden/mod-bot/internal/model"
)

// DirSource loads guild configs from a directory of YAML files, one guild
// per file.
type DirSource struct {
	Dir string
}

// Load parses and compiles every .yaml/.yml file under the directory.
// Any validation problem in any file fails the whole load; a snapshot is
// all-or-nothing.
func (s DirSource) Load(ctx context.Context) (*Snapshot, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("config: read dir %s: %w", s.Dir, err)
	}

	snapshot := &Snapshot{Guilds: make(map[model.Snowflake]*GuildConfig)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(s.Dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}

		file, err := ParseGuildFile(data)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}

		cfg, problems := Compile(file)
		if len(problems) > 0 {
			return nil, fmt.Errorf("config: %s is invalid:\n  %s", path, strings.Join(problems, "\n  "))
		}

		if _, dup := snapshot.Guilds[cfg.ID]; dup {
			return nil, fmt.Errorf("config: %s: guild %s configured more than once", path, cfg.ID)
		}
		snapshot.Guilds[cfg.ID] = cfg
	}

	return snapshot, nil
}
