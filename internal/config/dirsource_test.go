package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/warden/mod-bot/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirSourceLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.yaml", `{guild_id: "1", filters: [{name: f, rules: [{type: zalgo}], actions: [{action: delete}]}]}`)
	writeFile(t, dir, "two.yml", `{guild_id: "2", filters: [{name: g, rules: [{type: zalgo}], actions: [{action: delete}]}]}`)
	writeFile(t, dir, "notes.txt", "ignored")

	snapshot, err := DirSource{Dir: dir}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snapshot.Guilds) != 2 {
		t.Fatalf("guilds = %d, want 2", len(snapshot.Guilds))
	}
	if g := snapshot.Guild(model.Snowflake(1)); g == nil || g.Filters[0].Name != "f" {
		t.Errorf("guild 1 = %+v", g)
	}
}

func TestDirSourceLoad_InvalidFileFailsWholeLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", `{guild_id: "1", filters: [{name: f, rules: [{type: zalgo}], actions: [{action: delete}]}]}`)
	writeFile(t, dir, "bad.yaml", `{guild_id: "1", filters: []}`)

	if _, err := (DirSource{Dir: dir}).Load(context.Background()); err == nil {
		t.Fatal("expected load to fail on invalid file")
	}
}

func TestDirSourceLoad_DuplicateGuild(t *testing.T) {
	dir := t.TempDir()
	doc := `{guild_id: "1", filters: [{name: f, rules: [{type: zalgo}], actions: [{action: delete}]}]}`
	writeFile(t, dir, "a.yaml", doc)
	writeFile(t, dir, "b.yaml", doc)

	if _, err := (DirSource{Dir: dir}).Load(context.Background()); err == nil {
		t.Fatal("expected load to fail on duplicate guild id")
	}
}
