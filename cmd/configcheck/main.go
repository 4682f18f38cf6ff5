// Command configcheck validates guild rule files without starting the
// service. It prints every problem found and exits non-zero if any file is
// invalid, so it can gate config changes in CI.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/warden/mod-bot/internal/config"
)

func main() {
	dir := flag.String("dir", "./guilds", "directory of guild rule files")
	flag.Parse()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("configcheck: %v", err)
	}

	checked := 0
	failed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		checked++

		path := filepath.Join(*dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("%s: %v\n", name, err)
			failed++
			continue
		}

		file, err := config.ParseGuildFile(data)
		if err != nil {
			fmt.Printf("%s: %v\n", name, err)
			failed++
			continue
		}

		guild, problems := config.Compile(file)
		if len(problems) > 0 {
			for _, p := range problems {
				fmt.Printf("%s: %s\n", name, p)
			}
			failed++
			continue
		}

		fmt.Printf("%s: ok (guild %s, %d filter(s))\n", name, guild.ID, len(guild.Filters))
	}

	if checked == 0 {
		fmt.Printf("no guild rule files found in %s\n", *dir)
	}
	if failed > 0 {
		fmt.Printf("%d of %d file(s) invalid\n", failed, checked)
		os.Exit(1)
	}
}
