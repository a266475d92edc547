package main

import (
	"fmt"
	"os"

	"github.com/blockedby/leetstats/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("No files to check.")
		os.Exit(0)
	}

	failed := false
	for _, path := range os.Args[1:] {
		cfg, err := config.LoadFile(path)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("✅ %s is valid (env=%s, port=%d)\n", path, cfg.Env, cfg.HTTPPort)
	}

	if failed {
		os.Exit(1)
	}
}
