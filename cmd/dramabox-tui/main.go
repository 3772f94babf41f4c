package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/saputra/dramabox-dl/internal/config"
	"github.com/saputra/dramabox-dl/internal/tui"
)

func main() {
	configFlag := flag.String("config", "config.yml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
