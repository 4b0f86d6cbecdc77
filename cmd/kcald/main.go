package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"kcald/internal/di"
	"kcald/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "enable debug logging")
	flag.Parse()

	// Optional .env for GOOGLE_APPLICATION_CREDENTIALS and KCALD_* overrides.
	_ = godotenv.Load()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "kcald: %s\n", err)
		os.Exit(1)
	}
}
