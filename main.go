package main

import (
	"fmt"
	"os"

	"defi-dash/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; environment variables and the config file still apply
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
