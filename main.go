package main

import (
	"os"

	"github.com/joho/godotenv"

	"policyrag/cmd"
)

func main() {
	// API keys may live in a local .env file; absence is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
