package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	appName = "Breathpace"
	appID   = "com.breathpace.app"
)

func main() {
	// .env is optional.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
