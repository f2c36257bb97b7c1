package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nightcap",
	Short: "nightcap tracks drinks, estimates BAC and calibrates personal limits",
	Long: "nightcap is the backend for a drink-tracking app: it logs drinks per\n" +
		"session, estimates blood alcohol concentration over time, calibrates\n" +
		"personal drink limits from self-reports and alerts friends when a\n" +
		"limit is crossed.",
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
