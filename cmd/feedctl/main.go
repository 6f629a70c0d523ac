// Package main provides feedctl, a terminal client for the ReelFeed server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	serverURL   string
	keyHex      string
	local       bool
	upstreamURL string
	logLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "feedctl",
		Short: "Browse short-drama listings from the terminal",
		Long: "feedctl talks to a ReelFeed server, or with --local straight to the upstream\n" +
			"aggregator, and walks provider listings page by page.",
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&serverURL, "server", "s", envOr("REELFEED_SERVER", "http://localhost:8080"), "ReelFeed server base URL")
	flags.StringVar(&keyHex, "key", os.Getenv("ENVELOPE_KEY"), "hex envelope key for a sealing server")
	flags.BoolVar(&local, "local", false, "run the provider adapters in process instead of calling a server")
	flags.StringVar(&upstreamURL, "upstream-url", os.Getenv("UPSTREAM_BASE_URL"), "upstream base URL used with --local")
	flags.StringVar(&logLevel, "log-level", "error", "log level (debug, info, warn, error)")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newProvidersCmd(),
		newPageCmd(),
		newBrowseCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("feedctl v%s\n", version)
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
