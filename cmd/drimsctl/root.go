package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	outputFmt string
	userFlag  string
	rolesFlag []string
	tokenFlag string
)

var rootCmd = &cobra.Command{
	Use:   "drimsctl",
	Short: "CLI for the DRIMS server",
	Long: `drimsctl talks to a running DRIMS server.

Requests are sent as --user with --roles through the trusted identity headers,
or with --token as a bearer token when the server reads identities from JWTs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("DRIMS_SERVER", "http://localhost:8080"), "DRIMS server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", os.Getenv("DRIMS_USER"), "User name sent as X-Remote-User")
	rootCmd.PersistentFlags().StringSliceVar(&rolesFlag, "roles", splitList(os.Getenv("DRIMS_ROLES")), "Role codes sent as X-Remote-Roles")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", os.Getenv("DRIMS_TOKEN"), "Bearer token")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(meCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(statusesCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(requestsCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
