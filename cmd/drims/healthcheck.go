package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// newHealthcheckCmd probes a running server's readiness endpoint. It is the
// container HEALTHCHECK, so it needs no database and no shell.
func newHealthcheckCmd(a *app) *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Exit non-zero unless the server at --listen reports ready",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" {
				url = readyURL(a.cfg.Listen)
			}
			return probe(&http.Client{Timeout: timeout}, url)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Readiness URL (default: /readyz on the listen address)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")
	return cmd
}

// readyURL turns a listen address such as ":8080" into a loopback URL.
func readyURL(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen + "/readyz"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/readyz"
}

func probe(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status   string            `json:"status"`
		Database map[string]string `json:"database"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if reason := body.Database["error"]; reason != "" {
			return fmt.Errorf("healthcheck failed: status %d: database %s", resp.StatusCode, reason)
		}
		return fmt.Errorf("healthcheck failed: status %d", resp.StatusCode)
	}
	return nil
}
