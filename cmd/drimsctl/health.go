package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var healthStrict bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report server liveness and database readiness",
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthStrict, "strict", false, "exit non-zero when the server is not ready")
}

// probeResult is the outcome of one health endpoint.
type probeResult struct {
	Endpoint string         `json:"endpoint" yaml:"endpoint"`
	Body     map[string]any `json:"body,omitempty" yaml:"body,omitempty"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
}

func (p probeResult) status(fallback string) string {
	if s := extractValue(p.Body, "status"); s != "" {
		return s
	}
	return fallback
}

func runHealth(cmd *cobra.Command, args []string) error {
	c := newClient()

	live := probeResult{Endpoint: "/healthz"}
	if err := c.getJSON(live.Endpoint, &live.Body); err != nil {
		return fmt.Errorf("server unreachable: %w", err)
	}
	ready := probeResult{Endpoint: "/readyz"}
	if err := c.getJSON(ready.Endpoint, &ready.Body); err != nil {
		ready.Error = err.Error()
	}

	if structured() {
		if err := printOutput([]probeResult{live, ready}); err != nil {
			return err
		}
	} else {
		db := extractValue(ready.Body, "database.status")
		if db == "" && ready.Error != "" {
			db = "unknown"
		}
		printTable([]string{"Check", "Status", "Detail"}, [][]string{
			{"Liveness", live.status("unknown"), "up " + extractValue(live.Body, "uptime")},
			{"Readiness", ready.status("not_ready"), truncate(ready.Error, 60)},
			{"Database", db, ""},
		})
	}

	if healthStrict && ready.status("not_ready") != "ready" {
		return errors.New("server is not ready")
	}
	return nil
}
