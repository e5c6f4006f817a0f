package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the audit trail",
}

var (
	eventsActor    string
	eventsResource string
	eventsOutcome  string
	eventsSince    string
	eventsLimit    int
)

var eventColumns = []column{
	{Header: "Time", Path: "created_at"},
	{Header: "Actor", Path: "actor"},
	{Header: "Method", Path: "method"},
	{Header: "Path", Path: "path", Width: 48},
	{Header: "Outcome", Path: "outcome"},
	{Header: "Status", Path: "status_code"},
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		for key, val := range map[string]string{
			"actor":    eventsActor,
			"resource": eventsResource,
			"outcome":  eventsOutcome,
			"since":    eventsSince,
		} {
			if val != "" {
				q.Set(key, val)
			}
		}
		if eventsLimit > 0 {
			q.Set("pageSize", strconv.Itoa(eventsLimit))
		}
		path := "/api/v1/audit/events"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}

		var resp map[string]any
		if err := newClient().getJSON(path, &resp); err != nil {
			return err
		}
		if structured() {
			return printOutput(resp)
		}
		return printRows(listItems(resp, "events"), eventColumns)
	},
}

var eventsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one audit event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var ev map[string]any
		if err := newClient().getJSON("/api/v1/audit/events/"+url.PathEscape(args[0]), &ev); err != nil {
			return err
		}
		return printDetail(ev, append([]column{
			{Header: "ID", Path: "id"},
			{Header: "Request", Path: "request_id"},
			{Header: "Roles", Path: "roles"},
			{Header: "Resource", Path: "resource_type"},
			{Header: "Resource IDs", Path: "resource_ids"},
			{Header: "Action", Path: "action"},
			{Header: "Duration (ms)", Path: "duration_ms"},
		}, eventColumns...))
	},
}

func init() {
	eventsListCmd.Flags().StringVar(&eventsActor, "actor", "", "Only events by this user")
	eventsListCmd.Flags().StringVar(&eventsResource, "resource", "", "Only events on this resource type, e.g. requests")
	eventsListCmd.Flags().StringVar(&eventsOutcome, "outcome", "", "Only events with this outcome")
	eventsListCmd.Flags().StringVar(&eventsSince, "since", "", "Only events at or after this RFC3339 time")
	eventsListCmd.Flags().IntVar(&eventsLimit, "limit", 0, "Maximum number of events")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsGetCmd)
}
