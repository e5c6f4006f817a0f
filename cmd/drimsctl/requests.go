package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Track and move relief requests",
}

var (
	requestsStatus string
	requestsFilter string
	requestVersion int
	requestReason  string
)

var requestColumns = []column{
	{Header: "ID", Path: "reliefrqst_id"},
	{Header: "Agency", Path: "agency_id"},
	{Header: "Date", Path: "request_date", Width: 10},
	{Header: "Urgency", Path: "urgency_ind"},
	{Header: "Status", Path: "status_code"},
	{Header: "Version", Path: "version_nbr"},
}

var requestItemColumns = []column{
	{Header: "Item", Path: "item_id"},
	{Header: "Requested", Path: "request_qty"},
	{Header: "Issued", Path: "issue_qty"},
	{Header: "Urgency", Path: "urgency_ind"},
	{Header: "Status", Path: "status_code"},
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List relief requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if requestsStatus != "" {
			q.Set("status", requestsStatus)
		}
		if requestsFilter != "" {
			q.Set("filter", requestsFilter)
		}
		path := "/api/v1/requests"
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
		var resp map[string]any
		if err := newClient().getJSON(path, &resp); err != nil {
			return err
		}
		return printRows(listItems(resp, "requests"), requestColumns)
	},
}

var requestsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a relief request and its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req map[string]any
		if err := newClient().getJSON("/api/v1/requests/"+url.PathEscape(args[0]), &req); err != nil {
			return err
		}
		if structured() {
			return printOutput(req)
		}
		if err := printDetail(req, append(requestColumns,
			column{Header: "Reason", Path: "status_reason_desc"},
			column{Header: "Reviewed by", Path: "verify_by_id"},
		)); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
		return printRows(listItems(req, "items"), requestItemColumns)
	},
}

func requestActionCmd(action, short string, withReason bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   action + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"version_nbr": requestVersion}
			if withReason && requestReason != "" {
				body["reason_desc"] = requestReason
			}
			var req map[string]any
			path := fmt.Sprintf("/api/v1/requests/%s/%s", url.PathEscape(args[0]), action)
			if err := newClient().postJSON(path, body, &req); err != nil {
				return err
			}
			if structured() {
				return printOutput(req)
			}
			fmt.Fprintf(stdout, "Request #%s is now %s (version %s).\n",
				extractValue(req, "reliefrqst_id"), extractValue(req, "status_code"), extractValue(req, "version_nbr"))
			return nil
		},
	}
	cmd.Flags().IntVar(&requestVersion, "version", 0, "Version of the request you last read")
	_ = cmd.MarkFlagRequired("version")
	if withReason {
		cmd.Flags().StringVar(&requestReason, "reason", "", "Reason for the change")
	}
	return cmd
}

func init() {
	requestsListCmd.Flags().StringVar(&requestsStatus, "status", "", "Status filter: pending, completed or all")
	requestsListCmd.Flags().StringVar(&requestsFilter, "filter", "", "Filter expression, e.g. \"urgency_ind = 'C'\"")

	requestsCmd.AddCommand(requestsListCmd)
	requestsCmd.AddCommand(requestsGetCmd)
	requestsCmd.AddCommand(requestActionCmd("submit", "Send a draft request for eligibility review", false))
	requestsCmd.AddCommand(requestActionCmd("cancel", "Cancel a request", true))
}
