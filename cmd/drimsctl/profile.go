package main

import (
	"net/url"

	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the signed-in user, primary role and landing page",
	RunE: func(cmd *cobra.Command, args []string) error {
		var me map[string]any
		if err := newClient().getJSON("/api/v1/me", &me); err != nil {
			return err
		}
		return printDetail(me, []column{
			{Header: "User", Path: "user"},
			{Header: "Name", Path: "name"},
			{Header: "Email", Path: "email"},
			{Header: "Roles", Path: "roles"},
			{Header: "Primary role", Path: "role_display_name"},
			{Header: "Landing page", Path: "landing_url"},
		})
	},
}

var (
	featuresDashboard bool
	featuresGroup     string
	featuresCategory  string
)

var featureColumns = []column{
	{Header: "Key", Path: "key"},
	{Header: "Name", Path: "name", Width: 32},
	{Header: "Category", Path: "category"},
	{Header: "URL", Path: "url"},
}

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List the features the signed-in user can use",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/v1/me/features"
		switch {
		case featuresDashboard:
			path = "/api/v1/me/dashboard"
		case featuresGroup != "":
			path = "/api/v1/me/navigation?group=" + url.QueryEscape(featuresGroup)
		case featuresCategory != "":
			path += "?category=" + url.QueryEscape(featuresCategory)
		}
		var resp map[string]any
		if err := newClient().getJSON(path, &resp); err != nil {
			return err
		}
		return printRows(listItems(resp, "features"), featureColumns)
	},
}

var statusesCmd = &cobra.Command{
	Use:   "statuses TYPE",
	Short: "Show the labels of a status code table (e.g. reliefrqst, reliefpkg, item)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if err := newClient().getJSON("/api/v1/statuses/"+url.PathEscape(args[0]), &resp); err != nil {
			return err
		}
		return printRows(listItems(resp, "statuses"), []column{
			{Header: "Code", Path: "code"},
			{Header: "Label", Path: "label"},
			{Header: "Badge", Path: "badge"},
		})
	},
}

func init() {
	featuresCmd.Flags().BoolVar(&featuresDashboard, "dashboard", false, "Only features with a dashboard widget")
	featuresCmd.Flags().StringVar(&featuresGroup, "group", "", "Only features in this navigation group")
	featuresCmd.Flags().StringVar(&featuresCategory, "category", "", "Only features in this category")
}
