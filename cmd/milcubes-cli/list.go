package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	listOffset int
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long: `List the id and title of every project visible to the session.

Examples:
  milcubes-cli -c cookies.json list
  milcubes-cli -u admin@example.com list --limit 50`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "pagination offset")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "max results (default: 1000)")
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	session, err := getSession(ctx)
	if err != nil {
		return reportError(err)
	}

	projects, err := session.GetProjects(ctx, listOffset, listLimit)
	if err != nil {
		return reportError(err)
	}

	return getFormatter().FormatSummaries(os.Stdout, projects.Summaries())
}
