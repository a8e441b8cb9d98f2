package main

import (
	"os"

	"github.com/spf13/cobra"

	milcubes "github.com/eWloYW8/ZJUMilCubesHelper"
)

var (
	downloadID     int64
	downloadTitle  string
	downloadAll    bool
	downloadOutput string
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download project content",
	Long: `Download a project's content blob to "{id}-{title}.html".

Select one project by --id or --title, or download every project with --all.

Examples:
  milcubes-cli -c cookies.json download --id 7
  milcubes-cli -c cookies.json download --title "Chapter 1" -o ./content
  milcubes-cli -c cookies.json download --all`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().Int64Var(&downloadID, "id", 0, "project id")
	downloadCmd.Flags().StringVar(&downloadTitle, "title", "", "project title")
	downloadCmd.Flags().BoolVar(&downloadAll, "all", false, "download every project")
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", ".", "output directory")

	downloadCmd.MarkFlagsMutuallyExclusive("id", "title", "all")
	downloadCmd.MarkFlagsOneRequired("id", "title", "all")
}

func runDownload(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	session, err := getSession(ctx)
	if err != nil {
		return reportError(err)
	}

	projects, err := session.GetProjects(ctx, 0, 0)
	if err != nil {
		return reportError(err)
	}

	if downloadAll {
		results, err := projects.DownloadAllContent(downloadOutput)
		if err != nil {
			return reportError(err)
		}
		return getFormatter().FormatDownloads(os.Stdout, results)
	}

	project, err := findProject(ctx, projects, downloadID, downloadTitle)
	if err != nil {
		return reportError(err)
	}

	path, err := project.DownloadContent(downloadOutput)
	if err != nil {
		return reportError(err)
	}

	return getFormatter().FormatDownloads(os.Stdout, []milcubes.DownloadResult{
		{ID: project.ID, Title: project.Title, Path: path},
	})
}
