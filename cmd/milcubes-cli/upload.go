package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	uploadID    int64
	uploadTitle string
	uploadFile  string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload project content",
	Long: `Replace a project's content blob from a local HTML file.

Select the project by --id or --title. The project is replaced wholesale on
the platform; fields other than content keep their last fetched values.

Examples:
  milcubes-cli -c cookies.json upload --id 7 --file ./7-Chapter.html
  milcubes-cli -c cookies.json upload --title "Chapter 1" --file ./edited.html`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().Int64Var(&uploadID, "id", 0, "project id")
	uploadCmd.Flags().StringVar(&uploadTitle, "title", "", "project title")
	uploadCmd.Flags().StringVarP(&uploadFile, "file", "f", "", "HTML file to upload")

	uploadCmd.MarkFlagsMutuallyExclusive("id", "title")
	uploadCmd.MarkFlagsOneRequired("id", "title")
	_ = uploadCmd.MarkFlagRequired("file")
}

func runUpload(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	session, err := getSession(ctx)
	if err != nil {
		return reportError(err)
	}

	projects, err := session.GetProjects(ctx, 0, 0)
	if err != nil {
		return reportError(err)
	}

	project, err := findProject(ctx, projects, uploadID, uploadTitle)
	if err != nil {
		return reportError(err)
	}

	if err := project.UploadContentFile(ctx, session, uploadFile); err != nil {
		return reportError(err)
	}

	return getFormatter().FormatPush(os.Stdout, project)
}
