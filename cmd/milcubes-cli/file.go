package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	filePath string
	fileMime string
)

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Upload a file to the platform",
	Long: `Upload a binary file through the platform's signed object-storage
handoff and print the resulting public URL and file id.

The MIME type is guessed from the file extension unless --mime is given.

Examples:
  milcubes-cli -c cookies.json file --file ./cover.png
  milcubes-cli -c cookies.json file --file ./data.bin --mime application/octet-stream`,
	Args: cobra.NoArgs,
	RunE: runFile,
}

func init() {
	fileCmd.Flags().StringVarP(&filePath, "file", "f", "", "file to upload")
	fileCmd.Flags().StringVar(&fileMime, "mime", "", "MIME type (default: guessed from extension)")

	_ = fileCmd.MarkFlagRequired("file")
}

func runFile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	session, err := getSession(ctx)
	if err != nil {
		return reportError(err)
	}

	uploaded, err := session.UploadFilePath(ctx, filePath, fileMime)
	if err != nil {
		return reportError(err)
	}

	return getFormatter().FormatFileUpload(os.Stdout, uploaded)
}
