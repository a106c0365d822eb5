package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"media-browser/internal/enrichment"
	"media-browser/internal/media"
	"media-browser/internal/pipeline"
	"media-browser/internal/startup"
)

func newScanCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Read every enabled root once and print the files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			req, err := loadRequest(a.settings)
			if err != nil {
				return err
			}
			startup.LogRoots(req.Roots)
			startup.LogEnrichmentInit(a.settings)

			client, closer, err := newClient(ctx, a.settings)
			if err != nil {
				return err
			}
			defer closer.Close()

			status := newStatusLine(os.Stderr)
			ctrl := newController(a.settings, client, nil, retryConfig(req.Roots), status.Update)

			status.Update("Reading files")
			files, err := ctrl.ReadFiles(ctx, req)
			if err != nil {
				status.Update("readFiles failed: " + err.Error())
				status.Done()
				return err
			}
			status.Update(pipeline.FilesText(len(files)))
			status.Done()

			if asJSON {
				return writeFilesJSON(cmd.OutOrStdout(), files)
			}
			return writeFilesTable(cmd.OutOrStdout(), files)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print files as JSON")
	return cmd
}

func writeFilesJSON(w io.Writer, files []media.FileInfo) error {
	if files == nil {
		files = []media.FileInfo{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(files)
}

func writeFilesTable(w io.Writer, files []media.FileInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tTYPE\tSIZE\tDIMENSIONS\tKEYWORDS")
	for _, f := range files {
		dims := "-"
		if f.Width > 0 && f.Height > 0 {
			dims = fmt.Sprintf("%dx%d", f.Width, f.Height)
		}
		keywords := "-"
		if list, err := enrichment.StringToArray(f.Keywords); err == nil && len(list) > 0 {
			keywords = fmt.Sprint(list)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", f.Path, dash(f.ContentType), f.Size, dims, keywords)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
