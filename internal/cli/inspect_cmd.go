package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dixithak/FileInsights/internal/tracker/biz"
	"github.com/dixithak/FileInsights/internal/tracker/sniff"
	"github.com/spf13/cobra"
)

type sniffOutput struct {
	Key         string        `json:"key"`
	Parts       biz.PathParts `json:"parts"`
	Header      []string      `json:"header"`
	ColumnCount int           `json:"column_count"`
}

func newSniffCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "sniff <file>",
		Short: "Extract the header of a local file the way the tracker would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if key == "" {
				key = filepath.Base(args[0])
			}

			header, err := sniff.Sniff(data, key)
			if err != nil {
				return err
			}

			out := sniffOutput{
				Key:         key,
				Parts:       biz.Decompose(key),
				Header:      header,
				ColumnCount: len(header),
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "key:          %s\n", out.Key)
			_, _ = fmt.Fprintf(w, "file_type:    %s\n", out.Parts.FileType)
			_, _ = fmt.Fprintf(w, "column_count: %d\n", out.ColumnCount)
			_, _ = fmt.Fprintf(w, "header:       %s\n", strings.Join(out.Header, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "object key used for format detection, defaults to the file name")
	return cmd
}

func newDecomposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decompose <key>",
		Short: "Split an object key into folder, filename, file type and compression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parts := biz.Decompose(args[0])
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), parts)
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "folder:      %s\n", parts.Folder)
			_, _ = fmt.Fprintf(w, "filename:    %s\n", parts.Filename)
			_, _ = fmt.Fprintf(w, "file_type:   %s\n", parts.FileType)
			_, _ = fmt.Fprintf(w, "compression: %s\n", parts.Compression)
			return nil
		},
	}
}
