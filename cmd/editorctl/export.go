package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"achievements/internal/content/converter"
)

func newExportCommand(root *rootOptions) *cobra.Command {
	var in, out, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a description as sanitized HTML or markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.newSurface(cmd, in, nil)
			if err != nil {
				return err
			}
			defer s.Destroy()

			switch format {
			case "html":
				return writeContent(cmd, out, s.GetContent())
			case "markdown", "md":
				md, err := converter.NewMarkdownExporter().Convert(s.GetContent())
				if err != nil {
					return err
				}
				return writeContent(cmd, out, md)
			default:
				return fmt.Errorf("unknown export format %q (want html or markdown)", format)
			}
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "file holding the description")
	cmd.Flags().StringVar(&out, "out", "", "file to write to (stdout when omitted)")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: html or markdown")
	return cmd
}
