package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"achievements/internal/editor"
)

// inspection is the JSON printed by inspect.
type inspection struct {
	Empty        bool                    `json:"empty"`
	PlainText    string                  `json:"plainText"`
	WordCount    int                     `json:"wordCount"`
	Images       []editor.ImageInfo      `json:"images"`
	ImageSummary string                  `json:"imageSummary"`
	Validation   editor.ValidationResult `json:"validation"`
}

func newInspectCommand(root *rootOptions) *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Report text, images and validation state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.newSurface(cmd, in, nil)
			if err != nil {
				return err
			}
			defer s.Destroy()

			_, empty := s.Placeholder()
			report := inspection{
				Empty:        empty,
				PlainText:    s.GetPlainText(),
				WordCount:    s.WordCount(),
				Images:       s.Images(),
				ImageSummary: s.ImageSummary(),
				Validation:   s.Validate(),
			}
			if report.Images == nil {
				report.Images = []editor.ImageInfo{}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "file holding the description")
	return cmd
}
