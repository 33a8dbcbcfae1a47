package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"achievements/internal/editor"
)

type formatOptions struct {
	in       string
	out      string
	selected string
	commands []string
}

func newFormatCommand(root *rootOptions) *cobra.Command {
	opts := &formatOptions{}

	names := make([]string, 0, len(editor.Commands()))
	for _, c := range editor.Commands() {
		names = append(names, string(c))
	}

	cmd := &cobra.Command{
		Use:   "format",
		Short: "Apply toolbar formatting commands",
		Long: "Apply toolbar formatting commands, in order, to the selected text.\n\n" +
			"Commands: " + strings.Join(names, ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.in, "in", "", "file holding the description")
	cmd.Flags().StringVar(&opts.out, "out", "", "file to write the result to (stdout when omitted)")
	cmd.Flags().StringVar(&opts.selected, "select", "", "select the first occurrence of this text (cursor at the end when omitted)")
	cmd.Flags().StringSliceVarP(&opts.commands, "command", "c", nil, "command to apply; repeat to apply several")
	_ = cmd.MarkFlagRequired("command")

	return cmd
}

func runFormat(cmd *cobra.Command, root *rootOptions, opts *formatOptions) error {
	s, err := root.newSurface(cmd, opts.in, nil)
	if err != nil {
		return err
	}
	defer s.Destroy()

	if opts.selected != "" && !s.SelectText(opts.selected, false) {
		return fmt.Errorf("text %q not found", opts.selected)
	}

	for _, name := range opts.commands {
		if err := s.ExecuteFormatCommand(editor.Command(name)); err != nil {
			return err
		}
	}
	return writeContent(cmd, opts.out, s.GetContent())
}
