package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shyptr/graphiql/editor"
	"github.com/shyptr/graphiql/locator"
	"github.com/spf13/cobra"
)

func readDocument(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

func newLocateCmd() *cobra.Command {
	var (
		pos        editor.Position
		start, end int
	)
	cmd := &cobra.Command{
		Use:   "locate [file]",
		Short: "Print the anchor of the definition under the cursor",
		Long: "Print the anchor and explorer selector of the definition under the cursor.\n" +
			"The cursor is given as --line/--ch, or as an offset range with --start/--end.\n" +
			"The document is read from file, or from stdin when file is omitted or \"-\".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			var r locator.Range
			switch flags := cmd.Flags(); {
			case flags.Changed("start") || flags.Changed("end"):
				if !flags.Changed("end") {
					end = start
				}
				r = locator.Range{Start: start, End: end}
			case flags.Changed("line") || flags.Changed("ch"):
				r = editor.NewBuffer(text).CursorRange(pos)
			default:
				return errors.New("locate: one of --line/--ch or --start/--end is required")
			}
			anchor, err := locator.Locate(text, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", anchor, anchor.Selector())
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&pos.Line, "line", 0, "zero-based cursor line")
	flags.IntVar(&pos.Ch, "ch", 0, "zero-based cursor column in UTF-16 code units")
	flags.IntVar(&start, "start", 0, "cursor range start offset")
	flags.IntVar(&end, "end", 0, "cursor range end offset")
	return cmd
}

func newDefinitionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "definitions [file]",
		Short: "List the anchors and spans of every top-level definition",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(cmd, args)
			if err != nil {
				return err
			}
			doc, err := locator.Parse(text)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, def := range doc.Definitions {
				span := def.Location()
				if span == nil {
					fmt.Fprintf(out, "%s\t-\n", locator.AnchorFor(def))
					continue
				}
				fmt.Fprintf(out, "%s\t%d-%d\n", locator.AnchorFor(def), span.Start, span.End)
			}
			return nil
		},
	}
}
