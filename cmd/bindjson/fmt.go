package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/bindjson/internal/transcode"
)

func newFmtCommand(a *app) *cobra.Command {
	var (
		indent    string
		compact   bool
		canonical bool
	)
	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Re-encode a JSON document",
		Long: `fmt decodes a JSON document and writes it back with object members in
key order. --canonical emits RFC 8785 canonical JSON (suitable for hashing and
signatures); --compact drops all whitespace.`,
		Example: `  bindjson fmt --indent "    " doc.json
  bindjson fmt --canonical < doc.json | sha256sum`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if compact && canonical {
				return fmt.Errorf("--compact and --canonical are exclusive")
			}
			_, data, err := input(cmd, args)
			if err != nil {
				return err
			}
			v, err := a.tc.Decode(transcode.JSON, data)
			if err != nil {
				return err
			}
			var out []byte
			switch {
			case canonical:
				out, err = a.table.EncodeCanonical(v)
			case compact:
				out, err = a.table.Encode(v)
			default:
				out, err = a.table.EncodeIndent(v, "", indent)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
			return err
		},
	}
	cmd.Flags().StringVar(&indent, "indent", "  ", "indentation for each nesting level")
	cmd.Flags().BoolVar(&compact, "compact", false, "write without whitespace")
	cmd.Flags().BoolVar(&canonical, "canonical", false, "write RFC 8785 canonical JSON")
	return cmd
}
