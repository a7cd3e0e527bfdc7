package main

import (
	"github.com/spf13/cobra"

	"github.com/reoring/bindjson/internal/transcode"
)

func newTranscodeCommand(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "transcode [file]",
		Short: "Convert a document between JSON, YAML and CBOR",
		Long: `transcode decodes a document in the --from format and writes it in the --to
format. CBOR output uses Core Deterministic Encoding (RFC 8949 section 4.2):
equal documents produce identical bytes.`,
		Example: `  bindjson transcode --from yaml --to json config.yaml
  bindjson transcode --to cbor doc.json > doc.cbor`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := transcode.ParseFormat(from)
			if err != nil {
				return err
			}
			dst, err := transcode.ParseFormat(to)
			if err != nil {
				return err
			}
			_, data, err := input(cmd, args)
			if err != nil {
				return err
			}
			out, err := a.tc.Convert(src, dst, data)
			if err != nil {
				return err
			}
			if dst == transcode.JSON {
				out = append(out, '\n')
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "json", "input format (json, yaml, cbor)")
	cmd.Flags().StringVar(&to, "to", "json", "output format (json, yaml, cbor)")
	return cmd
}
