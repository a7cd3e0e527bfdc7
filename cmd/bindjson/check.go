package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/internal/transcode"
)

var errInvalid = errors.New("invalid documents")

func newCheckCommand(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Report whether documents are well-formed",
		Long: `check decodes each document and prints one line per issue:

  <file>:<offset>: <code> at <pointer>: <hint>

Documents default to JSON; --from selects yaml or cbor. With no file
arguments the document is read from stdin.`,
		Example: `  bindjson check payload.json
  cat doc.yaml | bindjson check --from yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := transcode.ParseFormat(from)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"-"}
			}
			failed := 0
			for _, arg := range args {
				name, data, err := input(cmd, []string{arg})
				if err != nil {
					return err
				}
				if _, err := a.tc.Decode(f, data); err != nil {
					failed++
					report(cmd, name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalid, failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "json", "input format (json, yaml, cbor)")
	return cmd
}

func report(cmd *cobra.Command, name string, err error) {
	out := cmd.OutOrStdout()
	iss, ok := bindjson.AsIssues(err)
	if !ok {
		fmt.Fprintf(out, "%s: %v\n", name, err)
		return
	}
	for _, it := range iss {
		path := it.Path
		if path == "" {
			path = "/"
		}
		msg := it.Hint
		if msg == "" {
			msg = it.Message
		}
		fmt.Fprintf(out, "%s:%d: %s at %s: %s\n", name, it.Offset, it.Code, path, msg)
	}
}
