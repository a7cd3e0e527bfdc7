package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/bindjson"
	"github.com/reoring/bindjson/binding"
	"github.com/reoring/bindjson/internal/transcode"
)

const configFlag = "config"

// app carries what PersistentPreRunE prepares for the sub-commands.
type app struct {
	table *binding.Table
	tc    *transcode.Transcoder
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "bindjson [sub-command]",
		Short: "Check, format and transcode JSON documents",
		Long: `bindjson reads JSON documents with the bindjson engine and reports
issues with their byte offset and JSON Pointer. Engine defaults (number mode,
depth limit, array forms) come from an optional YAML settings file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	cmd.PersistentFlags().String(configFlag, "", "path to a YAML settings file")
	registerLoggingFlags(cmd.PersistentFlags())

	cmd.AddCommand(newCheckCommand(a))
	cmd.AddCommand(newFmtCommand(a))
	cmd.AddCommand(newTranscodeCommand(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(cmd.Flags(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	settings := bindjson.DefaultSettings()
	if path, _ := cmd.Flags().GetString(configFlag); path != "" {
		if settings, err = bindjson.LoadSettings(path); err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		logger.Debug("settings loaded", "path", path, "numberMode", settings.NumberMode.String(), "maxDepth", settings.MaxDepth)
	}
	table, err := binding.NewTableBuilder(
		binding.WithSettings(settings),
		binding.WithLogger(logger),
	).Build()
	if err != nil {
		return err
	}
	a.table = table
	a.tc = transcode.New(table)
	return nil
}

// input returns the document named by args: a file path, or stdin when args
// is empty or "-".
func input(cmd *cobra.Command, args []string) (string, []byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return "<stdin>", data, err
	}
	data, err := os.ReadFile(args[0])
	return args[0], data, err
}
