package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Ramsey-B/fern/internal/app"
	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out    string
	Pretty bool
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Assemble the action catalog once and write it as JSON",
		Long: `Fetch the catalog tables, assemble every action and write the same
document GET /action returns.

Example:
  fern export --out actions.json --pretty`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "file to write to (default stdout)")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "indent the JSON output")

	return cmd
}

func runExport(ctx context.Context, opts *ExportOptions, stdout io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, logger, zl, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	a := app.New(cfg, logger)
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if stopErr := a.Stop(context.Background()); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	doc, err := a.Actions.Document(ctx)
	if err != nil {
		return err
	}

	if opts.Pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, doc, "", "  "); err != nil {
			return fmt.Errorf("indent export: %w", err)
		}
		doc = buf.Bytes()
	}
	doc = append(doc, '\n')

	if opts.Out == "" {
		_, err = stdout.Write(doc)
		return err
	}
	if err := os.WriteFile(opts.Out, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.Out, err)
	}
	logger.WithContext(ctx).Infof("Exported action catalog to %s", opts.Out)
	return nil
}
