package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	var user, format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's transactions as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unsupported format %q, use csv or xlsx", format)
			}

			_, mgr, err := openDatabase()
			if err != nil {
				return err
			}
			defer mgr.Close()

			userID, err := resolveUser(mgr.DB(), user)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			transfer := newServiceSet(mgr.DB()).transfer
			if format == "xlsx" {
				return transfer.ExportXLSX(userID, w)
			}
			return transfer.ExportCSV(userID, w)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "email of the user to export (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func newImportCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import transactions for a user from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			_, mgr, err := openDatabase()
			if err != nil {
				return err
			}
			defer mgr.Close()

			userID, err := resolveUser(mgr.DB(), user)
			if err != nil {
				return err
			}

			result, err := newServiceSet(mgr.DB()).transfer.ImportCSV(userID, f)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "email of the user to import for (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
