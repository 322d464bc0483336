package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect the test records",
	Long:  `List, view and export the stored test records.`,
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records",
	Args:  cobra.NoArgs,
	RunE:  runRecordsList,
}

var recordsGetCmd = &cobra.Command{
	Use:   "get [record-id]",
	Short: "Show one record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsGet,
}

var recordsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the records to the configured CSV export",
	Args:  cobra.NoArgs,
	RunE:  runRecordsExport,
}

// recordsRequirement filters the list command by requirement id.
var recordsRequirement string

func init() {
	recordsListCmd.Flags().StringVarP(&recordsRequirement, "requirement", "r", "", "Only records tracing to this requirement")

	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsGetCmd)
	recordsCmd.AddCommand(recordsExportCmd)
	rootCmd.AddCommand(recordsCmd)
}

func runRecordsList(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	records, err := recordService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	tmpl := recordService.Template()

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		trace := r.Get(tmpl.TraceField)
		if recordsRequirement != "" && !tmpl.TracesTo(r, recordsRequirement) {
			continue
		}
		rows = append(rows, []string{r.Get(tmpl.IdentityField), trace, truncate(r.Get(tmpl.TitleField), 60)})
	}

	if len(rows) == 0 {
		cmd.Println("No records found.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tmpl.IdentityField, traceHeader(tmpl), tmpl.TitleField).
		Rows(rows...)
	cmd.Println(t.Render())
	cmd.Printf("Total: %d records\n", len(rows))
	return nil
}

func runRecordsGet(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	rec, err := recordService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("record %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}

	tmpl := recordService.Template()
	for _, name := range tmpl.FieldNames() {
		value := rec.Get(name)
		if strings.Contains(value, "\n") {
			cmd.Printf("%s:\n", name)
			for _, line := range strings.Split(value, "\n") {
				cmd.Printf("  %s\n", line)
			}
			continue
		}
		cmd.Printf("%s: %s\n", name, value)
	}
	if !rec.CreatedAt.IsZero() {
		cmd.Printf("Created: %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if !rec.UpdatedAt.IsZero() {
		cmd.Printf("Updated: %s\n", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runRecordsExport(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	if err := recordService.Export(cmd.Context()); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	cmd.Println("Records exported.")
	return nil
}

func traceHeader(tmpl domain.RecordTemplate) string {
	if tmpl.TraceField == "" {
		return "Requirement"
	}
	return tmpl.TraceField
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
