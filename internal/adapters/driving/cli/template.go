package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reqsync/internal/core/domain"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage the record template",
}

var templateInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default record template to a YAML file",
	Long: `Writes the default record template so it can be edited. Point the
template.path setting at the file to use it:

  reqsync template init ./template.yaml
  reqsync settings set template.path ./template.yaml`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationStandalone: "true"},
	RunE:        runTemplateInit,
}

var templateOverwrite bool

func init() {
	templateInitCmd.Flags().BoolVar(&templateOverwrite, "force", false, "Overwrite an existing file")
	templateCmd.AddCommand(templateInitCmd)
	rootCmd.AddCommand(templateCmd)
}

func runTemplateInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil && !templateOverwrite {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := file.NewTemplateLoader().Save(path, domain.DefaultRecordTemplate()); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	cmd.Printf("Template written to %s\n", path)
	return nil
}
