package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/page-harvest/harvest/internal/ui"
)

// fieldsCmd represents the fields command
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the field catalogue prompts can request",
	Long: `Fields prints every field the planner recognizes, along with its value
type and the synonyms that map prompt wording onto it.`,
	Args: cobra.NoArgs,
	RunE: runFields,
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, args []string) error {
	appCtx := GetApp()
	if appCtx == nil {
		return fmt.Errorf("application is not initialized")
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "%s\t%s\t%s\n", ui.Bold("FIELD"), ui.Bold("TYPE"), ui.Bold("SYNONYMS"))

	for _, name := range appCtx.Library.Names() {
		spec, ok := appCtx.Library.Lookup(name)
		if !ok {
			continue
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\n", spec.Name, spec.ValueType, strings.Join(spec.Synonyms, ", "))
	}

	return writer.Flush()
}
