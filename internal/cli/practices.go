package cli

import (
	"fmt"
	"io"

	"github.com/terraincognita07/hridaya/internal/i18n"
	"github.com/terraincognita07/hridaya/internal/services"
)

// RunPracticesCommand prints the catalog in curriculum order, one block per
// node. Nodes without practices are listed as empty.
func RunPracticesCommand(catalog *services.PracticeCatalog, messages *i18n.Manager, language string, out io.Writer) error {
	language = messages.NormalizeLanguage(language)

	total := 0
	for _, node := range services.AllNodes() {
		practices := catalog.ForNode(node)
		total += len(practices)

		if _, err := fmt.Fprintf(out, "%s (%s)\n", messages.NodeLabel(language, node), node); err != nil {
			return err
		}
		if len(practices) == 0 {
			fmt.Fprintln(out, "  -")
			continue
		}
		for _, practice := range practices {
			kind := messages.Translate(language, "practice.kind."+practice.Kind)
			if practice.DurationMinutes > 0 {
				fmt.Fprintf(out, "  %s  %s [%s, %d min]\n", practice.ID, practice.Title, kind, practice.DurationMinutes)
			} else {
				fmt.Fprintf(out, "  %s  %s [%s]\n", practice.ID, practice.Title, kind)
			}
		}
	}

	fmt.Fprintf(out, "\n%d practices, %d aspirations, %d dedications\n", total, len(catalog.Aspirations), len(catalog.Dedications))
	return nil
}
