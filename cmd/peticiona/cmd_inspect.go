package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tcpires/peticiona/internal/docxio"
	"github.com/tcpires/peticiona/internal/fieldmeta"
	"github.com/tcpires/peticiona/internal/report"
	"github.com/tcpires/peticiona/internal/rules"
)

var inspectFormat string

var inspectCmd = &cobra.Command{
	Use:   "inspect TEMPLATE.docx",
	Short: "Report a template's placeholders and sections",
	RunE:  runInspect,
	Args:  cobra.ExactArgs(1),
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "markdown", "Output format: markdown, html or json")
}

func runInspect(cmd *cobra.Command, args []string) error {
	log := newLogger()
	templatePath := args[0]

	defs, err := rules.LoadSections(rulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	var meta fieldmeta.Provider = fieldmeta.NullProvider{}
	if fieldDB != "" {
		store, err := fieldmeta.OpenSQLite(fieldDB, log)
		if err != nil {
			return fmt.Errorf("open field db: %w", err)
		}
		meta = store
	}

	doc, err := docxio.Open(templatePath)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}

	id := strings.TrimSuffix(filepath.Base(templatePath), filepath.Ext(templatePath))
	rep, err := report.Inspect(id, 0, doc.Units(), defs, meta)
	if err != nil {
		return fmt.Errorf("inspect template: %w", err)
	}

	switch inspectFormat {
	case "markdown":
		fmt.Print(rep.Markdown())
	case "html":
		html, err := rep.HTML()
		if err != nil {
			return err
		}
		os.Stdout.Write(html)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	default:
		return fmt.Errorf("unknown format %q", inspectFormat)
	}
	return nil
}
