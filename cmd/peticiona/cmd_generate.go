package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tcpires/peticiona/internal/assembly"
	"github.com/tcpires/peticiona/internal/docxio"
	"github.com/tcpires/peticiona/internal/fieldmeta"
	"github.com/tcpires/peticiona/internal/record"
	"github.com/tcpires/peticiona/internal/rules"
)

var (
	recordsPath string
	outputDir   string
	separator   string
	strictMode  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate TEMPLATE.docx",
	Short: "Generate documents from a template and a records file",
	Long: `Generate one .docx per record. Records come from a CSV file (one
document per row) or a JSON file (a single document).`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&recordsPath, "records", "d", "", "CSV or JSON records file (required)")
	generateCmd.Flags().StringVarP(&outputDir, "out", "o", ".", "Output directory")
	generateCmd.Flags().StringVar(&separator, "separator", ";", "CSV field separator")
	generateCmd.Flags().BoolVar(&strictMode, "strict", false, "Fail when a required field is missing")
	generateCmd.MarkFlagRequired("records")
}

func runGenerate(cmd *cobra.Command, args []string) error {
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

	sep := ';'
	if separator != "" {
		sep = []rune(separator)[0]
	}
	recs, err := record.LoadFile(recordsPath, sep)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if len(recs) == 0 {
		return fmt.Errorf("no records in %s", recordsPath)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	asm := assembly.New(defs, meta, assembly.Options{Strict: strictMode}, nil, log)
	base := strings.TrimSuffix(filepath.Base(templatePath), filepath.Ext(templatePath))

	failed := 0
	for i, rec := range recs {
		doc, err := docxio.Open(templatePath)
		if err != nil {
			return fmt.Errorf("open template: %w", err)
		}

		_, stats, err := asm.AssembleDocument(doc.Units(), rec)
		if err != nil {
			log.Error("record failed", "record", i, "error", err)
			failed++
			continue
		}

		outPath := filepath.Join(outputDir, fmt.Sprintf("%s-%03d.docx", base, i+1))
		if len(recs) == 1 {
			outPath = filepath.Join(outputDir, base+"-out.docx")
		}
		if err := doc.Save(outPath); err != nil {
			return fmt.Errorf("save output: %w", err)
		}
		fmt.Printf("%s  status=%s completeness=%.1f%% sections=%d/%d\n",
			outPath, stats.Status, stats.Completeness, stats.SectionsActive, stats.SectionsTotal)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, len(recs))
	}
	return nil
}
