// Command peticiona generates petition documents locally, without the HTTP
// server: one template, one rules file, one or many records.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose   bool
	rulesPath string
	fieldDB   string
)

var rootCmd = &cobra.Command{
	Use:   "peticiona",
	Short: "Conditional petition document assembly",
	Long: `peticiona fills .docx petition templates from data records:
placeholders are substituted, conditional sections are kept or pruned
according to the section rules, and residual markers are cleaned up.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&rulesPath, "rules", "r", "sections.yaml", "Section rules YAML file")
	rootCmd.PersistentFlags().StringVar(&fieldDB, "field-db", "", "SQLite field metadata database (optional)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inspectCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
