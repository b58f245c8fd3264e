package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "askdoc",
	Short: "Batch document question answering over retrieval-augmented generation",
	Long: `askdoc ingests a document once, indexes it in a vector store, and answers
whole batches of natural-language questions against it with grounded,
source-attributed generation.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	settingDefaultConfig()
}
