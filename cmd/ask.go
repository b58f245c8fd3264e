package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	askDocument  string
	askQuestions []string
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a batch of questions against one document",
	Long: `The ask command runs the full pipeline once from the command line:
the document is downloaded, chunked and indexed (or found in the cache),
then every question is decomposed, retrieved and answered in one batch.`,
	Run: RunAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askDocument, "document", "d", "", "Document URL or blob:// reference")
	askCmd.MarkFlagRequired("document")
	askCmd.Flags().StringArrayVarP(&askQuestions, "question", "q", nil, "Question to answer (repeatable)")
	askCmd.MarkFlagRequired("question")
}

func RunAsk(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	service, err := newAnswerService(ctx)
	if err != nil {
		fmt.Printf("Failed to wire answering service: %v\n", err)
		os.Exit(1)
	}

	answers, cleanup, err := service.Answer(ctx, askDocument, askQuestions)
	defer cleanup()
	if err != nil {
		fmt.Printf("Failed to answer questions: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render answers: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
