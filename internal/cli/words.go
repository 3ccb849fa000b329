package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"alyabot/internal/config"
	"alyabot/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWordsCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "Print the stored vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadStore()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			repo, closeRepo, err := openWordRepo(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeRepo()

			vocab, err := repo.Load()
			if err != nil {
				return fmt.Errorf("failed to load vocabulary: %w", err)
			}
			return printVocabulary(cmd.OutOrStdout(), vocab)
		},
	}
}

func printVocabulary(w io.Writer, vocab domain.Vocabulary) error {
	if len(vocab) == 0 {
		_, err := fmt.Fprintln(w, "No words saved yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tMEANING\tSYNONYMS\tEXAMPLE")
	for _, e := range vocab.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Word, e.Meaning, e.SynonymsText(), e.Example)
	}
	return tw.Flush()
}
