package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pawfect-mate/backend/internal/config"
	"github.com/pawfect-mate/backend/internal/corpus"
	"github.com/pawfect-mate/backend/internal/search"
)

type rootOptions struct {
	corpusPath    string
	textFields    []string
	keywordFields []string
	stripMarkup   bool
	verbose       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "breedsearch",
		Short: "Search the dog breed corpus",
		Long: `Loads the breed corpus, builds the TF-IDF index in memory and runs
retrieval queries against it. No answer is generated.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.corpusPath, "corpus",
		config.GetStringEnv("DATA_PATH", defaults.Corpus.Path), "path to the breed CSV")
	flags.StringSliceVar(&opts.textFields, "text-fields", corpus.DefaultTextFields, "columns indexed as free text")
	flags.StringSliceVar(&opts.keywordFields, "keyword-fields", corpus.DefaultKeywordFields, "columns matched by exact value")
	flags.BoolVar(&opts.stripMarkup, "strip-markup", false, "convert HTML cell values to plain text")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newFieldsCmd(opts))
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger.WithField("service", "breedsearch")
}

func (o *rootOptions) loadIndex(logger *logrus.Entry) (*search.Index, error) {
	return corpus.LoadIndex(o.corpusPath,
		corpus.WithTextFields(o.textFields...),
		corpus.WithKeywordFields(o.keywordFields...),
		corpus.WithMarkupStripping(o.stripMarkup),
		corpus.WithLogger(logger.WithField("component", "corpus")),
	)
}
