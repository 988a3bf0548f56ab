package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/IshaanNene/NewsDentist/internal/config"
	"github.com/IshaanNene/NewsDentist/internal/types"
	"github.com/IshaanNene/NewsDentist/internal/wordfreq"
	"github.com/IshaanNene/NewsDentist/pkg/newsdentist"
)

var (
	topSizes  []int
	statsFile bool
)

// statsCmd creates the "stats" subcommand.
func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats ARTIFACT",
		Short: "Show the most common words of a harvested artifact",
		Long: `Print word frequency tables for an artifact, ignoring common English
stopwords. ARTIFACT is an artifact name in the configured storage, or a
plain file path when --file is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runStats,
	}

	cmd.Flags().IntSliceVarP(&topSizes, "top", "n", []int{10, 50, 100}, "table sizes to print")
	cmd.Flags().BoolVar(&statsFile, "file", false, "treat ARTIFACT as a file path")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "artifact directory")
	cmd.Flags().StringVar(&storageType, "storage", "", "artifact storage: file, mongodb")

	return cmd
}

// runStats executes the stats command.
func runStats(cmd *cobra.Command, args []string) error {
	var (
		counter *wordfreq.Counter
		err     error
	)

	if statsFile {
		counter, err = wordfreq.CountFile(args[0])
	} else {
		counter, err = countStored(cmd, args[0])
	}
	if errors.Is(err, types.ErrPlaceholder) {
		return fmt.Errorf("artifact %s is still pending; its harvest never completed", args[0])
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d distinct words\n", args[0], counter.Len())
	for _, n := range topSizes {
		if n <= 0 {
			continue
		}
		fmt.Fprintln(w)
		printTable(w, fmt.Sprintf("Top %d", n), counter.MostCommon(n))
	}
	return nil
}

func countStored(cmd *cobra.Command, name string) (*wordfreq.Counter, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyCLIOverrides(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client, err := newsdentist.New(newsdentist.WithConfig(cfg), newsdentist.WithLogger(setupLogger(cfg)))
	if err != nil {
		return nil, err
	}
	content, err := client.Read(cmd.Context(), name)
	if err != nil {
		return nil, err
	}
	return wordfreq.CountString(content)
}

// printTable writes rows as a two column table. Widths are measured in
// terminal cells so words with wide runes stay aligned.
func printTable(w io.Writer, title string, rows []wordfreq.WordCount) {
	wordCol := runewidth.StringWidth("Word")
	for _, r := range rows {
		wordCol = max(wordCol, runewidth.StringWidth(r.Word))
	}
	wordCol = min(wordCol, 40)
	countCol := max(len("Count"), len(fmt.Sprint(maxCount(rows))))

	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight("Word", wordCol), runewidth.FillLeft("Count", countCol))
	fmt.Fprintf(w, "%s  %s\n", strings.Repeat("-", wordCol), strings.Repeat("-", countCol))
	for _, r := range rows {
		word := runewidth.Truncate(r.Word, wordCol, "…")
		fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight(word, wordCol), runewidth.FillLeft(fmt.Sprint(r.Count), countCol))
	}
}

func maxCount(rows []wordfreq.WordCount) int {
	if len(rows) == 0 {
		return 0
	}
	return rows[0].Count
}
