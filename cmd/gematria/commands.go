// cmd/gematria/commands.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"gematria-workers/internal/analyzer"
	"gematria-workers/internal/common/logger"
	"gematria-workers/internal/common/metrics"
	"gematria-workers/internal/corpus"
	"gematria-workers/internal/gematria"
	"gematria-workers/internal/matcher"
)

func valuesCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("values: at least one word is required", 2)
	}

	systems := gematria.AllSystems
	if names := c.StringSlice("system"); len(names) > 0 {
		parsed, err := gematria.ParseSystems(names)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		systems = parsed
	}

	tokens := matcher.Tokenize(strings.Join(c.Args().Slice(), " "), 1)
	if c.Bool("json") {
		out := make([]matcher.CorpusEntry, 0, len(tokens))
		for _, tok := range tokens {
			out = append(out, matcher.CorpusEntry{Token: tok, Values: gematria.ComputeValues(tok, systems)})
		}
		return writeJSON(c.App.Writer, out)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "WORD\t%s\n", strings.ToUpper(strings.Join(gematria.Names(systems), "\t")))
	for _, tok := range tokens {
		values := gematria.ComputeValues(tok, systems)
		cells := make([]string, len(systems))
		for i, s := range systems {
			cells[i] = fmt.Sprint(values[s])
		}
		fmt.Fprintf(tw, "%s\t%s\n", tok, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func analyzeCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	log := logger.NewStructured(c.String("log-level"), "console", "gematria")

	var src corpus.Source = corpus.Builtin{}
	if path := c.String("corpus"); path != "" {
		src = corpus.FileSource{Path: path}
	}
	store, err := corpus.Load(c.Context, src)
	if err != nil {
		return err
	}

	systems, err := gematria.ParseSystems(c.StringSlice("system"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	settings := analyzer.Settings{
		Systems:     systems,
		MinLength:   c.Int("min-length"),
		Tolerance:   c.Int("tolerance"),
		MaxResults:  c.Int("max-results"),
		Ranking:     matcher.Ranking(c.String("ranking")),
		Parallelism: c.Int("parallelism"),
	}

	result, err := analyzer.New(store, log).Analyze(c.Context, text, settings)
	if err != nil {
		metrics.ObserveAnalysis("cli", 0, 0, err)
		return cli.Exit(err.Error(), 2)
	}
	metrics.ObserveAnalysis("cli", len(result.Tokens), result.MatchCount, nil)

	if c.Bool("json") {
		return writeJSON(c.App.Writer, result)
	}
	printResult(c.App.Writer, result)
	return nil
}

func buildCorpusCommand(c *cli.Context) error {
	in, err := os.Open(c.String("in"))
	if err != nil {
		return err
	}
	defer in.Close()

	words, err := corpus.ReadWords(in)
	if err != nil {
		return err
	}
	entries := corpus.Build(words)

	out := c.App.Writer
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := corpus.WriteJSON(out, entries); err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "%d words written\n", len(entries))
	return nil
}

// printResult writes the non-empty groups, marking exact matches with *.
func printResult(w io.Writer, r *analyzer.Result) {
	fmt.Fprintf(w, "%d words, %d distinct, %d matches\n", r.WordCount, len(r.Tokens), r.MatchCount)
	for _, g := range r.NonEmptyGroups() {
		fmt.Fprintf(w, "\n%s %v\n", g.InputToken, valuesLine(g.InputValues, r.Settings.Systems))
		for _, m := range g.Matches {
			mark := " "
			if matcher.IsExactMatch(g, m) {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %-16s score=%d diff=%d\n", mark, m.Token, m.SimilarityScore, m.TotalDifference)
		}
	}
}

func valuesLine(v gematria.ValueVector, systems []gematria.NumeralSystem) string {
	parts := make([]string, len(systems))
	for i, s := range systems {
		parts[i] = fmt.Sprintf("%s=%d", s, v[s])
	}
	return strings.Join(parts, " ")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
