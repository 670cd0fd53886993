// cmd/gematria/main.go
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var Version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "gematria",
		Usage:                  "Gematria values and similar-word search from the command line",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "values",
				Aliases:   []string{"v"},
				Usage:     "Print the value of each word",
				ArgsUsage: "<word>...",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "system",
						Aliases: []string{"s"},
						Usage:   "Numeral system to print (repeatable; default all)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print JSON instead of a table",
					},
				},
				Action: valuesCommand,
			},
			{
				Name:      "analyze",
				Aliases:   []string{"a"},
				Usage:     "Find corpus words with close values for every word of the text",
				ArgsUsage: "<text>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "corpus",
						Aliases: []string{"c"},
						Usage:   "Word list or JSON corpus file (default built-in sample)",
					},
					&cli.StringSliceFlag{
						Name:    "system",
						Aliases: []string{"s"},
						Usage:   "Numeral system to compare (repeatable)",
						Value:   cli.NewStringSlice("english", "reduced", "reverse"),
					},
					&cli.IntFlag{
						Name:  "min-length",
						Usage: "Ignore words shorter than this",
						Value: 3,
					},
					&cli.IntFlag{
						Name:    "tolerance",
						Aliases: []string{"t"},
						Usage:   "Largest per-system difference that still counts",
						Value:   2,
					},
					&cli.IntFlag{
						Name:    "max-results",
						Aliases: []string{"n"},
						Usage:   "Candidates kept per word",
						Value:   10,
					},
					&cli.StringFlag{
						Name:  "ranking",
						Usage: "Group order: match-count or best-match",
						Value: "match-count",
					},
					&cli.IntFlag{
						Name:  "parallelism",
						Usage: "Words matched concurrently",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print JSON instead of text",
					},
				},
				Action: analyzeCommand,
			},
			{
				Name:  "build-corpus",
				Usage: "Annotate a word list with all values and write a JSON corpus",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "in",
						Aliases:  []string{"i"},
						Usage:    "Word list, one word per line",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file (default stdout)",
					},
				},
				Action: buildCorpusCommand,
			},
		},
	}
}
