// Copyright 2026 Docent Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/docentlabs/docent"
	"github.com/docentlabs/docent/chat"
	"github.com/docentlabs/docent/config"
	"github.com/docentlabs/docent/corpus"
	"github.com/docentlabs/docent/index"
	"github.com/docentlabs/docent/ingest"
	"github.com/docentlabs/docent/tui"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "docent",
		Usage: "Ask questions about a private document collection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "config.yaml",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Build the vector index from the corpus directory",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rebuild",
						Usage: "Rebuild even if an index already exists",
					},
					&cli.StringFlag{
						Name:  "verify",
						Usage: "Run a smoke query against the new index",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a single question and print the grounded answer",
				ArgsUsage: "<question>",
				Action:    askCommand,
			},
			{
				Name:   "chat",
				Usage:  "Start an interactive chat session",
				Action: chatCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	app, err := newApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	pipeline := app.NewIngestionPipeline(ingest.WithRebuild(c.Bool("rebuild")))

	result, err := pipeline.Run(c.Context)
	if err != nil {
		switch {
		case errors.Is(err, corpus.ErrCorpusNotFound):
			return fmt.Errorf("corpus directory %s does not exist; create it and add documents", app.Config().Corpus.Dir)
		case errors.Is(err, corpus.ErrCorpusEmpty):
			return fmt.Errorf("corpus directory %s contains no loadable documents (.pdf, .txt, .md)", app.Config().Corpus.Dir)
		case errors.Is(err, index.ErrBuildInProgress):
			return fmt.Errorf("another build is already running against %s", app.Config().Index.Path)
		}
		return err
	}

	if result.Skipped {
		fmt.Printf("Index at %s already exists (%d chunks); use --rebuild to rebuild.\n",
			app.Config().Index.Path, result.Chunks)
		return nil
	}
	fmt.Printf("Indexed %d chunks from %d pages (%d files) in %s.\n",
		result.Chunks, result.Pages, len(result.Files), result.Elapsed.Round(time.Millisecond))

	if question := c.String("verify"); question != "" {
		matches, err := pipeline.Verify(c.Context, question)
		if err != nil {
			return fmt.Errorf("verification query failed: %w", err)
		}
		for _, m := range matches {
			fmt.Printf("Top match for %q: %s, page %s (score %.3f)\n",
				question, m.Chunk.FileName(), m.Chunk.PageLabel(), m.Score)
		}
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("usage: docent ask <question>")
	}

	app, err := newApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	session, err := app.NewSession()
	if err != nil {
		return noIndexHint(err, app)
	}

	turn, err := session.Ask(c.Context, question)
	if err != nil {
		return err
	}

	fmt.Println(turn.Text)
	if len(turn.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, cit := range turn.Citations {
			fmt.Printf("  - %s, page %s\n", cit.File, cit.Page)
		}
	}
	return nil
}

func chatCommand(c *cli.Context) error {
	app, err := newApp(c)
	if err != nil {
		return err
	}
	defer app.Close()

	session, err := app.NewSession()
	if err != nil {
		return noIndexHint(err, app)
	}

	return tui.Run(session, app.Index().Files())
}

func newApp(c *cli.Context) (*docent.App, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	return docent.NewApp(cfg)
}

// noIndexHint turns a missing-index failure into an actionable message.
func noIndexHint(err error, app *docent.App) error {
	if errors.Is(err, chat.ErrNoIndex) {
		return fmt.Errorf("no index found at %s; run `docent ingest` first", app.Config().Index.Path)
	}
	return err
}

func setup(c *cli.Context) error {
	// A missing .env is fine; it only ever supplements the environment.
	_ = godotenv.Load()

	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
