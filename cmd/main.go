package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

const configFilePath = "./configs/config.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "govgrant-assist",
		Usage: "Ask questions about a grant guide and draft compliant proposals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the yaml config file",
				Value: configFilePath,
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "path to the .env file",
				Value: ".env",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address, overrides server.addr",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "ask",
				Usage: "Answer one question about a grant guide",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "grant guide PDF",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "question",
						Usage:    "question to answer",
						Required: true,
					},
				},
				Action: askAction,
			},
			{
				Name:  "propose",
				Usage: "Draft a grant proposal from a grant guide",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "grant guide PDF",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "company",
						Usage:    "applicant company name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "project title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "solution",
						Usage: "core solution description",
					},
					&cli.StringFlag{
						Name:  "solution-file",
						Usage: "read the core solution from a text file",
					},
					&cli.StringFlag{
						Name:  "budget",
						Usage: "requested budget, e.g. 250000 or $250,000",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "output path, defaults to Proposal_<company>_<date>.<ext>",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "md, html or pdf",
						Value: "md",
					},
				},
				Action: proposeAction,
			},
			{
				Name:  "chat",
				Usage: "Interactive Q&A over a grant guide",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "grant guide PDF",
						Required: true,
					},
				},
				Action: chatAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}
