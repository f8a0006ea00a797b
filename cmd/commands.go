package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"govgrant-assist/internal/api"
	sessionapi "govgrant-assist/internal/api/session"
	"govgrant-assist/internal/config"
	"govgrant-assist/internal/formatter"
	"govgrant-assist/internal/helper"
	"govgrant-assist/internal/llmservice"
	"govgrant-assist/internal/models"
	"govgrant-assist/internal/session"
	"govgrant-assist/internal/validator"
)

const shutdownTimeout = 10 * time.Second

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"), cmd.String("env"))
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.Log)
	log.Debug().Str("provider", cfg.Provider).Msg("Loaded config")
	return cfg, nil
}

// setupLogger writes to stderr so command output on stdout stays clean.
func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Caller().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	provider, err := llmservice.NewProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	store := session.NewStore(cfg.Server.SessionTTL, func(id string) (*session.Session, error) {
		return session.New(id, provider, cfg)
	})
	defer store.Close()

	handler := sessionapi.NewHandler(store, cfg.MaxFileBytes())
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.SetupRouter(handler, cfg.Server.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("provider", provider.Name()).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// openSession creates a provider and a single session with the guide at
// path already ingested. The returned func releases both.
func openSession(ctx context.Context, cfg *config.Config, path string) (*session.Session, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	provider, err := llmservice.NewProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	s, err := session.New("cli", provider, cfg)
	if err != nil {
		provider.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing session")
		}
		provider.Close()
	}

	stats, err := s.Ingest(ctx, filepath.Base(path), data)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	log.Info().
		Str("file", stats.Filename).
		Int("pages", stats.Pages).
		Int("chunks", stats.Chunks).
		Int("characters", stats.Characters).
		Msg("Grant guide ready")
	return s, cleanup, nil
}

func askAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, cleanup, err := openSession(ctx, cfg, cmd.String("file"))
	if err != nil {
		return err
	}
	defer cleanup()

	answer, err := s.Chat(ctx, cmd.String("question"))
	if err != nil {
		return fmt.Errorf("%s: %w", answer, err)
	}
	fmt.Printf("%s\n", answer)
	return nil
}

func proposeAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f, err := formatter.NewFactory().Create(cmd.String("format"))
	if err != nil {
		return err
	}

	solution := cmd.String("solution")
	if path := cmd.String("solution-file"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		solution = string(raw)
	}

	budget, res := validator.ParseBudget(cmd.String("budget"))
	if !res.Valid {
		return res.Err()
	}

	s, cleanup, err := openSession(ctx, cfg, cmd.String("file"))
	if err != nil {
		return err
	}
	defer cleanup()

	proposal, msg, err := s.GenerateProposal(ctx, models.ProposalRequest{
		CompanyName:  cmd.String("company"),
		ProjectTitle: cmd.String("title"),
		CoreSolution: solution,
		Budget:       budget,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}

	data, err := f.Format(proposal.ProjectTitle, proposal.Content)
	if err != nil {
		return err
	}
	out := cmd.String("out")
	if out == "" {
		out = formatter.ProposalFilename(proposal.CompanyName, proposal.GeneratedAt, f.FileExtension())
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Info().Str("path", out).Int("bytes", len(data)).Msg("Proposal written")
	fmt.Println(out)
	return nil
}

func chatAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, cleanup, err := openSession(ctx, cfg, cmd.String("file"))
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("Ask about the grant guide. Commands: /history, /info, /clear, /exit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/clear":
			s.ClearConversation()
			fmt.Println("Conversation cleared.")
			continue
		case "/info":
			if err := helper.WriteJSON(os.Stdout, s.Info()); err != nil {
				log.Warn().Err(err).Msg("Failed to print session info")
			}
			continue
		case "/history":
			for _, t := range s.Conversation() {
				fmt.Printf("[%s] %s\n\n", t.Role, t.Content)
			}
			continue
		}

		// errors are shown and the loop keeps going
		answer, err := s.Chat(ctx, line)
		if err != nil {
			log.Debug().Err(err).Msg("Chat turn failed")
		}
		fmt.Printf("\n%s\n\n", answer)
		if ctx.Err() != nil {
			return nil
		}
	}
}
