package cli

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dfuchss/deltabot/internal/bot"
	"github.com/dfuchss/deltabot/internal/channel"
	"github.com/dfuchss/deltabot/internal/channel/gatewayws"
	"github.com/dfuchss/deltabot/internal/channel/irc"
	"github.com/dfuchss/deltabot/internal/config"
	"github.com/dfuchss/deltabot/internal/dialog"
	"github.com/dfuchss/deltabot/internal/logging"
	"github.com/dfuchss/deltabot/internal/nlu"
	"github.com/dfuchss/deltabot/internal/session"
	"github.com/dfuchss/deltabot/internal/store"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			// The config log level applies unless --log-level was given.
			if logLevel == "" && cfg.Logging.Level != "" {
				log = logging.New(nil, cfg.Logging.Level)
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			dbPath := cfg.Store.Path
			if dbPath == "" {
				dbPath = filepath.Join(paths.Data, "deltabot.db")
			}
			db, err := store.Open(dbPath, log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			settings := bot.NewSettings(&cfg, db)
			qna := store.NewQnAStore(db)
			msgLog := store.NewMessageLog(db)

			var recognizer nlu.Recognizer = nlu.NewHTTPClient(nlu.ClientConfig{
				Endpoint: cfg.NLU.Endpoint,
				AppID:    cfg.NLU.AppID,
				Key:      cfg.NLU.Key,
			}, log)
			if cfg.NLU.TTLMinutes > 0 {
				ttl := time.Duration(cfg.NLU.TTLMinutes) * time.Minute
				recognizer = nlu.NewCached(recognizer, ttl, log)
				log.Info().Dur("ttl", ttl).Msg("NLU result cache enabled")
			}

			channels := channel.NewRegistry(log)
			if cfg.Channels.IRC != nil {
				channels.Register(irc.New(*cfg.Channels.IRC, log))
			}
			if cfg.Channels.Gateway != nil {
				channels.Register(gatewayws.New(*cfg.Channels.Gateway, log))
			}
			if channels.Count() == 0 {
				return fmt.Errorf("no channels configured")
			}

			sender := bot.NewChannelSender(channels, log)

			deps := dialog.Deps{
				Sender:  sender,
				QnA:     qna,
				Purger:  msgLog,
				IsAdmin: settings.IsAdmin,
				Feeds:   settings.NewsFeeds(),
				Log:     log,
			}
			sessions := session.NewManager(func() *session.Session {
				dialogs, table := dialog.Load(deps)
				return session.New(dialogs, table, recognizer, sender, settings, "", log)
			}, log)

			b := bot.New(channels, sessions, sender, settings, msgLog, log)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b.Wire(ctx)

			if err := channels.StartAll(ctx); err != nil {
				return fmt.Errorf("starting channels: %w", err)
			}

			log.Info().
				Int("channels", channels.Count()).
				Float64("threshold", cfg.NLU.Threshold).
				Msg("deltabot running")

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			channels.StopAll(shutdownCtx)
			b.Close()

			log.Info().Msg("deltabot stopped")
			return nil
		},
	}
}
