package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lingo-battle-service/internal/app"
	"lingo-battle-service/internal/config"
	"lingo-battle-service/internal/domain"
	"lingo-battle-service/internal/infra/memory"
	pginfra "lingo-battle-service/internal/infra/postgres"
	redisinfra "lingo-battle-service/internal/infra/redis"
	transport "lingo-battle-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the battle server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := newLogger()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		source app.QuestionSource
		loader redisinfra.PoolLoader
		store  app.MatchStore
	)
	if pool != nil {
		pgSource := pginfra.NewQuestionSource(pool)
		source, loader = pgSource, pgSource
		store = pginfra.NewMatchStore(pool)
	} else {
		memSource := memory.NewQuestionSource(sampleQuestions())
		source, loader = memSource, memSource
		store = memory.NewMatchStore()
	}
	if redisClient != nil {
		questionTTL := config.DurationOr(cfg.Questions.TTL, 10*time.Minute)
		source = redisinfra.NewQuestionCache(redisClient, loader, questionTTL)
	}

	service := app.NewService(gameConfig(cfg), source, store, log)
	wsHandler := transport.NewWSHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Infof("starting battle service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(os.Stdout)
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

func gameConfig(cfg config.Config) app.Config {
	return app.Config{
		QuestionTime:         config.DurationOr(cfg.Game.QuestionTime, 0),
		MatchTimeout:         config.DurationOr(cfg.Game.MatchTimeout, 0),
		AnnounceDelay:        config.DurationOr(cfg.Game.AnnounceDelay, 0),
		RevealDelay:          config.DurationOr(cfg.Game.RevealDelay, 0),
		TimeoutDelay:         config.DurationOr(cfg.Game.TimeoutDelay, 0),
		TimerGrace:           config.DurationOr(cfg.Game.TimerGrace, 0),
		DefaultQuestionCount: cfg.Game.QuestionCount,
		Bot: app.BotConfig{
			Accuracy:  cfg.Bot.Accuracy,
			MinDelay:  config.DurationOr(cfg.Bot.MinDelay, 0),
			MaxDelay:  config.DurationOr(cfg.Bot.MaxDelay, 0),
			Name:      cfg.Bot.Name,
			AvatarURL: cfg.Bot.AvatarURL,
		},
	}
}

// sampleQuestions provides a minimal PvP pool; the Postgres source replaces
// this in production.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:      "q1",
			Content: "Which word means 'house'?",
			Options: map[string]string{
				"A": "Haus", "B": "Hund", "C": "Hand", "D": "Hut",
			},
			CorrectAnswer: "A",
			Level:         domain.LevelA1,
		},
		{
			ID:      "q2",
			Content: "Pick the correct article: ___ Apfel",
			Options: map[string]string{
				"A": "die", "B": "der", "C": "das", "D": "den",
			},
			CorrectAnswer: "B",
			Level:         domain.LevelA1,
		},
		{
			ID:      "q3",
			Content: "Which sentence is in the past tense?",
			Options: map[string]string{
				"A": "Ich gehe.", "B": "Ich ging.", "C": "Ich werde gehen.", "D": "Ich gehe oft.",
			},
			CorrectAnswer: "B",
			Level:         domain.LevelA2,
		},
		{
			ID:      "q4",
			Content: "Choose the synonym of 'schnell':",
			Options: map[string]string{
				"A": "langsam", "B": "rasch", "C": "spät", "D": "leise",
			},
			CorrectAnswer: "B",
			Level:         domain.LevelA2,
		},
		{
			ID:      "q5",
			Content: "Which connector expresses contrast?",
			Options: map[string]string{
				"A": "deshalb", "B": "obwohl", "C": "weil", "D": "damit",
			},
			CorrectAnswer: "B",
			Level:         domain.LevelB1,
		},
	}
}
