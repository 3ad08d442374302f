package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/daobot/internal/config"
	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/internal/providers/llm"
	"github.com/sandevgo/daobot/internal/providers/market"
	"github.com/sandevgo/daobot/internal/providers/search"
	"github.com/sandevgo/daobot/internal/providers/speech"
	"github.com/sandevgo/daobot/internal/server"
	"github.com/sandevgo/daobot/internal/service/facts"
	"github.com/sandevgo/daobot/internal/service/prompt"
	"github.com/sandevgo/daobot/internal/service/relay"
	"github.com/sandevgo/daobot/internal/service/voice"
	"github.com/sandevgo/daobot/internal/storage/sqlite"
	"github.com/sandevgo/daobot/internal/transport/cli"
	"github.com/sandevgo/daobot/internal/transport/telegram"
	"github.com/sandevgo/daobot/pkg/log"
	"github.com/sandevgo/daobot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	groqCfg := config.NewGroqConfig(ctx)
	searchCfg := config.NewSearchConfig(ctx)

	// 2. Storage
	db, historyRepo, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. Fact providers
	var searcher core.Searcher
	if chain := search.NewChain(searchCfg); chain != nil {
		searcher = chain
	}
	paprika := market.NewPaprika()
	dex := market.NewDexscreener()

	assembler := facts.NewAssembler(searcher, paprika, dex, paprika, prompt.StaticContext)

	// 4. Conversation + completion
	builder := prompt.NewBuilder(groqCfg.MaxWords, groqCfg.FewshotsJSON)
	completer := llm.NewGroq(groqCfg)

	// 5. Speech
	transcriber := speech.NewWhisper(config.NewOpenAIConfig(ctx))
	synthesizer := speech.NewElevenLabs(config.NewElevenLabsConfig(ctx))

	// 6. Relay service
	relaySvc := relay.NewRelay(
		assembler,
		builder,
		completer,
		transcriber,
		synthesizer,
		voice.NewStore(),
		historyRepo,
		appCfg.HistoryWindow,
	)

	// 7. Transports
	transports, err := initTransports(ctx, appCfg, relaySvc)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	// 8. Health endpoint
	services = append(services, server.NewHealth(appCfg.HealthAddr, db))

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, *sqlite.History, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, err
	}
	return db, sqlite.NewHistory(db), nil
}

func initTransports(ctx context.Context, cfg *config.AppConfig, relaySvc *relay.Relay) ([]srv.Service, error) {
	var services []srv.Service

	// Telegram Bot
	if cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, relaySvc)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	// Local chat loop
	if cfg.IsCLISelected() {
		rl, err := cli.NewReadLine(relaySvc, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, rl)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
