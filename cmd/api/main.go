package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/suporteti/chamado-service/internal/api/http"
	"github.com/suporteti/chamado-service/internal/api/http/handlers"
	"github.com/suporteti/chamado-service/internal/auth"
	"github.com/suporteti/chamado-service/internal/config"
	"github.com/suporteti/chamado-service/internal/events"
	"github.com/suporteti/chamado-service/internal/observability"
	"github.com/suporteti/chamado-service/internal/persistence"
	"github.com/suporteti/chamado-service/internal/repository"
	"github.com/suporteti/chamado-service/internal/service"
	"github.com/suporteti/chamado-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	usuarioRepo := repository.NewUsuarioRepository(pool)
	chamadoRepo := repository.NewChamadoRepository(pool)
	transferenciaRepo := repository.NewTransferenciaRepository(pool)
	notificacaoRepo := repository.NewNotificacaoRepository(pool)
	chatRepo := repository.NewChatRepository(pool)
	historicoRepo := repository.NewHistoricoRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	usuarioService := service.NewUsuarioService(service.UsuarioDependencies{
		UsuarioRepo: usuarioRepo,
		Tokens:      tokens,
		BcryptCost:  cfg.Auth.BcryptCost,
	})
	chamadoService := service.NewChamadoService(service.ChamadoDependencies{
		ChamadoRepo:       chamadoRepo,
		TransferenciaRepo: transferenciaRepo,
		HistoricoRepo:     historicoRepo,
		Dispatcher:        dispatcher,
	})
	transferenciaService := service.NewTransferenciaService(service.TransferenciaDependencies{
		TransferenciaRepo: transferenciaRepo,
		ChamadoRepo:       chamadoRepo,
		UsuarioRepo:       usuarioRepo,
		HistoricoRepo:     historicoRepo,
		Dispatcher:        dispatcher,
	})
	chatService := service.NewChatService(service.ChatDependencies{
		ChatRepo:    chatRepo,
		ChamadoRepo: chamadoRepo,
		Dispatcher:  dispatcher,
	})
	notificacaoService := service.NewNotificacaoService(service.NotificacaoDependencies{
		NotificacaoRepo: notificacaoRepo,
		Dispatcher:      dispatcher,
		Cache:           redis.ClientHandle(),
		CacheTTL:        cfg.Redis.ContadorTTL(),
		Logger:          logger,
	})

	worker.StartNotificationWorker(notificacaoService)

	authMiddleware := auth.NewAuthMiddleware(tokens, usuarioRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Usuarios:       handlers.NewUsuariosHandler(usuarioService),
		Chamados:       handlers.NewChamadosHandler(chamadoService, chatService),
		Transferencias: handlers.NewTransferenciasHandler(transferenciaService),
		Notificacoes:   handlers.NewNotificacoesHandler(notificacaoService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
