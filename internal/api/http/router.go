package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/suporteti/chamado-service/internal/api/http/handlers"
	"github.com/suporteti/chamado-service/internal/auth"
	"github.com/suporteti/chamado-service/internal/domain"
	"github.com/suporteti/chamado-service/internal/policy"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Usuarios       *handlers.UsuariosHandler
	Chamados       *handlers.ChamadosHandler
	Transferencias *handlers.TransferenciasHandler
	Notificacoes   *handlers.NotificacoesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Usuarios.Login)

	protegido := app.Group("", cfg.AuthMiddleware.Handle)

	usuario := protegido.Group("/usuario")
	usuario.Get("/me", cfg.Usuarios.Me)
	usuario.Post("/registrar", auth.RequireAcao(policy.AcaoGerenciarUsuarios), cfg.Usuarios.Registrar)
	usuario.Get("/tecnicos", auth.RequireAcao(policy.AcaoListarTecnicos), cfg.Usuarios.ListarTecnicos)

	chamado := protegido.Group("/chamado")
	chamado.Post("", cfg.Chamados.Abrir)
	chamado.Get("/lista", cfg.Chamados.Listar)
	chamado.Get("/tecnico", auth.RequirePerfil(domain.PerfilTecnicoTI, domain.PerfilAdmin), cfg.Chamados.ListarAtendimentos)
	chamado.Get("/:id", cfg.Chamados.Buscar)
	chamado.Put("/:id", cfg.Chamados.Editar)
	chamado.Patch("/:id/status", auth.RequireAcao(policy.AcaoAlterarStatus), cfg.Chamados.AlterarStatus)
	chamado.Get("/:id/proximos-status", cfg.Chamados.ProximosStatus)
	chamado.Post("/:id/reabrir", cfg.Chamados.Reabrir)
	chamado.Post("/:id/avaliar", cfg.Chamados.Avaliar)
	chamado.Get("/:id/historico", cfg.Chamados.Historico)
	chamado.Post("/:id/mensagens", cfg.Chamados.EnviarMensagem)
	chamado.Get("/:id/mensagens", cfg.Chamados.ListarMensagens)
	chamado.Post("/:id/solicitar-transferencia", auth.RequirePerfil(domain.PerfilTecnicoTI), cfg.Transferencias.Solicitar)

	transferencia := protegido.Group("/transferencia", auth.RequirePerfil(domain.PerfilTecnicoTI))
	transferencia.Get("/minhas-pendencias", cfg.Transferencias.MinhasPendencias)
	transferencia.Get("/enviadas", cfg.Transferencias.Enviadas)
	transferencia.Post("/:id/responder", cfg.Transferencias.Responder)
	transferencia.Post("/:id/cancelar", cfg.Transferencias.Cancelar)

	notificacao := protegido.Group("/notificacao")
	notificacao.Get("/lista", cfg.Notificacoes.Listar)
	notificacao.Get("/nao-lidas/count", cfg.Notificacoes.ContarNaoLidas)
	notificacao.Patch("/:id/ler", cfg.Notificacoes.MarcarLida)
	notificacao.Post("/ler-todas", cfg.Notificacoes.MarcarTodasLidas)
}
