package dto

import (
	"time"

	"github.com/suporteti/chamado-service/internal/domain"
)

// NotificacaoResponse representation.
type NotificacaoResponse struct {
	ID               int64                  `json:"id"`
	ChamadoID        int64                  `json:"chamadoId"`
	ChamadoProtocolo string                 `json:"chamadoProtocolo"`
	Tipo             domain.TipoNotificacao `json:"tipo"`
	Titulo           string                 `json:"titulo"`
	Mensagem         string                 `json:"mensagem"`
	Lida             bool                   `json:"lida"`
	CriadoEm         time.Time              `json:"criadoEm"`
}

// ContadorNaoLidasResponse serves the badge endpoint.
type ContadorNaoLidasResponse struct {
	Count int64 `json:"count"`
}
