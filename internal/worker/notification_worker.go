package worker

import (
	"github.com/suporteti/chamado-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to the
// event stream.
func StartNotificationWorker(notificacaoService *service.NotificacaoService) {
	if notificacaoService == nil {
		return
	}
	notificacaoService.RegisterHandlers()
}
