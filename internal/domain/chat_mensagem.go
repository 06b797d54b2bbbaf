package domain

import "time"

// ChatMensagem captures one message in a chamado's conversation thread.
// Mensagens com VisivelCliente=false são notas internas dos técnicos e
// nunca aparecem para o solicitante.
type ChatMensagem struct {
	ID              int64
	ChamadoID       int64
	RemetenteID     int64
	RemetenteNome   string
	RemetentePerfil Perfil
	Conteudo        string
	VisivelCliente  bool
	EnviadoEm       time.Time
}
