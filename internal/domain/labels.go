package domain

// Canonical enum-to-label tables. Consumidores (telas, relatórios,
// mensagens de notificação) usam estes mapas em vez de redeclarar
// dicionários próprios.

var rotulosStatus = map[StatusChamado]string{
	StatusAberto:            "Aberto",
	StatusTriagem:           "Triagem",
	StatusEmAtendimento:     "Em Atendimento",
	StatusAguardandoCliente: "Aguardando Cliente",
	StatusAguardandoPeca:    "Aguardando Peça",
	StatusResolvido:         "Resolvido",
	StatusConcluido:         "Concluído",
	StatusReaberto:          "Reaberto",
}

var rotulosPrioridade = map[Prioridade]string{
	PrioridadeBaixa:   "Baixa",
	PrioridadeMedia:   "Média",
	PrioridadeAlta:    "Alta",
	PrioridadeCritica: "Crítica",
}

// RotuloStatus returns the display label for a status. Unknown values
// fall back to the raw enum string.
func RotuloStatus(s StatusChamado) string {
	if rotulo, ok := rotulosStatus[s]; ok {
		return rotulo
	}
	return string(s)
}

// RotuloPrioridade returns the display label for a priority.
func RotuloPrioridade(p Prioridade) string {
	if rotulo, ok := rotulosPrioridade[p]; ok {
		return rotulo
	}
	return string(p)
}

// StatusValido reports whether s is one of the known lifecycle states.
func StatusValido(s StatusChamado) bool {
	_, ok := rotulosStatus[s]
	return ok
}

// PrioridadeValida reports whether p is a known priority.
func PrioridadeValida(p Prioridade) bool {
	_, ok := rotulosPrioridade[p]
	return ok
}
