package repository

import "errors"

var (
	// ErrPendenteExistente indicates the chamado already has a PENDENTE
	// transfer request; enforced by the partial unique index.
	ErrPendenteExistente = errors.New("transferência pendente já existe para o chamado")

	// ErrEstadoInvalido indicates the chamado was no longer transferable
	// when the row lock was acquired.
	ErrEstadoInvalido = errors.New("chamado em estado não transferível")

	// ErrNaoPendente indicates the transfer request was already resolved
	// when the resolution transaction ran.
	ErrNaoPendente = errors.New("transferência não está pendente")
)
