// Package permissao concentra os papéis de usuário e a regra de visibilidade por unidade.
package permissao

import (
	"strings"

	"github.com/google/uuid"
)

const (
	DEV = "DEV"
	ADM = "ADM"
	TEC = "TEC"
	USR = "USR"
)

var validas = map[string]struct{}{
	DEV: {},
	ADM: {},
	TEC: {},
	USR: {},
}

// Normalizar padroniza o papel em maiúsculas.
func Normalizar(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}

// Valida indica se o papel é conhecido.
func Valida(p string) bool {
	_, ok := validas[Normalizar(p)]
	return ok
}

// VeTodasUnidades indica papéis privilegiados, que enxergam recursos de qualquer unidade.
func VeTodasUnidades(p string) bool {
	switch Normalizar(p) {
	case DEV, ADM:
		return true
	}
	return false
}

// PodeAcessar decide se o solicitante enxerga um recurso pertencente a unidadeRecurso.
func PodeAcessar(p string, unidadeUsuario, unidadeRecurso uuid.UUID) bool {
	if VeTodasUnidades(p) {
		return true
	}
	return unidadeUsuario != uuid.Nil && unidadeUsuario == unidadeRecurso
}

// Escopo devolve o filtro de unidade aplicado às listagens, ou nil quando não há restrição.
func Escopo(p string, unidadeUsuario uuid.UUID) *uuid.UUID {
	if VeTodasUnidades(p) {
		return nil
	}
	u := unidadeUsuario
	return &u
}

// PodeConceder indica se quem tem o papel p pode atribuir o papel alvo a outro usuário.
// Somente DEV concede DEV.
func PodeConceder(p, alvo string) bool {
	p, alvo = Normalizar(p), Normalizar(alvo)
	if !Valida(alvo) || !VeTodasUnidades(p) {
		return false
	}
	if alvo == DEV {
		return p == DEV
	}
	return true
}

// Solicitante identifica quem executa uma operação.
type Solicitante struct {
	ID        uuid.UUID
	Permissao string
	UnidadeID uuid.UUID
}

// VeTodas indica se o solicitante enxerga todas as unidades.
func (s Solicitante) VeTodas() bool {
	return VeTodasUnidades(s.Permissao)
}

// PodeAcessar aplica a regra de visibilidade ao recurso da unidade informada.
func (s Solicitante) PodeAcessar(unidadeRecurso uuid.UUID) bool {
	return PodeAcessar(s.Permissao, s.UnidadeID, unidadeRecurso)
}

// Escopo devolve o filtro de unidade do solicitante.
func (s Solicitante) Escopo() *uuid.UUID {
	return Escopo(s.Permissao, s.UnidadeID)
}
