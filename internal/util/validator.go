package util

import (
	"net/mail"
	"strings"

	"github.com/smdu-sp/antares-backend/internal/apperr"
)

// ValidateEmail retorna erro de validação para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation("email", "email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validation("email", "email inválido")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return apperr.Validation("senha", "senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation(field, field+" obrigatório")
	}
	return nil
}
