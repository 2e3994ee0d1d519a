// Package apperr define a taxonomia de erros compartilhada pelos serviços.
package apperr

import "errors"

var (
	ErrValidation = errors.New("dados inválidos")
	ErrNotFound   = errors.New("registro não encontrado")
	ErrConflict   = errors.New("registro duplicado")
	ErrForbidden  = errors.New("acesso negado")
)

// Error carrega a categoria, a mensagem legível e, quando houver, o campo envolvido.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

// Validation indica entrada malformada ou fora do intervalo aceito.
func Validation(field, message string) error {
	return &Error{Kind: ErrValidation, Field: field, Message: message}
}

// NotFound indica entidade inexistente.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Conflict indica violação de unicidade ou referência existente.
func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

// Forbidden indica operação não permitida ao solicitante.
func Forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// FieldOf devolve o campo associado ao erro, se houver.
func FieldOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
