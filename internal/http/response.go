package http

import (
	"encoding/json"
	"net/http"
)

// Códigos de erro expostos no envelope.
const (
	CodigoValidacao     = "VALIDATION"
	CodigoNaoEncontrado = "NOT_FOUND"
	CodigoConflito      = "CONFLICT"
	CodigoProibido      = "FORBIDDEN"
	CodigoInterno       = "INTERNAL"
	CodigoAuth          = "AUTH"
)

// Envelope é o formato de toda resposta: data preenchido em sucesso, error em falha.
type Envelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Data: data})
}

// WriteError escreve envelope de erro.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	writeEnvelope(w, status, Envelope{Error: &ErrorBody{Code: code, Message: message, Details: details}})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	// observações e assuntos saem literais, sem escapar "<", ">" e "&"
	enc.SetEscapeHTML(false)
	_ = enc.Encode(env)
}
