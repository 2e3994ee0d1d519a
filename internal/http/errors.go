package http

import (
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/smdu-sp/antares-backend/internal/apperr"
)

// writeServiceError traduz erros dos serviços para o envelope HTTP.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		var details map[string]string
		if field := apperr.FieldOf(err); field != "" {
			details = map[string]string{"campo": field}
		}
		WriteError(w, http.StatusBadRequest, CodigoValidacao, err.Error(), details)
	case errors.Is(err, apperr.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodigoNaoEncontrado, err.Error(), nil)
	case errors.Is(err, apperr.ErrConflict):
		WriteError(w, http.StatusConflict, CodigoConflito, err.Error(), nil)
	case errors.Is(err, apperr.ErrForbidden):
		WriteError(w, http.StatusForbidden, CodigoProibido, err.Error(), nil)
	default:
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("erro não tratado")
		WriteError(w, http.StatusInternalServerError, CodigoInterno, "erro interno", nil)
	}
}
