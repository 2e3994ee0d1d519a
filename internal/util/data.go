package util

import (
	"strings"
	"time"

	"github.com/smdu-sp/antares-backend/internal/apperr"
)

var formatosLocais = []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// ParseData interpreta datas aceitas pela API; valores sem fuso usam loc.
func ParseData(campo, valor string, loc *time.Location) (time.Time, error) {
	valor = strings.TrimSpace(valor)
	if valor == "" {
		return time.Time{}, apperr.Validation(campo, campo+" obrigatório")
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, valor); err == nil {
		return t, nil
	}
	for _, layout := range formatosLocais {
		if t, err := time.ParseInLocation(layout, valor, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validation(campo, campo+" deve ser uma data válida")
}

// InicioDoDia trunca t à meia-noite no fuso informado.
func InicioDoDia(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FimDoDia devolve 23:59:59.999 do dia de t no fuso informado.
func FimDoDia(t time.Time, loc *time.Location) time.Time {
	return InicioDoDia(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}
