package andamento

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/smdu-sp/antares-backend/internal/apperr"
	"github.com/smdu-sp/antares-backend/internal/util"
)

// CampoData distingue campo de data omitido, enviado como null ou com valor.
type CampoData struct {
	Presente bool
	Nulo     bool
	Bruto    string
	invalido bool
}

// UnmarshalJSON é chamado apenas quando a chave está presente, inclusive para null.
func (c *CampoData) UnmarshalJSON(b []byte) error {
	c.Presente = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		c.Nulo = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		c.Bruto = string(b)
		c.invalido = true
		return nil
	}
	c.Bruto = s
	return nil
}

// Resolver converte o campo em Mudanca, validando a data.
func (c CampoData) Resolver(campo string, loc *time.Location) (Mudanca, error) {
	if !c.Presente {
		return Mudanca{}, nil
	}
	if c.Nulo {
		return Mudanca{Presente: true}, nil
	}
	if c.invalido || strings.TrimSpace(c.Bruto) == "" {
		return Mudanca{}, apperr.Validation(campo, campo+" deve ser uma data válida")
	}
	t, err := util.ParseData(campo, c.Bruto, loc)
	if err != nil {
		return Mudanca{}, err
	}
	return Mudanca{Presente: true, Valor: &t}, nil
}
