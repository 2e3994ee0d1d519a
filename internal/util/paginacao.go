package util

const (
	LimitePadrao = 10
	LimiteMaximo = 100
)

// Paginacao representa os parâmetros pagina/limite das listagens.
type Paginacao struct {
	Pagina int
	Limite int
}

// Normalizar aplica defaults e limites aceitos.
func (p Paginacao) Normalizar() Paginacao {
	if p.Pagina < 1 {
		p.Pagina = 1
	}
	if p.Limite < 1 {
		p.Limite = LimitePadrao
	}
	if p.Limite > LimiteMaximo {
		p.Limite = LimiteMaximo
	}
	return p
}

// Offset devolve o deslocamento SQL da página.
func (p Paginacao) Offset() int {
	n := p.Normalizar()
	return (n.Pagina - 1) * n.Limite
}

// Pagina agrega itens de uma listagem paginada.
type Pagina[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Pagina int `json:"pagina"`
	Limite int `json:"limite"`
}

// NovaPagina monta o resultado garantindo slice não nulo.
func NovaPagina[T any](items []T, total int, p Paginacao) Pagina[T] {
	if items == nil {
		items = []T{}
	}
	n := p.Normalizar()
	return Pagina[T]{Items: items, Total: total, Pagina: n.Pagina, Limite: n.Limite}
}
