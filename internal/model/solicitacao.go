package model

import (
	"github.com/shopspring/decimal"
)

// Status enum constants for Solicitacao
const (
	StatusPendente     = "PENDENTE"
	StatusAprovado     = "APROVADO"
	StatusReprovado    = "REPROVADO"
	StatusPendenteInfo = "PENDENTE_INFO"

	// StatusTodos is not a real status: it is the admin filter value that
	// suppresses the status query parameter entirely.
	StatusTodos = "TODOS"
)

// Historico action enum constants
const (
	AcaoCriada     = "CRIADA"
	AcaoPedidoInfo = "PEDIDO_INFO"
	AcaoReenviada  = "REENVIADA"
	AcaoAprovada   = "APROVADA"
	AcaoReprovada  = "REPROVADA"
)

// Historico actor enum constants
const (
	AutorAdmin  = "ADMIN"
	AutorFilial = "FILIAL"
)

// Decision enum constants (wire values of the decisao field)
const (
	DecisaoAprovado  = "APROVADO"
	DecisaoReprovado = "REPROVADO"
)

// Solicitacao is the central entity: an expense request submitted by a
// branch, tracked through the approval state machine
// PENDENTE -> APROVADO | REPROVADO | PENDENTE_INFO -> (reenvio) -> PENDENTE.
// The client holds a read-mostly copy that is replaced wholesale on reload.
type Solicitacao struct {
	ID                int64            `json:"id"`
	Filial            string           `json:"filial"`
	CategoriaID       int64            `json:"categoriaId"`
	CategoriaNome     string           `json:"categoriaNome"`
	Titulo            string           `json:"titulo"`
	SolicitanteNome   string           `json:"solicitanteNome"`
	Descricao         string           `json:"descricao"`
	OndeVaiSerUsado   string           `json:"ondeVaiSerUsado"`
	ValorEstimado     decimal.Decimal  `json:"valorEstimado"`
	ValorAprovado     *decimal.Decimal `json:"valorAprovado"`
	Fornecedor        *string          `json:"fornecedor"`
	FormaPagamento    *string          `json:"formaPagamento"`
	Observacoes       *string          `json:"observacoes"`
	Status            string           `json:"status"`
	EnviadoEm         string           `json:"enviadoEm"`
	DecididoEm        string           `json:"decididoEm,omitempty"`
	ComentarioDecisao *string          `json:"comentarioDecisao"`
	Linhas            []Linha          `json:"linhas"`
	Historico         []Historico      `json:"historico"`
}

// Linha is a sub-expense entry within a Solicitacao. Insertion order is
// display order.
type Linha struct {
	Descricao  string          `json:"descricao"`
	Valor      decimal.Decimal `json:"valor"`
	Observacao *string         `json:"observacao"`
}

// Historico is an append-only, server-authoritative audit entry.
type Historico struct {
	Autor      string  `json:"autor"`
	Acao       string  `json:"acao"`
	Comentario *string `json:"comentario"`
	CriadoEm   string  `json:"criadoEm"`
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusAprovado || status == StatusReprovado
}

// SelectOf resolves the selection cursor against a collection. It returns
// nil when the id is absent, so callers re-derive the selected item after
// every collection replacement instead of caching a stale pointer.
func SelectOf(items []Solicitacao, id int64) *Solicitacao {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
