package model

import "github.com/shopspring/decimal"

// SolicitacaoPayload is the creation/resubmission wire body, produced from a
// draft by the validation pipeline. Blank optional fields are nulled, blank
// line items are already filtered out.
type SolicitacaoPayload struct {
	CategoriaID     int64           `json:"categoriaId"`
	Titulo          string          `json:"titulo"`
	SolicitanteNome string          `json:"solicitanteNome"`
	Descricao       string          `json:"descricao"`
	OndeVaiSerUsado string          `json:"ondeVaiSerUsado"`
	ValorEstimado   decimal.Decimal `json:"valorEstimado"`
	Fornecedor      *string         `json:"fornecedor"`
	FormaPagamento  *string         `json:"formaPagamento"`
	Observacoes     *string         `json:"observacoes"`
	Linhas          []LinhaPayload  `json:"linhas"`
}

// LinhaPayload is one line item of the creation body.
type LinhaPayload struct {
	Descricao  string          `json:"descricao"`
	Valor      decimal.Decimal `json:"valor"`
	Observacao *string         `json:"observacao"`
}

// ReenvioPayload wraps a resubmission: the optional branch comment plus the
// full replacement data.
type ReenvioPayload struct {
	Comentario *string            `json:"comentario"`
	Dados      SolicitacaoPayload `json:"dados"`
}

// DecisaoPayload is the admin decision body. ValorAprovado is only
// meaningful for approval and stays nil to mean "approve as estimated".
type DecisaoPayload struct {
	Decisao       string           `json:"decisao"`
	ValorAprovado *decimal.Decimal `json:"valorAprovado"`
	Comentario    *string          `json:"comentario"`
}

// PedidoInfoPayload is the clarification-request body.
type PedidoInfoPayload struct {
	Comentario string `json:"comentario"`
}

// CategoriaPayload is the category creation body.
type CategoriaPayload struct {
	Nome      string  `json:"nome"`
	Descricao *string `json:"descricao"`
}

// SenhaPayload is the password-change body. SenhaAtual is required only when
// an admin changes their own account.
type SenhaPayload struct {
	SenhaAtual *string `json:"senhaAtual"`
	NovaSenha  string  `json:"novaSenha"`
}
