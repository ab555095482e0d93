// Package draft converts the mutable in-progress solicitacao form into a
// validated wire payload, and validates the decision and clarification
// forms. All checks mirror the backend's limits for UX only; the backend
// remains the source of truth.
package draft

import (
	"strconv"

	"expenseportal/internal/model"
	"expenseportal/internal/textutil"
)

// Draft is the volatile, editable projection of a Solicitacao used for the
// create and resubmit flows. Every field is kept in raw string form until
// submission.
type Draft struct {
	CategoriaID     string
	Titulo          string
	SolicitanteNome string
	Descricao       string
	OndeVaiSerUsado string
	ValorEstimado   string
	Fornecedor      string
	FormaPagamento  string
	Observacoes     string
	Linhas          []Linha
}

// Linha is one editable line-item row.
type Linha struct {
	Descricao  string
	Valor      string
	Observacao string
}

// Empty is the canonical empty-form constructor.
func Empty() Draft {
	return Draft{Linhas: []Linha{}}
}

// FromSolicitacao seeds a resubmission draft from a persisted solicitacao.
// The projection is lossy on purpose: numbers become editable strings.
func FromSolicitacao(s model.Solicitacao) Draft {
	d := Draft{
		Titulo:          s.Titulo,
		SolicitanteNome: s.SolicitanteNome,
		Descricao:       s.Descricao,
		OndeVaiSerUsado: s.OndeVaiSerUsado,
		ValorEstimado:   s.ValorEstimado.String(),
		Linhas:          make([]Linha, 0, len(s.Linhas)),
	}
	if s.CategoriaID != 0 {
		d.CategoriaID = strconv.FormatInt(s.CategoriaID, 10)
	}
	if s.Fornecedor != nil {
		d.Fornecedor = *s.Fornecedor
	}
	if s.FormaPagamento != nil {
		d.FormaPagamento = *s.FormaPagamento
	}
	if s.Observacoes != nil {
		d.Observacoes = *s.Observacoes
	}
	for _, linha := range s.Linhas {
		row := Linha{
			Descricao: linha.Descricao,
			Valor:     linha.Valor.String(),
		}
		if linha.Observacao != nil {
			row.Observacao = *linha.Observacao
		}
		d.Linhas = append(d.Linhas, row)
	}
	return d
}

// AddLinha appends a blank row.
func (d *Draft) AddLinha() {
	d.Linhas = append(d.Linhas, Linha{})
}

// UpdateLinha replaces the row at index; out-of-range indexes are ignored.
func (d *Draft) UpdateLinha(index int, linha Linha) {
	if index < 0 || index >= len(d.Linhas) {
		return
	}
	d.Linhas[index] = linha
}

// RemoveLinha splices the row at index; out-of-range indexes are ignored.
func (d *Draft) RemoveLinha(index int) {
	if index < 0 || index >= len(d.Linhas) {
		return
	}
	d.Linhas = append(d.Linhas[:index], d.Linhas[index+1:]...)
}

// ToPayload produces the wire payload: every string trimmed, blank optional
// fields nulled, and line items without both a description and a value
// dropped. A row holding only a note is a scratch row and is dropped
// silently; validation runs before this, so surviving rows parse cleanly.
func (d Draft) ToPayload() model.SolicitacaoPayload {
	categoriaID, _ := strconv.ParseInt(textutil.Trim(d.CategoriaID), 10, 64)
	valorEstimado, _ := textutil.ParseMoney(d.ValorEstimado)

	payload := model.SolicitacaoPayload{
		CategoriaID:     categoriaID,
		Titulo:          textutil.Trim(d.Titulo),
		SolicitanteNome: textutil.Trim(d.SolicitanteNome),
		Descricao:       textutil.Trim(d.Descricao),
		OndeVaiSerUsado: textutil.Trim(d.OndeVaiSerUsado),
		ValorEstimado:   valorEstimado,
		Fornecedor:      nilIfBlank(d.Fornecedor),
		FormaPagamento:  nilIfBlank(d.FormaPagamento),
		Observacoes:     nilIfBlank(d.Observacoes),
		Linhas:          []model.LinhaPayload{},
	}

	for _, linha := range d.Linhas {
		if textutil.IsBlank(linha.Descricao) || textutil.IsBlank(linha.Valor) {
			continue
		}
		valor, _ := textutil.ParseMoney(linha.Valor)
		payload.Linhas = append(payload.Linhas, model.LinhaPayload{
			Descricao:  textutil.Trim(linha.Descricao),
			Valor:      valor,
			Observacao: nilIfBlank(linha.Observacao),
		})
	}
	return payload
}

func nilIfBlank(value string) *string {
	trimmed := textutil.Trim(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
