package draft

import (
	"fmt"

	"expenseportal/internal/model"
	"expenseportal/internal/textutil"
)

// Field length limits, fixed by the backend.
const (
	LimitTitulo             = 120
	LimitSolicitanteNome    = 120
	LimitDescricao          = 2000
	LimitOndeVaiSerUsado    = 255
	LimitFornecedor         = 120
	LimitFormaPagamento     = 50
	LimitObservacoes        = 1000
	LimitLinhaDescricao     = 160
	LimitLinhaObservacao    = 300
	LimitCategoriaNome      = 120
	LimitCategoriaDescricao = 255
	LimitDecisaoComentario  = 500
	LimitPedidoInfo         = 500
	LimitReenvioComentario  = 500
)

// Validate runs the ordered field checks and returns the first violation
// message, or "" when the draft is submittable. Line items that are blank
// across all three fields are skipped silently.
func (d Draft) Validate(reenvioComentario string) string {
	if textutil.IsBlank(d.CategoriaID) {
		return "Selecione uma categoria."
	}
	if textutil.IsBlank(d.Titulo) {
		return "Informe o titulo."
	}
	if textutil.ExceedsLimit(d.Titulo, LimitTitulo) {
		return fmt.Sprintf("Titulo com no maximo %d caracteres.", LimitTitulo)
	}
	if textutil.IsBlank(d.SolicitanteNome) {
		return "Informe o nome do solicitante."
	}
	if textutil.ExceedsLimit(d.SolicitanteNome, LimitSolicitanteNome) {
		return fmt.Sprintf("Nome do solicitante com no maximo %d caracteres.", LimitSolicitanteNome)
	}
	if textutil.IsBlank(d.Descricao) {
		return "Informe a descricao."
	}
	if textutil.ExceedsLimit(d.Descricao, LimitDescricao) {
		return fmt.Sprintf("Descricao com no maximo %d caracteres.", LimitDescricao)
	}
	if textutil.IsBlank(d.OndeVaiSerUsado) {
		return "Informe onde vai ser usado."
	}
	if textutil.ExceedsLimit(d.OndeVaiSerUsado, LimitOndeVaiSerUsado) {
		return fmt.Sprintf("Onde vai ser usado com no maximo %d caracteres.", LimitOndeVaiSerUsado)
	}
	valor, ok := textutil.ParseMoney(d.ValorEstimado)
	if !ok || !valor.IsPositive() {
		return "Informe um valor estimado valido."
	}
	if !textutil.IsBlank(d.Fornecedor) && textutil.ExceedsLimit(d.Fornecedor, LimitFornecedor) {
		return fmt.Sprintf("Fornecedor com no maximo %d caracteres.", LimitFornecedor)
	}
	if !textutil.IsBlank(d.FormaPagamento) && textutil.ExceedsLimit(d.FormaPagamento, LimitFormaPagamento) {
		return fmt.Sprintf("Forma de pagamento com no maximo %d caracteres.", LimitFormaPagamento)
	}
	if !textutil.IsBlank(d.Observacoes) && textutil.ExceedsLimit(d.Observacoes, LimitObservacoes) {
		return fmt.Sprintf("Observacoes com no maximo %d caracteres.", LimitObservacoes)
	}
	if !textutil.IsBlank(reenvioComentario) && textutil.ExceedsLimit(reenvioComentario, LimitReenvioComentario) {
		return fmt.Sprintf("Comentario do reenvio com no maximo %d caracteres.", LimitReenvioComentario)
	}

	for index, linha := range d.Linhas {
		descricao := textutil.Trim(linha.Descricao)
		valorRaw := textutil.Trim(linha.Valor)
		observacao := textutil.Trim(linha.Observacao)
		if descricao == "" && valorRaw == "" && observacao == "" {
			continue
		}
		itemLabel := fmt.Sprintf("item %d", index+1)
		if descricao == "" {
			return fmt.Sprintf("Informe o nome do %s.", itemLabel)
		}
		if textutil.ExceedsLimit(descricao, LimitLinhaDescricao) {
			return fmt.Sprintf("Nome do %s com no maximo %d caracteres.", itemLabel, LimitLinhaDescricao)
		}
		if valorRaw == "" {
			return fmt.Sprintf("Informe o valor do %s.", itemLabel)
		}
		linhaValor, linhaOK := textutil.ParseMoney(linha.Valor)
		if !linhaOK || !linhaValor.IsPositive() {
			return fmt.Sprintf("Informe um valor valido para o %s.", itemLabel)
		}
		if observacao != "" && textutil.ExceedsLimit(observacao, LimitLinhaObservacao) {
			return fmt.Sprintf("Observacao do %s com no maximo %d caracteres.", itemLabel, LimitLinhaObservacao)
		}
	}

	return ""
}

// CategoriaForm is the admin category creation form.
type CategoriaForm struct {
	Nome      string
	Descricao string
}

func (f CategoriaForm) Validate() string {
	if textutil.IsBlank(f.Nome) {
		return "Informe o nome da categoria."
	}
	if textutil.ExceedsLimit(f.Nome, LimitCategoriaNome) {
		return fmt.Sprintf("Nome da categoria com no maximo %d caracteres.", LimitCategoriaNome)
	}
	if !textutil.IsBlank(f.Descricao) && textutil.ExceedsLimit(f.Descricao, LimitCategoriaDescricao) {
		return fmt.Sprintf("Descricao da categoria com no maximo %d caracteres.", LimitCategoriaDescricao)
	}
	return ""
}

// ToPayload builds the category wire body; call only after Validate.
func (f CategoriaForm) ToPayload() model.CategoriaPayload {
	payload := model.CategoriaPayload{Nome: textutil.Trim(f.Nome)}
	if desc := textutil.Trim(f.Descricao); desc != "" {
		payload.Descricao = &desc
	}
	return payload
}

// DecisaoForm is the admin decision form.
type DecisaoForm struct {
	ValorAprovado string
	Comentario    string
}

// Validate checks a decision form. An empty approved value on approval is
// allowed and means "approve as estimated".
func (f DecisaoForm) Validate(decisao string) string {
	if !textutil.IsBlank(f.Comentario) && textutil.ExceedsLimit(f.Comentario, LimitDecisaoComentario) {
		return fmt.Sprintf("Comentario com no maximo %d caracteres.", LimitDecisaoComentario)
	}
	valorRaw := textutil.Trim(f.ValorAprovado)
	if decisao == model.DecisaoAprovado && valorRaw != "" {
		valor, ok := textutil.ParseMoney(valorRaw)
		if !ok || !valor.IsPositive() {
			return "Informe um valor aprovado valido."
		}
	}
	return ""
}

// ToPayload builds the decision wire body; call only after Validate.
func (f DecisaoForm) ToPayload(decisao string) model.DecisaoPayload {
	payload := model.DecisaoPayload{Decisao: decisao}
	if valorRaw := textutil.Trim(f.ValorAprovado); decisao == model.DecisaoAprovado && valorRaw != "" {
		if valor, ok := textutil.ParseMoney(valorRaw); ok {
			payload.ValorAprovado = &valor
		}
	}
	if comentario := textutil.Trim(f.Comentario); comentario != "" {
		payload.Comentario = &comentario
	}
	return payload
}

// ValidatePedidoInfo checks the clarification-request comment.
func ValidatePedidoInfo(comentario string) string {
	if textutil.IsBlank(comentario) {
		return "Informe o comentario para o pedido."
	}
	if textutil.ExceedsLimit(comentario, LimitPedidoInfo) {
		return fmt.Sprintf("Comentario com no maximo %d caracteres.", LimitPedidoInfo)
	}
	return ""
}
