// Package devserver is an in-memory stand-in for the expense-control
// backend, faithful to its wire contract. Integration tests boot it through
// httptest and local frontend work runs it via cmd/devserver. Data lives in
// process memory and is seeded at boot; nothing persists.
package devserver

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"expenseportal/internal/model"
	"expenseportal/internal/textutil"
)

// apiError carries the HTTP status plus the JSON error envelope fields.
type apiError struct {
	Status  int
	Message string
	Details []string
}

func (e *apiError) Error() string { return e.Message }

func errNotFound(what string) *apiError {
	return &apiError{Status: http.StatusNotFound, Message: what + " nao encontrada."}
}

func errConflict(message string) *apiError {
	return &apiError{Status: http.StatusConflict, Message: message}
}

func errBadRequest(message string, details ...string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: message, Details: details}
}

// Conta is a seeded account. The password is stored as a bcrypt hash only.
type Conta struct {
	Usuario string
	Nome    string
	Tipo    string
	Filial  string
	hash    []byte
}

type storedAnexo struct {
	meta    model.Attachment
	content []byte
}

// Store holds all backend state behind one mutex. The dataset is small by
// construction (a dev fixture), so coarse locking is fine.
type Store struct {
	mu            sync.Mutex
	contas        map[string]*Conta
	categorias    []model.Categoria
	solicitacoes  []model.Solicitacao
	anexos        []storedAnexo
	nextCategoria int64
	nextSolic     int64
	nextAnexo     int64
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		contas:        make(map[string]*Conta),
		nextCategoria: 1,
		nextSolic:     1,
		nextAnexo:     1,
		now:           time.Now,
	}
}

// timestamp formats like the Java backend: LocalDateTime without a zone.
func (s *Store) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05")
}

// SeedConta registers an account with a bcrypt-hashed password.
func (s *Store) SeedConta(usuario, senha, nome, tipo, filial string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.mu.Lock()
	s.contas[usuario] = &Conta{Usuario: usuario, Nome: nome, Tipo: tipo, Filial: filial, hash: hash}
	s.mu.Unlock()
	return nil
}

// Authenticate verifies a credential pair against the seeded accounts.
func (s *Store) Authenticate(usuario, senha string) (*Conta, bool) {
	s.mu.Lock()
	conta, ok := s.contas[usuario]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(conta.hash, []byte(senha)) != nil {
		return nil, false
	}
	return conta, true
}

// ChangeSenha replaces an account password. When the target is the caller's
// own account the current password must verify first.
func (s *Store) ChangeSenha(caller *Conta, usuario string, senhaAtual *string, novaSenha string) error {
	if textutil.IsBlank(novaSenha) {
		return errBadRequest("Informe a nova senha.")
	}
	s.mu.Lock()
	conta, ok := s.contas[usuario]
	s.mu.Unlock()
	if !ok {
		return errNotFound("Conta")
	}
	if caller.Usuario == usuario {
		if senhaAtual == nil || bcrypt.CompareHashAndPassword(conta.hash, []byte(*senhaAtual)) != nil {
			return errBadRequest("Senha atual incorreta.")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(novaSenha), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	s.mu.Lock()
	conta.hash = hash
	s.mu.Unlock()
	return nil
}

// ListContas returns the accounts without credentials.
func (s *Store) ListContas() []model.Conta {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Conta, 0, len(s.contas))
	for _, c := range s.contas {
		out = append(out, model.Conta{Usuario: c.Usuario, Nome: c.Nome, Tipo: c.Tipo, Filial: c.Filial})
	}
	return out
}

// --- Categories ---

func (s *Store) ListCategorias(activeOnly bool) []model.Categoria {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Categoria, 0, len(s.categorias))
	for _, c := range s.categorias {
		if activeOnly && !c.Ativa {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *Store) CreateCategoria(payload model.CategoriaPayload) (model.Categoria, error) {
	if textutil.IsBlank(payload.Nome) {
		return model.Categoria{}, errBadRequest("Informe o nome da categoria.")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	categoria := model.Categoria{
		ID:        s.nextCategoria,
		Nome:      textutil.Trim(payload.Nome),
		Descricao: payload.Descricao,
		Ativa:     true,
	}
	s.nextCategoria++
	s.categorias = append(s.categorias, categoria)
	return categoria, nil
}

// InativarCategoria performs the one-way deactivation.
func (s *Store) InativarCategoria(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categorias {
		if s.categorias[i].ID == id {
			s.categorias[i].Ativa = false
			return nil
		}
	}
	return errNotFound("Categoria")
}

func (s *Store) findCategoria(id int64) *model.Categoria {
	for i := range s.categorias {
		if s.categorias[i].ID == id {
			return &s.categorias[i]
		}
	}
	return nil
}

// --- Solicitacoes ---

// ListSolicitacoes applies the server-side pipeline: status filter, branch
// scope, accent-insensitive search, sort (id tie-break) and pagination.
func (s *Store) ListSolicitacoes(filial, status, q, sortKey string, page, size int) model.Page {
	s.mu.Lock()
	matched := make([]model.Solicitacao, 0, len(s.solicitacoes))
	for _, item := range s.solicitacoes {
		if filial != "" && item.Filial != filial {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		if !model.MatchesSearch(item, q) {
			continue
		}
		matched = append(matched, item)
	}
	s.mu.Unlock()

	sorted := model.SortSolicitacoes(matched, sortKey)

	if size <= 0 {
		size = model.DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	total := len(sorted)
	totalPages := (total + size - 1) / size
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return model.Page{
		Items:         sorted[start:end],
		TotalElements: int64(total),
		TotalPages:    totalPages,
		Page:          page,
		Size:          size,
	}
}

func (s *Store) CreateSolicitacao(conta *Conta, payload model.SolicitacaoPayload) (model.Solicitacao, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categoria := s.findCategoria(payload.CategoriaID)
	if categoria == nil || !categoria.Ativa {
		return model.Solicitacao{}, errBadRequest("Categoria invalida.")
	}
	if textutil.IsBlank(payload.Titulo) || !payload.ValorEstimado.IsPositive() {
		return model.Solicitacao{}, errBadRequest("Solicitacao invalida.", "titulo e valor estimado sao obrigatorios")
	}

	now := s.timestamp()
	solicitacao := model.Solicitacao{
		ID:              s.nextSolic,
		Filial:          conta.Filial,
		CategoriaID:     categoria.ID,
		CategoriaNome:   categoria.Nome,
		Titulo:          payload.Titulo,
		SolicitanteNome: payload.SolicitanteNome,
		Descricao:       payload.Descricao,
		OndeVaiSerUsado: payload.OndeVaiSerUsado,
		ValorEstimado:   payload.ValorEstimado,
		Fornecedor:      payload.Fornecedor,
		FormaPagamento:  payload.FormaPagamento,
		Observacoes:     payload.Observacoes,
		Status:          model.StatusPendente,
		EnviadoEm:       now,
		Linhas:          linhasFromPayload(payload.Linhas),
		Historico: []model.Historico{{
			Autor:    model.AutorFilial,
			Acao:     model.AcaoCriada,
			CriadoEm: now,
		}},
	}
	s.nextSolic++
	s.solicitacoes = append(s.solicitacoes, solicitacao)
	return solicitacao, nil
}

// Reenvio replaces a PENDENTE_INFO solicitacao's data and returns it to
// PENDENTE.
func (s *Store) Reenvio(conta *Conta, id int64, payload model.ReenvioPayload) (model.Solicitacao, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findSolicitacao(id)
	if item == nil || item.Filial != conta.Filial {
		return model.Solicitacao{}, errNotFound("Solicitacao")
	}
	if item.Status != model.StatusPendenteInfo {
		return model.Solicitacao{}, errConflict("Solicitacao nao aguarda ajuste.")
	}
	categoria := s.findCategoria(payload.Dados.CategoriaID)
	if categoria == nil {
		return model.Solicitacao{}, errBadRequest("Categoria invalida.")
	}

	item.CategoriaID = categoria.ID
	item.CategoriaNome = categoria.Nome
	item.Titulo = payload.Dados.Titulo
	item.SolicitanteNome = payload.Dados.SolicitanteNome
	item.Descricao = payload.Dados.Descricao
	item.OndeVaiSerUsado = payload.Dados.OndeVaiSerUsado
	item.ValorEstimado = payload.Dados.ValorEstimado
	item.Fornecedor = payload.Dados.Fornecedor
	item.FormaPagamento = payload.Dados.FormaPagamento
	item.Observacoes = payload.Dados.Observacoes
	item.Linhas = linhasFromPayload(payload.Dados.Linhas)
	item.Status = model.StatusPendente
	item.Historico = append(item.Historico, model.Historico{
		Autor:      model.AutorFilial,
		Acao:       model.AcaoReenviada,
		Comentario: payload.Comentario,
		CriadoEm:   s.timestamp(),
	})
	return *item, nil
}

// Decisao applies an approval or rejection to a PENDENTE solicitacao. An
// approval without an explicit value approves the estimated amount.
func (s *Store) Decisao(id int64, payload model.DecisaoPayload) (model.Solicitacao, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findSolicitacao(id)
	if item == nil {
		return model.Solicitacao{}, errNotFound("Solicitacao")
	}
	if item.Status != model.StatusPendente {
		return model.Solicitacao{}, errConflict("Solicitacao nao esta pendente.")
	}

	now := s.timestamp()
	switch payload.Decisao {
	case model.DecisaoAprovado:
		item.Status = model.StatusAprovado
		valor := item.ValorEstimado
		if payload.ValorAprovado != nil {
			valor = *payload.ValorAprovado
		}
		item.ValorAprovado = &valor
		item.Historico = append(item.Historico, model.Historico{
			Autor: model.AutorAdmin, Acao: model.AcaoAprovada, Comentario: payload.Comentario, CriadoEm: now,
		})
	case model.DecisaoReprovado:
		item.Status = model.StatusReprovado
		item.Historico = append(item.Historico, model.Historico{
			Autor: model.AutorAdmin, Acao: model.AcaoReprovada, Comentario: payload.Comentario, CriadoEm: now,
		})
	default:
		return model.Solicitacao{}, errBadRequest("Decisao invalida.")
	}
	item.DecididoEm = now
	item.ComentarioDecisao = payload.Comentario
	return *item, nil
}

// PedidoInfo moves a PENDENTE solicitacao to PENDENTE_INFO.
func (s *Store) PedidoInfo(id int64, comentario string) (model.Solicitacao, error) {
	if textutil.IsBlank(comentario) {
		return model.Solicitacao{}, errBadRequest("Informe o comentario para o pedido.")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findSolicitacao(id)
	if item == nil {
		return model.Solicitacao{}, errNotFound("Solicitacao")
	}
	if item.Status != model.StatusPendente {
		return model.Solicitacao{}, errConflict("Solicitacao nao esta pendente.")
	}
	item.Status = model.StatusPendenteInfo
	item.Historico = append(item.Historico, model.Historico{
		Autor: model.AutorAdmin, Acao: model.AcaoPedidoInfo, Comentario: &comentario, CriadoEm: s.timestamp(),
	})
	return *item, nil
}

func (s *Store) DeleteSolicitacao(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.solicitacoes {
		if s.solicitacoes[i].ID == id {
			s.solicitacoes = append(s.solicitacoes[:i], s.solicitacoes[i+1:]...)
			kept := s.anexos[:0]
			for _, anexo := range s.anexos {
				if anexo.meta.SolicitacaoID != id {
					kept = append(kept, anexo)
				}
			}
			s.anexos = kept
			return nil
		}
	}
	return errNotFound("Solicitacao")
}

func (s *Store) findSolicitacao(id int64) *model.Solicitacao {
	for i := range s.solicitacoes {
		if s.solicitacoes[i].ID == id {
			return &s.solicitacoes[i]
		}
	}
	return nil
}

// Estatisticas aggregates decision totals: approved counts and values
// overall and broken down by category and branch, plus per-status counts.
func (s *Store) Estatisticas() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.Stats{
		ValorTotalAprovado: decimal.Zero,
		PorCategoria:       []model.StatsBreakdown{},
		PorFilial:          []model.StatsBreakdown{},
		PorStatus:          []model.StatusResumo{},
	}
	porCategoria := make(map[string]*model.StatsBreakdown)
	porFilial := make(map[string]*model.StatsBreakdown)
	porStatus := make(map[string]int64)

	for _, item := range s.solicitacoes {
		porStatus[item.Status]++
		if item.Status != model.StatusAprovado {
			continue
		}
		valor := item.ValorEstimado
		if item.ValorAprovado != nil {
			valor = *item.ValorAprovado
		}
		stats.TotalAprovadas++
		stats.ValorTotalAprovado = stats.ValorTotalAprovado.Add(valor)
		bumpBreakdown(porCategoria, item.CategoriaNome, valor)
		bumpBreakdown(porFilial, item.Filial, valor)
	}

	for _, b := range porCategoria {
		stats.PorCategoria = append(stats.PorCategoria, *b)
	}
	for _, b := range porFilial {
		stats.PorFilial = append(stats.PorFilial, *b)
	}
	for status, total := range porStatus {
		stats.PorStatus = append(stats.PorStatus, model.StatusResumo{Status: status, Total: total})
	}
	return stats
}

func bumpBreakdown(m map[string]*model.StatsBreakdown, label string, valor decimal.Decimal) {
	b, ok := m[label]
	if !ok {
		b = &model.StatsBreakdown{Label: label, ValorTotal: decimal.Zero}
		m[label] = b
	}
	b.Total++
	b.ValorTotal = b.ValorTotal.Add(valor)
}

// --- Attachments ---

const maxAnexos = 5

func (s *Store) ListAnexos(solicitacaoID int64) ([]model.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findSolicitacao(solicitacaoID) == nil {
		return nil, errNotFound("Solicitacao")
	}
	out := []model.Attachment{}
	for _, anexo := range s.anexos {
		if anexo.meta.SolicitacaoID == solicitacaoID {
			out = append(out, anexo.meta)
		}
	}
	return out, nil
}

func (s *Store) AddAnexo(conta *Conta, solicitacaoID int64, name, contentType string, content []byte) (model.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findSolicitacao(solicitacaoID) == nil {
		return model.Attachment{}, errNotFound("Solicitacao")
	}
	count := 0
	for _, anexo := range s.anexos {
		if anexo.meta.SolicitacaoID == solicitacaoID {
			count++
		}
	}
	if count >= maxAnexos {
		return model.Attachment{}, errConflict("Limite de 5 anexos por solicitacao.")
	}
	meta := model.Attachment{
		ID:            s.nextAnexo,
		SolicitacaoID: solicitacaoID,
		OriginalName:  name,
		ContentType:   contentType,
		Size:          int64(len(content)),
		UploadedBy:    conta.Usuario,
		CreatedAt:     s.timestamp(),
	}
	s.nextAnexo++
	s.anexos = append(s.anexos, storedAnexo{meta: meta, content: content})
	return meta, nil
}

func (s *Store) DeleteAnexo(attachmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.anexos {
		if s.anexos[i].meta.ID == attachmentID {
			s.anexos = append(s.anexos[:i], s.anexos[i+1:]...)
			return nil
		}
	}
	return errNotFound("Anexo")
}

func (s *Store) GetAnexo(attachmentID int64) (model.Attachment, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, anexo := range s.anexos {
		if anexo.meta.ID == attachmentID {
			return anexo.meta, anexo.content, nil
		}
	}
	return model.Attachment{}, nil, errNotFound("Anexo")
}

func linhasFromPayload(linhas []model.LinhaPayload) []model.Linha {
	out := make([]model.Linha, 0, len(linhas))
	for _, linha := range linhas {
		out = append(out, model.Linha{
			Descricao:  linha.Descricao,
			Valor:      linha.Valor,
			Observacao: linha.Observacao,
		})
	}
	return out
}
