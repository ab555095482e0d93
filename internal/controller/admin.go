package controller

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"expenseportal/internal/draft"
	"expenseportal/internal/model"
	"expenseportal/internal/notice"
	"expenseportal/internal/session"
	"expenseportal/internal/textutil"
	"expenseportal/pkg/api"
)

// AdminBackend is the slice of the API client the admin controller needs.
type AdminBackend interface {
	AdminListCategorias(ctx context.Context) ([]model.Categoria, error)
	CreateCategoria(ctx context.Context, payload model.CategoriaPayload) (model.Categoria, error)
	InativarCategoria(ctx context.Context, id int64) error
	AdminListSolicitacoes(ctx context.Context, query api.ListQuery) (model.Page, error)
	Decisao(ctx context.Context, id int64, payload model.DecisaoPayload) (model.Solicitacao, error)
	PedidoInfo(ctx context.Context, id int64, comentario string) (model.Solicitacao, error)
	DeleteSolicitacao(ctx context.Context, id int64) error
	Estatisticas(ctx context.Context) (model.Stats, error)
	ListContas(ctx context.Context) ([]model.Conta, error)
	ChangeSenha(ctx context.Context, usuario string, payload model.SenhaPayload) error
}

// Confirmation action kinds owned by the admin controller.
const (
	actionReprovar         notice.ActionKind = "solicitacao.reprovar"
	actionDeleteSolic      notice.ActionKind = "solicitacao.delete"
	actionInativarCategory notice.ActionKind = "categoria.inativar"
)

type reprovarPayload struct {
	ID      int64
	Decisao model.DecisaoPayload
}

// Admin is the reviewing-side controller: decisions, clarification
// requests, deletions, category management, statistics and accounts.
type Admin struct {
	mu      sync.Mutex
	backend AdminBackend
	session *session.Session
	notices *notice.Manager
	gate    *notice.Gate
	logger  *logrus.Logger

	categories   []model.Categoria
	solicitacoes []model.Solicitacao
	total        int64
	totalPages   int
	page         int
	search       string
	sortKey      string
	statusFilter string
	selectedID   int64

	categoriaForm  draft.CategoriaForm
	decisaoForm    draft.DecisaoForm
	pedidoInfoForm string

	loading           bool
	categoriaSaving   bool
	decisionLoading   bool
	pedidoInfoLoading bool
	deleteLoading     bool

	stats        *model.Stats
	statsLoading bool

	contas        []model.Conta
	contasLoading bool
	senhaSaving   bool

	reloadGen uint64
	onSelect  func(id int64)
}

func NewAdmin(backend AdminBackend, sess *session.Session, notices *notice.Manager, gate *notice.Gate, logger *logrus.Logger) *Admin {
	a := &Admin{
		backend:      backend,
		session:      sess,
		notices:      notices,
		gate:         gate,
		logger:       logger,
		sortKey:      model.SortRecent,
		statusFilter: model.StatusPendente,
	}
	gate.Register(actionReprovar, a.confirmReprovar)
	gate.Register(actionDeleteSolic, a.confirmDelete)
	gate.Register(actionInativarCategory, a.confirmInativar)
	sess.OnInvalidate(a.Reset)
	return a
}

// SetOnSelect wires the selection side effect (attachment reload keyed on
// the resolved id).
func (a *Admin) SetOnSelect(fn func(id int64)) {
	a.mu.Lock()
	a.onSelect = fn
	a.mu.Unlock()
}

// --- State accessors ---

func (a *Admin) Categories() []model.Categoria {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Categoria, len(a.categories))
	copy(out, a.categories)
	return out
}

func (a *Admin) Solicitacoes() []model.Solicitacao {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Solicitacao, len(a.solicitacoes))
	copy(out, a.solicitacoes)
	return out
}

func (a *Admin) SelectedID() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selectedID
}

func (a *Admin) Selected() *model.Solicitacao {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s := model.SelectOf(a.solicitacoes, a.selectedID); s != nil {
		out := *s
		return &out
	}
	return nil
}

func (a *Admin) StatusFilter() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusFilter
}

func (a *Admin) Page() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

func (a *Admin) TotalPages() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalPages
}

func (a *Admin) Total() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

func (a *Admin) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

func (a *Admin) Stats() *model.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stats == nil {
		return nil
	}
	stats := *a.stats
	return &stats
}

func (a *Admin) Contas() []model.Conta {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Conta, len(a.contas))
	copy(out, a.contas)
	return out
}

func (a *Admin) DecisaoForm() draft.DecisaoForm {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.decisaoForm
}

func (a *Admin) CategoriaForm() draft.CategoriaForm {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.categoriaForm
}

func (a *Admin) PedidoInfoForm() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pedidoInfoForm
}

// --- Form editing ---

func (a *Admin) SetCategoriaForm(form draft.CategoriaForm) {
	a.mu.Lock()
	a.categoriaForm = form
	a.mu.Unlock()
}

func (a *Admin) SetDecisaoForm(form draft.DecisaoForm) {
	a.mu.Lock()
	a.decisaoForm = form
	a.mu.Unlock()
}

func (a *Admin) SetPedidoInfoForm(comentario string) {
	a.mu.Lock()
	a.pedidoInfoForm = comentario
	a.mu.Unlock()
}

// --- Filters and selection ---

func (a *Admin) SetStatusFilter(ctx context.Context, status string) {
	a.mu.Lock()
	a.statusFilter = status
	a.page = 0
	a.mu.Unlock()
	a.Reload(ctx)
}

func (a *Admin) SetSearch(ctx context.Context, value string) {
	a.mu.Lock()
	a.search = value
	a.page = 0
	a.mu.Unlock()
	a.Reload(ctx)
}

func (a *Admin) SetSort(ctx context.Context, value string) {
	a.mu.Lock()
	a.sortKey = value
	a.page = 0
	a.mu.Unlock()
	a.Reload(ctx)
}

func (a *Admin) SetPage(ctx context.Context, page int) {
	if page < 0 {
		page = 0
	}
	a.mu.Lock()
	a.page = page
	a.mu.Unlock()
	a.Reload(ctx)
}

// Select moves the cursor. The decision and clarification forms belong to
// the selected solicitacao, so a cursor move resets them.
func (a *Admin) Select(id int64) {
	a.mu.Lock()
	if a.selectedID == id {
		a.mu.Unlock()
		return
	}
	a.selectedID = id
	a.decisaoForm = draft.DecisaoForm{}
	a.pedidoInfoForm = ""
	onSelect := a.onSelect
	a.mu.Unlock()
	if onSelect != nil {
		onSelect(id)
	}
}

// --- Reload ---

// Reload fetches categories and the current admin page. The TODOS filter
// suppresses the status parameter. Stale in-flight reloads are superseded
// by generation token; the page index clamps to the last valid page.
func (a *Admin) Reload(ctx context.Context) {
	a.mu.Lock()
	a.reloadGen++
	gen := a.reloadGen
	a.loading = true
	query := api.ListQuery{
		Status: a.statusFilter,
		Q:      a.search,
		Sort:   a.sortKey,
		Page:   a.page,
		Size:   model.DefaultPageSize,
	}
	a.mu.Unlock()

	categories, catErr := a.backend.AdminListCategorias(ctx)
	page, listErr := a.backend.AdminListSolicitacoes(ctx, query)

	a.mu.Lock()
	if gen != a.reloadGen {
		a.mu.Unlock()
		return
	}
	a.loading = false
	if catErr != nil || listErr != nil {
		err := catErr
		if err == nil {
			err = listErr
		}
		a.mu.Unlock()
		a.notices.Error(errMessage(err, "Erro ao carregar dados."))
		return
	}

	a.categories = categories
	a.solicitacoes = page.Items
	a.total = page.TotalElements
	a.totalPages = page.TotalPages

	if a.page > page.LastPage() {
		a.page = page.LastPage()
		a.mu.Unlock()
		a.Reload(ctx)
		return
	}

	previous := a.selectedID
	a.selectedID = reconcileSelection(a.solicitacoes, a.selectedID)
	if a.selectedID != previous {
		a.decisaoForm = draft.DecisaoForm{}
		a.pedidoInfoForm = ""
	}
	changed := a.selectedID != previous
	selected := a.selectedID
	onSelect := a.onSelect
	a.mu.Unlock()

	if changed && onSelect != nil {
		onSelect(selected)
	}
}

// --- Categories ---

// CreateCategoria validates the category form, creates the category, clears
// the form and reloads.
func (a *Admin) CreateCategoria(ctx context.Context) {
	a.mu.Lock()
	if a.categoriaSaving {
		a.mu.Unlock()
		return
	}
	a.categoriaSaving = true
	form := a.categoriaForm
	a.mu.Unlock()
	defer a.clearFlag(&a.categoriaSaving)

	if msg := form.Validate(); msg != "" {
		a.notices.Error(msg)
		return
	}

	if _, err := a.backend.CreateCategoria(ctx, form.ToPayload()); err != nil {
		a.notices.Error(errMessage(err, "Erro ao criar categoria."))
		return
	}
	a.notices.Success("Categoria criada.")
	a.mu.Lock()
	a.categoriaForm = draft.CategoriaForm{}
	a.mu.Unlock()
	a.Reload(ctx)
}

// InativarCategoria asks for confirmation before the irreversible
// deactivation.
func (a *Admin) InativarCategoria(categoria model.Categoria) {
	if categoria.ID == 0 {
		return
	}
	a.gate.Open(notice.Action{
		Kind:         actionInativarCategory,
		Title:        "Inativar categoria",
		Message:      "Deseja inativar a categoria \"" + categoria.Nome + "\"?",
		ConfirmLabel: "Inativar",
		Payload:      categoria.ID,
	})
}

func (a *Admin) confirmInativar(ctx context.Context, payload interface{}) {
	id, ok := payload.(int64)
	if !ok {
		return
	}
	a.mu.Lock()
	if a.categoriaSaving {
		a.mu.Unlock()
		return
	}
	a.categoriaSaving = true
	a.mu.Unlock()
	defer a.clearFlag(&a.categoriaSaving)

	if err := a.backend.InativarCategoria(ctx, id); err != nil {
		a.notices.Error(errMessage(err, "Erro ao inativar categoria."))
		return
	}
	a.notices.Success("Categoria inativada.")
	a.Reload(ctx)
}

// --- Decisions ---

// Decide validates and applies a decision on the selected PENDENTE
// solicitacao. Rejections route through the confirmation gate; approvals
// apply directly.
func (a *Admin) Decide(ctx context.Context, decisao string) {
	selected := a.Selected()
	if selected == nil || selected.Status != model.StatusPendente {
		a.notices.Error("Selecione uma solicitacao pendente.")
		return
	}
	a.mu.Lock()
	if a.decisionLoading {
		a.mu.Unlock()
		return
	}
	form := a.decisaoForm
	a.mu.Unlock()

	if msg := form.Validate(decisao); msg != "" {
		a.notices.Error(msg)
		return
	}
	payload := form.ToPayload(decisao)

	if decisao == model.DecisaoReprovado {
		a.gate.Open(notice.Action{
			Kind:         actionReprovar,
			Title:        "Reprovar solicitacao",
			Message:      "Tem certeza que deseja reprovar esta solicitacao?",
			ConfirmLabel: "Reprovar",
			Payload:      reprovarPayload{ID: selected.ID, Decisao: payload},
		})
		return
	}
	a.applyDecision(ctx, selected.ID, payload)
}

func (a *Admin) confirmReprovar(ctx context.Context, payload interface{}) {
	target, ok := payload.(reprovarPayload)
	if !ok {
		return
	}
	a.applyDecision(ctx, target.ID, target.Decisao)
}

func (a *Admin) applyDecision(ctx context.Context, id int64, payload model.DecisaoPayload) {
	a.mu.Lock()
	if a.decisionLoading {
		a.mu.Unlock()
		return
	}
	a.decisionLoading = true
	a.mu.Unlock()
	defer a.clearFlag(&a.decisionLoading)

	if _, err := a.backend.Decisao(ctx, id, payload); err != nil {
		a.notices.Error(errMessage(err, "Erro ao decidir solicitacao."))
		return
	}
	a.logger.WithFields(logrus.Fields{
		"solicitacao_id": id,
		"decisao":        payload.Decisao,
	}).Info("decision recorded")
	a.notices.Success("Decisao registrada.")
	a.mu.Lock()
	a.decisaoForm = draft.DecisaoForm{}
	a.mu.Unlock()
	a.Reload(ctx)
	a.LoadStats(ctx, true)
}

// PedidoInfo validates the clarification comment and moves the selected
// PENDENTE solicitacao to PENDENTE_INFO. Returns whether it was sent.
func (a *Admin) PedidoInfo(ctx context.Context) bool {
	selected := a.Selected()
	if selected == nil || selected.Status != model.StatusPendente {
		a.notices.Error("Selecione uma solicitacao pendente.")
		return false
	}
	a.mu.Lock()
	if a.pedidoInfoLoading {
		a.mu.Unlock()
		return false
	}
	a.pedidoInfoLoading = true
	comentario := textutil.Trim(a.pedidoInfoForm)
	a.mu.Unlock()
	defer a.clearFlag(&a.pedidoInfoLoading)

	if msg := draft.ValidatePedidoInfo(comentario); msg != "" {
		a.notices.Error(msg)
		return false
	}

	if _, err := a.backend.PedidoInfo(ctx, selected.ID, comentario); err != nil {
		a.notices.Error(errMessage(err, "Erro ao pedir ajuste."))
		return false
	}
	a.notices.Success("Pedido de ajuste enviado.")
	a.mu.Lock()
	a.pedidoInfoForm = ""
	a.mu.Unlock()
	a.Reload(ctx)
	return true
}

// --- Deletion ---

// DeleteSolicitacao asks for confirmation before the irreversible delete of
// the selected solicitacao.
func (a *Admin) DeleteSolicitacao() {
	selected := a.Selected()
	if selected == nil {
		a.notices.Error("Selecione uma solicitacao.")
		return
	}
	a.gate.Open(notice.Action{
		Kind:         actionDeleteSolic,
		Title:        "Excluir solicitacao",
		Message:      "Tem certeza que deseja excluir esta solicitacao? Essa acao nao pode ser desfeita.",
		ConfirmLabel: "Excluir",
		Payload:      selected.ID,
	})
}

func (a *Admin) confirmDelete(ctx context.Context, payload interface{}) {
	id, ok := payload.(int64)
	if !ok {
		return
	}
	a.mu.Lock()
	if a.deleteLoading {
		a.mu.Unlock()
		return
	}
	a.deleteLoading = true
	a.mu.Unlock()
	defer a.clearFlag(&a.deleteLoading)

	if err := a.backend.DeleteSolicitacao(ctx, id); err != nil {
		a.notices.Error(errMessage(err, "Erro ao excluir solicitacao."))
		return
	}
	a.notices.Success("Solicitacao excluida.")
	a.Reload(ctx)
	a.LoadStats(ctx, true)
}

// --- Statistics ---

// LoadStats fetches the aggregate statistics. The result is memoized:
// without force an already-loaded value is kept, and a load already in
// flight makes the call a no-op.
func (a *Admin) LoadStats(ctx context.Context, force bool) {
	a.mu.Lock()
	if a.statsLoading || (!force && a.stats != nil) {
		a.mu.Unlock()
		return
	}
	a.statsLoading = true
	a.mu.Unlock()
	defer a.clearFlag(&a.statsLoading)

	stats, err := a.backend.Estatisticas(ctx)
	if err != nil {
		a.notices.Error(errMessage(err, "Erro ao carregar estatisticas."))
		return
	}
	a.mu.Lock()
	a.stats = &stats
	a.mu.Unlock()
}

// --- Accounts ---

// LoadContas fetches the account listing.
func (a *Admin) LoadContas(ctx context.Context) {
	a.mu.Lock()
	if a.contasLoading {
		a.mu.Unlock()
		return
	}
	a.contasLoading = true
	a.mu.Unlock()
	defer a.clearFlag(&a.contasLoading)

	contas, err := a.backend.ListContas(ctx)
	if err != nil {
		a.notices.Error(errMessage(err, "Erro ao carregar contas."))
		return
	}
	a.mu.Lock()
	a.contas = contas
	a.mu.Unlock()
}

// ChangeSenha updates an account password. Changing one's own account
// requires the current password; other accounts do not.
func (a *Admin) ChangeSenha(ctx context.Context, usuario, senhaAtual, novaSenha string) {
	if textutil.IsBlank(usuario) {
		a.notices.Error("Selecione uma conta.")
		return
	}
	if textutil.IsBlank(novaSenha) {
		a.notices.Error("Informe a nova senha.")
		return
	}
	own := usuario == a.session.Usuario()
	if own && textutil.IsBlank(senhaAtual) {
		a.notices.Error("Informe a senha atual.")
		return
	}

	a.mu.Lock()
	if a.senhaSaving {
		a.mu.Unlock()
		return
	}
	a.senhaSaving = true
	a.mu.Unlock()
	defer a.clearFlag(&a.senhaSaving)

	payload := model.SenhaPayload{NovaSenha: textutil.Trim(novaSenha)}
	if own {
		atual := textutil.Trim(senhaAtual)
		payload.SenhaAtual = &atual
	}
	if err := a.backend.ChangeSenha(ctx, usuario, payload); err != nil {
		a.notices.Error(errMessage(err, "Erro ao alterar senha."))
		return
	}
	a.notices.Success("Senha alterada.")
}

// Reset returns the controller to its initial shape, used on logout.
func (a *Admin) Reset() {
	a.mu.Lock()
	a.categories = nil
	a.solicitacoes = nil
	a.selectedID = 0
	a.statusFilter = model.StatusPendente
	a.search = ""
	a.sortKey = model.SortRecent
	a.page = 0
	a.total = 0
	a.totalPages = 0
	a.categoriaForm = draft.CategoriaForm{}
	a.decisaoForm = draft.DecisaoForm{}
	a.pedidoInfoForm = ""
	a.loading = false
	a.categoriaSaving = false
	a.decisionLoading = false
	a.pedidoInfoLoading = false
	a.deleteLoading = false
	a.stats = nil
	a.statsLoading = false
	a.contas = nil
	a.contasLoading = false
	a.senhaSaving = false
	a.mu.Unlock()
}

func (a *Admin) clearFlag(flag *bool) {
	a.mu.Lock()
	*flag = false
	a.mu.Unlock()
}
