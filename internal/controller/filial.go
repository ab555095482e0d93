package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"expenseportal/internal/attachment"
	"expenseportal/internal/draft"
	"expenseportal/internal/model"
	"expenseportal/internal/notice"
	"expenseportal/internal/session"
	"expenseportal/internal/textutil"
	"expenseportal/pkg/api"
)

// FilialBackend is the slice of the API client the branch controller needs.
type FilialBackend interface {
	ListCategorias(ctx context.Context) ([]model.Categoria, error)
	ListSolicitacoes(ctx context.Context, query api.ListQuery) (model.Page, error)
	CreateSolicitacao(ctx context.Context, payload model.SolicitacaoPayload) (model.Solicitacao, error)
	Reenvio(ctx context.Context, id int64, payload model.ReenvioPayload) (model.Solicitacao, error)
}

// Filial is the branch-side controller: it submits and resubmits
// solicitacoes and manages the pending attachment queue of the create flow.
type Filial struct {
	mu      sync.Mutex
	backend FilialBackend
	session *session.Session
	notices *notice.Manager
	coord   *attachment.Coordinator
	logger  *logrus.Logger

	categories        []model.Categoria
	solicitacoes      []model.Solicitacao
	total             int64
	totalPages        int
	page              int
	search            string
	sortKey           string
	selectedID        int64
	form              draft.Draft
	editID            int64
	reenvioComentario string
	loading           bool
	submitting        bool
	reloadGen         uint64

	onSelect func(id int64)
}

func NewFilial(backend FilialBackend, sess *session.Session, notices *notice.Manager, coord *attachment.Coordinator, logger *logrus.Logger) *Filial {
	f := &Filial{
		backend: backend,
		session: sess,
		notices: notices,
		coord:   coord,
		logger:  logger,
		sortKey: model.SortRecent,
		form:    draft.Empty(),
	}
	sess.OnInvalidate(f.Reset)
	return f
}

// SetOnSelect wires the selection side effect (attachment reload keyed on
// the resolved id). The callback runs after every cursor change.
func (f *Filial) SetOnSelect(fn func(id int64)) {
	f.mu.Lock()
	f.onSelect = fn
	f.mu.Unlock()
}

// --- State accessors ---

func (f *Filial) Categories() []model.Categoria {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Categoria, len(f.categories))
	copy(out, f.categories)
	return out
}

func (f *Filial) Solicitacoes() []model.Solicitacao {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Solicitacao, len(f.solicitacoes))
	copy(out, f.solicitacoes)
	return out
}

func (f *Filial) SelectedID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selectedID
}

// Selected re-derives the selected solicitacao from the cursor and the
// current collection.
func (f *Filial) Selected() *model.Solicitacao {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s := model.SelectOf(f.solicitacoes, f.selectedID); s != nil {
		out := *s
		return &out
	}
	return nil
}

func (f *Filial) Draft() draft.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

func (f *Filial) EditID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editID
}

func (f *Filial) ReenvioComentario() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reenvioComentario
}

func (f *Filial) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Filial) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *Filial) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

func (f *Filial) TotalPages() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalPages
}

func (f *Filial) Total() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// --- Filters ---

// SetSearch updates the free-text filter, returns to the first page and
// reloads.
func (f *Filial) SetSearch(ctx context.Context, value string) {
	f.mu.Lock()
	f.search = value
	f.page = 0
	f.mu.Unlock()
	f.Reload(ctx)
}

// SetSort updates the sort key, returns to the first page and reloads.
func (f *Filial) SetSort(ctx context.Context, value string) {
	f.mu.Lock()
	f.sortKey = value
	f.page = 0
	f.mu.Unlock()
	f.Reload(ctx)
}

// SetPage moves to another page and reloads.
func (f *Filial) SetPage(ctx context.Context, page int) {
	if page < 0 {
		page = 0
	}
	f.mu.Lock()
	f.page = page
	f.mu.Unlock()
	f.Reload(ctx)
}

// Select moves the cursor to an id present in the current page.
func (f *Filial) Select(id int64) {
	f.mu.Lock()
	if f.selectedID == id {
		f.mu.Unlock()
		return
	}
	f.selectedID = id
	onSelect := f.onSelect
	f.mu.Unlock()
	if onSelect != nil {
		onSelect(id)
	}
}

// --- Reload ---

// Reload fetches categories and the current solicitacao page. Filtering,
// sorting and pagination are server-side; the controller only clamps the
// page index when it fell past the end and reconciles the cursor. A reload
// started later always supersedes this one: stale results are discarded.
func (f *Filial) Reload(ctx context.Context) {
	f.mu.Lock()
	f.reloadGen++
	gen := f.reloadGen
	f.loading = true
	query := api.ListQuery{Q: f.search, Sort: f.sortKey, Page: f.page, Size: model.DefaultPageSize}
	f.mu.Unlock()

	categories, catErr := f.backend.ListCategorias(ctx)
	page, listErr := f.backend.ListSolicitacoes(ctx, query)

	f.mu.Lock()
	if gen != f.reloadGen {
		f.mu.Unlock()
		return
	}
	f.loading = false
	if catErr != nil || listErr != nil {
		err := catErr
		if err == nil {
			err = listErr
		}
		f.mu.Unlock()
		f.notices.Error(errMessage(err, "Erro ao carregar dados."))
		return
	}

	f.categories = categories
	f.solicitacoes = page.Items
	f.total = page.TotalElements
	f.totalPages = page.TotalPages

	if f.page > page.LastPage() {
		f.page = page.LastPage()
		f.mu.Unlock()
		f.Reload(ctx)
		return
	}

	previous := f.selectedID
	f.selectedID = reconcileSelection(f.solicitacoes, f.selectedID)
	changed := f.selectedID != previous
	selected := f.selectedID
	onSelect := f.onSelect
	f.mu.Unlock()

	if changed && onSelect != nil {
		onSelect(selected)
	}
}

// --- Draft editing ---

// EditDraft mutates the in-progress form under the controller's lock.
func (f *Filial) EditDraft(mutate func(d *draft.Draft)) {
	f.mu.Lock()
	mutate(&f.form)
	f.mu.Unlock()
}

func (f *Filial) AddLinha() {
	f.EditDraft(func(d *draft.Draft) { d.AddLinha() })
}

func (f *Filial) UpdateLinha(index int, linha draft.Linha) {
	f.EditDraft(func(d *draft.Draft) { d.UpdateLinha(index, linha) })
}

func (f *Filial) RemoveLinha(index int) {
	f.EditDraft(func(d *draft.Draft) { d.RemoveLinha(index) })
}

func (f *Filial) SetReenvioComentario(value string) {
	f.mu.Lock()
	f.reenvioComentario = value
	f.mu.Unlock()
}

// StartReenvio enters resubmit mode for the selected solicitacao. Only a
// PENDENTE_INFO solicitacao can be resubmitted.
func (f *Filial) StartReenvio() {
	f.mu.Lock()
	selected := model.SelectOf(f.solicitacoes, f.selectedID)
	if selected == nil || selected.Status != model.StatusPendenteInfo {
		f.mu.Unlock()
		return
	}
	f.editID = selected.ID
	f.form = draft.FromSolicitacao(*selected)
	f.reenvioComentario = ""
	f.mu.Unlock()
	f.coord.ClearPending()
}

// CancelReenvio leaves resubmit mode and discards the draft.
func (f *Filial) CancelReenvio() {
	f.mu.Lock()
	f.editID = 0
	f.form = draft.Empty()
	f.reenvioComentario = ""
	f.mu.Unlock()
	f.coord.ClearPending()
}

// --- Submission ---

// Submit validates the draft and either creates a solicitacao or resubmits
// the one in edit mode. After a successful creation the pending attachment
// queue is uploaded against the new id; failed files stay queued for retry.
// The list is reloaded either way and a fresh creation selects the new id.
func (f *Filial) Submit(ctx context.Context) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return
	}
	f.submitting = true
	form := f.form
	editID := f.editID
	reenvioComentario := f.reenvioComentario
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if msg := form.Validate(reenvioComentario); msg != "" {
		f.notices.Error(msg)
		return
	}
	payload := form.ToPayload()
	wasEditing := editID != 0

	var saved model.Solicitacao
	var err error
	if wasEditing {
		reenvio := model.ReenvioPayload{Dados: payload}
		if trimmed := trimToNil(reenvioComentario); trimmed != nil {
			reenvio.Comentario = trimmed
		}
		saved, err = f.backend.Reenvio(ctx, editID, reenvio)
	} else {
		saved, err = f.backend.CreateSolicitacao(ctx, payload)
	}
	if err != nil {
		f.notices.Error(errMessage(err, "Erro ao salvar solicitacao."))
		return
	}

	f.logger.WithFields(logrus.Fields{
		"solicitacao_id": saved.ID,
		"reenvio":        wasEditing,
	}).Info("solicitacao saved")

	if wasEditing {
		f.mu.Lock()
		f.editID = 0
		f.reenvioComentario = ""
		f.mu.Unlock()
	}

	message := "Solicitacao enviada."
	kind := notice.KindSuccess
	if wasEditing {
		message = "Solicitacao reenviada."
	}

	pending := f.coord.Pending()
	if !wasEditing && len(pending) > 0 && saved.ID != 0 {
		failures := f.coord.UploadBatch(ctx, saved.ID, pending)
		if len(failures) == 0 {
			message += " Anexos enviados."
			f.coord.ClearPending()
		} else {
			kind = notice.KindError
			message += fmt.Sprintf(" %d anexo(s) falharam no envio. %s", len(failures), failures[0].Error)
			retry := make([]attachment.File, 0, len(failures))
			for _, failure := range failures {
				retry = append(retry, failure.File)
			}
			f.coord.ReplacePending(retry)
		}
		f.coord.Load(ctx, saved.ID)
	} else {
		// Resubmission never carries the pending queue.
		f.coord.ClearPending()
	}

	f.notices.Show(kind, message)

	f.mu.Lock()
	f.form = draft.Empty()
	f.mu.Unlock()

	f.Reload(ctx)

	if !wasEditing && saved.ID != 0 {
		f.Select(saved.ID)
	}
}

// Reset returns the controller to its initial shape, used on logout.
func (f *Filial) Reset() {
	f.mu.Lock()
	f.categories = nil
	f.solicitacoes = nil
	f.selectedID = 0
	f.form = draft.Empty()
	f.editID = 0
	f.reenvioComentario = ""
	f.loading = false
	f.submitting = false
	f.page = 0
	f.total = 0
	f.totalPages = 0
	f.search = ""
	f.sortKey = model.SortRecent
	f.mu.Unlock()
}

func trimToNil(value string) *string {
	trimmed := textutil.Trim(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
