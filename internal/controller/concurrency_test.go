package controller_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"expenseportal/internal/attachment"
	"expenseportal/internal/controller"
	"expenseportal/internal/draft"
	"expenseportal/internal/model"
	"expenseportal/internal/notice"
	"expenseportal/internal/session"
	"expenseportal/pkg/api"
)

// nullAnexos satisfies the attachment backend for tests that never touch
// uploads.
type nullAnexos struct{}

func (nullAnexos) ListAnexos(ctx context.Context, solicitacaoID int64) ([]model.Attachment, error) {
	return nil, nil
}

func (nullAnexos) UploadAnexo(ctx context.Context, solicitacaoID int64, filename, contentType string, content io.Reader) (model.Attachment, error) {
	return model.Attachment{}, nil
}

func (nullAnexos) DeleteAnexo(ctx context.Context, attachmentID int64) error { return nil }

func (nullAnexos) DownloadAnexo(ctx context.Context, attachmentID int64) (api.Download, error) {
	return api.Download{}, nil
}

func newTestFilial(backend controller.FilialBackend) *controller.Filial {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sess := session.New()
	notices := notice.NewManager()
	gate := notice.NewGate()
	coord := attachment.NewCoordinator(nullAnexos{}, notices, gate, logger)
	return controller.NewFilial(backend, sess, notices, coord, logger)
}

// scriptedListBackend hands each ListSolicitacoes call over to the test:
// call n signals entered[n] and then waits for its page on results[n].
type scriptedListBackend struct {
	mu      sync.Mutex
	calls   int
	entered []chan struct{}
	results []chan model.Page
}

func (b *scriptedListBackend) ListCategorias(ctx context.Context) ([]model.Categoria, error) {
	return nil, nil
}

func (b *scriptedListBackend) ListSolicitacoes(ctx context.Context, query api.ListQuery) (model.Page, error) {
	b.mu.Lock()
	n := b.calls
	b.calls++
	b.mu.Unlock()
	close(b.entered[n])
	return <-b.results[n], nil
}

func (b *scriptedListBackend) CreateSolicitacao(ctx context.Context, payload model.SolicitacaoPayload) (model.Solicitacao, error) {
	return model.Solicitacao{}, nil
}

func (b *scriptedListBackend) Reenvio(ctx context.Context, id int64, payload model.ReenvioPayload) (model.Solicitacao, error) {
	return model.Solicitacao{}, nil
}

func onePage(item model.Solicitacao) model.Page {
	return model.Page{
		Items:         []model.Solicitacao{item},
		TotalElements: 1,
		TotalPages:    1,
		Size:          model.DefaultPageSize,
	}
}

func TestFilialStaleReloadDiscarded(t *testing.T) {
	backend := &scriptedListBackend{
		entered: []chan struct{}{make(chan struct{}), make(chan struct{})},
		results: []chan model.Page{make(chan model.Page), make(chan model.Page)},
	}
	f := newTestFilial(backend)

	ctx := context.Background()
	firstDone := make(chan struct{})
	go func() {
		f.Reload(ctx)
		close(firstDone)
	}()
	<-backend.entered[0]

	secondDone := make(chan struct{})
	go func() {
		f.Reload(ctx)
		close(secondDone)
	}()
	<-backend.entered[1]

	// The later reload finishes first, then the earlier one straggles in.
	backend.results[1] <- onePage(model.Solicitacao{ID: 2, Titulo: "atual"})
	<-secondDone
	backend.results[0] <- onePage(model.Solicitacao{ID: 9, Titulo: "antiga"})
	<-firstDone

	items := f.Solicitacoes()
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("items = %+v, want only the later reload's result", items)
	}
	if f.SelectedID() != 2 {
		t.Fatalf("selected = %d, want 2", f.SelectedID())
	}
	if f.Loading() {
		t.Fatal("loading stuck after the stale reload settled")
	}
}

// blockingCreateBackend parks CreateSolicitacao until released so a second
// Submit can race the first one.
type blockingCreateBackend struct {
	mu      sync.Mutex
	creates int
	entered chan struct{}
	release chan struct{}
}

func (b *blockingCreateBackend) ListCategorias(ctx context.Context) ([]model.Categoria, error) {
	return nil, nil
}

func (b *blockingCreateBackend) ListSolicitacoes(ctx context.Context, query api.ListQuery) (model.Page, error) {
	return model.Page{Items: []model.Solicitacao{}}, nil
}

func (b *blockingCreateBackend) CreateSolicitacao(ctx context.Context, payload model.SolicitacaoPayload) (model.Solicitacao, error) {
	b.mu.Lock()
	b.creates++
	first := b.creates == 1
	b.mu.Unlock()
	if first {
		close(b.entered)
		<-b.release
	}
	return model.Solicitacao{ID: 10, Titulo: payload.Titulo}, nil
}

func (b *blockingCreateBackend) Reenvio(ctx context.Context, id int64, payload model.ReenvioPayload) (model.Solicitacao, error) {
	return model.Solicitacao{}, nil
}

func validDraft() draft.Draft {
	return draft.Draft{
		CategoriaID:     "1",
		Titulo:          "Cadeiras",
		SolicitanteNome: "Maria",
		Descricao:       "Cadeiras para a recepcao",
		OndeVaiSerUsado: "Recepcao",
		ValorEstimado:   "1.500,00",
		Linhas:          []draft.Linha{},
	}
}

func TestFilialSubmitWhileSubmittingIsNoOp(t *testing.T) {
	backend := &blockingCreateBackend{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := newTestFilial(backend)
	f.EditDraft(func(d *draft.Draft) { *d = validDraft() })

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		f.Submit(ctx)
		close(done)
	}()
	<-backend.entered

	if !f.Submitting() {
		t.Fatal("controller not marked submitting while the create is in flight")
	}
	f.Submit(ctx)

	close(backend.release)
	<-done
	if backend.creates != 1 {
		t.Fatalf("backend saw %d creates, want 1", backend.creates)
	}
	if f.Submitting() {
		t.Fatal("submitting flag stuck after settle")
	}
}

// blockingCategoriaBackend is an admin backend that parks CreateCategoria
// until released.
type blockingCategoriaBackend struct {
	mu      sync.Mutex
	creates int
	entered chan struct{}
	release chan struct{}
}

func (b *blockingCategoriaBackend) AdminListCategorias(ctx context.Context) ([]model.Categoria, error) {
	return nil, nil
}

func (b *blockingCategoriaBackend) CreateCategoria(ctx context.Context, payload model.CategoriaPayload) (model.Categoria, error) {
	b.mu.Lock()
	b.creates++
	first := b.creates == 1
	b.mu.Unlock()
	if first {
		close(b.entered)
		<-b.release
	}
	return model.Categoria{ID: 7, Nome: payload.Nome}, nil
}

func (b *blockingCategoriaBackend) InativarCategoria(ctx context.Context, id int64) error {
	return nil
}

func (b *blockingCategoriaBackend) AdminListSolicitacoes(ctx context.Context, query api.ListQuery) (model.Page, error) {
	return model.Page{Items: []model.Solicitacao{}}, nil
}

func (b *blockingCategoriaBackend) Decisao(ctx context.Context, id int64, payload model.DecisaoPayload) (model.Solicitacao, error) {
	return model.Solicitacao{}, nil
}

func (b *blockingCategoriaBackend) PedidoInfo(ctx context.Context, id int64, comentario string) (model.Solicitacao, error) {
	return model.Solicitacao{}, nil
}

func (b *blockingCategoriaBackend) DeleteSolicitacao(ctx context.Context, id int64) error {
	return nil
}

func (b *blockingCategoriaBackend) Estatisticas(ctx context.Context) (model.Stats, error) {
	return model.Stats{}, nil
}

func (b *blockingCategoriaBackend) ListContas(ctx context.Context) ([]model.Conta, error) {
	return nil, nil
}

func (b *blockingCategoriaBackend) ChangeSenha(ctx context.Context, usuario string, payload model.SenhaPayload) error {
	return nil
}

func TestAdminCreateCategoriaWhileSavingIsNoOp(t *testing.T) {
	backend := &blockingCategoriaBackend{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	sess := session.New()
	notices := notice.NewManager()
	gate := notice.NewGate()
	a := controller.NewAdmin(backend, sess, notices, gate, logger)
	a.SetCategoriaForm(draft.CategoriaForm{Nome: "Manutencao"})

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		a.CreateCategoria(ctx)
		close(done)
	}()
	<-backend.entered

	a.CreateCategoria(ctx)

	close(backend.release)
	<-done
	if backend.creates != 1 {
		t.Fatalf("backend saw %d creates, want 1", backend.creates)
	}
}
