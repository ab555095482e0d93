package controller_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"expenseportal/internal/attachment"
	"expenseportal/internal/controller"
	"expenseportal/internal/devserver"
	"expenseportal/internal/draft"
	"expenseportal/internal/model"
	"expenseportal/internal/notice"
	"expenseportal/internal/session"
	"expenseportal/pkg/api"
)

type env struct {
	store   *devserver.Store
	server  *httptest.Server
	session *session.Session
	notices *notice.Manager
	gate    *notice.Gate
	coord   *attachment.Coordinator
	filial  *controller.Filial
	admin   *controller.Admin
}

// newEnv boots the in-memory backend behind httptest and wires one full
// client core against it, signed in with the given seeded account.
func newEnv(t *testing.T, usuario, senha string) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := devserver.NewStore()
	if err := devserver.Seed(store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	server := httptest.NewServer(devserver.NewRouter(store, logger))
	t.Cleanup(server.Close)

	return attach(t, store, server, usuario, senha)
}

// attach builds a second client core against an already running env, used
// when a test needs both roles acting on the same dataset.
func attach(t *testing.T, store *devserver.Store, server *httptest.Server, usuario, senha string) *env {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sess := session.New()
	sess.SetCredentials(usuario, senha)
	client := api.NewClient(server.URL, sess, logger)
	notices := notice.NewManager()
	gate := notice.NewGate()
	coord := attachment.NewCoordinator(client, notices, gate, logger)
	sess.OnInvalidate(coord.Reset)
	sess.OnInvalidate(gate.Reset)

	return &env{
		store:   store,
		server:  server,
		session: sess,
		notices: notices,
		gate:    gate,
		coord:   coord,
		filial:  controller.NewFilial(client, sess, notices, coord, logger),
		admin:   controller.NewAdmin(client, sess, notices, gate, logger),
	}
}

func pdfFile(name string) attachment.File {
	return attachment.File{
		Name:        name,
		ContentType: "application/pdf",
		Size:        4,
		Content:     []byte("%PDF"),
	}
}

func TestFilialReloadSelectsFirstItem(t *testing.T) {
	e := newEnv(t, "filial.centro", "filial")
	e.filial.Reload(context.Background())

	items := e.filial.Solicitacoes()
	if len(items) != 2 {
		t.Fatalf("items = %d, want the branch's own 2", len(items))
	}
	if e.filial.SelectedID() != items[0].ID {
		t.Fatalf("selected = %d, want first item %d", e.filial.SelectedID(), items[0].ID)
	}
}

func TestFilialCreateWithPendingAttachments(t *testing.T) {
	e := newEnv(t, "filial.centro", "filial")
	ctx := context.Background()
	e.filial.Reload(ctx)

	e.coord.Queue([]attachment.File{pdfFile("orcamento.pdf")})
	e.filial.EditDraft(func(d *draft.Draft) {
		d.CategoriaID = "1"
		d.Titulo = "Office Chairs"
		d.SolicitanteNome = "Ana Souza"
		d.Descricao = "Cadeiras ergonomicas para o escritorio."
		d.OndeVaiSerUsado = "Escritorio"
		d.ValorEstimado = "1.500,00"
	})
	e.filial.Submit(ctx)

	selected := e.filial.Selected()
	if selected == nil || selected.Titulo != "Office Chairs" {
		t.Fatalf("selected after create = %+v", selected)
	}
	if !selected.ValorEstimado.Equal(decimal.RequireFromString("1500.00")) {
		t.Fatalf("valorEstimado = %s, want 1500.00", selected.ValorEstimado)
	}
	if selected.Status != model.StatusPendente {
		t.Fatalf("status = %s, want PENDENTE", selected.Status)
	}

	if got := len(e.coord.Pending()); got != 0 {
		t.Fatalf("pending after successful upload = %d, want 0", got)
	}
	if got := len(e.coord.Attachments()); got != 1 {
		t.Fatalf("persisted attachments = %d, want 1", got)
	}
	if current := e.notices.Current(); current == nil || current.Kind != notice.KindSuccess {
		t.Fatalf("notice = %+v, want success", current)
	}
	if e.filial.Total() != 3 {
		t.Fatalf("total = %d, want 3", e.filial.Total())
	}
	if form := e.filial.Draft(); form.Titulo != "" {
		t.Fatalf("draft not reset: %+v", form)
	}
}

func TestFilialSubmitInvalidDraftStopsAtNotice(t *testing.T) {
	e := newEnv(t, "filial.centro", "filial")
	ctx := context.Background()
	e.filial.Reload(ctx)

	e.filial.Submit(ctx)

	if current := e.notices.Current(); current == nil || current.Message != "Selecione uma categoria." {
		t.Fatalf("notice = %+v, want first validation message", current)
	}
	if e.filial.Total() != 2 {
		t.Fatalf("total = %d, invalid submit reached the backend", e.filial.Total())
	}
}

func TestFilialSearchResetsToFirstPage(t *testing.T) {
	e := newEnv(t, "filial.centro", "filial")
	ctx := context.Background()
	e.filial.Reload(ctx)

	e.filial.SetSearch(ctx, "monitor")
	if e.filial.Total() != 1 || e.filial.Page() != 0 {
		t.Fatalf("total = %d page = %d", e.filial.Total(), e.filial.Page())
	}
	items := e.filial.Solicitacoes()
	if len(items) != 1 || items[0].Titulo != "Monitor adicional" {
		t.Fatalf("items = %+v", items)
	}
}

func TestFilialPageClampReloads(t *testing.T) {
	e := newEnv(t, "filial.centro", "filial")
	ctx := context.Background()
	e.filial.Reload(ctx)

	e.filial.SetPage(ctx, 7)
	if e.filial.Page() != 0 {
		t.Fatalf("page = %d, want clamped to 0", e.filial.Page())
	}
	if len(e.filial.Solicitacoes()) != 2 {
		t.Fatal("clamped reload did not refetch the first page")
	}
}

func TestReenvioFlow(t *testing.T) {
	e := newEnv(t, "filial.centro", "filial")
	admin := attach(t, e.store, e.server, "admin", "admin")
	ctx := context.Background()

	e.filial.Reload(ctx)
	e.filial.Select(1)

	// Resubmit mode is refused while the solicitacao is still PENDENTE.
	e.filial.StartReenvio()
	if e.filial.EditID() != 0 {
		t.Fatal("reenvio started on a PENDENTE solicitacao")
	}

	admin.admin.Reload(ctx)
	admin.admin.Select(1)
	admin.admin.SetPedidoInfoForm("Detalhar fornecedor e prazo.")
	if !admin.admin.PedidoInfo(ctx) {
		t.Fatalf("pedido info failed: %+v", admin.notices.Current())
	}

	e.filial.Reload(ctx)
	e.filial.Select(1)
	if selected := e.filial.Selected(); selected.Status != model.StatusPendenteInfo {
		t.Fatalf("status = %s, want PENDENTE_INFO", selected.Status)
	}

	e.filial.StartReenvio()
	if e.filial.EditID() != 1 {
		t.Fatalf("editID = %d, want 1", e.filial.EditID())
	}
	if seeded := e.filial.Draft(); seeded.Titulo != "Cadeiras para recepcao" {
		t.Fatalf("draft not seeded from the selected solicitacao: %+v", seeded)
	}

	e.filial.EditDraft(func(d *draft.Draft) { d.Titulo = "Cadeiras para recepcao (rev)" })
	e.filial.SetReenvioComentario("Fornecedor e prazo adicionados.")
	e.filial.Submit(ctx)

	e.filial.Select(1)
	selected := e.filial.Selected()
	if selected.Status != model.StatusPendente || selected.Titulo != "Cadeiras para recepcao (rev)" {
		t.Fatalf("resubmitted = %+v", selected)
	}
	last := selected.Historico[len(selected.Historico)-1]
	if last.Acao != model.AcaoReenviada || last.Comentario == nil {
		t.Fatalf("historico tail = %+v", last)
	}
	if e.filial.EditID() != 0 {
		t.Fatal("edit mode not left after resubmission")
	}
}

func TestAdminDefaultFilterAndApprove(t *testing.T) {
	e := newEnv(t, "admin", "admin")
	ctx := context.Background()

	if e.admin.StatusFilter() != model.StatusPendente {
		t.Fatalf("default filter = %s", e.admin.StatusFilter())
	}
	e.admin.Reload(ctx)
	if e.admin.Total() != 2 {
		t.Fatalf("pending total = %d, want 2 (approved seed excluded)", e.admin.Total())
	}

	e.admin.Select(1)
	e.admin.Decide(ctx, model.DecisaoAprovado)

	if e.gate.Pending() != nil {
		t.Fatal("approval went through the confirmation gate")
	}
	page := e.store.ListSolicitacoes("", "", "", "", 0, 20)
	approved := findByID(t, page.Items, 1)
	if approved.Status != model.StatusAprovado {
		t.Fatalf("status = %s", approved.Status)
	}
	if approved.ValorAprovado == nil || !approved.ValorAprovado.Equal(approved.ValorEstimado) {
		t.Fatalf("empty form value should approve as estimated, got %v", approved.ValorAprovado)
	}
	if e.admin.Total() != 1 {
		t.Fatalf("pending total after approval = %d, want 1", e.admin.Total())
	}
	if stats := e.admin.Stats(); stats == nil || stats.TotalAprovadas != 2 {
		t.Fatalf("stats after decision = %+v, want refreshed totals", stats)
	}
}

func TestAdminRejectGoesThroughGate(t *testing.T) {
	e := newEnv(t, "admin", "admin")
	ctx := context.Background()
	e.admin.Reload(ctx)
	e.admin.Select(1)

	e.admin.Decide(ctx, model.DecisaoReprovado)
	pending := e.gate.Pending()
	if pending == nil || pending.ConfirmLabel != "Reprovar" {
		t.Fatalf("gate = %+v, want pending rejection", pending)
	}
	if item := findByID(t, e.store.ListSolicitacoes("", "", "", "", 0, 20).Items, 1); item.Status != model.StatusPendente {
		t.Fatal("rejection applied before confirmation")
	}

	// Cancelling is side-effect free.
	e.gate.Cancel()
	e.gate.Confirm(ctx)
	if item := findByID(t, e.store.ListSolicitacoes("", "", "", "", 0, 20).Items, 1); item.Status != model.StatusPendente {
		t.Fatal("rejection applied after cancel")
	}

	e.admin.Decide(ctx, model.DecisaoReprovado)
	e.gate.Confirm(ctx)
	if item := findByID(t, e.store.ListSolicitacoes("", "", "", "", 0, 20).Items, 1); item.Status != model.StatusReprovado {
		t.Fatalf("status = %s, want REPROVADO", item.Status)
	}
}

func TestAdminDeleteGatedAndCursorSnaps(t *testing.T) {
	e := newEnv(t, "admin", "admin")
	ctx := context.Background()
	e.admin.Reload(ctx)
	e.admin.Select(1)

	e.admin.DeleteSolicitacao()
	e.gate.Confirm(ctx)

	if e.admin.Total() != 1 {
		t.Fatalf("total = %d, want 1", e.admin.Total())
	}
	// The deleted id is gone, so the cursor snapped to the first survivor.
	if e.admin.SelectedID() != 3 {
		t.Fatalf("selected = %d, want 3", e.admin.SelectedID())
	}
}

func TestAdminStatsMemoized(t *testing.T) {
	e := newEnv(t, "admin", "admin")
	ctx := context.Background()

	e.admin.LoadStats(ctx, false)
	first := e.admin.Stats()
	if first == nil || first.TotalAprovadas != 1 {
		t.Fatalf("stats = %+v", first)
	}

	// Mutate behind the controller's back; a non-forced load keeps the memo.
	if _, err := e.store.Decisao(1, model.DecisaoPayload{Decisao: model.DecisaoAprovado}); err != nil {
		t.Fatalf("decisao: %v", err)
	}
	e.admin.LoadStats(ctx, false)
	if got := e.admin.Stats(); got.TotalAprovadas != 1 {
		t.Fatalf("memoized stats refetched: %+v", got)
	}

	e.admin.LoadStats(ctx, true)
	if got := e.admin.Stats(); got.TotalAprovadas != 2 {
		t.Fatalf("forced stats = %+v", got)
	}
}

func TestAdminCategoriaLifecycle(t *testing.T) {
	e := newEnv(t, "admin", "admin")
	ctx := context.Background()

	e.admin.SetCategoriaForm(draft.CategoriaForm{Nome: "  Limpeza  "})
	e.admin.CreateCategoria(ctx)
	categories := e.admin.Categories()
	created := categories[len(categories)-1]
	if created.Nome != "Limpeza" || !created.Ativa {
		t.Fatalf("created = %+v", created)
	}
	if form := e.admin.CategoriaForm(); form.Nome != "" {
		t.Fatal("form not cleared after create")
	}

	e.admin.InativarCategoria(created)
	if findCategoria(e.admin.Categories(), created.ID).Ativa {
		t.Fatal("category inactivated before confirmation")
	}
	e.gate.Confirm(ctx)
	if findCategoria(e.admin.Categories(), created.ID).Ativa {
		t.Fatal("category still active after confirmed deactivation")
	}
}

func TestAdminChangeSenha(t *testing.T) {
	e := newEnv(t, "admin", "admin")
	ctx := context.Background()

	// Own account without the current password is refused client-side.
	e.admin.ChangeSenha(ctx, "admin", "", "nova")
	if current := e.notices.Current(); current == nil || current.Message != "Informe a senha atual." {
		t.Fatalf("notice = %+v", current)
	}
	if _, ok := e.store.Authenticate("admin", "admin"); !ok {
		t.Fatal("password changed despite refusal")
	}

	// Other accounts need no current password.
	e.admin.ChangeSenha(ctx, "filial.centro", "", "outra")
	if _, ok := e.store.Authenticate("filial.centro", "outra"); !ok {
		t.Fatal("other account password not changed")
	}

	// Own change goes last: the session still signs with the old pair.
	e.admin.ChangeSenha(ctx, "admin", "admin", "nova")
	if _, ok := e.store.Authenticate("admin", "nova"); !ok {
		t.Fatal("own password not changed")
	}
}

func TestSessionInvalidateResetsControllers(t *testing.T) {
	e := newEnv(t, "filial.centro", "filial")
	ctx := context.Background()
	e.filial.Reload(ctx)
	e.filial.Select(2)
	e.coord.Queue([]attachment.File{pdfFile("nota.pdf")})

	e.session.Invalidate()

	if e.session.Authenticated() {
		t.Fatal("session still authenticated")
	}
	if len(e.filial.Solicitacoes()) != 0 || e.filial.SelectedID() != 0 {
		t.Fatal("filial controller kept state past invalidation")
	}
	if len(e.coord.Pending()) != 0 {
		t.Fatal("attachment queue kept state past invalidation")
	}
}

func TestWrongRoleIsRejected(t *testing.T) {
	e := newEnv(t, "filial.centro", "filial")
	e.admin.Reload(context.Background())
	if current := e.notices.Current(); current == nil || current.Kind != notice.KindError {
		t.Fatalf("notice = %+v, want forbidden error surfaced", current)
	}
}

func findByID(t *testing.T, items []model.Solicitacao, id int64) model.Solicitacao {
	t.Helper()
	for _, item := range items {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("id %d not found", id)
	return model.Solicitacao{}
}

func findCategoria(categories []model.Categoria, id int64) model.Categoria {
	for _, c := range categories {
		if c.ID == id {
			return c
		}
	}
	return model.Categoria{}
}
