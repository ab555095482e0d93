package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"expenseportal/internal/model"
)

// ListQuery carries the server-side filter/sort/page parameters of the
// solicitacao listings. Status is only honored by the admin endpoint.
type ListQuery struct {
	Status string
	Q      string
	Sort   string
	Page   int
	Size   int
}

func (q ListQuery) encode() string {
	values := url.Values{}
	if q.Status != "" && q.Status != model.StatusTodos {
		values.Set("status", q.Status)
	}
	if q.Q != "" {
		values.Set("q", q.Q)
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}
	values.Set("page", strconv.Itoa(q.Page))
	size := q.Size
	if size <= 0 {
		size = model.DefaultPageSize
	}
	values.Set("size", strconv.Itoa(size))
	return values.Encode()
}

// AuthMe is both the login probe and the session-liveness probe.
func (c *Client) AuthMe(ctx context.Context) (model.Profile, error) {
	var profile model.Profile
	err := c.request(ctx, http.MethodGet, "/auth/me", nil, &profile)
	return profile, err
}

func (c *Client) ListCategorias(ctx context.Context) ([]model.Categoria, error) {
	var categorias []model.Categoria
	err := c.request(ctx, http.MethodGet, "/categorias", nil, &categorias)
	return categorias, err
}

func (c *Client) ListSolicitacoes(ctx context.Context, query ListQuery) (model.Page, error) {
	var page model.Page
	err := c.request(ctx, http.MethodGet, "/solicitacoes?"+query.encode(), nil, &page)
	return page, err
}

func (c *Client) CreateSolicitacao(ctx context.Context, payload model.SolicitacaoPayload) (model.Solicitacao, error) {
	var saved model.Solicitacao
	err := c.request(ctx, http.MethodPost, "/solicitacoes", payload, &saved)
	return saved, err
}

// Reenvio resubmits a PENDENTE_INFO solicitacao with replacement data.
func (c *Client) Reenvio(ctx context.Context, id int64, payload model.ReenvioPayload) (model.Solicitacao, error) {
	var saved model.Solicitacao
	err := c.request(ctx, http.MethodPut, fmt.Sprintf("/solicitacoes/%d/reenvio", id), payload, &saved)
	return saved, err
}

// --- Admin ---

func (c *Client) AdminListCategorias(ctx context.Context) ([]model.Categoria, error) {
	var categorias []model.Categoria
	err := c.request(ctx, http.MethodGet, "/admin/categorias", nil, &categorias)
	return categorias, err
}

func (c *Client) CreateCategoria(ctx context.Context, payload model.CategoriaPayload) (model.Categoria, error) {
	var saved model.Categoria
	err := c.request(ctx, http.MethodPost, "/admin/categorias", payload, &saved)
	return saved, err
}

// InativarCategoria deactivates a category. The transition is one-way; there
// is no reactivation endpoint.
func (c *Client) InativarCategoria(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodPatch, fmt.Sprintf("/admin/categorias/%d/inativar", id), nil, nil)
}

func (c *Client) AdminListSolicitacoes(ctx context.Context, query ListQuery) (model.Page, error) {
	var page model.Page
	err := c.request(ctx, http.MethodGet, "/admin/solicitacoes?"+query.encode(), nil, &page)
	return page, err
}

func (c *Client) Decisao(ctx context.Context, id int64, payload model.DecisaoPayload) (model.Solicitacao, error) {
	var saved model.Solicitacao
	err := c.request(ctx, http.MethodPatch, fmt.Sprintf("/admin/solicitacoes/%d/decisao", id), payload, &saved)
	return saved, err
}

func (c *Client) PedidoInfo(ctx context.Context, id int64, comentario string) (model.Solicitacao, error) {
	var saved model.Solicitacao
	payload := model.PedidoInfoPayload{Comentario: comentario}
	err := c.request(ctx, http.MethodPatch, fmt.Sprintf("/admin/solicitacoes/%d/pedido-info", id), payload, &saved)
	return saved, err
}

func (c *Client) DeleteSolicitacao(ctx context.Context, id int64) error {
	return c.request(ctx, http.MethodDelete, fmt.Sprintf("/admin/solicitacoes/%d", id), nil, nil)
}

func (c *Client) Estatisticas(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	err := c.request(ctx, http.MethodGet, "/admin/solicitacoes/estatisticas", nil, &stats)
	return stats, err
}

func (c *Client) ListContas(ctx context.Context) ([]model.Conta, error) {
	var contas []model.Conta
	err := c.request(ctx, http.MethodGet, "/admin/contas", nil, &contas)
	return contas, err
}

// ChangeSenha updates an account password. SenhaAtual inside the payload is
// required only when the caller changes their own account.
func (c *Client) ChangeSenha(ctx context.Context, usuario string, payload model.SenhaPayload) error {
	return c.request(ctx, http.MethodPut, "/admin/contas/"+url.PathEscape(usuario)+"/senha", payload, nil)
}

// --- Attachments ---

func (c *Client) ListAnexos(ctx context.Context, solicitacaoID int64) ([]model.Attachment, error) {
	var anexos []model.Attachment
	err := c.request(ctx, http.MethodGet, fmt.Sprintf("/solicitacoes/%d/anexos", solicitacaoID), nil, &anexos)
	return anexos, err
}

func (c *Client) UploadAnexo(ctx context.Context, solicitacaoID int64, filename, contentType string, content io.Reader) (model.Attachment, error) {
	var saved model.Attachment
	path := fmt.Sprintf("/solicitacoes/%d/anexos", solicitacaoID)
	err := c.uploadFile(ctx, path, filename, contentType, content, &saved)
	return saved, err
}

func (c *Client) DeleteAnexo(ctx context.Context, attachmentID int64) error {
	return c.request(ctx, http.MethodDelete, fmt.Sprintf("/anexos/%d", attachmentID), nil, nil)
}

// DownloadAnexo streams the attachment content. This bypasses the JSON
// request path because the success body is binary.
func (c *Client) DownloadAnexo(ctx context.Context, attachmentID int64) (Download, error) {
	return c.download(ctx, fmt.Sprintf("/anexos/%d/download", attachmentID))
}
