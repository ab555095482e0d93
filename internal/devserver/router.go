package devserver

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"expenseportal/internal/model"
)

const contaKey = "conta"

// Handler exposes the backend wire contract over gin.
type Handler struct {
	store  *Store
	logger *logrus.Logger
}

func NewHandler(store *Store, logger *logrus.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// NewRouter builds the full gin engine: CORS, basic auth, all routes.
func NewRouter(store *Store, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-Id"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	handler := NewHandler(store, logger)
	handler.RegisterRoutes(router.Group(""))
	return router
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	authed := router.Group("", h.requireAuth)
	{
		authed.GET("/auth/me", h.AuthMe)
		authed.GET("/categorias", h.ListCategorias)
		authed.GET("/solicitacoes/:id/anexos", h.ListAnexos)
		authed.POST("/solicitacoes/:id/anexos", h.UploadAnexo)
		authed.DELETE("/anexos/:id", h.DeleteAnexo)
		authed.GET("/anexos/:id/download", h.DownloadAnexo)
	}

	filial := router.Group("", h.requireAuth, h.requireTipo(model.TipoFilial))
	{
		filial.GET("/solicitacoes", h.ListSolicitacoes)
		filial.POST("/solicitacoes", h.CreateSolicitacao)
		filial.PUT("/solicitacoes/:id/reenvio", h.Reenvio)
	}

	admin := router.Group("/admin", h.requireAuth, h.requireTipo(model.TipoAdmin))
	{
		admin.GET("/categorias", h.AdminListCategorias)
		admin.POST("/categorias", h.CreateCategoria)
		admin.PATCH("/categorias/:id/inativar", h.InativarCategoria)
		admin.GET("/solicitacoes", h.AdminListSolicitacoes)
		admin.GET("/solicitacoes/estatisticas", h.Estatisticas)
		admin.PATCH("/solicitacoes/:id/decisao", h.Decisao)
		admin.PATCH("/solicitacoes/:id/pedido-info", h.PedidoInfo)
		admin.DELETE("/solicitacoes/:id", h.DeleteSolicitacao)
		admin.GET("/contas", h.ListContas)
		admin.PUT("/contas/:usuario/senha", h.ChangeSenha)
	}
}

// requireAuth decodes the Basic credential pair and resolves the account.
func (h *Handler) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Basic ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Credenciais ausentes."})
		return
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Credenciais invalidas."})
		return
	}
	usuario, senha, ok := strings.Cut(string(raw), ":")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Credenciais invalidas."})
		return
	}
	conta, ok := h.store.Authenticate(usuario, senha)
	if !ok {
		h.logger.WithField("usuario", usuario).Warn("authentication failed")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Usuario ou senha incorretos."})
		return
	}
	c.Set(contaKey, conta)
	c.Next()
}

func (h *Handler) requireTipo(tipo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if contaFrom(c).Tipo != tipo {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Acesso negado."})
			return
		}
		c.Next()
	}
}

func contaFrom(c *gin.Context) *Conta {
	conta, _ := c.Get(contaKey)
	return conta.(*Conta)
}

func writeError(c *gin.Context, err error) {
	if apiErr, ok := err.(*apiError); ok {
		body := gin.H{"message": apiErr.Message}
		if len(apiErr.Details) > 0 {
			body["details"] = apiErr.Details
		}
		c.JSON(apiErr.Status, body)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Identificador invalido."})
		return 0, false
	}
	return id, true
}

func (h *Handler) AuthMe(c *gin.Context) {
	conta := contaFrom(c)
	c.JSON(http.StatusOK, model.Profile{
		Usuario: conta.Usuario,
		Nome:    conta.Nome,
		Tipo:    conta.Tipo,
		Filial:  conta.Filial,
	})
}

func (h *Handler) ListCategorias(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListCategorias(true))
}

func (h *Handler) ListSolicitacoes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(model.DefaultPageSize)))
	result := h.store.ListSolicitacoes(contaFrom(c).Filial, "", c.Query("q"), c.Query("sort"), page, size)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateSolicitacao(c *gin.Context) {
	var payload model.SolicitacaoPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Corpo da requisicao invalido."})
		return
	}
	saved, err := h.store.CreateSolicitacao(contaFrom(c), payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) Reenvio(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload model.ReenvioPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Corpo da requisicao invalido."})
		return
	}
	saved, err := h.store.Reenvio(contaFrom(c), id, payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) AdminListCategorias(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListCategorias(false))
}

func (h *Handler) CreateCategoria(c *gin.Context) {
	var payload model.CategoriaPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Corpo da requisicao invalido."})
		return
	}
	saved, err := h.store.CreateCategoria(payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) InativarCategoria(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.InativarCategoria(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdminListSolicitacoes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(model.DefaultPageSize)))
	result := h.store.ListSolicitacoes("", c.Query("status"), c.Query("q"), c.Query("sort"), page, size)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Decisao(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload model.DecisaoPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Corpo da requisicao invalido."})
		return
	}
	saved, err := h.store.Decisao(id, payload)
	if err != nil {
		writeError(c, err)
		return
	}
	h.logger.WithFields(logrus.Fields{"id": id, "decisao": payload.Decisao}).Info("decision applied")
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) PedidoInfo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var payload model.PedidoInfoPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Corpo da requisicao invalido."})
		return
	}
	saved, err := h.store.PedidoInfo(id, payload.Comentario)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) DeleteSolicitacao(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteSolicitacao(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Estatisticas(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Estatisticas())
}

func (h *Handler) ListContas(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ListContas())
}

func (h *Handler) ChangeSenha(c *gin.Context) {
	var payload model.SenhaPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Corpo da requisicao invalido."})
		return
	}
	if err := h.store.ChangeSenha(contaFrom(c), c.Param("usuario"), payload.SenhaAtual, payload.NovaSenha); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
