package devserver

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxAnexoSize = 10 * 1024 * 1024

var allowedAnexoTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

func (h *Handler) ListAnexos(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	anexos, err := h.store.ListAnexos(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, anexos)
}

func (h *Handler) UploadAnexo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Arquivo ausente no campo 'file'."})
		return
	}
	if header.Size > maxAnexoSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Arquivo excede o limite de 10 MB."})
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !allowedAnexoTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Tipo de arquivo nao permitido.",
			"details": []string{"permitidos: PDF, JPEG, PNG"},
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		writeError(c, err)
		return
	}

	saved, err := h.store.AddAnexo(contaFrom(c), id, header.Filename, contentType, content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) DeleteAnexo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteAnexo(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DownloadAnexo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	meta, content, err := h.store.GetAnexo(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.OriginalName))
	c.Data(http.StatusOK, meta.ContentType, content)
}
