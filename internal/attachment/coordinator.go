// Package attachment coordinates the files bound to a solicitacao:
// validation, the pre-submission pending queue, sequential uploads with
// per-file failure tracking, listing, deletion and download.
package attachment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"expenseportal/internal/model"
	"expenseportal/internal/notice"
	"expenseportal/pkg/api"
)

const (
	// MaxPerSolicitacao is the hard attachment cap per request.
	MaxPerSolicitacao = 5
	// MaxFileSize is 10 MiB.
	MaxFileSize = 10 * 1024 * 1024
)

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// File is a client-local file candidate. LastModified participates in the
// duplicate identity together with name and size.
type File struct {
	Name         string
	ContentType  string
	Size         int64
	LastModified int64
	Content      []byte
}

// Failure records one file that could not be uploaded.
type Failure struct {
	File  File
	Error string
}

// Backend is the slice of the API client the coordinator needs.
type Backend interface {
	ListAnexos(ctx context.Context, solicitacaoID int64) ([]model.Attachment, error)
	UploadAnexo(ctx context.Context, solicitacaoID int64, filename, contentType string, content io.Reader) (model.Attachment, error)
	DeleteAnexo(ctx context.Context, attachmentID int64) error
	DownloadAnexo(ctx context.Context, attachmentID int64) (api.Download, error)
}

const actionDeleteAnexo notice.ActionKind = "anexo.delete"

type deleteAnexoPayload struct {
	AttachmentID  int64
	SolicitacaoID int64
}

// Coordinator owns the persisted attachment list of the currently viewed
// solicitacao plus the pending (not yet uploaded) local queue of the create
// flow.
type Coordinator struct {
	mu        sync.Mutex
	backend   Backend
	notices   *notice.Manager
	gate      *notice.Gate
	logger    *logrus.Logger
	persisted []model.Attachment
	pending   []File
	loading   bool
	uploading bool
}

func NewCoordinator(backend Backend, notices *notice.Manager, gate *notice.Gate, logger *logrus.Logger) *Coordinator {
	c := &Coordinator{
		backend: backend,
		notices: notices,
		gate:    gate,
		logger:  logger,
	}
	gate.Register(actionDeleteAnexo, c.confirmDelete)
	return c
}

// ValidateFile returns the violation message for an unacceptable file, ""
// when the file may be queued or uploaded.
func ValidateFile(file File) string {
	if file.Name == "" {
		return "Arquivo invalido."
	}
	if !allowedTypes[file.ContentType] {
		return "Tipo de arquivo nao permitido."
	}
	if file.Size > MaxFileSize {
		return "Arquivo maior que 10MB."
	}
	return ""
}

// Attachments returns the persisted list for the current solicitacao.
func (c *Coordinator) Attachments() []model.Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Attachment, len(c.persisted))
	copy(out, c.persisted)
	return out
}

// Pending returns the queued local files.
func (c *Coordinator) Pending() []File {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]File, len(c.pending))
	copy(out, c.pending)
	return out
}

func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Coordinator) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

// Queue validates and enqueues files for a solicitacao that does not exist
// yet. Invalid files are skipped with a notice, duplicates by
// (name, size, lastModified) are skipped silently, and queueing stops with a
// notice once the cap is reached.
func (c *Coordinator) Queue(files []File) {
	if len(files) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, file := range files {
		if msg := ValidateFile(file); msg != "" {
			c.notices.Error(msg)
			continue
		}
		if len(c.pending) >= MaxPerSolicitacao {
			c.notices.Error("Limite de 5 anexos por solicitacao.")
			break
		}
		if c.isQueued(file) {
			continue
		}
		c.pending = append(c.pending, file)
	}
}

func (c *Coordinator) isQueued(file File) bool {
	for _, queued := range c.pending {
		if queued.Name == file.Name && queued.Size == file.Size && queued.LastModified == file.LastModified {
			return true
		}
	}
	return false
}

// RemovePending drops one queued file by index.
func (c *Coordinator) RemovePending(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.pending) {
		return
	}
	c.pending = append(c.pending[:index], c.pending[index+1:]...)
}

// ClearPending empties the queue.
func (c *Coordinator) ClearPending() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// ReplacePending swaps the queue wholesale, used to keep only the failed
// files after a partial upload so the user can retry.
func (c *Coordinator) ReplacePending(files []File) {
	c.mu.Lock()
	c.pending = files
	c.mu.Unlock()
}

// Load replaces the persisted list for the given solicitacao. A zero id
// clears the list without issuing a request.
func (c *Coordinator) Load(ctx context.Context, solicitacaoID int64) {
	if solicitacaoID == 0 {
		c.Clear()
		return
	}
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	anexos, err := c.backend.ListAnexos(ctx, solicitacaoID)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.persisted = nil
		c.mu.Unlock()
		c.notices.Error(errMessage(err, "Erro ao carregar anexos."))
		return
	}
	c.persisted = anexos
	c.mu.Unlock()
}

// Clear drops the displayed list immediately, used when the selected id
// changes so a previous solicitacao's files are never shown against the new
// one while its list loads.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.persisted = nil
	c.loading = false
	c.mu.Unlock()
}

// Reset returns the coordinator to its initial empty shape.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.persisted = nil
	c.pending = nil
	c.loading = false
	c.uploading = false
	c.mu.Unlock()
}

// UploadBatch uploads files one at a time against an existing solicitacao
// and returns the per-file failures. Sequential on purpose: it bounds
// backend load and makes failure attribution deterministic. One failed file
// never aborts the rest. Callers must reload the list afterwards; successes
// are never appended locally.
func (c *Coordinator) UploadBatch(ctx context.Context, solicitacaoID int64, files []File) []Failure {
	c.mu.Lock()
	c.uploading = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.uploading = false
		c.mu.Unlock()
	}()

	var failures []Failure
	for _, file := range files {
		if msg := ValidateFile(file); msg != "" {
			failures = append(failures, Failure{File: file, Error: msg})
			continue
		}
		_, err := c.backend.UploadAnexo(ctx, solicitacaoID, file.Name, file.ContentType, bytes.NewReader(file.Content))
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"solicitacao_id": solicitacaoID,
				"file":           file.Name,
			}).WithError(err).Error("attachment upload failed")
			failures = append(failures, Failure{File: file, Error: errMessage(err, "Erro ao enviar anexo.")})
		}
	}
	return failures
}

// Upload sends files against an existing solicitacao, recomputing free
// slots from the current persisted count so concurrent actors that raced
// this view are accounted for. Finishes with a list reload either way.
func (c *Coordinator) Upload(ctx context.Context, solicitacaoID int64, files []File) {
	if len(files) == 0 || solicitacaoID == 0 {
		return
	}
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		c.notices.Error("Aguarde o carregamento dos anexos.")
		return
	}
	availableSlots := MaxPerSolicitacao - len(c.persisted)
	c.mu.Unlock()

	if availableSlots <= 0 {
		c.notices.Error("Limite de 5 anexos por solicitacao.")
		return
	}
	toUpload := files
	if len(toUpload) > availableSlots {
		toUpload = files[:availableSlots]
		c.notices.Error("Limite de 5 anexos por solicitacao.")
	}

	failures := c.UploadBatch(ctx, solicitacaoID, toUpload)
	if len(failures) == 0 {
		c.notices.Success("Anexo(s) enviados.")
	} else {
		c.notices.Error(fmt.Sprintf("Falha ao enviar anexo. %s", failures[0].Error))
	}
	c.Load(ctx, solicitacaoID)
}

// Delete asks for confirmation before removing a persisted attachment.
func (c *Coordinator) Delete(attachmentID, solicitacaoID int64) {
	if attachmentID == 0 || solicitacaoID == 0 {
		return
	}
	c.gate.Open(notice.Action{
		Kind:         actionDeleteAnexo,
		Title:        "Excluir anexo",
		Message:      "Deseja excluir este anexo? Esta acao nao pode ser desfeita.",
		ConfirmLabel: "Excluir",
		Payload:      deleteAnexoPayload{AttachmentID: attachmentID, SolicitacaoID: solicitacaoID},
	})
}

func (c *Coordinator) confirmDelete(ctx context.Context, payload interface{}) {
	target, ok := payload.(deleteAnexoPayload)
	if !ok {
		return
	}
	if err := c.backend.DeleteAnexo(ctx, target.AttachmentID); err != nil {
		c.notices.Error(errMessage(err, "Erro ao excluir anexo."))
		return
	}
	c.notices.Success("Anexo excluido.")
	c.Load(ctx, target.SolicitacaoID)
}

// Download fetches the binary stream for an attachment. Failures surface as
// a notice; ok reports whether data holds the content.
func (c *Coordinator) Download(ctx context.Context, att model.Attachment) (api.Download, bool) {
	data, err := c.backend.DownloadAnexo(ctx, att.ID)
	if err != nil {
		c.notices.Error(errMessage(err, "Erro ao baixar anexo."))
		return api.Download{}, false
	}
	return data, true
}

func errMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
