package model

// Categoria is reference data for classifying solicitacoes. Deactivation is
// one-way: the backend never reactivates and neither does this client.
type Categoria struct {
	ID        int64   `json:"id"`
	Nome      string  `json:"nome"`
	Descricao *string `json:"descricao"`
	Ativa     bool    `json:"ativa"`
}

// Attachment is a file persisted against a Solicitacao.
type Attachment struct {
	ID            int64  `json:"id"`
	SolicitacaoID int64  `json:"solicitacaoId"`
	OriginalName  string `json:"originalName"`
	ContentType   string `json:"contentType"`
	Size          int64  `json:"size"`
	UploadedBy    string `json:"uploadedBy"`
	CreatedAt     string `json:"createdAt"`
}

// Account type enum constants
const (
	TipoFilial = "FILIAL"
	TipoAdmin  = "ADMIN"
)

// Profile is the authenticated caller's identity as returned by /auth/me.
type Profile struct {
	Usuario string `json:"usuario"`
	Nome    string `json:"nome"`
	Tipo    string `json:"tipo"`
	Filial  string `json:"filial,omitempty"`
}

// Conta is an account row from the admin account listing.
type Conta struct {
	Usuario string `json:"usuario"`
	Nome    string `json:"nome"`
	Tipo    string `json:"tipo"`
	Filial  string `json:"filial,omitempty"`
}
