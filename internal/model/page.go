package model

import "encoding/json"

// DefaultPageSize matches the backend's page size for every list view.
const DefaultPageSize = 20

// Page is the paginated list envelope returned by the solicitacao listing
// endpoints. Earlier backend generations returned a bare JSON array; those
// are normalized into a single one-page result.
type Page struct {
	Items         []Solicitacao `json:"items"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
}

func (p *Page) UnmarshalJSON(data []byte) error {
	var items []Solicitacao
	if err := json.Unmarshal(data, &items); err == nil {
		p.Items = items
		p.TotalElements = int64(len(items))
		p.TotalPages = 0
		if len(items) > 0 {
			p.TotalPages = 1
		}
		p.Page = 0
		p.Size = len(items)
		return nil
	}

	type envelope Page
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Items == nil {
		env.Items = []Solicitacao{}
	}
	if env.TotalElements == 0 {
		env.TotalElements = int64(len(env.Items))
	}
	if env.Size == 0 {
		env.Size = DefaultPageSize
	}
	*p = Page(env)
	return nil
}

// LastPage is the highest valid zero-based page index, used by the
// controllers to clamp the cursor after a delete empties the current page.
func (p Page) LastPage() int {
	if p.TotalPages > 0 {
		return p.TotalPages - 1
	}
	return 0
}
