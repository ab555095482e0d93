// Package controller owns the stateful list controllers that drive the
// approval workflow for each role: a paginated, searchable, sortable
// solicitacao collection, a selection cursor and the role's mutation
// operations. Every mutation ends in a full reload of the authoritative
// list; the client never merges server state optimistically.
package controller

import (
	"expenseportal/internal/model"
)

// reconcileSelection applies the cursor invariant after every collection
// replacement: keep the previous id when it survived, snap to the first item
// when it did not, clear when the page is empty.
func reconcileSelection(items []model.Solicitacao, selectedID int64) int64 {
	if len(items) == 0 {
		return 0
	}
	for _, item := range items {
		if item.ID == selectedID {
			return selectedID
		}
	}
	return items[0].ID
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
