package model

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"expenseportal/internal/textutil"
)

// Sort key enum constants
const (
	SortRecent    = "RECENT"
	SortOld       = "OLD"
	SortValueDesc = "VALUE_DESC"
	SortValueAsc  = "VALUE_ASC"
	SortTitle     = "TITLE"
)

// ParseTimestamp parses the backend's ISO-8601 timestamps. The Java backend
// serializes LocalDateTime without a timezone suffix, so a missing zone is
// read as UTC. Absent or unparseable values collapse to epoch zero, which
// sorts them to the old end deterministically.
func ParseTimestamp(value string) time.Time {
	if value == "" {
		return time.Unix(0, 0).UTC()
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value+"Z"); err == nil {
		return t
	}
	return time.Unix(0, 0).UTC()
}

func sortTimestamp(s Solicitacao) time.Time {
	if s.EnviadoEm != "" {
		return ParseTimestamp(s.EnviadoEm)
	}
	return ParseTimestamp(s.DecididoEm)
}

// SortSolicitacoes orders a copy of items by the given key. Every key breaks
// ties by ascending id so the order is total and stable across reloads.
// An unknown key leaves the input order untouched.
func SortSolicitacoes(items []Solicitacao, sortKey string) []Solicitacao {
	list := make([]Solicitacao, len(items))
	copy(list, items)

	var less func(a, b Solicitacao) int
	switch sortKey {
	case SortRecent:
		less = func(a, b Solicitacao) int {
			return sortTimestamp(b).Compare(sortTimestamp(a))
		}
	case SortOld:
		less = func(a, b Solicitacao) int {
			return sortTimestamp(a).Compare(sortTimestamp(b))
		}
	case SortValueDesc:
		less = func(a, b Solicitacao) int {
			return b.ValorEstimado.Cmp(a.ValorEstimado)
		}
	case SortValueAsc:
		less = func(a, b Solicitacao) int {
			return a.ValorEstimado.Cmp(b.ValorEstimado)
		}
	case SortTitle:
		less = func(a, b Solicitacao) int {
			return strings.Compare(textutil.Normalize(a.Titulo), textutil.Normalize(b.Titulo))
		}
	default:
		return list
	}

	sort.SliceStable(list, func(i, j int) bool {
		if r := less(list[i], list[j]); r != 0 {
			return r < 0
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// SearchText flattens the fields a free-text search matches against,
// normalized for accent-insensitive comparison. The id is included so a
// request number is searchable too.
func SearchText(s Solicitacao) string {
	parts := []string{
		strconv.FormatInt(s.ID, 10),
		s.Titulo,
		s.SolicitanteNome,
		s.Filial,
		s.CategoriaNome,
		deref(s.Fornecedor),
		s.Descricao,
		s.Status,
	}
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		if n := textutil.Normalize(part); n != "" {
			fields = append(fields, n)
		}
	}
	return strings.Join(fields, " ")
}

// MatchesSearch reports whether the solicitacao matches a free-text query.
func MatchesSearch(s Solicitacao, query string) bool {
	q := textutil.Normalize(query)
	if q == "" {
		return true
	}
	return strings.Contains(SearchText(s), q)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
