package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func fixture() []Solicitacao {
	return []Solicitacao{
		{ID: 3, Titulo: "Órgão emissor", ValorEstimado: decimal.RequireFromString("100.00"), EnviadoEm: "2026-01-02T10:00:00"},
		{ID: 1, Titulo: "Cadeiras", ValorEstimado: decimal.RequireFromString("300.00"), EnviadoEm: "2026-01-03T10:00:00"},
		{ID: 2, Titulo: "arquivo morto", ValorEstimado: decimal.RequireFromString("100.00"), EnviadoEm: "2026-01-02T10:00:00"},
	}
}

func ids(items []Solicitacao) []int64 {
	out := make([]int64, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func TestSortSolicitacoes(t *testing.T) {
	tests := []struct {
		key  string
		want []int64
	}{
		{SortRecent, []int64{1, 2, 3}},
		{SortOld, []int64{2, 3, 1}},
		{SortValueDesc, []int64{1, 2, 3}},
		{SortValueAsc, []int64{2, 3, 1}},
		{SortTitle, []int64{2, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := ids(SortSolicitacoes(fixture(), tt.key))
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("sort %s = %v, want %v", tt.key, got, tt.want)
				}
			}
		})
	}
}

func TestSortSolicitacoesDoesNotMutateInput(t *testing.T) {
	items := fixture()
	SortSolicitacoes(items, SortTitle)
	if items[0].ID != 3 {
		t.Fatalf("input slice reordered, first id = %d", items[0].ID)
	}
}

func TestSortUnknownKeyKeepsOrder(t *testing.T) {
	got := ids(SortSolicitacoes(fixture(), "BOGUS"))
	want := []int64{3, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unknown key reordered: %v", got)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"with zone", "2026-01-02T10:00:00Z", time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)},
		{"without zone", "2026-01-02T10:00:00", time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)},
		{"empty", "", time.Unix(0, 0).UTC()},
		{"garbage", "ontem", time.Unix(0, 0).UTC()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTimestamp(tt.in); !got.Equal(tt.want) {
				t.Fatalf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatchesSearch(t *testing.T) {
	item := Solicitacao{
		ID:              123,
		Titulo:          "Manutenção do ar",
		SolicitanteNome: "José Silva",
		Filial:          "Centro",
		CategoriaNome:   "Serviços",
		Status:          StatusPendente,
	}
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"manutencao", true},
		{"MANUTENÇÃO", true},
		{"jose", true},
		{"servicos", true},
		{"pendente", true},
		{"123", true},
		{"norte", false},
		{"456", false},
	}
	for _, tt := range tests {
		if got := MatchesSearch(item, tt.query); got != tt.want {
			t.Fatalf("MatchesSearch(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestSelectOf(t *testing.T) {
	items := fixture()
	if got := SelectOf(items, 2); got == nil || got.ID != 2 {
		t.Fatalf("SelectOf existing id = %v", got)
	}
	if got := SelectOf(items, 99); got != nil {
		t.Fatalf("SelectOf absent id = %v, want nil", got)
	}
	if got := SelectOf(nil, 1); got != nil {
		t.Fatalf("SelectOf empty collection = %v, want nil", got)
	}
}
