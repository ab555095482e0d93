package model

import "github.com/shopspring/decimal"

// Stats aggregates decision totals across the whole dataset.
type Stats struct {
	TotalAprovadas     int64            `json:"totalAprovadas"`
	ValorTotalAprovado decimal.Decimal  `json:"valorTotalAprovado"`
	PorCategoria       []StatsBreakdown `json:"porCategoria"`
	PorFilial          []StatsBreakdown `json:"porFilial"`
	PorStatus          []StatusResumo   `json:"porStatus"`
}

// StatsBreakdown is one per-category or per-branch aggregation row.
type StatsBreakdown struct {
	Label      string          `json:"label"`
	Total      int64           `json:"total"`
	ValorTotal decimal.Decimal `json:"valorTotal"`
}

// StatusResumo is a per-status count.
type StatusResumo struct {
	Status string `json:"status"`
	Total  int64  `json:"total"`
}
