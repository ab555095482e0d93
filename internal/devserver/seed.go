package devserver

import (
	"fmt"

	"github.com/shopspring/decimal"

	"expenseportal/internal/model"
)

// Seed loads the development fixture: one admin, two branch accounts, a few
// categories and a handful of solicitacoes in assorted states.
func Seed(store *Store) error {
	accounts := []struct {
		usuario, senha, nome, tipo, filial string
	}{
		{"admin", "admin", "Administrador", model.TipoAdmin, ""},
		{"filial.centro", "filial", "Filial Centro", model.TipoFilial, "Centro"},
		{"filial.norte", "filial", "Filial Norte", model.TipoFilial, "Norte"},
	}
	for _, a := range accounts {
		if err := store.SeedConta(a.usuario, a.senha, a.nome, a.tipo, a.filial); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", a.usuario, err)
		}
	}

	var categorias []model.Categoria
	for _, nome := range []string{"Mobiliario", "Informatica", "Manutencao", "Servicos"} {
		categoria, err := store.CreateCategoria(model.CategoriaPayload{Nome: nome})
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", nome, err)
		}
		categorias = append(categorias, categoria)
	}

	centro := &Conta{Usuario: "filial.centro", Tipo: model.TipoFilial, Filial: "Centro"}
	norte := &Conta{Usuario: "filial.norte", Tipo: model.TipoFilial, Filial: "Norte"}

	fixtures := []struct {
		conta   *Conta
		payload model.SolicitacaoPayload
	}{
		{centro, model.SolicitacaoPayload{
			CategoriaID:     categorias[0].ID,
			Titulo:          "Cadeiras para recepcao",
			SolicitanteNome: "Ana Souza",
			Descricao:       "Substituir as cadeiras desgastadas da recepcao.",
			OndeVaiSerUsado: "Recepcao",
			ValorEstimado:   decimal.RequireFromString("1500.00"),
		}},
		{centro, model.SolicitacaoPayload{
			CategoriaID:     categorias[1].ID,
			Titulo:          "Monitor adicional",
			SolicitanteNome: "Carlos Lima",
			Descricao:       "Monitor para a estacao do financeiro.",
			OndeVaiSerUsado: "Financeiro",
			ValorEstimado:   decimal.RequireFromString("899.90"),
		}},
		{norte, model.SolicitacaoPayload{
			CategoriaID:     categorias[2].ID,
			Titulo:          "Reparo no ar condicionado",
			SolicitanteNome: "Beatriz Rocha",
			Descricao:       "Manutencao corretiva da sala de reunioes.",
			OndeVaiSerUsado: "Sala de reunioes",
			ValorEstimado:   decimal.RequireFromString("420.00"),
		}},
	}
	for _, f := range fixtures {
		if _, err := store.CreateSolicitacao(f.conta, f.payload); err != nil {
			return fmt.Errorf("failed to seed solicitacao %q: %w", f.payload.Titulo, err)
		}
	}

	// Leave one decided request so the stats view has data out of the box.
	if _, err := store.Decisao(2, model.DecisaoPayload{Decisao: model.DecisaoAprovado}); err != nil {
		return fmt.Errorf("failed to seed decision: %w", err)
	}
	return nil
}
