// Command portal is a terminal front end for the approval portal client
// core: it signs in with the configured credentials and prints the first
// page of the signed-in role's view.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"expenseportal/internal/config"
	"expenseportal/internal/model"
	"expenseportal/internal/orchestrator"
)

func main() {
	cfg := config.Load()
	if cfg.PortalUser == "" || cfg.PortalPass == "" {
		log.Fatal("PORTAL_USER and PORTAL_PASSWORD must be set")
	}

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	app := orchestrator.New(cfg.APIBaseURL, logger)
	ctx := context.Background()

	if err := app.Login(ctx, cfg.PortalUser, cfg.PortalPass); err != nil {
		logger.WithError(err).Error("login failed")
		os.Exit(1)
	}
	profile := app.Session().Profile()
	fmt.Printf("Conectado como %s (%s)\n\n", profile.Nome, profile.Tipo)

	switch profile.Tipo {
	case model.TipoAdmin:
		admin := app.Admin()
		fmt.Printf("Solicitacoes %s (pagina %d de %d, %d no total):\n",
			admin.StatusFilter(), admin.Page()+1, admin.TotalPages(), admin.Total())
		for _, item := range admin.Solicitacoes() {
			printSolicitacao(item)
		}
		if stats := admin.Stats(); stats != nil {
			fmt.Printf("\nAprovadas: %d | Valor total aprovado: %s\n",
				stats.TotalAprovadas, stats.ValorTotalAprovado.StringFixed(2))
		}
	default:
		filial := app.Filial()
		fmt.Printf("Minhas solicitacoes (pagina %d de %d, %d no total):\n",
			filial.Page()+1, filial.TotalPages(), filial.Total())
		for _, item := range filial.Solicitacoes() {
			printSolicitacao(item)
		}
	}

	if current := app.Notices().Current(); current != nil {
		fmt.Printf("\n[%s] %s\n", current.Kind, current.Message)
	}
	app.Logout()
}

func printSolicitacao(item model.Solicitacao) {
	fmt.Printf("  #%-4d %-14s %-40s R$ %s\n",
		item.ID, item.Status, item.Titulo, item.ValorEstimado.StringFixed(2))
}
