// Package orchestrator composes the portal core: it authenticates the
// session, instantiates the controller for the caller's role and wires the
// cross-cutting selection side effect (attachment reload keyed on the
// selected solicitacao id).
package orchestrator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"expenseportal/internal/attachment"
	"expenseportal/internal/controller"
	"expenseportal/internal/model"
	"expenseportal/internal/notice"
	"expenseportal/internal/session"
	"expenseportal/pkg/api"
)

// App is the root of the portal core. One App owns one session, one backend
// client and one controller per role; the active role follows the
// authenticated profile.
type App struct {
	session *session.Session
	client  *api.Client
	notices *notice.Manager
	gate    *notice.Gate
	coord   *attachment.Coordinator
	filial  *controller.Filial
	admin   *controller.Admin
	logger  *logrus.Logger
}

func New(baseURL string, logger *logrus.Logger) *App {
	sess := session.New()
	client := api.NewClient(baseURL, sess, logger)
	notices := notice.NewManager()
	gate := notice.NewGate()
	coord := attachment.NewCoordinator(client, notices, gate, logger)

	app := &App{
		session: sess,
		client:  client,
		notices: notices,
		gate:    gate,
		coord:   coord,
		filial:  controller.NewFilial(client, sess, notices, coord, logger),
		admin:   controller.NewAdmin(client, sess, notices, gate, logger),
		logger:  logger,
	}

	// Selection -> attachment reload, keyed on the resolved id. The
	// displayed list clears immediately so a previous solicitacao's files
	// never show against the new selection while its own list loads.
	onSelect := func(id int64) {
		coord.Clear()
		coord.Load(context.Background(), id)
	}
	app.filial.SetOnSelect(onSelect)
	app.admin.SetOnSelect(onSelect)

	sess.OnInvalidate(coord.Reset)
	sess.OnInvalidate(gate.Reset)

	return app
}

// Login stores the credential pair and probes it against the identity
// endpoint. On failure nothing is kept and the error surfaces as a notice.
// On success the role controller performs its initial load.
func (a *App) Login(ctx context.Context, usuario, password string) error {
	a.session.SetCredentials(usuario, password)
	profile, err := a.client.AuthMe(ctx)
	if err != nil {
		a.session.Invalidate()
		a.notices.Error(errMessage(err, "Falha no login."))
		return fmt.Errorf("login probe failed: %w", err)
	}
	a.session.SetProfile(&profile)
	a.notices.Success("Login concluido.")
	a.logger.WithFields(logrus.Fields{
		"usuario": profile.Usuario,
		"tipo":    profile.Tipo,
	}).Info("authenticated")

	switch profile.Tipo {
	case model.TipoFilial:
		a.filial.Reload(ctx)
	case model.TipoAdmin:
		a.admin.Reload(ctx)
		a.admin.LoadStats(ctx, false)
	}
	return nil
}

// Logout invalidates the session, which resets every controller, the
// attachment coordinator and the confirmation gate.
func (a *App) Logout() {
	a.session.Invalidate()
}

// RefreshProfile re-probes the identity endpoint as a session-liveness
// check. A failure is fatal to the session: credentials and all dependent
// state are cleared rather than surfacing a retryable notice.
func (a *App) RefreshProfile(ctx context.Context) error {
	profile, err := a.client.AuthMe(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("profile refetch failed, invalidating session")
		a.session.Invalidate()
		return fmt.Errorf("profile refetch failed: %w", err)
	}
	a.session.SetProfile(&profile)
	return nil
}

func (a *App) Session() *session.Session           { return a.session }
func (a *App) Client() *api.Client                 { return a.client }
func (a *App) Notices() *notice.Manager            { return a.notices }
func (a *App) Gate() *notice.Gate                  { return a.gate }
func (a *App) Attachments() *attachment.Coordinator { return a.coord }
func (a *App) Filial() *controller.Filial          { return a.filial }
func (a *App) Admin() *controller.Admin            { return a.admin }

func errMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
