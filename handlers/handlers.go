// Package handlers contains the HTTP handlers for every page and endpoint
// of the clinic portal.
package handlers

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/clinicware/clinic-backend/alerts"
	"github.com/clinicware/clinic-backend/audit"
	"github.com/clinicware/clinic-backend/auth"
	"github.com/clinicware/clinic-backend/config"
	"github.com/clinicware/clinic-backend/storage"
)

// Handler carries the request-scoped collaborators every route needs.
// It replaces module-level globals: everything is wired once in main and
// passed down explicitly.
type Handler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Store  storage.Store
	Tokens *auth.TokenService
	Authz  *auth.Authorizer
	Audit  *audit.Recorder
	Alerts alerts.Notifier
}

func New(db *gorm.DB, cfg *config.Config, store storage.Store, notifier alerts.Notifier) *Handler {
	tokens := auth.NewTokenService(cfg.SecretKey)
	return &Handler{
		DB:     db,
		Cfg:    cfg,
		Store:  store,
		Tokens: tokens,
		Authz:  auth.NewAuthorizer(tokens, cfg.DownloadTokenTTL),
		Audit:  audit.NewRecorder(db),
		Alerts: notifier,
	}
}

// render draws a template with the site-wide context every page expects.
func (h *Handler) render(c *gin.Context, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["DoctorName"] = h.Cfg.DoctorName
	data["DoctorTitle"] = h.Cfg.DoctorTitle
	data["DoctorBio"] = h.Cfg.DoctorBio
	data["ClinicPhone"] = h.Cfg.ClinicPhone
	data["ClinicWhatsApp"] = h.Cfg.ClinicWhatsApp
	data["ClinicEmail"] = h.Cfg.ClinicEmail
	data["Now"] = time.Now()
	data["Session"] = auth.Info(c)
	data["Flashes"] = takeFlashes(c)
	c.HTML(200, name, data)
}

func flash(c *gin.Context, msg string) {
	sess := sessions.Default(c)
	sess.AddFlash(msg)
	_ = sess.Save()
}

// takeFlashes drains queued flash messages for display.
func takeFlashes(c *gin.Context) []string {
	sess := sessions.Default(c)
	raw := sess.Flashes()
	if len(raw) > 0 {
		_ = sess.Save()
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
