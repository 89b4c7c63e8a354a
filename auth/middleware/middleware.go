// Package middleware provides the route guards composed at registration
// time: each one turns an authorization decision into a redirect before
// the handler runs.
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/clinicware/clinic-backend/auth"
)

// RequirePatient redirects to the patient login page unless an active
// patient session exists.
func RequirePatient() gin.HandlerFunc {
	return func(c *gin.Context) {
		si := auth.Info(c)
		if !si.HasPatient {
			flash(c, "Please login to continue.")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff admits staff sessions of any role, plus admin-password
// sessions.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		si := auth.Info(c)
		if !si.CanStaff() {
			c.Redirect(http.StatusFound, "/staff/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin admits admin-password sessions and staff with the admin
// role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		si := auth.Info(c)
		if !si.CanAdmin() {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func flash(c *gin.Context, msg string) {
	sess := sessions.Default(c)
	sess.AddFlash(msg)
	_ = sess.Save()
}
