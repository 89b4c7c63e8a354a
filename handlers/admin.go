package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicware/clinic-backend/auth"
	"github.com/clinicware/clinic-backend/models"
)

// adminActor labels audit entries from admin pages: the staff email when
// present, otherwise the password-based admin login.
func adminActor(si auth.SessionInfo) string {
	if si.StaffEmail != "" {
		return si.StaffEmail
	}
	return "admin"
}

func (h *Handler) AdminLoginForm(c *gin.Context) {
	h.render(c, "admin_login.html", gin.H{"Title": "Admin Login"})
}

func (h *Handler) AdminLogin(c *gin.Context) {
	if c.PostForm("password") == h.Cfg.AdminPass {
		sess := sessions.Default(c)
		sess.Set(auth.KeyIsAdmin, true)
		_ = sess.Save()
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	flash(c, "Incorrect admin password")
	c.Redirect(http.StatusFound, "/admin/login")
}

func (h *Handler) AdminDashboard(c *gin.Context) {
	var appts []models.Appointment
	h.DB.Preload("Patient").Order("date asc").Find(&appts)
	var patients []models.Patient
	h.DB.Order("created_at desc").Find(&patients)
	h.render(c, "admin_dash.html", gin.H{"Title": "Admin", "Appointments": appts, "Patients": patients})
}

// AdminAudit shows the newest 200 audit entries.
func (h *Handler) AdminAudit(c *gin.Context) {
	var entries []models.AuditLog
	h.DB.Order("created_at desc").Limit(200).Find(&entries)
	h.render(c, "admin_audit.html", gin.H{"Title": "Audit log", "Entries": entries})
}

func (h *Handler) NewPatient(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		email := c.PostForm("email")
		var existing models.Patient
		if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			flash(c, "Patient with this email already exists")
			c.Redirect(http.StatusFound, "/admin")
			return
		}
		pw := c.PostForm("password")
		if pw == "" {
			pw = "changeme"
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			c.String(http.StatusInternalServerError, "Could not hash password")
			return
		}
		p := models.Patient{
			Name:         c.PostForm("name"),
			Email:        email,
			Phone:        c.PostForm("phone"),
			PasswordHash: string(hash),
		}
		if err := h.DB.Create(&p).Error; err != nil {
			c.String(http.StatusInternalServerError, "Could not create patient")
			return
		}
		flash(c, "Patient created — share credentials securely")
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(
		"<form method='post'>Name: <input name='name'/><br/>Email: <input name='email'/><br/>Phone: <input name='phone'/><br/>Password: <input name='password'/><br/><button>Create</button></form>"))
}

func (h *Handler) NewStaff(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		email := c.PostForm("email")
		var existing models.Staff
		if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			flash(c, "Staff with this email already exists")
			c.Redirect(http.StatusFound, "/admin")
			return
		}
		role := c.PostForm("role")
		if role == "" {
			role = models.RoleStaff
		}
		pw := c.PostForm("password")
		if pw == "" {
			pw = "changeme"
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			c.String(http.StatusInternalServerError, "Could not hash password")
			return
		}
		s := models.Staff{
			Name:         c.PostForm("name"),
			Email:        email,
			Role:         role,
			PasswordHash: string(hash),
		}
		if err := h.DB.Create(&s).Error; err != nil {
			c.String(http.StatusInternalServerError, "Could not create staff")
			return
		}
		flash(c, "Staff account created")
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(
		"<form method='post'>Name: <input name='name'/><br/>Email: <input name='email'/><br/>Role: <input name='role' value='staff'/><br/>Password: <input name='password'/><br/><button>Create</button></form>"))
}

func (h *Handler) NewPost(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		title := c.PostForm("title")
		slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
		p := models.BlogPost{Title: title, Slug: slug, Content: c.PostForm("content")}
		if err := h.DB.Create(&p).Error; err != nil {
			c.String(http.StatusInternalServerError, "Could not save post")
			return
		}
		flash(c, "Post added")
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(
		"<form method='post'>Title: <input name='title' /><br/>Content:<br/><textarea name='content'></textarea><br/><button>Save</button></form>"))
}

func (h *Handler) NewFAQ(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		f := models.FAQ{Question: c.PostForm("q"), Answer: c.PostForm("a")}
		if err := h.DB.Create(&f).Error; err != nil {
			c.String(http.StatusInternalServerError, "Could not save FAQ")
			return
		}
		flash(c, "FAQ added")
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(
		"<form method='post'>Q: <input name='q' /><br/>A:<br/><textarea name='a'></textarea><br/><button>Save</button></form>"))
}

func (h *Handler) AdminStaff(c *gin.Context) {
	var staff []models.Staff
	h.DB.Order("created_at desc").Find(&staff)
	h.render(c, "admin_staff.html", gin.H{"Title": "Staff accounts", "StaffList": staff})
}

func (h *Handler) AdminEditStaff(c *gin.Context) {
	var s models.Staff
	staffID, err := strconv.ParseUint(c.Param("staff_id"), 10, 64)
	if err != nil || h.DB.First(&s, staffID).Error != nil {
		c.String(http.StatusNotFound, "Staff not found")
		return
	}
	if c.Request.Method == http.MethodPost {
		s.Name = c.PostForm("name")
		s.Email = c.PostForm("email")
		s.Role = c.PostForm("role")
		if pw := c.PostForm("password"); pw != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
			if err != nil {
				c.String(http.StatusInternalServerError, "Could not hash password")
				return
			}
			s.PasswordHash = string(hash)
		}
		if err := h.DB.Save(&s).Error; err != nil {
			c.String(http.StatusInternalServerError, "Could not update staff")
			return
		}
		flash(c, "Staff updated")
		c.Redirect(http.StatusFound, "/admin/staff")
		return
	}
	h.render(c, "admin_edit_staff.html", gin.H{"Title": "Edit staff", "Staff": s})
}

func (h *Handler) AdminDeleteStaff(c *gin.Context) {
	var s models.Staff
	staffID, err := strconv.ParseUint(c.Param("staff_id"), 10, 64)
	if err != nil || h.DB.First(&s, staffID).Error != nil {
		c.String(http.StatusNotFound, "Staff not found")
		return
	}
	if err := h.DB.Delete(&s).Error; err != nil {
		c.String(http.StatusInternalServerError, "Could not delete staff")
		return
	}
	flash(c, "Staff deleted")
	c.Redirect(http.StatusFound, "/admin/staff")
}

func (h *Handler) AdminPatients(c *gin.Context) {
	var patients []models.Patient
	h.DB.Order("created_at desc").Find(&patients)
	h.render(c, "admin_patients.html", gin.H{"Title": "Patients", "Patients": patients})
}

func (h *Handler) AdminEditPatient(c *gin.Context) {
	var p models.Patient
	patientID, err := strconv.ParseUint(c.Param("patient_id"), 10, 64)
	if err != nil || h.DB.First(&p, patientID).Error != nil {
		c.String(http.StatusNotFound, "Patient not found")
		return
	}
	if c.Request.Method == http.MethodPost {
		p.Name = c.PostForm("name")
		p.Email = c.PostForm("email")
		p.Phone = c.PostForm("phone")
		if pw := c.PostForm("password"); pw != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
			if err != nil {
				c.String(http.StatusInternalServerError, "Could not hash password")
				return
			}
			p.PasswordHash = string(hash)
		}
		if err := h.DB.Save(&p).Error; err != nil {
			c.String(http.StatusInternalServerError, "Could not update patient")
			return
		}
		h.Audit.Record(adminActor(auth.Info(c)), fmt.Sprintf("Edited patient %d by admin", p.ID))
		flash(c, "Patient updated")
		c.Redirect(http.StatusFound, "/admin/patients")
		return
	}
	h.render(c, "admin_edit_patient.html", gin.H{"Title": "Edit patient", "Patient": p})
}

func (h *Handler) AdminDeletePatient(c *gin.Context) {
	var p models.Patient
	patientID, err := strconv.ParseUint(c.Param("patient_id"), 10, 64)
	if err != nil || h.DB.First(&p, patientID).Error != nil {
		c.String(http.StatusNotFound, "Patient not found")
		return
	}
	if err := h.DB.Delete(&p).Error; err != nil {
		c.String(http.StatusInternalServerError, "Could not delete patient")
		return
	}
	h.Audit.Record(adminActor(auth.Info(c)), fmt.Sprintf("Deleted patient %d by admin", patientID))
	flash(c, "Patient deleted")
	c.Redirect(http.StatusFound, "/admin/patients")
}
