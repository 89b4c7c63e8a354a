package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicware/clinic-backend/auth"
	"github.com/clinicware/clinic-backend/models"
)

func (h *Handler) StaffLoginForm(c *gin.Context) {
	h.render(c, "staff_login.html", gin.H{"Title": "Staff Login"})
}

func (h *Handler) StaffLogin(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	var staff models.Staff
	err := h.DB.Where("email = ?", email).First(&staff).Error
	if err != nil || staff.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(password)) != nil {
		flash(c, "Invalid staff credentials")
		c.Redirect(http.StatusFound, "/staff/login")
		return
	}

	sess := sessions.Default(c)
	sess.Set(auth.KeyStaffEmail, staff.Email)
	sess.Set(auth.KeyStaffID, staff.ID)
	sess.Set(auth.KeyStaffRole, staff.Role)
	_ = sess.Save()
	flash(c, "Staff logged in")
	c.Redirect(http.StatusFound, "/staff")
}

// StaffLogout clears the staff keys but keeps any patient session, so an
// impersonated patient view survives a staff logout the same way the
// session model always worked.
func (h *Handler) StaffLogout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Delete(auth.KeyStaffEmail)
	sess.Delete(auth.KeyStaffID)
	sess.Delete(auth.KeyStaffRole)
	_ = sess.Save()
	flash(c, "Staff logged out")
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) StaffDashboard(c *gin.Context) {
	si := auth.Info(c)
	var staff *models.Staff
	if si.StaffEmail != "" {
		var s models.Staff
		if err := h.DB.Where("email = ?", si.StaffEmail).First(&s).Error; err == nil {
			staff = &s
		}
	}
	var patients []models.Patient
	h.DB.Order("created_at desc").Limit(50).Find(&patients)
	h.render(c, "staff_dash.html", gin.H{"Title": "Staff", "Staff": staff, "Patients": patients})
}

// Impersonate switches the session into a patient's view for support
// work, recording who did it.
func (h *Handler) Impersonate(c *gin.Context) {
	patientID, err := strconv.ParseUint(c.Param("patient_id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, "Patient not found")
		return
	}
	var patient models.Patient
	if err := h.DB.First(&patient, patientID).Error; err != nil {
		c.String(http.StatusNotFound, "Patient not found")
		return
	}

	si := auth.Info(c)
	sess := sessions.Default(c)
	sess.Set(auth.KeyPatientEmail, patient.Email)
	sess.Set(auth.KeyPatientID, patient.ID)
	sess.Set(auth.KeyImpersonatedBy, si.StaffEmail)
	_ = sess.Save()

	h.Audit.Record(si.Actor(), fmt.Sprintf("Impersonated patient %d", patient.ID))
	flash(c, fmt.Sprintf("Now impersonating %s — remember to stop when finished", patient.Name))
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) StopImpersonation(c *gin.Context) {
	sess := sessions.Default(c)
	impersonator, _ := sess.Get(auth.KeyImpersonatedBy).(string)
	sess.Delete(auth.KeyImpersonatedBy)
	sess.Delete(auth.KeyPatientEmail)
	sess.Delete(auth.KeyPatientID)
	_ = sess.Save()

	actor := impersonator
	if actor == "" {
		actor = auth.Info(c).Actor()
	}
	h.Audit.Record(actor, "Stopped impersonation")
	flash(c, "Stopped impersonation")
	c.Redirect(http.StatusFound, "/staff")
}

// FileToken issues a signed one-hour download link for a patient file and
// records the issuance.
func (h *Handler) FileToken(c *gin.Context) {
	pf, ok := h.lookupFile(c)
	if !ok {
		return
	}
	token, err := h.Tokens.Issue(pf.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Could not generate token")
		return
	}
	link := h.downloadLink(c, pf.ID, token)

	h.Audit.Record(auth.Info(c).Actor(), fmt.Sprintf("Generated download token for file %d", pf.ID))
	c.String(http.StatusOK, "Signed link (valid 1 hour): %s", link)
}

// FileTokenQR renders the signed link as a QR code for handing to a
// patient on a phone.
func (h *Handler) FileTokenQR(c *gin.Context) {
	pf, ok := h.lookupFile(c)
	if !ok {
		return
	}
	token, err := h.Tokens.Issue(pf.ID)
	if err != nil {
		c.String(http.StatusInternalServerError, "Could not generate token")
		return
	}
	link := h.downloadLink(c, pf.ID, token)

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		c.String(http.StatusInternalServerError, "Could not render QR code")
		return
	}
	h.Audit.Record(auth.Info(c).Actor(), fmt.Sprintf("Generated download token for file %d", pf.ID))
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) lookupFile(c *gin.Context) (models.PatientFile, bool) {
	var pf models.PatientFile
	fileID, err := strconv.ParseUint(c.Param("file_id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, "File not found")
		return pf, false
	}
	if err := h.DB.First(&pf, fileID).Error; err != nil {
		c.String(http.StatusNotFound, "File not found")
		return pf, false
	}
	return pf, true
}

func (h *Handler) downloadLink(c *gin.Context, fileID uint, token string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/patient/files/%d/download?token=%s", scheme, c.Request.Host, fileID, token)
}
