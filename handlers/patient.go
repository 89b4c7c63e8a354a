package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicware/clinic-backend/auth"
	"github.com/clinicware/clinic-backend/models"
)

func (h *Handler) LoginForm(c *gin.Context) {
	h.render(c, "login.html", gin.H{"Title": "Login"})
}

func (h *Handler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	var patient models.Patient
	err := h.DB.Where("email = ?", email).First(&patient).Error
	if err != nil || patient.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(patient.PasswordHash), []byte(password)) != nil {
		flash(c, "Invalid credentials")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	sess := sessions.Default(c)
	sess.Set(auth.KeyPatientEmail, patient.Email)
	sess.Set(auth.KeyPatientID, patient.ID)
	_ = sess.Save()
	flash(c, "Logged in")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	flash(c, "Logged out")
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Dashboard(c *gin.Context) {
	si := auth.Info(c)
	var patient models.Patient
	if err := h.DB.Where("email = ?", si.PatientEmail).First(&patient).Error; err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	h.render(c, "dashboard.html", gin.H{"Title": "Dashboard", "Patient": patient})
}

// CreateVitals saves one self-logged reading for the current patient.
func (h *Handler) CreateVitals(c *gin.Context) {
	si := auth.Info(c)

	systolic, err1 := strconv.Atoi(c.PostForm("systolic"))
	diastolic, err2 := strconv.Atoi(c.PostForm("diastolic"))
	if err1 != nil || err2 != nil {
		flash(c, "Systolic and diastolic readings are required")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	v := models.Vitals{
		PatientID: si.PatientID,
		Systolic:  systolic,
		Diastolic: diastolic,
		Note:      c.PostForm("note"),
	}
	if g := c.PostForm("glucose"); g != "" {
		if gv, err := strconv.ParseFloat(g, 64); err == nil {
			v.Glucose = &gv
		}
	}
	if err := h.DB.Create(&v).Error; err != nil {
		c.String(http.StatusInternalServerError, "Could not save reading")
		return
	}
	flash(c, "Reading saved")
	c.Redirect(http.StatusFound, "/dashboard")
}

// APIVitals feeds the dashboard charts.
func (h *Handler) APIVitals(c *gin.Context) {
	patientID, err := strconv.ParseUint(c.Param("patient_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patient id"})
		return
	}
	var readings []models.Vitals
	h.DB.Where("patient_id = ?", patientID).Order("measured_at asc").Find(&readings)

	out := make([]gin.H, 0, len(readings))
	for _, r := range readings {
		out = append(out, gin.H{
			"id":          r.ID,
			"systolic":    r.Systolic,
			"diastolic":   r.Diastolic,
			"glucose":     r.Glucose,
			"note":        r.Note,
			"measured_at": r.MeasuredAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// ExportVitals streams the patient's readings as CSV.
func (h *Handler) ExportVitals(c *gin.Context) {
	patientID, err := strconv.ParseUint(c.Param("patient_id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid patient id")
		return
	}
	var readings []models.Vitals
	h.DB.Where("patient_id = ?", patientID).Order("measured_at asc").Find(&readings)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"measured_at", "systolic", "diastolic", "glucose", "note"})
	for _, r := range readings {
		glucose := ""
		if r.Glucose != nil {
			glucose = strconv.FormatFloat(*r.Glucose, 'f', -1, 64)
		}
		_ = w.Write([]string{
			r.MeasuredAt.Format("2006-01-02T15:04:05"),
			strconv.Itoa(r.Systolic),
			strconv.Itoa(r.Diastolic),
			glucose,
			r.Note,
		})
	}
	w.Flush()

	c.Header("Content-Disposition", `attachment; filename="vitals.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// PatientFiles lists the current patient's uploaded records, newest first.
func (h *Handler) PatientFiles(c *gin.Context) {
	si := auth.Info(c)
	var files []models.PatientFile
	h.DB.Where("patient_id = ?", si.PatientID).Order("uploaded_at desc").Find(&files)
	h.render(c, "patient_files.html", gin.H{"Title": "Your files", "Files": files})
}

// DownloadFile streams a stored file after authorization. Three access
// paths exist: the owning patient's session, any staff/admin session, or
// a valid signed token naming this file. Anything else redirects to
// login without leaking why.
func (h *Handler) DownloadFile(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("file_id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, "File not found")
		return
	}
	var pf models.PatientFile
	if err := h.DB.First(&pf, fileID).Error; err != nil {
		c.String(http.StatusNotFound, "File not found")
		return
	}

	if !h.Authz.Authorize(auth.Info(c), pf, c.Query("token")) {
		flash(c, "Not authorised")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	data, err := h.Store.Read(pf.PatientID, pf.Filename)
	if err != nil {
		c.String(http.StatusInternalServerError, "Could not read file")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pf.OriginalName))
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
