package handlers

import (
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicware/clinic-backend/auth"
	"github.com/clinicware/clinic-backend/models"
	"github.com/clinicware/clinic-backend/validate"
)

// UploadForm serves the minimal upload form for one patient.
func (h *Handler) UploadForm(c *gin.Context) {
	p, ok := h.lookupPatient(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(fmt.Sprintf(
		"<form method='post' enctype='multipart/form-data'>Upload for %s: <input type='file' name='file'/> <button>Upload</button></form>", p.Name)))
}

// Upload validates and stores one file in a patient's record.
//
// A rejected file is discarded with a flash message and no audit entry.
// An accepted-but-suspicious file is stored anyway, audited with a
// SUSPICIOUS marker, and an alert is dispatched without blocking or
// failing the upload.
func (h *Handler) Upload(c *gin.Context) {
	p, ok := h.lookupPatient(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		flash(c, "No file uploaded")
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.String(http.StatusInternalServerError, "Could not read upload")
		return
	}
	defer f.Close()
	// One extra byte past the cap is enough to detect oversized uploads
	// without buffering arbitrarily large bodies.
	data, err := io.ReadAll(io.LimitReader(f, validate.MaxFileBytes+1))
	if err != nil {
		c.String(http.StatusInternalServerError, "Could not read upload")
		return
	}

	res := validate.Check(fh.Filename, data)
	if res.Status == validate.Rejected {
		flash(c, res.Reason)
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	u := uuid.New()
	storedName := hex.EncodeToString(u[:]) + "_" + validate.SanitizeFilename(fh.Filename)
	if err := h.Store.Save(p.ID, storedName, data); err != nil {
		c.String(http.StatusInternalServerError, "Could not store file")
		return
	}

	pf := models.PatientFile{
		PatientID:    p.ID,
		Filename:     storedName,
		OriginalName: fh.Filename,
	}
	if err := h.DB.Create(&pf).Error; err != nil {
		c.String(http.StatusInternalServerError, "Could not save file record")
		return
	}

	actor := auth.Info(c).Actor()
	suspicious := res.Status == validate.AcceptedSuspicious
	marker := ""
	if suspicious {
		marker = " [SUSPICIOUS]"
	}
	h.Audit.Record(actor, fmt.Sprintf("Uploaded file %s for patient %d (mimetype=%s)%s",
		fh.Filename, p.ID, res.MIME, marker))

	if suspicious {
		subject := "Suspicious upload detected"
		body := fmt.Sprintf("Staff %s uploaded suspicious file %s for patient %d (mimetype=%s)",
			actor, fh.Filename, p.ID, res.MIME)
		go func() {
			if err := h.Alerts.Notify(subject, body); err != nil {
				log.Printf("upload: alert dispatch failed: %v", err)
			}
		}()
		flash(c, "File uploaded — marked suspicious and alerted to admins")
	} else {
		flash(c, "File uploaded")
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) lookupPatient(c *gin.Context) (models.Patient, bool) {
	var p models.Patient
	patientID, err := strconv.ParseUint(c.Param("patient_id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, "Patient not found")
		return p, false
	}
	if err := h.DB.First(&p, patientID).Error; err != nil {
		c.String(http.StatusNotFound, "Patient not found")
		return p, false
	}
	return p, true
}
