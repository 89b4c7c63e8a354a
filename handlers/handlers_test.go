package handlers_test

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/clinicware/clinic-backend/alerts"
	"github.com/clinicware/clinic-backend/config"
	"github.com/clinicware/clinic-backend/handlers"
	"github.com/clinicware/clinic-backend/initializers"
	"github.com/clinicware/clinic-backend/models"
	"github.com/clinicware/clinic-backend/routes"
	"github.com/clinicware/clinic-backend/storage"
)

type testApp struct {
	srv *httptest.Server
	db  *gorm.DB
	h   *handlers.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		SecretKey:        "test-secret",
		AdminPass:        "adminpass",
		UploadDir:        t.TempDir(),
		DownloadTokenTTL: time.Hour,
		DoctorName:       "Amit Patel, MD",
		DoctorTitle:      "Endocrinologist",
		ClinicPhone:      "+1234567890",
		ClinicEmail:      "clinic@example.com",
	}

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "clinic.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, initializers.Migrate(db))

	h := handlers.New(db, cfg, storage.NewLocalStore(cfg.UploadDir), alerts.NewFromConfig(cfg))

	r := gin.New()
	r.LoadHTMLGlob(filepath.Join("..", "templates", "*.html"))
	store := cookie.NewStore([]byte(cfg.SecretKey))
	// Mirror main.go's store options; gorilla/sessions v1.4 defaults to
	// Secure cookies, which the cookie jar drops over plain-HTTP httptest.
	store.Options(sessions.Options{Path: "/", MaxAge: 86400 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("clinic_session", store))
	routes.Register(r, h)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, db: db, h: h}
}

func (a *testApp) createStaff(t *testing.T, email, password, role string) models.Staff {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	s := models.Staff{Name: "Test Staff", Email: email, PasswordHash: string(hash), Role: role}
	require.NoError(t, a.db.Create(&s).Error)
	return s
}

func (a *testApp) createPatient(t *testing.T, email, password string) models.Patient {
	t.Helper()
	p := models.Patient{Name: "Test Patient", Email: email, Phone: "555-0100"}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		p.PasswordHash = string(hash)
	}
	require.NoError(t, a.db.Create(&p).Error)
	return p
}

// newClient returns an HTTP client that keeps session cookies and follows
// redirects like a browser.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

// newBareClient keeps cookies but does not follow redirects, so tests can
// assert on them.
func newBareClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, u string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := client.PostForm(u, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func get(t *testing.T, client *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func uploadFile(t *testing.T, client *http.Client, u, filename string, content []byte) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := client.Post(u, w.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestStaffUploadImpersonateDownload(t *testing.T) {
	app := newTestApp(t)
	app.createStaff(t, "staff@example.com", "pw", models.RoleAdmin)
	patient := app.createPatient(t, "p@example.com", "")
	client := newClient(t)

	// Staff login lands on the staff dashboard with a confirmation flash.
	_, body := postForm(t, client, app.srv.URL+"/staff/login", url.Values{
		"email": {"staff@example.com"}, "password": {"pw"},
	})
	assert.Contains(t, body, "Staff logged in")

	// Upload a 10-byte text file for the patient.
	content := []byte("Hello test")
	_, body = uploadFile(t, client,
		fmt.Sprintf("%s/admin/upload/%d", app.srv.URL, patient.ID), "report.txt", content)
	assert.Contains(t, body, "File uploaded")

	var entry models.AuditLog
	require.NoError(t, app.db.Where("action LIKE ?", "%Uploaded file report.txt%").First(&entry).Error)
	assert.Equal(t, "staff@example.com", entry.Actor)

	var pf models.PatientFile
	require.NoError(t, app.db.Where("patient_id = ?", patient.ID).First(&pf).Error)
	assert.Equal(t, "report.txt", pf.OriginalName)
	assert.NotContains(t, pf.Filename, "/", "storage name must be flat")
	assert.NotEqual(t, "report.txt", pf.Filename, "storage name must not be the user-supplied name")

	// Impersonate the patient and see their file list.
	_, body = get(t, client, fmt.Sprintf("%s/staff/impersonate/%d", app.srv.URL, patient.ID))
	assert.Contains(t, body, "Now impersonating")

	var impersonation models.AuditLog
	require.NoError(t, app.db.Where("action = ?", fmt.Sprintf("Impersonated patient %d", patient.ID)).First(&impersonation).Error)

	_, body = get(t, client, app.srv.URL+"/patient/files")
	assert.Contains(t, body, "report.txt")

	// Download returns exactly the original bytes.
	resp, body := get(t, client, fmt.Sprintf("%s/patient/files/%d/download", app.srv.URL, pf.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(content), body)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "report.txt")
}

func TestAnonymousDownloadRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)
	patient := app.createPatient(t, "p@example.com", "")
	pf := models.PatientFile{PatientID: patient.ID, Filename: "abc_report.txt", OriginalName: "report.txt"}
	require.NoError(t, app.db.Create(&pf).Error)
	require.NoError(t, app.h.Store.Save(patient.ID, pf.Filename, []byte("secret bytes")))

	client := newBareClient(t)
	resp, body := get(t, client, fmt.Sprintf("%s/patient/files/%d/download", app.srv.URL, pf.ID))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.NotContains(t, body, "secret bytes")
}

func TestDownloadWithToken(t *testing.T) {
	app := newTestApp(t)
	patient := app.createPatient(t, "p@example.com", "")
	fileA := models.PatientFile{PatientID: patient.ID, Filename: "a_report.txt", OriginalName: "a.txt"}
	fileB := models.PatientFile{PatientID: patient.ID, Filename: "b_report.txt", OriginalName: "b.txt"}
	require.NoError(t, app.db.Create(&fileA).Error)
	require.NoError(t, app.db.Create(&fileB).Error)
	require.NoError(t, app.h.Store.Save(patient.ID, fileA.Filename, []byte("contents of A")))
	require.NoError(t, app.h.Store.Save(patient.ID, fileB.Filename, []byte("contents of B")))

	token, err := app.h.Tokens.Issue(fileA.ID)
	require.NoError(t, err)

	client := newBareClient(t)
	resp, body := get(t, client,
		fmt.Sprintf("%s/patient/files/%d/download?token=%s", app.srv.URL, fileA.ID, url.QueryEscape(token)))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "contents of A", body)

	// The same token must not open a different file.
	resp, body = get(t, client,
		fmt.Sprintf("%s/patient/files/%d/download?token=%s", app.srv.URL, fileB.ID, url.QueryEscape(token)))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.NotContains(t, body, "contents of B")
}

func TestStaffFileTokenEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.createStaff(t, "staff@example.com", "pw", models.RoleStaff)
	patient := app.createPatient(t, "p@example.com", "")
	pf := models.PatientFile{PatientID: patient.ID, Filename: "abc_report.txt", OriginalName: "report.txt"}
	require.NoError(t, app.db.Create(&pf).Error)
	require.NoError(t, app.h.Store.Save(patient.ID, pf.Filename, []byte("Hello test")))

	client := newClient(t)
	postForm(t, client, app.srv.URL+"/staff/login", url.Values{
		"email": {"staff@example.com"}, "password": {"pw"},
	})

	resp, body := get(t, client, fmt.Sprintf("%s/staff/file-token/%d", app.srv.URL, pf.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Signed link (valid 1 hour):")

	var entry models.AuditLog
	require.NoError(t, app.db.Where("action = ?", fmt.Sprintf("Generated download token for file %d", pf.ID)).First(&entry).Error)

	// The emitted link works without any session.
	link := strings.TrimSpace(strings.TrimPrefix(body, "Signed link (valid 1 hour): "))
	anon := newBareClient(t)
	resp, body = get(t, anon, link)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello test", body)

	// QR variant renders a PNG.
	resp, body = get(t, client, fmt.Sprintf("%s/staff/file-token/%d/qr", app.srv.URL, pf.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "\x89PNG"))
}

type captureNotifier struct {
	ch chan string
}

func (n *captureNotifier) Notify(subject, body string) error {
	n.ch <- subject + ": " + body
	return nil
}

func TestSuspiciousUploadIsStoredFlaggedAndAlerted(t *testing.T) {
	app := newTestApp(t)
	notifier := &captureNotifier{ch: make(chan string, 1)}
	app.h.Alerts = notifier
	app.createStaff(t, "staff@example.com", "pw", models.RoleAdmin)
	patient := app.createPatient(t, "p@example.com", "")
	client := newClient(t)
	postForm(t, client, app.srv.URL+"/staff/login", url.Values{
		"email": {"staff@example.com"}, "password": {"pw"},
	})

	// Passes the %PDF prefix check but is not a real PDF.
	_, body := uploadFile(t, client,
		fmt.Sprintf("%s/admin/upload/%d", app.srv.URL, patient.ID), "report.pdf",
		[]byte("%PDF but actually plain text"))
	assert.Contains(t, body, "marked suspicious")

	var pf models.PatientFile
	require.NoError(t, app.db.Where("patient_id = ?", patient.ID).First(&pf).Error,
		"suspicious file must still be stored")

	var entry models.AuditLog
	require.NoError(t, app.db.Where("action LIKE ?", "%[SUSPICIOUS]%").First(&entry).Error)
	assert.Contains(t, entry.Action, "report.pdf")

	select {
	case msg := <-notifier.ch:
		assert.Contains(t, msg, "Suspicious upload detected")
	case <-time.After(2 * time.Second):
		t.Fatal("expected an alert to be dispatched")
	}
}

func TestRejectedUploadIsDiscardedWithoutAudit(t *testing.T) {
	app := newTestApp(t)
	app.createStaff(t, "staff@example.com", "pw", models.RoleAdmin)
	patient := app.createPatient(t, "p@example.com", "")
	client := newClient(t)
	postForm(t, client, app.srv.URL+"/staff/login", url.Values{
		"email": {"staff@example.com"}, "password": {"pw"},
	})

	_, body := uploadFile(t, client,
		fmt.Sprintf("%s/admin/upload/%d", app.srv.URL, patient.ID), "malware.exe", []byte("MZ binary"))
	assert.Contains(t, body, "File type not allowed")

	var fileCount, auditCount int64
	app.db.Model(&models.PatientFile{}).Count(&fileCount)
	app.db.Model(&models.AuditLog{}).Count(&auditCount)
	assert.Zero(t, fileCount)
	assert.Zero(t, auditCount, "rejected uploads leave no audit entry")
}

func TestPatientLoginVitalsAndExport(t *testing.T) {
	app := newTestApp(t)
	patient := app.createPatient(t, "p@example.com", "pw")
	client := newClient(t)

	_, body := postForm(t, client, app.srv.URL+"/login", url.Values{
		"email": {"p@example.com"}, "password": {"pw"},
	})
	assert.Contains(t, body, "Logged in")

	_, body = postForm(t, client, app.srv.URL+"/vitals", url.Values{
		"systolic": {"120"}, "diastolic": {"80"}, "glucose": {"101.5"}, "note": {"morning"},
	})
	assert.Contains(t, body, "Reading saved")

	resp, body := get(t, client, fmt.Sprintf("%s/api/vitals/%d", app.srv.URL, patient.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"systolic":120`)

	resp, body = get(t, client, fmt.Sprintf("%s/export/vitals/%d", app.srv.URL, patient.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "vitals.csv")
	assert.Contains(t, body, "measured_at,systolic,diastolic,glucose,note")
	assert.Contains(t, body, "120,80,101.5,morning")
}

func TestPatientCannotDownloadOthersFile(t *testing.T) {
	app := newTestApp(t)
	owner := app.createPatient(t, "owner@example.com", "pw")
	other := app.createPatient(t, "other@example.com", "pw")
	pf := models.PatientFile{PatientID: owner.ID, Filename: "abc_report.txt", OriginalName: "report.txt"}
	require.NoError(t, app.db.Create(&pf).Error)
	require.NoError(t, app.h.Store.Save(owner.ID, pf.Filename, []byte("private")))

	client := newBareClient(t)
	postForm(t, client, app.srv.URL+"/login", url.Values{
		"email": {other.Email}, "password": {"pw"},
	})

	resp, body := get(t, client, fmt.Sprintf("%s/patient/files/%d/download", app.srv.URL, pf.ID))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.NotContains(t, body, "private")
}

func TestAdminLoginAndAuditView(t *testing.T) {
	app := newTestApp(t)
	client := newClient(t)

	// Wrong password bounces back to the login form.
	_, body := postForm(t, client, app.srv.URL+"/admin/login", url.Values{"password": {"nope"}})
	assert.Contains(t, body, "Incorrect admin password")

	_, body = postForm(t, client, app.srv.URL+"/admin/login", url.Values{"password": {"adminpass"}})
	assert.Contains(t, body, "Admin")

	app.h.Audit.Record("staff@example.com", "Uploaded file report.txt for patient 1")
	resp, body := get(t, client, app.srv.URL+"/admin/audit")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Uploaded file report.txt for patient 1")
}

func TestBookCreatesPatientAndAppointment(t *testing.T) {
	app := newTestApp(t)
	client := newClient(t)

	_, body := postForm(t, client, app.srv.URL+"/book", url.Values{
		"name":   {"New Person"},
		"email":  {"new@example.com"},
		"phone":  {"555-0199"},
		"date":   {"2026-09-15 14:30"},
		"reason": {"Follow-up"},
	})
	assert.Contains(t, body, "Requested.")
	assert.Contains(t, body, "google.com/calendar")

	var patient models.Patient
	require.NoError(t, app.db.Where("email = ?", "new@example.com").First(&patient).Error)
	var appt models.Appointment
	require.NoError(t, app.db.Where("patient_id = ?", patient.ID).First(&appt).Error)
	assert.Equal(t, models.AppointmentRequested, appt.Status)
	assert.NotEmpty(t, appt.Reference)
	assert.Contains(t, body, appt.Reference)

	// A malformed date is rejected before anything is stored.
	resp, _ := postForm(t, newBareClient(t), app.srv.URL+"/book", url.Values{
		"email": {"x@example.com"}, "date": {"tomorrow at noon"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/book", resp.Header.Get("Location"))
}

func TestStaffRoutesRequireSession(t *testing.T) {
	app := newTestApp(t)
	client := newBareClient(t)

	resp, _ := get(t, client, app.srv.URL+"/staff")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/staff/login", resp.Header.Get("Location"))

	resp, _ = get(t, client, app.srv.URL+"/admin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))

	resp, _ = get(t, client, app.srv.URL+"/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestOversizedUploadRejected(t *testing.T) {
	app := newTestApp(t)
	app.createStaff(t, "staff@example.com", "pw", models.RoleAdmin)
	patient := app.createPatient(t, "p@example.com", "")
	client := newClient(t)
	postForm(t, client, app.srv.URL+"/staff/login", url.Values{
		"email": {"staff@example.com"}, "password": {"pw"},
	})

	big := bytes.Repeat([]byte("a"), (8<<20)+1)
	_, body := uploadFile(t, client,
		fmt.Sprintf("%s/admin/upload/%d", app.srv.URL, patient.ID), "big.txt", big)
	assert.Contains(t, body, "File too large")

	var fileCount int64
	app.db.Model(&models.PatientFile{}).Count(&fileCount)
	assert.Zero(t, fileCount)
}
