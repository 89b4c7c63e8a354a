// Package routes wires every handler to its path, composing the explicit
// route guards at registration time.
package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/clinicware/clinic-backend/auth/middleware"
	"github.com/clinicware/clinic-backend/handlers"
)

func Register(r *gin.Engine, h *handlers.Handler) {
	// Public site
	r.GET("/", h.Home)
	r.GET("/services", h.Services)
	r.GET("/about", h.About)
	r.GET("/resources", h.Resources)
	r.GET("/telehealth", h.Telehealth)
	r.GET("/risk-quiz", h.RiskQuiz)
	r.POST("/risk-quiz", h.RiskQuiz)
	r.GET("/blog", h.Blog)
	r.GET("/blog/:slug", h.BlogPost)
	r.GET("/testimonials", h.Testimonials)
	r.GET("/download/sample-diet.pdf", h.SampleDiet)
	r.GET("/book", h.BookForm)
	r.POST("/book", h.Book)

	// Patient auth and portal
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	patient := r.Group("/", middleware.RequirePatient())
	patient.GET("/dashboard", h.Dashboard)
	patient.POST("/vitals", h.CreateVitals)
	patient.GET("/patient/files", h.PatientFiles)

	// Download authorization happens inside the handler: token-bearing
	// requests have no session to gate on.
	r.GET("/patient/files/:file_id/download", h.DownloadFile)

	// Chart data and CSV export, consumed by the dashboard front end.
	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))
	api.GET("/vitals/:patient_id", h.APIVitals)
	r.GET("/export/vitals/:patient_id", h.ExportVitals)

	// Staff
	r.GET("/staff/login", h.StaffLoginForm)
	r.POST("/staff/login", h.StaffLogin)
	r.GET("/staff/logout", h.StaffLogout)

	staff := r.Group("/staff", middleware.RequireStaff())
	staff.GET("", h.StaffDashboard)
	staff.GET("/impersonate/:patient_id", h.Impersonate)
	staff.GET("/stop-impersonation", h.StopImpersonation)
	staff.GET("/file-token/:file_id", h.FileToken)
	staff.GET("/file-token/:file_id/qr", h.FileTokenQR)

	// Admin
	r.GET("/admin/login", h.AdminLoginForm)
	r.POST("/admin/login", h.AdminLogin)

	// Uploads are open to any staff role, not just admins.
	upload := r.Group("/admin/upload", middleware.RequireStaff())
	upload.GET("/:patient_id", h.UploadForm)
	upload.POST("/:patient_id", h.Upload)

	admin := r.Group("/admin", middleware.RequireAdmin())
	admin.GET("", h.AdminDashboard)
	admin.GET("/audit", h.AdminAudit)
	admin.GET("/new-patient", h.NewPatient)
	admin.POST("/new-patient", h.NewPatient)
	admin.GET("/new-staff", h.NewStaff)
	admin.POST("/new-staff", h.NewStaff)
	admin.GET("/new-post", h.NewPost)
	admin.POST("/new-post", h.NewPost)
	admin.GET("/new-faq", h.NewFAQ)
	admin.POST("/new-faq", h.NewFAQ)
	admin.GET("/staff", h.AdminStaff)
	admin.GET("/staff/edit/:staff_id", h.AdminEditStaff)
	admin.POST("/staff/edit/:staff_id", h.AdminEditStaff)
	admin.POST("/staff/delete/:staff_id", h.AdminDeleteStaff)
	admin.GET("/patients", h.AdminPatients)
	admin.GET("/patient/edit/:patient_id", h.AdminEditPatient)
	admin.POST("/patient/edit/:patient_id", h.AdminEditPatient)
	admin.POST("/patient/delete/:patient_id", h.AdminDeletePatient)
}
