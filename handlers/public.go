package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lithammer/shortuuid/v4"

	"github.com/clinicware/clinic-backend/models"
)

const htmlContentType = "text/html; charset=utf-8"

// Home shows featured testimonials, falling back to the most recent ones.
func (h *Handler) Home(c *gin.Context) {
	var testimonials []models.Testimonial
	h.DB.Where("featured = ?", true).Order("created_at desc").Limit(5).Find(&testimonials)
	if len(testimonials) == 0 {
		h.DB.Order("created_at desc").Limit(5).Find(&testimonials)
	}
	h.render(c, "home.html", gin.H{"Title": "Home", "Testimonials": testimonials})
}

func (h *Handler) Services(c *gin.Context) {
	h.render(c, "services.html", gin.H{"Title": "Services"})
}

func (h *Handler) About(c *gin.Context) {
	h.render(c, "about.html", gin.H{"Title": "About"})
}

func (h *Handler) Resources(c *gin.Context) {
	var faqs []models.FAQ
	h.DB.Find(&faqs)
	h.render(c, "resources.html", gin.H{"Title": "Resources", "FAQs": faqs})
}

func (h *Handler) Blog(c *gin.Context) {
	var posts []models.BlogPost
	h.DB.Order("created_at desc").Find(&posts)
	h.render(c, "blog.html", gin.H{"Title": "Blog", "Posts": posts})
}

func (h *Handler) BlogPost(c *gin.Context) {
	var post models.BlogPost
	if err := h.DB.Where("slug = ?", c.Param("slug")).First(&post).Error; err != nil {
		c.String(http.StatusNotFound, "Post not found")
		return
	}
	body := fmt.Sprintf("<h1>%s</h1><div>%s</div><p><a href='/blog'>Back</a></p>", post.Title, post.Content)
	c.Data(http.StatusOK, htmlContentType, []byte(body))
}

func (h *Handler) Testimonials(c *gin.Context) {
	var testimonials []models.Testimonial
	h.DB.Order("created_at desc").Find(&testimonials)
	h.render(c, "testimonials.html", gin.H{"Title": "Testimonials", "Testimonials": testimonials})
}

// SampleDiet serves the placeholder diet guide download.
func (h *Handler) SampleDiet(c *gin.Context) {
	body := []byte("Diet & Lifestyle Guidelines (placeholder). Replace with real PDF file in production.")
	c.Header("Content-Disposition", `attachment; filename="diet-guidelines.txt"`)
	c.Data(http.StatusOK, "text/plain", body)
}

func (h *Handler) Telehealth(c *gin.Context) {
	c.Data(http.StatusOK, htmlContentType, []byte(
		"<h2>Telehealth</h2><p>To book a video visit, use the appointment booking page and choose 'telehealth' in the reason. Zoom link will be sent in confirmation (placeholder).</p>"))
}

func (h *Handler) BookForm(c *gin.Context) {
	h.render(c, "book.html", gin.H{"Title": "Book", "PrefillDoctor": c.Query("doctor")})
}

// Book creates (or reuses) the patient record and files an appointment
// request, answering with a confirmation and a Google Calendar link.
func (h *Handler) Book(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	phone := c.PostForm("phone")
	doctor := c.PostForm("doctor")
	if doctor == "" {
		doctor = c.Query("doctor")
	}
	reason := c.PostForm("reason")

	date, err := time.Parse("2006-01-02 15:04", c.PostForm("date"))
	if err != nil {
		flash(c, "Invalid date format. Use YYYY-MM-DD HH:MM (24h).")
		c.Redirect(http.StatusFound, "/book")
		return
	}

	var patient models.Patient
	if err := h.DB.Where("email = ?", email).First(&patient).Error; err != nil {
		if name == "" {
			name = emailLocalPart(email)
		}
		patient = models.Patient{Name: name, Email: email, Phone: phone}
		if err := h.DB.Create(&patient).Error; err != nil {
			c.String(http.StatusInternalServerError, "Could not save booking")
			return
		}
	}

	if doctor != "" {
		reason = fmt.Sprintf("Doctor: %s — %s", doctor, reason)
	}
	appt := models.Appointment{
		PatientID: patient.ID,
		Reference: shortuuid.New(),
		Date:      date,
		Reason:    reason,
		Status:    models.AppointmentRequested,
	}
	if err := h.DB.Create(&appt).Error; err != nil {
		c.String(http.StatusInternalServerError, "Could not save booking")
		return
	}

	gcalTime := date.Format("20060102T150400")
	gcalLink := fmt.Sprintf(
		"https://www.google.com/calendar/render?action=TEMPLATE&text=%s&dates=%s/%s&details=%s",
		url.QueryEscape(patient.Name+" appointment - "+reason), gcalTime, gcalTime, url.QueryEscape(reason))

	flash(c, "Appointment requested — confirmation shown below")
	body := fmt.Sprintf(
		"<p>Requested. Reference: %s. <a href='%s' target='_blank'>Add to Google Calendar</a></p><p><a href='/'>Back home</a></p>",
		appt.Reference, gcalLink)
	c.Data(http.StatusOK, htmlContentType, []byte(body))
}

// RiskQuiz is a small self-assessment with no persistence.
func (h *Handler) RiskQuiz(c *gin.Context) {
	if c.Request.Method == http.MethodPost {
		age, _ := strconv.Atoi(c.PostForm("age"))
		bmi, _ := strconv.ParseFloat(c.PostForm("bmi"), 64)
		score := 0
		if age > 45 {
			score++
		}
		if bmi > 30 {
			score++
		}
		if c.PostForm("family") == "yes" {
			score++
		}
		level := "Low"
		if score == 1 {
			level = "Moderate"
		} else if score > 1 {
			level = "High"
		}
		c.Data(http.StatusOK, htmlContentType, []byte(
			fmt.Sprintf("<h2>Risk: %s</h2><p><a href='/resources'>Back</a></p>", level)))
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(
		"<form method='post'>Age: <input name='age' /><br/>BMI: <input name='bmi' /><br/>Family history? <select name='family'><option value='no'>No</option><option value='yes'>Yes</option></select><br/><button>Check</button></form>"))
}

func emailLocalPart(email string) string {
	for i, r := range email {
		if r == '@' {
			return email[:i]
		}
	}
	return email
}
