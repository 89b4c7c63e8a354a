// Package seed loads demo data for testing and visual QA.
package seed

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/clinicware/clinic-backend/models"
)

// Run inserts demo content. It is idempotent: existing rows are matched
// by their natural keys and left alone, so re-running is safe.
func Run(db *gorm.DB) error {
	p1, err := ensurePatient(db, "Test Patient", "test@example.com", "555-0100")
	if err != nil {
		return err
	}
	p2, err := ensurePatient(db, "Alex Johnson", "alex@example.com", "555-0101")
	if err != nil {
		return err
	}
	p3, err := ensurePatient(db, "Maria Gomez", "maria@example.com", "555-0102")
	if err != nil {
		return err
	}

	faqs := []models.FAQ{
		{Question: "What should I bring?", Answer: "Bring your medication list, recent glucose logs, and ID."},
		{Question: "Do you offer telehealth?", Answer: "Yes — we provide video consultations for follow-ups."},
		{Question: "How do I get my readings exported?", Answer: "From your dashboard you can export vitals as CSV."},
	}
	for _, f := range faqs {
		var existing models.FAQ
		if err := db.Where("question = ?", f.Question).First(&existing).Error; err != nil {
			if err := db.Create(&f).Error; err != nil {
				return err
			}
		}
	}

	testimonials := []models.Testimonial{
		{Author: "Jane Doe", Text: "Excellent care and friendly staff. My blood sugar is finally stable.", Featured: true},
		{Author: "Ravi K.", Text: "The remote monitoring helped me avoid a hospital visit.", Featured: true},
		{Author: "Lina P.", Text: "Very knowledgeable team — they adjusted my meds and educated me."},
		{Author: "Mohammad S.", Text: "Convenient telehealth and clear plans for diet and exercise."},
		{Author: "Angela M.", Text: "Compassionate clinicians who listen and explain everything."},
		{Author: "Carlos V.", Text: "A team approach that really worked for my BP."},
	}
	for _, t := range testimonials {
		var existing models.Testimonial
		if err := db.Where("text = ?", t.Text).First(&existing).Error; err != nil {
			if err := db.Create(&t).Error; err != nil {
				return err
			}
		}
	}

	posts := []models.BlogPost{
		{Title: "Managing Blood Sugar", Slug: "managing-blood-sugar", Content: "Practical tips to keep your glucose in range."},
		{Title: "Home Blood Pressure Monitoring", Slug: "home-bp", Content: "How to measure BP at home and what to record."},
		{Title: "Healthy Eating for Diabetes", Slug: "healthy-eating", Content: "Simple nutrition tips for better glucose control."},
		{Title: "Understanding Your Meds", Slug: "understanding-meds", Content: "Why medication reviews matter."},
		{Title: "Telehealth Visits: What to Expect", Slug: "telehealth-expect", Content: "Prepare for a successful video visit."},
	}
	for _, p := range posts {
		var existing models.BlogPost
		if err := db.Where("slug = ?", p.Slug).First(&existing).Error; err != nil {
			if err := db.Create(&p).Error; err != nil {
				return err
			}
		}
	}

	var apptCount int64
	db.Model(&models.Appointment{}).Count(&apptCount)
	if apptCount == 0 {
		appts := []models.Appointment{
			{PatientID: p2.ID, Date: time.Now().Add(3 * 24 * time.Hour), Reason: "Follow-up", Status: models.AppointmentRequested},
			{PatientID: p3.ID, Date: time.Now().Add(7 * 24 * time.Hour), Reason: "Medication review", Status: models.AppointmentConfirmed},
		}
		if err := db.Create(&appts).Error; err != nil {
			return err
		}
	}

	var vitalsCount int64
	db.Model(&models.Vitals{}).Where("patient_id = ?", p1.ID).Count(&vitalsCount)
	if vitalsCount == 0 {
		base := time.Now().Add(-30 * 24 * time.Hour)
		for i := 0; i < 10; i++ {
			glucose := 100 + float64(i)*2.5
			v := models.Vitals{
				PatientID:  p1.ID,
				Systolic:   120 + i%6,
				Diastolic:  78 + i%5,
				Glucose:    &glucose,
				MeasuredAt: base.Add(time.Duration(i*3) * 24 * time.Hour),
			}
			if err := db.Create(&v).Error; err != nil {
				return err
			}
		}
	}

	staffAccounts := []struct {
		name, email, password, role string
	}{
		{"Clinic Admin", "admin@clinic.local", "adminpass", models.RoleAdmin},
		{"Alice Nurse", "alice.nurse@clinic.local", "Alice123!", models.RoleStaff},
		{"Bob Nurse", "bob.nurse@clinic.local", "Bob123!", models.RoleStaff},
		{"Dr. Lee", "dr.lee@clinic.local", "LeeDoc123!", models.RoleDoctor},
		{"Sam Reception", "sam.recep@clinic.local", "Sam123!", models.RoleStaff},
		{"Nina Coordinator", "nina.coord@clinic.local", "Nina123!", models.RoleStaff},
	}
	for _, acct := range staffAccounts {
		var existing models.Staff
		if err := db.Where("email = ?", acct.email).First(&existing).Error; err == nil {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(acct.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		s := models.Staff{Name: acct.name, Email: acct.email, PasswordHash: string(hash), Role: acct.role}
		if err := db.Create(&s).Error; err != nil {
			return err
		}
		log.Printf("created staff account: %s (password: %s)", acct.email, acct.password)
	}

	log.Println("seeded demo data (idempotent)")
	return nil
}

func ensurePatient(db *gorm.DB, name, email, phone string) (models.Patient, error) {
	var p models.Patient
	if err := db.Where("email = ?", email).First(&p).Error; err == nil {
		return p, nil
	}
	p = models.Patient{Name: name, Email: email, Phone: phone}
	if err := db.Create(&p).Error; err != nil {
		return p, err
	}
	return p, nil
}
