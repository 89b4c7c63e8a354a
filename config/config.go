package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSecret is the well-known development signing secret. It must be
// overridden via CLINIC_SECRET in any real deployment.
const DefaultSecret = "change-this-in-prod"

// Config holds all process-wide settings. It is built once at startup and
// never mutated afterwards.
type Config struct {
	Port        string
	DatabaseURL string // postgres DSN; empty means local sqlite
	SQLitePath  string

	SecretKey string // session + download-token signing secret
	AdminPass string

	UploadDir string
	S3Bucket  string // non-empty switches file storage to S3

	DownloadTokenTTL time.Duration

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	AlertEmail string

	ClinicPhone    string
	ClinicWhatsApp string
	ClinicEmail    string
	DoctorName     string
	DoctorTitle    string
	DoctorBio      string
}

// Load reads .env (when present) and the environment into a Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	smtpPort, _ := strconv.Atoi(getenv("SMTP_PORT", "587"))

	cfg := &Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DB_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "clinic.db"),

		SecretKey: getenv("CLINIC_SECRET", DefaultSecret),
		AdminPass: getenv("ADMIN_PASS", "admin"),

		UploadDir: getenv("UPLOAD_DIR", "instance/uploads"),
		S3Bucket:  os.Getenv("AWS_BUCKET_NAME"),

		DownloadTokenTTL: time.Hour,

		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   smtpPort,
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		AlertEmail: os.Getenv("ALERT_EMAIL"),

		ClinicPhone: getenv("CLINIC_PHONE", "+1234567890"),
		ClinicEmail: getenv("CLINIC_EMAIL", "clinic@example.com"),
		DoctorName:  getenv("DOCTOR_NAME", "Amit Patel, MD"),
		DoctorTitle: getenv("DOCTOR_TITLE", "Endocrinologist & Hypertension Specialist"),
		DoctorBio:   getenv("DOCTOR_BIO", "My mission is to help patients live healthy lives with diabetes and hypertension."),
	}

	// wa.me links want digits only, without the leading +
	wa := getenv("CLINIC_WHATSAPP", cfg.ClinicPhone)
	cfg.ClinicWhatsApp = digitsOnly(wa)

	if cfg.SecretKey == DefaultSecret {
		log.Println("WARNING: CLINIC_SECRET not set, using insecure development default")
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
