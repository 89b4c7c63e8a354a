package main

import (
	"context"
	"flag"
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/clinicware/clinic-backend/alerts"
	"github.com/clinicware/clinic-backend/auth/middleware"
	"github.com/clinicware/clinic-backend/config"
	"github.com/clinicware/clinic-backend/handlers"
	"github.com/clinicware/clinic-backend/initializers"
	"github.com/clinicware/clinic-backend/routes"
	"github.com/clinicware/clinic-backend/seed"
	"github.com/clinicware/clinic-backend/storage"
)

func main() {
	seedFlag := flag.Bool("seed", false, "seed demo data and exit")
	flag.Parse()

	cfg := config.Load()

	db, err := initializers.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	if *seedFlag {
		if err := seed.Run(db); err != nil {
			log.Fatalf("seed: %v", err)
		}
		return
	}

	var store storage.Store
	if cfg.S3Bucket != "" {
		s3store, err := storage.NewS3Store(context.Background(), cfg.S3Bucket)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		store = s3store
	} else {
		store = storage.NewLocalStore(cfg.UploadDir)
	}

	h := handlers.New(db, cfg, store, alerts.NewFromConfig(cfg))

	router := gin.Default()
	router.LoadHTMLGlob("templates/*.html")

	cookieStore := cookie.NewStore([]byte(cfg.SecretKey))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("clinic_session", cookieStore))
	router.Use(middleware.RateLimit())

	routes.Register(router, h)

	log.Printf("clinic portal listening on :%s", cfg.Port)
	log.Fatal(router.Run(":" + cfg.Port))
}
