package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/media"
	"microblog/internal/middleware"
	"microblog/internal/modules/auth"
	"microblog/internal/modules/post"
	jwtsvc "microblog/internal/pkg/jwt"
	"microblog/internal/repository"
	"microblog/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed:", err)
	}

	store, err := media.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	postRepo := repository.NewPostRepository(db)

	if err := seed.Run(context.Background(), userRepo, roleRepo, cfg.AdminUsername, cfg.GuestUsername); err != nil {
		log.Fatal("seed failed:", err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(userRepo, roleRepo, j)
	authHandler := auth.NewHandler(authService)

	postService := post.NewService(postRepo, store)
	postHandler := post.NewHandler(postService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.Identity(j, userRepo))

	r.Static("/uploads", store.Dir())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.DebugPprof {
		r.Any("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	api := r.Group("/api")
	{
		// public
		authHandler.RegisterRoutes(api)
		postHandler.RegisterPublicRoutes(api)

		// protected
		protected := api.Group("")
		protected.Use(middleware.RequireAuth())
		postHandler.RegisterProtectedRoutes(protected, middleware.PostOwnership(postRepo))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("listening on", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logShutdownStats()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}

// logShutdownStats records memory and goroutine counts at shutdown to aid
// post-mortem diagnosis.
func logShutdownStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("shutting down: goroutines=%d heap_alloc=%dKB heap_objects=%d",
		runtime.NumGoroutine(), m.HeapAlloc/1024, m.HeapObjects)
}
