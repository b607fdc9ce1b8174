package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/kta-platform/kta-auth"
)

func main() {
	ctx := context.Background()
	cfg := LoadConfig()

	if cfg.SigningKey == "" {
		// Refuse to serve sign in requests rather than issue unsigned or
		// malformed tokens.
		log.Fatal("AUTH_JWT_SECRET is required")
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	repo := auth.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		log.Fatalf("repositories: %v", err)
	}

	store := auth.NewIdentityStore(repo)

	authenticator := auth.NewAuthenticator(store, cfg)

	app := fiber.New(fiber.Config{
		AppName: "kta-auth",
	})

	auth.RegisterAuthRoutes(app.Group("/api/authenticate"), func(c *auth.AuthController) *auth.AuthController {
		c.Auther = authenticator
		c.Store = store
		c.Mailer = newMailer(cfg)
		c.LinkBase = cfg.LinkBase
		return c
	})

	// Example protected route, exercises bearer token validation.
	app.Get("/api/me", auth.RequireAuth(authenticator.TokenService()), func(ctx *fiber.Ctx) error {
		claims, ok := auth.ClaimsFromContext(ctx)
		if !ok {
			return ctx.SendStatus(fiber.StatusUnauthorized)
		}
		return ctx.JSON(auth.DataResponse(fiber.Map{
			"name":  claims.Name(),
			"roles": claims.Roles(),
		}))
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("http: %v", err)
		}
	}()

	waitExitSignal()

	if err := app.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openDatabase(ctx context.Context, cfg *Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.RegisterModel((*auth.UserRole)(nil))

	if err := auth.BootstrapSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func newMailer(cfg *Config) auth.Mailer {
	if cfg.SMTPHost == "" {
		return auth.NewLogMailer(nil)
	}

	return auth.NewSMTPMailer(auth.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
