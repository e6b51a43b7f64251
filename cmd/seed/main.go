// seed creates a demo account with a handful of contacts in the local dev
// database. It reads the same environment as the server.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"

	"github.com/ErlanBelekov/contacts-api/config"
	"github.com/ErlanBelekov/contacts-api/internal/auth/password"
	"github.com/ErlanBelekov/contacts-api/internal/auth/token"
	"github.com/ErlanBelekov/contacts-api/internal/domain"
	"github.com/ErlanBelekov/contacts-api/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/contacts-api/internal/usecase"
)

const (
	seedEmail    = "demo@contacts.local"
	seedPassword = "demo-password"
)

var contacts = []usecase.ContactInput{
	{FirstName: "Ada", LastName: "Lovelace", Phone: "+44 20 7946 0001"},
	{FirstName: "Alan", LastName: "Turing", Phone: "+44 20 7946 0002"},
	{FirstName: "Grace", LastName: "Hopper", Phone: "+1 202 555 0143"},
	{FirstName: "Edsger", LastName: "Dijkstra", Phone: "+31 20 555 0199"},
	{FirstName: "Barbara", LastName: "Liskov", Phone: "+1 617 555 0110"},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v (run: direnv allow)", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	hasher, err := password.New([]byte(cfg.PasswordPepper), cfg.BcryptCost)
	if err != nil {
		log.Fatalf("password hasher: %v", err)
	}
	tokens, err := token.NewService([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	auth := usecase.NewAuthUsecase(postgres.NewAccountRepository(pool), hasher, tokens, cfg.JWTTTL)
	contactUC := usecase.NewContactUsecase(postgres.NewContactRepository(pool))

	_, err = auth.Register(ctx, seedEmail, seedPassword)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmailTaken):
		slog.Info("demo account already exists", "email", seedEmail)
	default:
		log.Fatalf("register: %v", err)
	}

	session, err := auth.Login(ctx, seedEmail, seedPassword)
	if err != nil {
		log.Fatalf("login: %v (was the account created with another pepper?)", err)
	}
	ownerID := session.Identity.AccountID

	existing, err := contactUC.List(ctx, ownerID)
	if err != nil {
		log.Fatalf("list contacts: %v", err)
	}

	var created int
	if len(existing) == 0 {
		for _, in := range contacts {
			if _, err := contactUC.Create(ctx, ownerID, in); err != nil {
				log.Fatalf("create contact %s %s: %v", in.FirstName, in.LastName, err)
			}
			created++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Account:          %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  Account ID:       %s\n", ownerID)
	fmt.Printf("  Contacts created: %d  (%d already present)\n", created, len(existing))
	fmt.Printf("  Token expires at: %s\n", session.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Printf("  export JWT=%s\n", session.Token)
	fmt.Println()
	fmt.Printf("  curl -s http://localhost:%s/api/contacts -H \"Authorization: Bearer $JWT\"\n", cfg.Port)
	fmt.Printf("  curl -s http://localhost:%s/api/auth/me -H \"Authorization: Bearer $JWT\"\n", cfg.Port)
}
