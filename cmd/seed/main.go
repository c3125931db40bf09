package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"promo-platform/internal/config"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	pg "promo-platform/internal/infra/db/postgres"
	"promo-platform/internal/infra/logging"
	red "promo-platform/internal/infra/redis"
	"promo-platform/internal/infra/security"
	"promo-platform/internal/usecase"

	"github.com/google/uuid"
)

// Stable ids keep re-runs idempotent.
var (
	seedCompanyID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("promo-platform/seed/company")).String()
	seedUserID    = uuid.NewSHA1(uuid.NameSpaceURL, []byte("promo-platform/seed/user")).String()
)

const seedPassword = "Seed$ecret1"

func main() {
	poolSize := flag.Int("unique-codes", 5, "size of the seeded UNIQUE promo pool")

	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := pg.RunMigrations(cfg.Database.URL, *logger); err != nil {
		log.Fatalf("migrations: %v", err)
	}
	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()

	tm := pg.NewTxManager(pool)
	companyRepo := pg.NewPostgresCompanyRepo(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	commentRepo := pg.NewPostgresCommentRepo(pool)
	promoUC := usecase.NewPromoUseCase(companyRepo, pg.NewPostgresPromoRepo(pool), tm, logger)
	sessionUC := usecase.NewSessionUseCase(redisClient, security.NewJWTSigner(cfg.Security.JWTSecret),
		cfg.Security.TokenTTL, cfg.Security.EnforceSingleSession, logger)
	authUC := usecase.NewAuthUseCase(userRepo, companyRepo, pg.NewPostgresCredentialRepo(pool),
		security.NewBcryptHasher(cfg.Security.BcryptCost), sessionUC, tm, logger)

	// ---- Principals ----
	company, err := model.NewCompany(seedCompanyID, "Acme Coffee", "promo@acme.example")
	if err != nil {
		log.Fatalf("company: %v", err)
	}
	if err := companyRepo.Save(ctx, repository.NoTX, company); err != nil {
		log.Fatalf("save company: %v", err)
	}
	user, err := model.NewUser(seedUserID, "Jane", "Doe", "jane@example.com", 27, "us")
	if err != nil {
		log.Fatalf("user: %v", err)
	}
	if err := userRepo.Save(ctx, repository.NoTX, user); err != nil {
		log.Fatalf("save user: %v", err)
	}

	// ---- Promos ----
	_, total, err := promoUC.List(ctx, company.ID, usecase.ListQuery{Limit: 1})
	if err != nil {
		log.Fatalf("list promos: %v", err)
	}
	if total > 0 {
		fmt.Printf("%d promos already present. No promos added.\n", total)
	} else {
		seedPromos(ctx, promoUC, commentRepo, company.ID, user.ID, *poolSize)
	}

	// ---- Tokens ----
	for _, p := range []model.Principal{
		{Kind: model.PrincipalCompany, ID: company.ID},
		{Kind: model.PrincipalUser, ID: user.ID},
	} {
		if err := authUC.SetPassword(ctx, p, seedPassword); err != nil {
			log.Fatalf("set password for %s: %v", p, err)
		}
		tok, err := sessionUC.Issue(ctx, p)
		if err != nil {
			log.Fatalf("issue token for %s: %v", p, err)
		}
		fmt.Printf("%-8s %s\n  password: %s\n  token: %s\n", p.Kind, p.ID, seedPassword, tok)
	}
	fmt.Println("✅ Seeding complete.")
}

func seedPromos(ctx context.Context, promoUC usecase.PromoUseCase, comments repository.CommentRepository, companyID, userID string, poolSize int) {
	codes, err := usecase.GenerateUniqueCodes(poolSize)
	if err != nil {
		log.Fatalf("generate codes: %v", err)
	}
	year := time.Now().Year()
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
	adults := 18
	common := "COFFEE10"
	country := "US"

	seed := []model.PromoCreate{
		{
			Description: "10% off any coffee all year long",
			ActiveFrom:  &from,
			ActiveUntil: &until,
			Mode:        model.PromoModeCommon,
			MaxCount:    100,
			PromoCommon: &common,
			Target:      model.Target{Categories: []string{"coffee", "food"}},
		},
		{
			Description: "A free pastry for the first customers",
			Mode:        model.PromoModeUnique,
			MaxCount:    1,
			PromoUnique: codes,
			Target:      model.Target{AgeFrom: &adults, Country: &country, Categories: []string{"food"}},
		},
	}
	for _, in := range seed {
		p, err := promoUC.Create(ctx, companyID, in)
		if err != nil {
			log.Fatalf("create promo: %v", err)
		}
		c := &model.Comment{PromoID: p.ID, AuthorID: userID, Text: "Tried it, works great", CreatedAt: time.Now()}
		if err := comments.Create(ctx, repository.NoTX, c); err != nil {
			log.Fatalf("create comment: %v", err)
		}
		fmt.Printf("seeded: %s promo %s (%s)\n", p.Mode, p.ID, p.Description)
	}
}
