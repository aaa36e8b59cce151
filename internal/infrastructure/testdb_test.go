package infrastructure

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/project"
	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "ledger.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func seedProject(t *testing.T, db *gorm.DB, goal, total int64, status project.Status) *project.Project {
	t.Helper()

	now := time.Now()
	p := &project.Project{
		Id:           pkg.GenerateULIDObject(),
		OwnerId:      pkg.GenerateULIDObject(),
		Title:        "Horta comunitaria",
		FundingGoal:  goal,
		FundingTotal: total,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	repo := &ProjectRepository{DB: db}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p
}

func newTestDonation(projectID ulid.ULID, sessionID, paymentIntentID string) *donation.Donation {
	now := time.Now()
	return &donation.Donation{
		Id:                pkg.GenerateULIDObject(),
		ProjectId:         projectID,
		RecipientId:       pkg.GenerateULIDObject(),
		CheckoutSessionId: sessionID,
		PaymentIntentId:   paymentIntentID,
		AmountTotal:       5500,
		ProjectAmount:     5000,
		TipAmount:         500,
		Currency:          "usd",
		Status:            donation.Completed,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
