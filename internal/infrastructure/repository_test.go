package infrastructure

import (
	"context"
	"errors"
	"sync"
	"testing"

	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/project"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/pkg"
)

func TestDonationRepository_InsertDonationIfAbsent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	p := seedProject(t, db, 10000, 0, project.Active)
	repo := &DonationRepository{DB: db}

	first := newTestDonation(p.Id, "cs_test_1", "pi_1")
	result, err := repo.InsertDonationIfAbsent(ctx, first)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if result != donation.Created {
		t.Fatalf("expected created, got %s", result)
	}

	redelivered := newTestDonation(p.Id, "cs_test_1", "pi_1")
	result, err = repo.InsertDonationIfAbsent(ctx, redelivered)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if result != donation.AlreadyExists {
		t.Fatalf("expected already_exists, got %s", result)
	}

	var count int64
	db.Model(&donationDB{}).Where("checkout_session_id = ?", "cs_test_1").Count(&count)
	if count != 1 {
		t.Fatalf("expected a single donation row, got %d", count)
	}

	stored, err := repo.GetBySessionID(ctx, "cs_test_1")
	if err != nil {
		t.Fatalf("get by session: %v", err)
	}
	if stored.Id != first.Id {
		t.Fatalf("expected the first donation to win, got %s", stored.Id)
	}
}

func TestDonationRepository_GetBySessionIDNotFound(t *testing.T) {
	t.Parallel()

	repo := &DonationRepository{DB: newTestDB(t)}
	_, err := repo.GetBySessionID(context.Background(), "cs_missing")
	if !errors.Is(err, appErrors.ErrDonationNotFound) {
		t.Fatalf("expected donation not found, got %v", err)
	}
}

func TestDonationRepository_MarkFailedNeverFlipsCompleted(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	p := seedProject(t, db, 10000, 0, project.Active)
	repo := &DonationRepository{DB: db}

	completed := newTestDonation(p.Id, "cs_done", "pi_done")
	if _, err := repo.InsertDonationIfAbsent(ctx, completed); err != nil {
		t.Fatalf("insert completed: %v", err)
	}
	pending := newTestDonation(p.Id, "cs_pending", "pi_pending")
	pending.Status = donation.Pending
	if _, err := repo.InsertDonationIfAbsent(ctx, pending); err != nil {
		t.Fatalf("insert pending: %v", err)
	}

	affected, err := repo.MarkFailedByPaymentIntent(ctx, "pi_done")
	if err != nil {
		t.Fatalf("mark failed completed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("completed donation must not change, affected %d", affected)
	}

	affected, err = repo.MarkFailedByPaymentIntent(ctx, "pi_pending")
	if err != nil {
		t.Fatalf("mark failed pending: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected pending donation to fail, affected %d", affected)
	}

	stored, err := repo.GetByPaymentIntentID(ctx, "pi_done")
	if err != nil {
		t.Fatalf("get completed: %v", err)
	}
	if stored.Status != donation.Completed {
		t.Fatalf("expected completed, got %s", stored.Status)
	}
}

func TestDonationRepository_UpsertTransactionDetail(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	p := seedProject(t, db, 10000, 0, project.Active)
	repo := &DonationRepository{DB: db}

	d := newTestDonation(p.Id, "cs_detail", "pi_detail")
	if _, err := repo.InsertDonationIfAbsent(ctx, d); err != nil {
		t.Fatalf("insert donation: %v", err)
	}

	shell := donation.NewTransactionDetail(d, "ch_1")
	shell.EventType = "checkout.session.completed"
	shell.RawEvent = []byte(`{"id":"evt_first"}`)
	if err := repo.UpsertTransactionDetail(ctx, shell); err != nil {
		t.Fatalf("insert shell: %v", err)
	}

	fee, net := int64(190), int64(5310)
	enriched := &donation.TransactionDetail{
		Id:                pkg.GenerateULIDObject(),
		ChargeId:          "ch_1",
		PaymentIntentId:   "pi_detail",
		ProjectId:         p.Id,
		RecipientId:       d.RecipientId,
		GrossAmount:       5500,
		FeeAmount:         &fee,
		NetAmount:         &net,
		Currency:          "usd",
		PaymentMethodType: "card",
		CardBrand:         "visa",
		CardLast4:         "4242",
		EventType:         "charge.succeeded",
		RawEvent:          []byte(`{"id":"evt_second"}`),
		RawSettlement:     []byte(`{"id":"txn_1"}`),
	}
	if err := repo.UpsertTransactionDetail(ctx, enriched); err != nil {
		t.Fatalf("upsert settlement: %v", err)
	}

	stored, err := repo.GetTransactionDetailByChargeID(ctx, "ch_1")
	if err != nil {
		t.Fatalf("get detail: %v", err)
	}
	if !stored.HasSettlement() || *stored.FeeAmount != fee || *stored.NetAmount != net {
		t.Fatalf("expected settlement to be recorded, got %+v", stored)
	}
	if stored.DonationId == nil || *stored.DonationId != d.Id {
		t.Fatalf("expected donation link to be preserved, got %v", stored.DonationId)
	}
	if stored.Id != shell.Id {
		t.Fatalf("expected original row id %s, got %s", shell.Id, stored.Id)
	}
	if stored.EventType != "checkout.session.completed" || string(stored.RawEvent) != `{"id":"evt_first"}` {
		t.Fatalf("expected first event to be kept, got %s %s", stored.EventType, stored.RawEvent)
	}
	if stored.CardBrand != "visa" || stored.CardLast4 != "4242" {
		t.Fatalf("expected card data, got %s %s", stored.CardBrand, stored.CardLast4)
	}

	var count int64
	db.Model(&transactionDetailDB{}).Where("charge_id = ?", "ch_1").Count(&count)
	if count != 1 {
		t.Fatalf("expected one detail per charge, got %d", count)
	}
}

func TestDonationRepository_ListMissingSettlement(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	p := seedProject(t, db, 10000, 0, project.Active)
	repo := &DonationRepository{DB: db}

	settled := newTestDonation(p.Id, "cs_settled", "pi_settled")
	missing := newTestDonation(p.Id, "cs_missing", "pi_missing")
	shellOnly := newTestDonation(p.Id, "cs_shell", "pi_shell")
	for _, d := range []*donation.Donation{settled, missing, shellOnly} {
		if _, err := repo.InsertDonationIfAbsent(ctx, d); err != nil {
			t.Fatalf("insert donation: %v", err)
		}
	}

	fee, net := int64(100), int64(5400)
	detail := donation.NewTransactionDetail(settled, "ch_settled")
	detail.FeeAmount = &fee
	detail.NetAmount = &net
	if err := repo.UpsertTransactionDetail(ctx, detail); err != nil {
		t.Fatalf("upsert settled: %v", err)
	}
	if err := repo.UpsertTransactionDetail(ctx, donation.NewTransactionDetail(shellOnly, "ch_shell")); err != nil {
		t.Fatalf("upsert shell: %v", err)
	}

	out, err := repo.ListMissingSettlement(ctx, 10)
	if err != nil {
		t.Fatalf("list missing: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 donations without settlement, got %d", len(out))
	}
	for _, d := range out {
		if d.Id == settled.Id {
			t.Fatalf("settled donation must not be listed")
		}
	}
}

func TestDonationRepository_SumCompletedByProject(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	first := seedProject(t, db, 10000, 0, project.Active)
	second := seedProject(t, db, 10000, 0, project.Active)
	repo := &DonationRepository{DB: db}

	donations := []*donation.Donation{
		newTestDonation(first.Id, "cs_a", "pi_a"),
		newTestDonation(first.Id, "cs_b", "pi_b"),
		newTestDonation(second.Id, "cs_c", "pi_c"),
	}
	failed := newTestDonation(second.Id, "cs_d", "pi_d")
	failed.Status = donation.Failed
	donations = append(donations, failed)

	for _, d := range donations {
		if _, err := repo.InsertDonationIfAbsent(ctx, d); err != nil {
			t.Fatalf("insert donation: %v", err)
		}
	}

	sums, err := repo.SumCompletedByProject(ctx)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sums[first.Id] != 10000 {
		t.Fatalf("expected 10000 for first project, got %d", sums[first.Id])
	}
	if sums[second.Id] != 5000 {
		t.Fatalf("expected 5000 for second project, got %d", sums[second.Id])
	}
}

func TestProjectRepository_IncrementFundingConcurrent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	p := seedProject(t, db, 1000000, 0, project.Active)
	repo := &ProjectRepository{DB: db}

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.IncrementFunding(context.Background(), p.Id, 250)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	stored, err := repo.GetByID(context.Background(), p.Id)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if stored.FundingTotal != workers*250 {
		t.Fatalf("expected total %d, got %d", workers*250, stored.FundingTotal)
	}
}

func TestProjectRepository_IncrementFundingUnknownProject(t *testing.T) {
	t.Parallel()

	repo := &ProjectRepository{DB: newTestDB(t)}
	err := repo.IncrementFunding(context.Background(), pkg.GenerateULIDObject(), 100)
	if !errors.Is(err, appErrors.ErrProjectNotFound) {
		t.Fatalf("expected project not found, got %v", err)
	}
}

func TestProjectRepository_MarkFundedIfReached(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		goal       int64
		total      int64
		status     project.Status
		wantMoved  bool
		wantStatus project.Status
	}{
		{"below goal stays active", 1000, 999, project.Active, false, project.Active},
		{"exact goal funds", 1000, 1000, project.Active, true, project.Funded},
		{"above goal funds", 1000, 1500, project.Active, true, project.Funded},
		{"completed untouched", 1000, 2000, project.Completed, false, project.Completed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := newTestDB(t)
			p := seedProject(t, db, tt.goal, tt.total, tt.status)
			repo := &ProjectRepository{DB: db}

			moved, err := repo.MarkFundedIfReached(context.Background(), p.Id)
			if err != nil {
				t.Fatalf("mark funded: %v", err)
			}
			if moved != tt.wantMoved {
				t.Fatalf("expected moved=%v, got %v", tt.wantMoved, moved)
			}

			stored, _ := repo.GetByID(context.Background(), p.Id)
			if stored.Status != tt.wantStatus {
				t.Fatalf("expected %s, got %s", tt.wantStatus, stored.Status)
			}
		})
	}
}

func TestProjectRepository_UpdateGoal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		goal        int64
		total       int64
		status      project.Status
		newGoal     int64
		wantUpdated bool
		wantStatus  project.Status
	}{
		{"lower goal funds active project", 1000, 600, project.Active, 500, true, project.Funded},
		{"raise goal reopens funded project", 1000, 1000, project.Funded, 2000, true, project.Active},
		{"raise goal still below total", 1000, 3000, project.Funded, 2000, true, project.Funded},
		{"completed project rejected", 1000, 1000, project.Completed, 5000, false, project.Completed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := newTestDB(t)
			p := seedProject(t, db, tt.goal, tt.total, tt.status)
			repo := &ProjectRepository{DB: db}

			updated, err := repo.UpdateGoal(context.Background(), p.Id, tt.newGoal)
			if err != nil {
				t.Fatalf("update goal: %v", err)
			}
			if updated != tt.wantUpdated {
				t.Fatalf("expected updated=%v, got %v", tt.wantUpdated, updated)
			}

			stored, _ := repo.GetByID(context.Background(), p.Id)
			if stored.Status != tt.wantStatus {
				t.Fatalf("expected %s, got %s", tt.wantStatus, stored.Status)
			}
			if tt.wantUpdated && stored.FundingGoal != tt.newGoal {
				t.Fatalf("expected goal %d, got %d", tt.newGoal, stored.FundingGoal)
			}
		})
	}
}

func TestProjectRepository_UpdateStatusRespectsFrom(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	p := seedProject(t, db, 1000, 0, project.Completed)
	repo := &ProjectRepository{DB: db}

	moved, err := repo.UpdateStatus(context.Background(), p.Id, project.Active, project.Funded)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if moved {
		t.Fatalf("completed project must not move back to active")
	}

	other := seedProject(t, db, 1000, 200, project.Active)
	moved, err = repo.UpdateStatus(context.Background(), other.Id, project.Completed, project.Active, project.Funded)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !moved {
		t.Fatalf("expected active project to complete")
	}
	stored, _ := repo.GetByID(context.Background(), other.Id)
	if stored.CompletedAt == nil {
		t.Fatalf("expected completed_at to be set")
	}
}

func TestGormTransactor_RollsBackOnError(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	p := seedProject(t, db, 10000, 0, project.Active)
	donations := &DonationRepository{DB: db}
	projects := &ProjectRepository{DB: db}
	tx := NewGormTransactor(db)

	boom := errors.New("boom")
	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := donations.InsertDonationIfAbsent(ctx, newTestDonation(p.Id, "cs_rollback", "pi_rollback")); err != nil {
			return err
		}
		if err := projects.IncrementFunding(ctx, p.Id, 5000); err != nil {
			return err
		}
		return boom
	})
	if err == nil {
		t.Fatalf("expected error from transaction")
	}

	if _, err := donations.GetBySessionID(context.Background(), "cs_rollback"); !errors.Is(err, appErrors.ErrDonationNotFound) {
		t.Fatalf("expected donation to be rolled back, got %v", err)
	}
	stored, _ := projects.GetByID(context.Background(), p.Id)
	if stored.FundingTotal != 0 {
		t.Fatalf("expected total to be rolled back, got %d", stored.FundingTotal)
	}
}
