package ledger_test

import (
	"context"
	"errors"
	"sync"

	"Wildfund/internal/domain/donation"
	"Wildfund/internal/domain/ledger"
	"Wildfund/internal/domain/project"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type memoryProjects struct {
	mu       sync.Mutex
	projects map[ulid.ULID]*project.Project
}

func newMemoryProjects(projects ...*project.Project) *memoryProjects {
	m := &memoryProjects{projects: make(map[ulid.ULID]*project.Project)}
	for _, p := range projects {
		m.projects[p.Id] = p
	}
	return m
}

func (m *memoryProjects) Create(ctx context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.Id] = p
	return nil
}

func (m *memoryProjects) GetByID(ctx context.Context, id ulid.ULID) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, appErrors.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memoryProjects) List(ctx context.Context, filters *project.Filters, pagination *pkg.PaginationParams) ([]*project.Project, int64, error) {
	return nil, 0, nil
}

func (m *memoryProjects) ListIDs(ctx context.Context) ([]ulid.ULID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]ulid.ULID, 0, len(m.projects))
	for id := range m.projects {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memoryProjects) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	return nil
}

func (m *memoryProjects) IncrementFunding(ctx context.Context, id ulid.ULID, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return appErrors.ErrProjectNotFound
	}
	p.FundingTotal += amount
	return nil
}

func (m *memoryProjects) UpdateStatus(ctx context.Context, id ulid.ULID, to project.Status, from ...project.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.projects[id]
	for _, s := range from {
		if p.Status == s {
			p.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryProjects) MarkFundedIfReached(ctx context.Context, id ulid.ULID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.projects[id]
	if p.Status == project.Active && p.FundingTotal >= p.FundingGoal {
		p.Status = project.Funded
		return true, nil
	}
	return false, nil
}

func (m *memoryProjects) UpdateGoal(ctx context.Context, id ulid.ULID, goal int64) (bool, error) {
	return false, nil
}

func (m *memoryProjects) total(id ulid.ULID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects[id].FundingTotal
}

type memoryDonations struct {
	mu        sync.Mutex
	bySession map[string]*donation.Donation
	details   map[string]*donation.TransactionDetail
	insertErr error
}

func newMemoryDonations() *memoryDonations {
	return &memoryDonations{
		bySession: make(map[string]*donation.Donation),
		details:   make(map[string]*donation.TransactionDetail),
	}
}

func (m *memoryDonations) InsertDonationIfAbsent(ctx context.Context, d *donation.Donation) (donation.InsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	if _, ok := m.bySession[d.CheckoutSessionId]; ok {
		return donation.AlreadyExists, nil
	}
	clone := *d
	m.bySession[d.CheckoutSessionId] = &clone
	return donation.Created, nil
}

func (m *memoryDonations) GetBySessionID(ctx context.Context, sessionID string) (*donation.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.bySession[sessionID]
	if !ok {
		return nil, appErrors.ErrDonationNotFound
	}
	clone := *d
	return &clone, nil
}

func (m *memoryDonations) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*donation.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.bySession {
		if d.PaymentIntentId == paymentIntentID {
			clone := *d
			return &clone, nil
		}
	}
	return nil, appErrors.ErrDonationNotFound
}

func (m *memoryDonations) MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, d := range m.bySession {
		if d.PaymentIntentId == paymentIntentID && d.Status != donation.Completed && d.Status != donation.Failed {
			d.Status = donation.Failed
			affected++
		}
	}
	return affected, nil
}

func (m *memoryDonations) ListByProject(ctx context.Context, projectID ulid.ULID, pagination *pkg.PaginationParams) ([]*donation.Donation, int64, error) {
	return nil, 0, nil
}

func (m *memoryDonations) ListMissingSettlement(ctx context.Context, limit int) ([]*donation.Donation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*donation.Donation
	for _, d := range m.bySession {
		if d.Status != donation.Completed {
			continue
		}
		missing := true
		for _, detail := range m.details {
			if detail.DonationId != nil && *detail.DonationId == d.Id && detail.HasSettlement() {
				missing = false
			}
		}
		if missing {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memoryDonations) SumCompletedByProject(ctx context.Context) (map[ulid.ULID]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sums := make(map[ulid.ULID]int64)
	for _, d := range m.bySession {
		if d.Status == donation.Completed {
			sums[d.ProjectId] += d.ProjectAmount
		}
	}
	return sums, nil
}

func (m *memoryDonations) UpsertTransactionDetail(ctx context.Context, detail *donation.TransactionDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.details[detail.ChargeId]
	if !ok {
		clone := *detail
		m.details[detail.ChargeId] = &clone
		return nil
	}
	if existing.DonationId == nil {
		existing.DonationId = detail.DonationId
	}
	if detail.FeeAmount != nil {
		existing.FeeAmount = detail.FeeAmount
	}
	if detail.NetAmount != nil {
		existing.NetAmount = detail.NetAmount
	}
	if detail.RawSettlement != nil {
		existing.RawSettlement = detail.RawSettlement
	}
	if detail.PaymentMethodType != "" {
		existing.PaymentMethodType = detail.PaymentMethodType
		existing.CardBrand = detail.CardBrand
		existing.CardLast4 = detail.CardLast4
	}
	return nil
}

func (m *memoryDonations) GetTransactionDetailByChargeID(ctx context.Context, chargeID string) (*donation.TransactionDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	detail, ok := m.details[chargeID]
	if !ok {
		return nil, appErrors.NewNotFoundError("Detalhe da transação")
	}
	clone := *detail
	return &clone, nil
}

func (m *memoryDonations) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bySession)
}

func (m *memoryDonations) detail(chargeID string) *donation.TransactionDetail {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.details[chargeID]
	if !ok {
		return nil
	}
	clone := *d
	return &clone
}

type directTransactor struct{}

func (directTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSettlements struct {
	latestChargeIDFn func(ctx context.Context, paymentIntentID string) (string, error)
	getSettlementFn  func(ctx context.Context, chargeID string) (*ledger.Settlement, error)
}

func (f *fakeSettlements) LatestChargeID(ctx context.Context, paymentIntentID string) (string, error) {
	if f.latestChargeIDFn != nil {
		return f.latestChargeIDFn(ctx, paymentIntentID)
	}
	return "", errors.New("latest charge not configured")
}

func (f *fakeSettlements) GetSettlement(ctx context.Context, chargeID string) (*ledger.Settlement, error) {
	if f.getSettlementFn != nil {
		return f.getSettlementFn(ctx, chargeID)
	}
	return nil, errors.New("settlement not configured")
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []string
}

func (r *recordingPublisher) DonationCompleted(ctx context.Context, d *donation.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, d.CheckoutSessionId)
	return nil
}
