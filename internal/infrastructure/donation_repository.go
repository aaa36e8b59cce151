package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"Wildfund/internal/domain/donation"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DonationRepository struct {
	DB *gorm.DB
}

type donationDB struct {
	Id                string    `gorm:"type:varchar(26);primaryKey"`
	ProjectId         string    `gorm:"type:varchar(26);index:idx_donations_project_id;not null"`
	UserId            *string   `gorm:"type:varchar(26);index:idx_donations_user_id"`
	RecipientId       string    `gorm:"type:varchar(26);not null"`
	CheckoutSessionId string    `gorm:"type:varchar(255);uniqueIndex:idx_donations_checkout_session_id;not null"`
	PaymentIntentId   string    `gorm:"type:varchar(255);index:idx_donations_payment_intent_id"`
	AmountTotal       int64     `gorm:"not null"`
	ProjectAmount     int64     `gorm:"not null"`
	TipAmount         int64     `gorm:"not null;default:0"`
	CoversFees        bool      `gorm:"not null;default:false"`
	Currency          string    `gorm:"type:varchar(3);not null"`
	Status            string    `gorm:"type:varchar(20);not null;index:idx_donations_status"`
	CreatedAt         time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime;not null"`
}

func (donationDB) TableName() string {
	return "donations"
}

type transactionDetailDB struct {
	Id                string  `gorm:"type:varchar(26);primaryKey"`
	ChargeId          string  `gorm:"type:varchar(255);uniqueIndex:idx_transaction_details_charge_id;not null"`
	PaymentIntentId   string  `gorm:"type:varchar(255);index:idx_transaction_details_payment_intent_id"`
	DonationId        *string `gorm:"type:varchar(26);index:idx_transaction_details_donation_id"`
	ProjectId         string  `gorm:"type:varchar(26);index:idx_transaction_details_project_id;not null"`
	DonorId           *string `gorm:"type:varchar(26)"`
	RecipientId       string  `gorm:"type:varchar(26);not null"`
	GrossAmount       int64   `gorm:"not null"`
	ProjectAmount     int64   `gorm:"not null"`
	TipAmount         int64   `gorm:"not null;default:0"`
	FeeAmount         *int64
	NetAmount         *int64
	Currency          string `gorm:"type:varchar(3);not null"`
	PaymentMethodType string `gorm:"type:varchar(50)"`
	CardBrand         string `gorm:"type:varchar(30)"`
	CardLast4         string `gorm:"type:varchar(4)"`
	EventType         string `gorm:"type:varchar(100)"`
	RawEvent          datatypes.JSON
	RawSettlement     datatypes.JSON
	CreatedAt         time.Time `gorm:"autoCreateTime;not null"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime;not null"`
}

func (transactionDetailDB) TableName() string {
	return "transaction_details"
}

func toDomainDonation(ddb *donationDB) (*donation.Donation, error) {
	id, err := pkg.ParseULID(ddb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	projectID, err := pkg.ParseULID(ddb.ProjectId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	recipientID, err := pkg.ParseULID(ddb.RecipientId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	userID, err := pkg.MustParseULIDPtr(ddb.UserId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &donation.Donation{
		Id:                id,
		ProjectId:         projectID,
		UserId:            userID,
		RecipientId:       recipientID,
		CheckoutSessionId: ddb.CheckoutSessionId,
		PaymentIntentId:   ddb.PaymentIntentId,
		AmountTotal:       ddb.AmountTotal,
		ProjectAmount:     ddb.ProjectAmount,
		TipAmount:         ddb.TipAmount,
		CoversFees:        ddb.CoversFees,
		Currency:          ddb.Currency,
		Status:            donation.Status(ddb.Status),
		CreatedAt:         ddb.CreatedAt,
		UpdatedAt:         ddb.UpdatedAt,
	}, nil
}

func toDBDonation(d *donation.Donation) *donationDB {
	return &donationDB{
		Id:                d.Id.String(),
		ProjectId:         d.ProjectId.String(),
		UserId:            pkg.ULIDPtrToString(d.UserId),
		RecipientId:       d.RecipientId.String(),
		CheckoutSessionId: d.CheckoutSessionId,
		PaymentIntentId:   d.PaymentIntentId,
		AmountTotal:       d.AmountTotal,
		ProjectAmount:     d.ProjectAmount,
		TipAmount:         d.TipAmount,
		CoversFees:        d.CoversFees,
		Currency:          d.Currency,
		Status:            string(d.Status),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func toDomainTransactionDetail(tdb *transactionDetailDB) (*donation.TransactionDetail, error) {
	id, err := pkg.ParseULID(tdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	projectID, err := pkg.ParseULID(tdb.ProjectId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	recipientID, err := pkg.ParseULID(tdb.RecipientId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	donationID, err := pkg.MustParseULIDPtr(tdb.DonationId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	donorID, err := pkg.MustParseULIDPtr(tdb.DonorId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &donation.TransactionDetail{
		Id:                id,
		ChargeId:          tdb.ChargeId,
		PaymentIntentId:   tdb.PaymentIntentId,
		DonationId:        donationID,
		ProjectId:         projectID,
		DonorId:           donorID,
		RecipientId:       recipientID,
		GrossAmount:       tdb.GrossAmount,
		ProjectAmount:     tdb.ProjectAmount,
		TipAmount:         tdb.TipAmount,
		FeeAmount:         tdb.FeeAmount,
		NetAmount:         tdb.NetAmount,
		Currency:          tdb.Currency,
		PaymentMethodType: tdb.PaymentMethodType,
		CardBrand:         tdb.CardBrand,
		CardLast4:         tdb.CardLast4,
		EventType:         tdb.EventType,
		RawEvent:          json.RawMessage(tdb.RawEvent),
		RawSettlement:     json.RawMessage(tdb.RawSettlement),
		CreatedAt:         tdb.CreatedAt,
		UpdatedAt:         tdb.UpdatedAt,
	}, nil
}

func toDBTransactionDetail(t *donation.TransactionDetail) *transactionDetailDB {
	return &transactionDetailDB{
		Id:                t.Id.String(),
		ChargeId:          t.ChargeId,
		PaymentIntentId:   t.PaymentIntentId,
		DonationId:        pkg.ULIDPtrToString(t.DonationId),
		ProjectId:         t.ProjectId.String(),
		DonorId:           pkg.ULIDPtrToString(t.DonorId),
		RecipientId:       t.RecipientId.String(),
		GrossAmount:       t.GrossAmount,
		ProjectAmount:     t.ProjectAmount,
		TipAmount:         t.TipAmount,
		FeeAmount:         t.FeeAmount,
		NetAmount:         t.NetAmount,
		Currency:          t.Currency,
		PaymentMethodType: t.PaymentMethodType,
		CardBrand:         t.CardBrand,
		CardLast4:         t.CardLast4,
		EventType:         t.EventType,
		RawEvent:          datatypes.JSON(t.RawEvent),
		RawSettlement:     datatypes.JSON(t.RawSettlement),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func (r *DonationRepository) InsertDonationIfAbsent(ctx context.Context, d *donation.Donation) (donation.InsertResult, error) {
	ddb := toDBDonation(d)
	result := dbFrom(ctx, r.DB).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "checkout_session_id"}},
			DoNothing: true,
		}).
		Create(ddb)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return donation.AlreadyExists, nil
		}
		return 0, appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return donation.AlreadyExists, nil
	}
	return donation.Created, nil
}

func (r *DonationRepository) GetBySessionID(ctx context.Context, sessionID string) (*donation.Donation, error) {
	return r.first(ctx, "checkout_session_id = ?", sessionID)
}

func (r *DonationRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*donation.Donation, error) {
	return r.first(ctx, "payment_intent_id = ?", paymentIntentID)
}

func (r *DonationRepository) first(ctx context.Context, query string, arg interface{}) (*donation.Donation, error) {
	var ddb donationDB
	if err := dbFrom(ctx, r.DB).Where(query, arg).Order("created_at").First(&ddb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrDonationNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainDonation(&ddb)
}

func (r *DonationRepository) MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (int64, error) {
	result := dbFrom(ctx, r.DB).Model(&donationDB{}).
		Where("payment_intent_id = ? AND status NOT IN ?", paymentIntentID,
			[]string{string(donation.Completed), string(donation.Failed)}).
		Updates(map[string]interface{}{
			"status":     string(donation.Failed),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, appErrors.NewDatabaseError(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *DonationRepository) ListByProject(ctx context.Context, projectID ulid.ULID, pagination *pkg.PaginationParams) ([]*donation.Donation, int64, error) {
	query := dbFrom(ctx, r.DB).Model(&donationDB{}).Where("project_id = ?", projectID.String())
	out, total, err := pkg.Paginate(query, pagination, "created_at DESC", toDomainDonation)
	if err != nil {
		if appErrors.IsAppError(err) {
			return nil, 0, err
		}
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return out, total, nil
}

func (r *DonationRepository) ListMissingSettlement(ctx context.Context, limit int) ([]*donation.Donation, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []donationDB
	err := dbFrom(ctx, r.DB).Model(&donationDB{}).
		Where("status = ?", string(donation.Completed)).
		Where("payment_intent_id <> ''").
		Where(`NOT EXISTS (
			SELECT 1 FROM transaction_details t
			WHERE t.donation_id = donations.id AND t.fee_amount IS NOT NULL
		)`).
		Order("created_at").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	out := make([]*donation.Donation, 0, len(rows))
	for i := range rows {
		d, err := toDomainDonation(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *DonationRepository) SumCompletedByProject(ctx context.Context) (map[ulid.ULID]int64, error) {
	var rows []struct {
		ProjectId string
		Total     int64
	}
	err := dbFrom(ctx, r.DB).Model(&donationDB{}).
		Select("project_id, COALESCE(SUM(project_amount), 0) AS total").
		Where("status = ?", string(donation.Completed)).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	sums := make(map[ulid.ULID]int64, len(rows))
	for _, row := range rows {
		id, err := pkg.ParseULID(row.ProjectId)
		if err != nil {
			return nil, appErrors.ErrInternalServer.WithError(err)
		}
		sums[id] = row.Total
	}
	return sums, nil
}

func (r *DonationRepository) UpsertTransactionDetail(ctx context.Context, detail *donation.TransactionDetail) error {
	tdb := toDBTransactionDetail(detail)
	db := dbFrom(ctx, r.DB)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "charge_id"}},
		DoNothing: true,
	}).Create(tdb)
	if result.Error != nil && !isDuplicateKey(result.Error) {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.Error == nil && result.RowsAffected == 1 {
		return nil
	}

	fields := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if tdb.DonationId != nil {
		fields["donation_id"] = gorm.Expr("COALESCE(donation_id, ?)", *tdb.DonationId)
	}
	if tdb.DonorId != nil {
		fields["donor_id"] = gorm.Expr("COALESCE(donor_id, ?)", *tdb.DonorId)
	}
	if tdb.FeeAmount != nil {
		fields["fee_amount"] = *tdb.FeeAmount
	}
	if tdb.NetAmount != nil {
		fields["net_amount"] = *tdb.NetAmount
	}
	if len(tdb.RawSettlement) > 0 {
		fields["raw_settlement"] = tdb.RawSettlement
	}
	if tdb.PaymentMethodType != "" {
		fields["payment_method_type"] = tdb.PaymentMethodType
		fields["card_brand"] = tdb.CardBrand
		fields["card_last4"] = tdb.CardLast4
	}

	if err := db.Model(&transactionDetailDB{}).Where("charge_id = ?", tdb.ChargeId).Updates(fields).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *DonationRepository) GetTransactionDetailByChargeID(ctx context.Context, chargeID string) (*donation.TransactionDetail, error) {
	var tdb transactionDetailDB
	if err := dbFrom(ctx, r.DB).Where("charge_id = ?", chargeID).First(&tdb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.NewNotFoundError("Detalhe da transação").WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainTransactionDetail(&tdb)
}
