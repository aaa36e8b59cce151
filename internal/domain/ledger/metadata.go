package ledger

import (
	"strconv"
	"strings"

	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

const (
	MetaProjectID     = "project_id"
	MetaUserID        = "user_id"
	MetaTotalAmount   = "total_amount"
	MetaProjectAmount = "project_amount"
	MetaTipAmount     = "tip_amount"
	MetaCoverFees     = "cover_fees"
)

// Metadata e o unico canal entre a criacao do checkout e o webhook.
type Metadata struct {
	ProjectId     ulid.ULID
	UserId        *ulid.ULID
	TotalAmount   int64
	ProjectAmount int64
	TipAmount     int64
	CoverFees     bool
}

func (m Metadata) Encode() map[string]string {
	userID := ""
	if m.UserId != nil {
		userID = m.UserId.String()
	}
	return map[string]string{
		MetaProjectID:     m.ProjectId.String(),
		MetaUserID:        userID,
		MetaTotalAmount:   strconv.FormatInt(m.TotalAmount, 10),
		MetaProjectAmount: strconv.FormatInt(m.ProjectAmount, 10),
		MetaTipAmount:     strconv.FormatInt(m.TipAmount, 10),
		MetaCoverFees:     strconv.FormatBool(m.CoverFees),
	}
}

// DecodeMetadata falha com INVALID_EVENT_METADATA, erro tratado que e confirmado
// ao processador sem reentrega.
func DecodeMetadata(values map[string]string) (*Metadata, error) {
	projectRaw, ok := values[MetaProjectID]
	if !ok || strings.TrimSpace(projectRaw) == "" {
		return nil, appErrors.NewMetadataError(MetaProjectID, "ausente")
	}
	projectID, err := pkg.ParseULID(strings.TrimSpace(projectRaw))
	if err != nil {
		return nil, appErrors.NewMetadataError(MetaProjectID, "formato inválido")
	}

	var userID *ulid.ULID
	if raw := strings.TrimSpace(values[MetaUserID]); raw != "" {
		parsed, err := pkg.ParseULID(raw)
		if err != nil {
			return nil, appErrors.NewMetadataError(MetaUserID, "formato inválido")
		}
		userID = &parsed
	}

	total, err := requiredAmount(values, MetaTotalAmount)
	if err != nil {
		return nil, err
	}
	projectAmount, err := requiredAmount(values, MetaProjectAmount)
	if err != nil {
		return nil, err
	}

	var tip int64
	if raw := strings.TrimSpace(values[MetaTipAmount]); raw != "" {
		tip, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || tip < 0 {
			return nil, appErrors.NewMetadataError(MetaTipAmount, "valor não numérico")
		}
	}

	coverFees := false
	if raw := strings.TrimSpace(values[MetaCoverFees]); raw != "" {
		coverFees, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, appErrors.NewMetadataError(MetaCoverFees, "valor booleano inválido")
		}
	}

	if projectAmount <= 0 {
		return nil, appErrors.NewMetadataError(MetaProjectAmount, "deve ser maior que zero")
	}
	if projectAmount > total || tip > total-projectAmount {
		return nil, appErrors.NewMetadataError(MetaTotalAmount, "não cobre o valor do projeto e a gorjeta")
	}

	return &Metadata{
		ProjectId:     projectID,
		UserId:        userID,
		TotalAmount:   total,
		ProjectAmount: projectAmount,
		TipAmount:     tip,
		CoverFees:     coverFees,
	}, nil
}

func requiredAmount(values map[string]string, key string) (int64, error) {
	raw, ok := values[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, appErrors.NewMetadataError(key, "ausente")
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || amount < 0 {
		return 0, appErrors.NewMetadataError(key, "valor não numérico")
	}
	return amount, nil
}
