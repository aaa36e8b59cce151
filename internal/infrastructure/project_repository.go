package infrastructure

import (
	"context"
	"errors"
	"time"

	"Wildfund/internal/domain/project"
	appErrors "Wildfund/internal/errors"
	"Wildfund/internal/pkg"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	DB *gorm.DB
}

type projectDB struct {
	Id           string     `gorm:"type:varchar(26);primaryKey"`
	OwnerId      string     `gorm:"type:varchar(26);index:idx_projects_owner_id;not null"`
	Title        string     `gorm:"type:varchar(150);not null"`
	Description  string     `gorm:"type:text"`
	FundingGoal  int64      `gorm:"not null"`
	FundingTotal int64      `gorm:"not null;default:0"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active';index:idx_projects_status"`
	CompletedAt  *time.Time `gorm:"type:timestamp"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;not null"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime;not null"`
}

func (projectDB) TableName() string {
	return "projects"
}

func toDomainProject(pdb *projectDB) (*project.Project, error) {
	id, err := pkg.ParseULID(pdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	ownerID, err := pkg.ParseULID(pdb.OwnerId)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &project.Project{
		Id:           id,
		OwnerId:      ownerID,
		Title:        pdb.Title,
		Description:  pdb.Description,
		FundingGoal:  pdb.FundingGoal,
		FundingTotal: pdb.FundingTotal,
		Status:       project.Status(pdb.Status),
		CompletedAt:  pdb.CompletedAt,
		CreatedAt:    pdb.CreatedAt,
		UpdatedAt:    pdb.UpdatedAt,
	}, nil
}

func toDBProject(p *project.Project) *projectDB {
	return &projectDB{
		Id:           p.Id.String(),
		OwnerId:      p.OwnerId.String(),
		Title:        p.Title,
		Description:  p.Description,
		FundingGoal:  p.FundingGoal,
		FundingTotal: p.FundingTotal,
		Status:       string(p.Status),
		CompletedAt:  p.CompletedAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	pdb := toDBProject(p)
	if err := dbFrom(ctx, r.DB).Create(pdb).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id ulid.ULID) (*project.Project, error) {
	var pdb projectDB
	if err := dbFrom(ctx, r.DB).Where("id = ?", id.String()).First(&pdb).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrProjectNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainProject(&pdb)
}

func (r *ProjectRepository) List(ctx context.Context, filters *project.Filters, pagination *pkg.PaginationParams) ([]*project.Project, int64, error) {
	baseQuery := dbFrom(ctx, r.DB).Model(&projectDB{})
	if filters != nil {
		if filters.Status != nil {
			baseQuery = baseQuery.Where("status = ?", string(*filters.Status))
		}
		if filters.OwnerId != nil {
			baseQuery = baseQuery.Where("owner_id = ?", filters.OwnerId.String())
		}
	}

	out, total, err := pkg.Paginate(baseQuery, pagination, "created_at DESC", toDomainProject)
	if err != nil {
		if appErrors.IsAppError(err) {
			return nil, 0, err
		}
		return nil, 0, appErrors.NewDatabaseError(err)
	}
	return out, total, nil
}

func (r *ProjectRepository) ListIDs(ctx context.Context) ([]ulid.ULID, error) {
	var raw []string
	if err := dbFrom(ctx, r.DB).Model(&projectDB{}).Order("id").Pluck("id", &raw).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	ids := make([]ulid.ULID, 0, len(raw))
	for _, s := range raw {
		id, err := pkg.ParseULID(s)
		if err != nil {
			return nil, appErrors.ErrInternalServer.WithError(err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *ProjectRepository) UpdateFields(ctx context.Context, id ulid.ULID, fields map[string]interface{}) error {
	result := dbFrom(ctx, r.DB).Model(&projectDB{}).Where("id = ?", id.String()).Updates(fields)
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) IncrementFunding(ctx context.Context, id ulid.ULID, amount int64) error {
	result := dbFrom(ctx, r.DB).Model(&projectDB{}).
		Where("id = ?", id.String()).
		Updates(map[string]interface{}{
			"funding_total": gorm.Expr("funding_total + ?", amount),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return appErrors.NewDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return appErrors.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id ulid.ULID, to project.Status, from ...project.Status) (bool, error) {
	fields := map[string]interface{}{
		"status":     string(to),
		"updated_at": time.Now(),
	}
	if to == project.Completed {
		fields["completed_at"] = time.Now()
	}

	query := dbFrom(ctx, r.DB).Model(&projectDB{}).Where("id = ?", id.String())
	if len(from) > 0 {
		allowed := make([]string, 0, len(from))
		for _, s := range from {
			allowed = append(allowed, string(s))
		}
		query = query.Where("status IN ?", allowed)
	}

	result := query.Updates(fields)
	if result.Error != nil {
		return false, appErrors.NewDatabaseError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ProjectRepository) MarkFundedIfReached(ctx context.Context, id ulid.ULID) (bool, error) {
	result := dbFrom(ctx, r.DB).Model(&projectDB{}).
		Where("id = ? AND status = ? AND funding_total >= funding_goal", id.String(), string(project.Active)).
		Updates(map[string]interface{}{
			"status":     string(project.Funded),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, appErrors.NewDatabaseError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *ProjectRepository) UpdateGoal(ctx context.Context, id ulid.ULID, goal int64) (bool, error) {
	result := dbFrom(ctx, r.DB).Model(&projectDB{}).
		Where("id = ? AND status IN ?", id.String(), []string{string(project.Active), string(project.Funded)}).
		Updates(map[string]interface{}{
			"funding_goal": goal,
			"status": gorm.Expr(
				"CASE WHEN funding_total >= ? THEN ? ELSE ? END",
				goal, string(project.Funded), string(project.Active),
			),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, appErrors.NewDatabaseError(result.Error)
	}
	return result.RowsAffected > 0, nil
}
