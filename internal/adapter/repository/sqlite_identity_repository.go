package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"furiousrepair/internal/domain/entity"
	"furiousrepair/internal/domain/repository"
	"furiousrepair/pkg/errors"
)

type sqliteUserRepository struct {
	db *gorm.DB
}

func NewSQLiteUserRepository(db *gorm.DB) repository.UserRepository {
	return &sqliteUserRepository{db: db}
}

func (r *sqliteUserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := r.db.WithContext(ctx).Create(&userRow{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Conflict("User already exists with this email")
		}
		return errors.Internal("Failed to create user", err)
	}
	return nil
}

func (r *sqliteUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *sqliteUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *sqliteUserRepository) Update(ctx context.Context, user *entity.User) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&userRow{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"email":      user.Email,
			"updated_at": now,
		})
	if res.Error != nil {
		if stderrors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return errors.Conflict("Email is already taken")
		}
		return errors.Internal("Failed to update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NotFound("User", nil)
	}
	user.UpdatedAt = now
	return nil
}

func (r *sqliteUserRepository) first(query *gorm.DB) (*entity.User, error) {
	var row userRow
	if err := query.First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}
	return row.toEntity(), nil
}

type sqliteRepairerRepository struct {
	db *gorm.DB
}

func NewSQLiteRepairerRepository(db *gorm.DB) repository.RepairerRepository {
	return &sqliteRepairerRepository{db: db}
}

func (r *sqliteRepairerRepository) Create(ctx context.Context, repairer *entity.Repairer) error {
	if repairer.ID == "" {
		repairer.ID = uuid.New().String()
	}
	if repairer.Issues == nil {
		repairer.Issues = []string{}
	}
	if repairer.Expertise == nil {
		repairer.Expertise = []string{}
	}
	now := time.Now().UTC()
	repairer.CreatedAt = now
	repairer.UpdatedAt = now

	row := &repairerRow{
		ID:           repairer.ID,
		Name:         repairer.Name,
		Email:        repairer.Email,
		PasswordHash: repairer.PasswordHash,
		Phone:        repairer.Phone,
		Expertise:    repairer.Expertise,
		Available:    repairer.Available,
		City:         repairer.Location.City,
		State:        repairer.Location.State,
		Pin:          repairer.Location.Pin,
		CreatedAt:    repairer.CreatedAt,
		UpdatedAt:    repairer.UpdatedAt,
	}
	row.GeoLat, row.GeoLong = splitGeo(repairer.Location.Geo)

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Conflict("Repairer already exists")
		}
		return errors.Internal("Failed to create repairer", err)
	}
	return nil
}

func (r *sqliteRepairerRepository) GetByID(ctx context.Context, id string) (*entity.Repairer, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *sqliteRepairerRepository) GetByEmail(ctx context.Context, email string) (*entity.Repairer, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("email = ?", email))
}

func (r *sqliteRepairerRepository) AddClaimedIssue(ctx context.Context, repairerID, issueID string) error {
	if _, err := r.GetByID(ctx, repairerID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&repairerIssueRow{RepairerID: repairerID, IssueID: issueID, CreatedAt: time.Now().UTC()}).Error
	if err != nil {
		return errors.Internal("Failed to update claimed issues", err)
	}
	return nil
}

func (r *sqliteRepairerRepository) ListWithLocation(ctx context.Context) ([]*entity.Repairer, error) {
	var rows []repairerRow
	err := r.db.WithContext(ctx).
		Where("geo_lat IS NOT NULL AND geo_long IS NOT NULL").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to list repairers", err)
	}

	out := make([]*entity.Repairer, 0, len(rows))
	for i := range rows {
		issues, err := r.claimedIssues(ctx, rows[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, rows[i].toEntity(issues))
	}
	return out, nil
}

func (r *sqliteRepairerRepository) first(ctx context.Context, query *gorm.DB) (*entity.Repairer, error) {
	var row repairerRow
	if err := query.First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Repairer", err)
		}
		return nil, errors.Internal("Failed to get repairer", err)
	}
	issues, err := r.claimedIssues(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	return row.toEntity(issues), nil
}

func (r *sqliteRepairerRepository) claimedIssues(ctx context.Context, repairerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&repairerIssueRow{}).
		Where("repairer_id = ?", repairerID).
		Order("created_at ASC, issue_id ASC").
		Pluck("issue_id", &ids).Error
	if err != nil {
		return nil, errors.Internal("Failed to get claimed issues", err)
	}
	return ids, nil
}
