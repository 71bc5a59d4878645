package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "staffdir/internal/errors"
	"staffdir/internal/model"
)

// EmployeeRepository defines employee persistence operations. Every
// implementation returns apperrors.ErrEmployeeNotFound for missing records
// and apperrors.ErrDuplicateAuthID when the unique auth id index rejects a
// write.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	FindByID(ctx context.Context, id string) (*model.Employee, error)
	FindByAuthID(ctx context.Context, authID string) (*model.Employee, error)
	List(ctx context.Context, skip, limit int) ([]model.Employee, error)
	Count(ctx context.Context) (int64, error)
	// UpsertByAuthID updates the record holding employee.AuthID or inserts
	// it when absent. Onboarded and CreatedAt are only set on insert.
	UpsertByAuthID(ctx context.Context, employee *model.Employee) (*model.Employee, error)
	// UpdateByID overwrites the editable fields of an existing record.
	UpdateByID(ctx context.Context, id string, employee *model.Employee) (*model.Employee, error)
	EnsureIndexes(ctx context.Context) error
}

type gormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository builds a GORM-backed repository. The connection
// must be opened with TranslateError so duplicate keys are recognisable.
func NewGormEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &gormEmployeeRepository{db: db}
}

func (r *gormEmployeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	employee.Onboarded = false
	return translate(r.db.WithContext(ctx).Create(employee).Error)
}

func (r *gormEmployeeRepository) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error; err != nil {
		return nil, translate(err)
	}
	return &employee, nil
}

func (r *gormEmployeeRepository) FindByAuthID(ctx context.Context, authID string) (*model.Employee, error) {
	var employee model.Employee
	if err := r.db.WithContext(ctx).Where("auth_id = ?", authID).First(&employee).Error; err != nil {
		return nil, translate(err)
	}
	return &employee, nil
}

func (r *gormEmployeeRepository) List(ctx context.Context, skip, limit int) ([]model.Employee, error) {
	employees := []model.Employee{}
	// id breaks creation-time ties so pages never overlap.
	if err := r.db.WithContext(ctx).
		Order("created_at asc").
		Order("id asc").
		Offset(skip).
		Limit(limit).
		Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *gormEmployeeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Employee{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *gormEmployeeRepository) UpsertByAuthID(ctx context.Context, employee *model.Employee) (*model.Employee, error) {
	var result model.Employee
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("auth_id = ?", employee.AuthID).First(&result).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result = model.Employee{
				AuthID: employee.AuthID,
				Name:   employee.Name,
				Email:  employee.Email,
				Role:   employee.Role,
			}
			return tx.Create(&result).Error
		}
		if err != nil {
			return err
		}

		result.Name = employee.Name
		result.Email = employee.Email
		result.Role = employee.Role
		return tx.Save(&result).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &result, nil
}

func (r *gormEmployeeRepository) UpdateByID(ctx context.Context, id string, employee *model.Employee) (*model.Employee, error) {
	var result model.Employee
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&result).Error; err != nil {
			return err
		}
		result.AuthID = employee.AuthID
		result.Name = employee.Name
		result.Email = employee.Email
		result.Role = employee.Role
		return tx.Save(&result).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &result, nil
}

// EnsureIndexes migrates the employees table, which creates the unique
// auth_id index declared on the model.
func (r *gormEmployeeRepository) EnsureIndexes(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&model.Employee{})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrEmployeeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrDuplicateAuthID
	default:
		return err
	}
}
