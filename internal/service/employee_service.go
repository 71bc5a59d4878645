package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"staffdir/internal/cache"
	apperrors "staffdir/internal/errors"
	"staffdir/internal/model"
	"staffdir/internal/repository"
	"staffdir/internal/routes"
	"staffdir/internal/validation"
)

const (
	employeeCacheTTL = 5 * time.Minute

	// DefaultPageSize applies when a caller asks for a non-positive page size.
	DefaultPageSize = 20
	// MaxPageSize caps a single page.
	MaxPageSize = 100
)

// EntityCache is the subset of cache.Client the service uses for
// single employee reads.
type EntityCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Revalidator marks cached renders of a page path as stale.
type Revalidator interface {
	Revalidate(ctx context.Context, path string) bool
}

// EmployeePage is one page of the employee listing.
type EmployeePage struct {
	Employees []model.Employee `json:"employees"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
	IsNext    bool             `json:"is_next"`
}

// ImportResult reports a bulk import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// EmployeeService exposes the employee directory operations. Every error is
// prefixed with the failed operation and wraps the original error.
type EmployeeService interface {
	CreateEmployee(ctx context.Context, in validation.EmployeeInput, path string) (*model.Employee, error)
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	ListEmployees(ctx context.Context, page, pageSize int) (*EmployeePage, error)
	GetProfile(ctx context.Context, callerAuthID string) (*model.Employee, error)
	UpsertEmployee(ctx context.Context, editingID string, in validation.EmployeeInput, path string) (*model.Employee, error)
	ImportEmployees(ctx context.Context, in []validation.EmployeeInput) (*ImportResult, error)
}

type employeeService struct {
	repo         repository.EmployeeRepository
	cache        EntityCache
	pages        Revalidator
	importSchema *validation.Schema
	logger       *zap.Logger
}

// NewEmployeeService builds an EmployeeService. entities may be nil; imports
// are validated against importSchema.
func NewEmployeeService(
	repo repository.EmployeeRepository,
	entities EntityCache,
	pages Revalidator,
	importSchema *validation.Schema,
	logger *zap.Logger,
) EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if entities == nil {
		// a nil *cache.Client is an always-empty cache
		entities = (*cache.Client)(nil)
	}
	return &employeeService{
		repo:         repo,
		cache:        entities,
		pages:        pages,
		importSchema: importSchema,
		logger:       logger,
	}
}

func (s *employeeService) cacheKey(id string) string {
	return fmt.Sprintf("employee:%s", id)
}

func (s *employeeService) revalidate(ctx context.Context, path string) {
	if s.pages == nil {
		return
	}
	s.pages.Revalidate(ctx, path)
}

func (s *employeeService) CreateEmployee(ctx context.Context, in validation.EmployeeInput, path string) (*model.Employee, error) {
	// The lookup gives a friendly error; the unique index is what closes
	// the race with a concurrent create.
	if _, err := s.repo.FindByAuthID(ctx, in.AuthID); err == nil {
		s.logger.Warn("employee already exists", zap.String("auth_id", in.AuthID))
		return nil, fmt.Errorf("failed to create employee: %w", apperrors.ErrDuplicateAuthID)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	employee := &model.Employee{
		AuthID: in.AuthID,
		Name:   in.Name,
		Email:  in.Email,
		Role:   in.Role,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	s.logger.Info("employee created", zap.String("id", employee.ID), zap.String("auth_id", employee.AuthID))
	s.revalidate(ctx, path)
	return employee, nil
}

func (s *employeeService) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Employee
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employee: %w", err)
	}

	// Stores may accept several spellings of an id; only the canonical one
	// is cached so writes can invalidate it.
	if employee.ID == id {
		if payload, err := json.Marshal(employee); err == nil {
			_ = s.cache.Set(ctx, s.cacheKey(employee.ID), payload, employeeCacheTTL)
		}
	}
	return employee, nil
}

func (s *employeeService) ListEmployees(ctx context.Context, page, pageSize int) (*EmployeePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}

	// Pages past the end are empty; checking before multiplying keeps the
	// offset from overflowing.
	if page-1 > math.MaxInt/pageSize || int64(page-1)*int64(pageSize) >= total {
		return &EmployeePage{
			Employees: []model.Employee{},
			Page:      page,
			PageSize:  pageSize,
			IsNext:    false,
		}, nil
	}
	skip := (page - 1) * pageSize

	employees, err := s.repo.List(ctx, skip, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch employees: %w", err)
	}

	return &EmployeePage{
		Employees: employees,
		Page:      page,
		PageSize:  pageSize,
		IsNext:    total > int64(skip+len(employees)),
	}, nil
}

func (s *employeeService) GetProfile(ctx context.Context, callerAuthID string) (*model.Employee, error) {
	if callerAuthID == "" {
		return nil, fmt.Errorf("failed to fetch profile: %w", apperrors.ErrUnauthenticated)
	}

	employee, err := s.repo.FindByAuthID(ctx, callerAuthID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return employee, nil
}

func (s *employeeService) UpsertEmployee(ctx context.Context, editingID string, in validation.EmployeeInput, path string) (*model.Employee, error) {
	existing, err := s.repo.FindByAuthID(ctx, in.AuthID)
	switch {
	case err == nil && editingID != "" && existing.ID != editingID:
		s.logger.Warn("auth id belongs to another employee",
			zap.String("auth_id", in.AuthID),
			zap.String("editing_id", editingID),
			zap.String("owner_id", existing.ID))
		return nil, fmt.Errorf("failed to manage employee: %w", apperrors.ErrDuplicateAuthID)
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("failed to manage employee: %w", err)
	}

	employee := &model.Employee{
		AuthID: in.AuthID,
		Name:   in.Name,
		Email:  in.Email,
		Role:   in.Role,
	}

	var saved *model.Employee
	if editingID == "" {
		saved, err = s.repo.UpsertByAuthID(ctx, employee)
	} else {
		saved, err = s.repo.UpdateByID(ctx, editingID, employee)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to manage employee: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(saved.ID))
	s.logger.Info("employee saved", zap.String("id", saved.ID), zap.String("auth_id", saved.AuthID))
	s.revalidate(ctx, path)
	return saved, nil
}

func (s *employeeService) ImportEmployees(ctx context.Context, in []validation.EmployeeInput) (*ImportResult, error) {
	result := &ImportResult{}
	for i, item := range in {
		valid, err := s.importSchema.Validate(item)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		saved, err := s.repo.UpsertByAuthID(ctx, &model.Employee{
			AuthID: valid.AuthID,
			Name:   valid.Name,
			Email:  valid.Email,
			Role:   valid.Role,
		})
		if err != nil {
			return result, fmt.Errorf("failed to import employees: row %d: %w", i+1, err)
		}
		_ = s.cache.Delete(ctx, s.cacheKey(saved.ID))
		result.Imported++
	}

	if result.Imported > 0 {
		s.revalidate(ctx, routes.ManageEmployee)
	}
	s.logger.Info("employees imported", zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
	return result, nil
}
