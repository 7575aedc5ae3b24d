package services

import (
	"context"
	"errors"
	"fmt"

	"safecity-dashboard/be/models"

	"gorm.io/gorm"
)

var (
	ErrEndpointNotFound  = errors.New("endpoint not found")
	ErrEndpointNameTaken = errors.New("endpoint name already exists")
)

//go:generate mockgen -source=endpoint_service.go -destination=mocks/mock_endpoint_lookup.go -package=mocks EndpointLookup

// EndpointLookup resolves configured endpoints by name or method.
type EndpointLookup interface {
	FindActiveByName(ctx context.Context, name string) (*models.Endpoint, error)
	FindActiveByMethod(ctx context.Context, method string) (*models.Endpoint, error)
}

type EndpointFilter struct {
	Category string
	Active   *bool
}

// EndpointPatch carries a partial update; nil fields keep their value.
type EndpointPatch struct {
	Name        *string `json:"name"`
	URL         *string `json:"url"`
	Method      *string `json:"method"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"is_active"`
}

type EndpointService struct {
	db *gorm.DB
}

func NewEndpointService(db *gorm.DB) *EndpointService {
	return &EndpointService{db: db}
}

func (s *EndpointService) List(ctx context.Context, filter EndpointFilter) ([]models.Endpoint, error) {
	query := s.db.WithContext(ctx).Model(&models.Endpoint{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	endpoints := []models.Endpoint{}
	if err := query.Order("category").Order("name").Find(&endpoints).Error; err != nil {
		return nil, fmt.Errorf("list endpoints: %w", err)
	}
	return endpoints, nil
}

func (s *EndpointService) Get(ctx context.Context, id uint) (*models.Endpoint, error) {
	var endpoint models.Endpoint
	if err := s.db.WithContext(ctx).First(&endpoint, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEndpointNotFound
		}
		return nil, fmt.Errorf("get endpoint %d: %w", id, err)
	}
	return &endpoint, nil
}

func (s *EndpointService) Create(ctx context.Context, endpoint *models.Endpoint) error {
	if endpoint.Method == "" {
		endpoint.Method = models.MethodGET
	}
	if endpoint.Category == "" {
		endpoint.Category = "general"
	}
	if err := s.db.WithContext(ctx).Create(endpoint).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEndpointNameTaken
		}
		return fmt.Errorf("create endpoint: %w", err)
	}
	return nil
}

func (s *EndpointService) Update(ctx context.Context, id uint, patch EndpointPatch) (*models.Endpoint, error) {
	endpoint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.URL != nil {
		updates["url"] = *patch.URL
	}
	if patch.Method != nil {
		updates["method"] = *patch.Method
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(endpoint).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrEndpointNameTaken
			}
			return nil, fmt.Errorf("update endpoint %d: %w", id, err)
		}
	}

	return s.Get(ctx, id)
}

func (s *EndpointService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Endpoint{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete endpoint %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEndpointNotFound
	}
	return nil
}

func (s *EndpointService) FindActiveByName(ctx context.Context, name string) (*models.Endpoint, error) {
	return s.findActive(ctx, "name = ?", name)
}

func (s *EndpointService) FindActiveByMethod(ctx context.Context, method string) (*models.Endpoint, error) {
	return s.findActive(ctx, "method = ?", method)
}

func (s *EndpointService) findActive(ctx context.Context, cond string, arg string) (*models.Endpoint, error) {
	var endpoint models.Endpoint
	res := s.db.WithContext(ctx).
		Where(cond, arg).
		Where("is_active = ?", true).
		Order("id").
		Limit(1).
		Find(&endpoint)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrEndpointNotFound
	}
	return &endpoint, nil
}
