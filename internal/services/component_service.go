package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ComponentInput is the admin payload for a base, sauce or topping.
type ComponentInput struct {
	Name       string `json:"name"`
	PriceCents *int64 `json:"price_cents"`
}

// ComponentService manages bases, sauces and toppings. All three share one
// shape and differ only by table.
type ComponentService interface {
	// List returns every component of kind ordered by id
	List(ctx context.Context, kind models.ComponentKind) ([]models.Component, error)
	Create(ctx context.Context, kind models.ComponentKind, in ComponentInput) (*models.Component, error)
	Update(ctx context.Context, kind models.ComponentKind, id int, in ComponentInput) (*models.Component, error)
	// Delete removes a component that no preset pizza references and returns it
	Delete(ctx context.Context, kind models.ComponentKind, id int) (*models.Component, error)
}

type componentService struct {
	db *gorm.DB
}

func NewComponentService(db *gorm.DB) ComponentService {
	return &componentService{db: db}
}

func (s *componentService) List(ctx context.Context, kind models.ComponentKind) ([]models.Component, error) {
	components := []models.Component{}
	if err := s.db.WithContext(ctx).Table(kind.Table()).Order("id").Find(&components).Error; err != nil {
		return nil, models.NewInternalError("Failed to list "+kind.Table(), err)
	}
	return components, nil
}

func (s *componentService) Create(ctx context.Context, kind models.ComponentKind, in ComponentInput) (*models.Component, error) {
	component, err := validateComponent(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, kind, component.Name, 0); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Table(kind.Table()).Create(component).Error; err != nil {
		return nil, translateWriteError(err, "Failed to create "+kind.Label())
	}
	log.WithFields(logrus.Fields{"kind": kind, "id": component.ID}).Info("Component created")
	return component, nil
}

func (s *componentService) Update(ctx context.Context, kind models.ComponentKind, id int, in ComponentInput) (*models.Component, error) {
	changes, err := validateComponent(in)
	if err != nil {
		return nil, err
	}
	existing, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, kind, changes.Name, id); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Table(kind.Table()).Where("id = ?", id).
		Updates(map[string]interface{}{"name": changes.Name, "price_cents": changes.PriceCents}).Error
	if err != nil {
		return nil, translateWriteError(err, "Failed to update "+kind.Label())
	}
	existing.Name = changes.Name
	existing.PriceCents = changes.PriceCents
	return existing, nil
}

func (s *componentService) Delete(ctx context.Context, kind models.ComponentKind, id int) (*models.Component, error) {
	existing, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	var deleted *models.Component
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		used, err := referencingPizzas(tx, kind, id)
		if err != nil {
			return models.NewInternalError("Failed to check pizza references", err)
		}
		if len(used) > 0 {
			return &models.AppError{
				Code:    models.ErrConflict,
				Message: kind.Label() + " is used by a preset pizza",
				Details: map[string]interface{}{"pizzas": used},
			}
		}
		if err := tx.Table(kind.Table()).Where("id = ?", id).Delete(&models.Component{}).Error; err != nil {
			return models.NewInternalError("Failed to delete "+kind.Label(), err)
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"kind": kind, "id": id}).Info("Component deleted")
	return deleted, nil
}

func (s *componentService) find(ctx context.Context, kind models.ComponentKind, id int) (*models.Component, error) {
	var component models.Component
	if err := s.db.WithContext(ctx).Table(kind.Table()).Where("id = ?", id).Take(&component).Error; err != nil {
		return nil, notFoundOr(err, kind.Label()+" not found")
	}
	return &component, nil
}

func (s *componentService) checkNameFree(ctx context.Context, kind models.ComponentKind, name string, exceptID int) error {
	var count int64
	err := s.db.WithContext(ctx).Table(kind.Table()).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error
	if err != nil {
		return models.NewInternalError("Failed to check name", err)
	}
	if count > 0 {
		return models.NewConflictError("That name already exists")
	}
	return nil
}

// referencingPizzas returns the names of preset pizzas that use the component.
func referencingPizzas(tx *gorm.DB, kind models.ComponentKind, id int) ([]string, error) {
	var pizzas []models.Pizza
	switch kind {
	case models.KindBase:
		if err := tx.Where("base_id = ?", id).Order("id").Find(&pizzas).Error; err != nil {
			return nil, err
		}
	case models.KindSauce:
		if err := tx.Where("sauce_id = ?", id).Order("id").Find(&pizzas).Error; err != nil {
			return nil, err
		}
	case models.KindTopping:
		// topping sets are stored serialized, so filter in memory
		var all []models.Pizza
		if err := tx.Order("id").Find(&all).Error; err != nil {
			return nil, err
		}
		for _, p := range all {
			for _, tid := range p.ToppingIDs {
				if tid == id {
					pizzas = append(pizzas, p)
					break
				}
			}
		}
	}

	names := make([]string, 0, len(pizzas))
	for _, p := range pizzas {
		names = append(names, p.Name)
	}
	return names, nil
}

func validateComponent(in ComponentInput) (*models.Component, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Name is required", "name")
	}
	if in.PriceCents == nil || *in.PriceCents < 0 {
		return nil, models.NewValidationError("Non-negative price_cents is required", "price_cents")
	}
	return &models.Component{Name: name, PriceCents: *in.PriceCents}, nil
}

// translateWriteError turns a unique violation into a ConflictError.
func translateWriteError(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.NewConflictError("That name already exists")
	}
	return models.NewInternalError(message, err)
}
