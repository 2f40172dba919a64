package repository

import (
	"context"
	"strings"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormCountryRepository implements the CountryRepository interface
type GormCountryRepository struct {
	db *gorm.DB
}

// NewGormCountryRepository creates a new GORM country repository
func NewGormCountryRepository(db *gorm.DB) repository.CountryRepository {
	return &GormCountryRepository{
		db: db,
	}
}

// Countries GORM model for database mapping
type Countries struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"column:code;unique"`
	Name      string         `gorm:"column:name"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Countries) TableName() string {
	return "m_countries"
}

// GetByCode finds a country by its nationality code
func (r *GormCountryRepository) GetByCode(ctx context.Context, code string) (*entity.Country, error) {
	var country Countries
	result := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&country)

	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.Country{
		ID:        country.ID,
		Code:      country.Code,
		Name:      country.Name,
		CreatedAt: country.CreatedAt,
		UpdatedAt: country.UpdatedAt,
		DeletedAt: country.DeletedAt,
	}, nil
}
