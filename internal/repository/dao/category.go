package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Category struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"unique;not null"`
	Slug      string `gorm:"unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}

type CategoryDAO struct {
	db *gorm.DB
}

func NewCategoryDAO(db *gorm.DB) *CategoryDAO {
	return &CategoryDAO{
		db: db,
	}
}

func (d *CategoryDAO) FindAll(ctx context.Context) ([]Category, error) {
	var categories []Category

	result := d.db.WithContext(ctx).Order("name ASC").Find(&categories)
	if result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

// FindByIDs returns the categories that exist among ids; unknown ids are skipped.
func (d *CategoryDAO) FindByIDs(ctx context.Context, ids []string) ([]Category, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []Category{}, nil
	}

	var categories []Category

	result := d.db.WithContext(ctx).Where("id IN ?", valid).Order("name ASC").Find(&categories)
	if result.Error != nil {
		return nil, result.Error
	}

	return categories, nil
}

// InsertIfMissing creates the category unless one with the same slug or name is
// already stored. It reports whether a row was written.
func (d *CategoryDAO) InsertIfMissing(ctx context.Context, category Category) (bool, error) {
	result := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&category)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
