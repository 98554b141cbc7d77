package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// casUpdate applies fields to the row only if it still carries version, then bumps
// the version. A missing row is ErrNotFound, a moved version ErrStaleVersion.
func casUpdate(db *gorm.DB, model any, id string, version int, fields map[string]any) error {
	fields["version"] = gorm.Expr("version + 1")
	res := db.Model(model).Where("id = ? AND version = ?", id, version).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update %s: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return ErrStaleVersion
}

func deleteByID(db *gorm.DB, model any, kind, id string) error {
	res := db.Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return err
}
