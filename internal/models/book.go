package models

import "gorm.io/gorm"

// Book is the catalog projection the order core needs: identity and the
// current list price. Full catalog CRUD lives in the catalog service.
type Book struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title      string  `json:"title" validate:"required,min=1,max=255"`
	Author     string  `json:"author" validate:"omitempty,max=255"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
