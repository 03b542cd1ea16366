package repositories

import "bookstore/internal/models"

// BookRepository defines the read-side the order core needs from the catalog.
type BookRepository interface {
	GetAll() ([]models.Book, error)
	GetByID(id string) (*models.Book, error)
	Create(book *models.Book) error
}
