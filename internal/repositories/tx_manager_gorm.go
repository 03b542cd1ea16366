package repositories

import "gorm.io/gorm"

type txRepos struct {
	orders          OrderRepository
	books           BookRepository
	inventory       InventoryRepository
	bookDiscounts   BookDiscountRepository
	memberDiscounts MemberDiscountRepository
	users           UserRepository
}

func (r *txRepos) Orders() OrderRepository                   { return r.orders }
func (r *txRepos) Books() BookRepository                     { return r.books }
func (r *txRepos) Inventory() InventoryRepository            { return r.inventory }
func (r *txRepos) BookDiscounts() BookDiscountRepository     { return r.bookDiscounts }
func (r *txRepos) MemberDiscounts() MemberDiscountRepository { return r.memberDiscounts }
func (r *txRepos) Users() UserRepository                     { return r.users }

// GORMTransactionManager is a GORM implementation of TransactionManager.
type GORMTransactionManager struct {
	db *gorm.DB
}

// NewGORMTransactionManager creates a new instance of GORMTransactionManager.
func NewGORMTransactionManager(db *gorm.DB) *GORMTransactionManager {
	return &GORMTransactionManager{
		db: db,
	}
}

// WithinTx opens a transaction and rebuilds every repository on top of it, so
// all work done through the TxRepos commits or rolls back together.
func (tm *GORMTransactionManager) WithinTx(fn func(r TxRepos) error) error {
	return tm.db.Transaction(func(tx *gorm.DB) error {
		r := &txRepos{
			orders:          NewGORMOrderRepository(tx),
			books:           NewGORMBookRepository(tx),
			inventory:       NewGORMInventoryRepository(tx),
			bookDiscounts:   NewGORMBookDiscountRepository(tx),
			memberDiscounts: NewGORMMemberDiscountRepository(tx),
			users:           NewGORMUserRepository(tx),
		}
		return fn(r)
	})
}
