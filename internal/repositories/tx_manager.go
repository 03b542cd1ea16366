package repositories

// TxRepos is the set of repositories bound to one database transaction.
type TxRepos interface {
	Orders() OrderRepository
	Books() BookRepository
	Inventory() InventoryRepository
	BookDiscounts() BookDiscountRepository
	MemberDiscounts() MemberDiscountRepository
	Users() UserRepository
}

// TransactionManager runs a function inside a single atomic unit of work.
// Returning an error from fn rolls back everything written through TxRepos.
type TransactionManager interface {
	WithinTx(fn func(r TxRepos) error) error
}
