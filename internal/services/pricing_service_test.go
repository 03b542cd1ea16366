package services_test

import (
	"fmt"
	"testing"
	"time"

	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookRepository is a mock implementation of repositories.BookRepository
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) GetAll() ([]models.Book, error) {
	args := m.Called()
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookRepository) GetByID(id string) (*models.Book, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) Create(book *models.Book) error {
	args := m.Called(book)
	return args.Error(0)
}

// MockBookDiscountRepository is a mock implementation of repositories.BookDiscountRepository
type MockBookDiscountRepository struct {
	mock.Mock
}

func (m *MockBookDiscountRepository) Create(discount *models.BookDiscount) error {
	args := m.Called(discount)
	return args.Error(0)
}

func (m *MockBookDiscountRepository) GetEligibleByBookID(bookID string, now time.Time) (*models.BookDiscount, error) {
	args := m.Called(bookID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookDiscount), args.Error(1)
}

func (m *MockBookDiscountRepository) EndExpiredSales(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

// MockMemberDiscountRepository is a mock implementation of repositories.MemberDiscountRepository
type MockMemberDiscountRepository struct {
	mock.Mock
}

func (m *MockMemberDiscountRepository) Create(discount *models.MemberDiscount) error {
	args := m.Called(discount)
	return args.Error(0)
}

func (m *MockMemberDiscountRepository) GetByID(id string) (*models.MemberDiscount, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MemberDiscount), args.Error(1)
}

func (m *MockMemberDiscountRepository) GetValidByUserID(userID string, now time.Time) (*models.MemberDiscount, error) {
	args := m.Called(userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MemberDiscount), args.Error(1)
}

func (m *MockMemberDiscountRepository) ConsumeIfUnused(id, orderID string, now time.Time) (bool, error) {
	args := m.Called(id, orderID, now)
	return args.Bool(0), args.Error(1)
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func eligibleDiscount(bookID string, percent float64) *models.BookDiscount {
	return &models.BookDiscount{
		ID:       "disc-" + bookID,
		BookID:   bookID,
		Percent:  percent,
		StartsAt: time.Now().Add(-time.Hour),
		EndsAt:   time.Now().Add(time.Hour),
		Active:   true,
		OnSale:   true,
	}
}

func TestPricingService_QuoteWithBookAndMemberDiscounts(t *testing.T) {
	bookRepo := new(MockBookRepository)
	bookDiscounts := new(MockBookDiscountRepository)
	memberDiscounts := new(MockMemberDiscountRepository)
	service := services.NewPricingService(bookRepo, bookDiscounts, memberDiscounts)

	// Book at 20.00 with a 10% sale; user holds an unused 5% member discount.
	bookRepo.On("GetByID", "book-a").Return(&models.Book{ID: "book-a", Title: "Book A", Price: 20.00}, nil).Once()
	bookDiscounts.On("GetEligibleByBookID", "book-a", mock.Anything).Return(eligibleDiscount("book-a", 10), nil).Once()
	memberDiscounts.On("GetValidByUserID", "user-1", mock.Anything).Return(&models.MemberDiscount{
		ID:        "member-1",
		UserID:    "user-1",
		Percent:   5,
		SingleUse: true,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}, nil).Once()

	quote, err := service.Quote("user-1", []services.ItemRequest{{BookID: "book-a", Quantity: 2}})

	assert.NoError(t, err)
	assert.Len(t, quote.Lines, 1)
	assert.Equal(t, 40.00, quote.Lines[0].Subtotal)
	assert.Equal(t, 10.0, quote.Lines[0].DiscountPercent)
	assert.Equal(t, 4.00, quote.Lines[0].Savings)
	assert.Equal(t, 36.00, quote.Lines[0].LineTotal)
	assert.Equal(t, 1.80, quote.MemberDiscountAmount) // 5% of 36.00
	assert.Equal(t, "member-1", quote.MemberDiscountID)
	assert.Equal(t, 40.00, quote.TotalAmount)
	assert.Equal(t, 5.80, quote.DiscountAmount)
	assert.Equal(t, 34.20, quote.FinalAmount)
	bookRepo.AssertExpectations(t)
	bookDiscounts.AssertExpectations(t)
	memberDiscounts.AssertExpectations(t)
}

func TestPricingService_QuoteWithoutDiscounts(t *testing.T) {
	bookRepo := new(MockBookRepository)
	bookDiscounts := new(MockBookDiscountRepository)
	memberDiscounts := new(MockMemberDiscountRepository)
	service := services.NewPricingService(bookRepo, bookDiscounts, memberDiscounts)

	bookRepo.On("GetByID", "book-a").Return(&models.Book{ID: "book-a", Title: "Book A", Price: 12.50}, nil).Once()
	bookDiscounts.On("GetEligibleByBookID", "book-a", mock.Anything).Return(nil, notFoundErr("eligible discount")).Once()
	memberDiscounts.On("GetValidByUserID", "user-1", mock.Anything).Return(nil, notFoundErr("member discount")).Once()

	quote, err := service.Quote("user-1", []services.ItemRequest{{BookID: "book-a", Quantity: 3}})

	assert.NoError(t, err)
	assert.Equal(t, 37.50, quote.TotalAmount)
	assert.Equal(t, 0.0, quote.DiscountAmount)
	assert.Equal(t, 37.50, quote.FinalAmount)
	assert.Empty(t, quote.MemberDiscountID)
}

func TestPricingService_QuoteMultipleLines(t *testing.T) {
	bookRepo := new(MockBookRepository)
	bookDiscounts := new(MockBookDiscountRepository)
	memberDiscounts := new(MockMemberDiscountRepository)
	service := services.NewPricingService(bookRepo, bookDiscounts, memberDiscounts)

	bookRepo.On("GetByID", "book-a").Return(&models.Book{ID: "book-a", Title: "Book A", Price: 10.00}, nil).Once()
	bookRepo.On("GetByID", "book-b").Return(&models.Book{ID: "book-b", Title: "Book B", Price: 25.00}, nil).Once()
	bookDiscounts.On("GetEligibleByBookID", "book-a", mock.Anything).Return(eligibleDiscount("book-a", 20), nil).Once()
	bookDiscounts.On("GetEligibleByBookID", "book-b", mock.Anything).Return(nil, notFoundErr("eligible discount")).Once()
	memberDiscounts.On("GetValidByUserID", "user-1", mock.Anything).Return(nil, notFoundErr("member discount")).Once()

	quote, err := service.Quote("user-1", []services.ItemRequest{
		{BookID: "book-a", Quantity: 1},
		{BookID: "book-b", Quantity: 2},
	})

	assert.NoError(t, err)
	assert.Equal(t, 60.00, quote.TotalAmount) // 10 + 50
	assert.Equal(t, 2.00, quote.DiscountAmount)
	assert.Equal(t, 58.00, quote.FinalAmount)
	assert.Equal(t, quote.FinalAmount, quote.TotalAmount-quote.DiscountAmount)
}

func TestPricingService_FinalAmountNeverNegative(t *testing.T) {
	bookRepo := new(MockBookRepository)
	bookDiscounts := new(MockBookDiscountRepository)
	memberDiscounts := new(MockMemberDiscountRepository)
	service := services.NewPricingService(bookRepo, bookDiscounts, memberDiscounts)

	bookRepo.On("GetByID", "book-a").Return(&models.Book{ID: "book-a", Title: "Book A", Price: 10.00}, nil).Once()
	bookDiscounts.On("GetEligibleByBookID", "book-a", mock.Anything).Return(eligibleDiscount("book-a", 100), nil).Once()
	memberDiscounts.On("GetValidByUserID", "user-1", mock.Anything).Return(&models.MemberDiscount{
		ID:        "member-1",
		UserID:    "user-1",
		Percent:   100,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil).Once()

	quote, err := service.Quote("user-1", []services.ItemRequest{{BookID: "book-a", Quantity: 1}})

	assert.NoError(t, err)
	assert.Equal(t, 0.0, quote.FinalAmount)
	assert.GreaterOrEqual(t, quote.FinalAmount, 0.0)
	assert.Equal(t, quote.TotalAmount, quote.DiscountAmount)
}

func TestPricingService_MissingBookFailsQuote(t *testing.T) {
	bookRepo := new(MockBookRepository)
	bookDiscounts := new(MockBookDiscountRepository)
	memberDiscounts := new(MockMemberDiscountRepository)
	service := services.NewPricingService(bookRepo, bookDiscounts, memberDiscounts)

	bookRepo.On("GetByID", "missing").Return(nil, notFoundErr("book missing")).Once()

	quote, err := service.Quote("user-1", []services.ItemRequest{{BookID: "missing", Quantity: 1}})

	assert.Error(t, err)
	assert.Nil(t, quote)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
