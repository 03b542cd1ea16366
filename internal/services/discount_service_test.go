package services_test

import (
	"fmt"
	"testing"

	"bookstore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestDiscountService_SweepExpiredSales(t *testing.T) {
	repo := new(MockBookDiscountRepository)
	service := services.NewDiscountService(repo)

	repo.On("EndExpiredSales", mock.Anything).Return(int64(3), nil).Once()

	n, err := service.SweepExpiredSales()
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	repo.AssertExpectations(t)
}

func TestDiscountService_SweepExpiredSalesError(t *testing.T) {
	repo := new(MockBookDiscountRepository)
	service := services.NewDiscountService(repo)

	repo.On("EndExpiredSales", mock.Anything).Return(int64(0), fmt.Errorf("database error")).Once()

	_, err := service.SweepExpiredSales()
	assert.Error(t, err)
	repo.AssertExpectations(t)
}
