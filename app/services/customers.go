package services

import (
	"errors"

	"PhoneStore/app/finance"
	"PhoneStore/app/models"

	"gorm.io/gorm"
)

// Customer aggregation shared by the sales and repair engines. These
// run inside the caller's transaction so the aggregate update commits
// or rolls back with the sale/repair that caused it.

// getOrCreateCustomerTx finds a customer by phone (falling back to an
// exact name match when no phone is given) or creates one.
func getOrCreateCustomerTx(tx *gorm.DB, name, phone string) (*models.Customer, error) {
	var customer models.Customer
	var err error

	if phone != "" {
		err = tx.Where("phone = ?", phone).First(&customer).Error
	} else {
		err = tx.Where("name = ? AND phone = ''", name).First(&customer).Error
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = models.Customer{Name: name, Phone: phone, IsActive: true}
		if err := tx.Create(&customer).Error; err != nil {
			return nil, err
		}
		return &customer, nil
	}
	if err != nil {
		return nil, err
	}

	// Keep the latest name spelling for the known phone
	if name != "" && customer.Name != name {
		customer.Name = name
		if err := tx.Save(&customer).Error; err != nil {
			return nil, err
		}
	}
	return &customer, nil
}

// recordCustomerSaleTx bumps purchase aggregates after a sale
func recordCustomerSaleTx(tx *gorm.DB, customer *models.Customer, amount float64) error {
	customer.TotalPurchases++
	customer.TotalSpent = finance.Round2(customer.TotalSpent + amount)
	customer.CustomerType = mergeCustomerType(customer.CustomerType, models.CustomerTypeSales)
	return tx.Save(customer).Error
}

// recordCustomerRepairTx bumps repair aggregates after an order intake
func recordCustomerRepairTx(tx *gorm.DB, customer *models.Customer) error {
	customer.TotalRepairs++
	customer.CustomerType = mergeCustomerType(customer.CustomerType, models.CustomerTypeRepairs)
	return tx.Save(customer).Error
}

// mergeCustomerType widens the classification once a customer has done
// both kinds of business.
func mergeCustomerType(current, incoming string) string {
	if current == "" {
		return incoming
	}
	if current == incoming || current == models.CustomerTypeBoth {
		return current
	}
	return models.CustomerTypeBoth
}
