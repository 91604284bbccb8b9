package domain

import "time"

// MerchantStatus enumerates relationship stages for a merchant.
type MerchantStatus string

const (
	MerchantStatusLead     MerchantStatus = "lead"
	MerchantStatusActive   MerchantStatus = "active"
	MerchantStatusChurned  MerchantStatus = "churned"
	MerchantStatusInactive MerchantStatus = "inactive"
)

// Merchant is a business the CRM tracks.
type Merchant struct {
	ID          string
	DisplayName string
	LegalName   string
	Status      MerchantStatus
	Industry    string
	Website     string
	OwnerID     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
