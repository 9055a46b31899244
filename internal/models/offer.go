package models

import "time"

// ServiceOffer is a listing a provider publishes on the marketplace.
// It is shown publicly only while the provider's subscription is visible.
type ServiceOffer struct {
	BaseModel

	OfferID      string     `json:"offer_id" gorm:"uniqueIndex;not null;size:40"`
	ProviderID   string     `json:"provider_id" gorm:"not null;size:40;index"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Price        string     `json:"price" gorm:"size:50"`
	ExchangeRate string     `json:"exchange_rate" gorm:"size:100"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`

	Provider *ServiceProvider `json:"-" gorm:"foreignKey:ProviderID;references:ProviderID"`
}

// IsExpired reports whether the offer's expiry has passed at now.
func (o *ServiceOffer) IsExpired(now time.Time) bool {
	return o.ExpiresAt != nil && !now.Before(*o.ExpiresAt)
}

// TableName sets the table name
func (ServiceOffer) TableName() string {
	return "service_offers"
}
