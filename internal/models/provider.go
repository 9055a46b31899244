package models

// ServiceProvider is a business renting marketplace listing space
// (remittance agent, travel agency, ...). It owns one Subscription.
type ServiceProvider struct {
	BaseModel
	ProviderID     string `json:"provider_id" gorm:"uniqueIndex;not null;size:40"`
	BusinessName   string `json:"business_name" gorm:"not null"`
	Email          string `json:"email" gorm:"uniqueIndex;not null"`
	WhatsAppNumber string `json:"whatsapp_number"`
	ServiceType    string `json:"service_type" gorm:"size:50"`
	Description    string `json:"description" gorm:"type:text"`
	APIKey         string `json:"-" gorm:"uniqueIndex;not null"`

	Subscription *Subscription `json:"-" gorm:"foreignKey:ProviderID;references:ProviderID;constraint:OnDelete:CASCADE"`
}
