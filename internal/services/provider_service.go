package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"provider-subscription-api/internal/database"
	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/internal/models"
	"provider-subscription-api/internal/subscription"
	"provider-subscription-api/pkg/logging"

	"github.com/go-playground/validator/v10"
)

// RegisterProviderInput is the self-registration form of a provider.
type RegisterProviderInput struct {
	BusinessName   string `json:"business_name" validate:"required,max=200"`
	Email          string `json:"email" validate:"required,email"`
	WhatsAppNumber string `json:"whatsapp_number" validate:"omitempty,max=30"`
	ServiceType    string `json:"service_type" validate:"omitempty,max=50"`
	Description    string `json:"description" validate:"omitempty,max=2000"`
}

// RegisteredProvider is returned once at registration; it is the only time the API key is shown.
type RegisteredProvider struct {
	Provider     *models.ServiceProvider `json:"provider"`
	APIKey       string                  `json:"api_key"`
	Subscription StatusView              `json:"subscription"`
}

// ProviderService manages provider accounts
type ProviderService struct {
	store    *database.Store
	clock    Clock
	validate *validator.Validate
}

// NewProviderService creates a new provider service
func NewProviderService(store *database.Store, clock Clock) *ProviderService {
	return &ProviderService{
		store:    store,
		clock:    clock,
		validate: validator.New(),
	}
}

// Register creates a provider with a fresh subscription record awaiting approval.
func (s *ProviderService) Register(ctx context.Context, input RegisterProviderInput) (*RegisteredProvider, error) {
	input.BusinessName = strings.TrimSpace(input.BusinessName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.WhatsAppNumber = strings.TrimSpace(input.WhatsAppNumber)

	if err := s.validate.Struct(input); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid registration data").
			WithReportableDetails(validationDetails(err)).
			Mark(ierr.ErrValidation)
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Could not generate API key").Mark(ierr.ErrSystem)
	}

	provider := &models.ServiceProvider{
		ProviderID:     models.GenerateID(models.ProviderIDPrefix),
		BusinessName:   input.BusinessName,
		Email:          input.Email,
		WhatsAppNumber: input.WhatsAppNumber,
		ServiceType:    input.ServiceType,
		Description:    input.Description,
		APIKey:         apiKey,
	}

	sub := &models.Subscription{Version: 1}
	sub.Apply(subscription.NewRecord())

	if err := s.store.CreateProvider(ctx, provider, sub); err != nil {
		return nil, err
	}

	logging.Infow("provider registered",
		"provider_id", provider.ProviderID,
		"service_type", provider.ServiceType,
	)

	return &RegisteredProvider{
		Provider:     provider,
		APIKey:       apiKey,
		Subscription: NewStatusView(sub, s.clock.Now()),
	}, nil
}

// Get loads a provider.
func (s *ProviderService) Get(ctx context.Context, providerID string) (*models.ServiceProvider, error) {
	return s.store.GetProvider(ctx, providerID)
}

// Authenticate checks a provider's API key. Unknown providers and wrong keys fail alike.
func (s *ProviderService) Authenticate(ctx context.Context, providerID, apiKey string) (*models.ServiceProvider, error) {
	denied := ierr.NewError("invalid provider credentials").
		WithHint("Invalid provider_id or api_key").
		Mark(ierr.ErrPermissionDenied)

	if providerID == "" || apiKey == "" {
		return nil, denied
	}

	provider, err := s.store.GetProvider(ctx, providerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, denied
		}
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(provider.APIKey), []byte(apiKey)) != 1 {
		return nil, denied
	}
	return provider, nil
}

// Delete removes a provider and everything it owns.
func (s *ProviderService) Delete(ctx context.Context, providerID, actor string) error {
	if err := s.store.DeleteProvider(ctx, providerID); err != nil {
		return err
	}
	logging.Infow("provider deleted", "provider_id", providerID, "actor", actor)
	return nil
}

func generateAPIKey() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "psk_" + hex.EncodeToString(b), nil
}

// validationDetails lists the failing fields of a validator error.
func validationDetails(err error) map[string]any {
	details := map[string]any{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return details
}
