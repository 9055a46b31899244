package services

import (
	"context"
	"strings"
	"testing"

	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/internal/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterProvider(t *testing.T) {
	env := newTestEnv(t)

	reg, err := env.providers.Register(context.Background(), RegisterProviderInput{
		BusinessName: "  Viajes del Sol ",
		Email:        "Hola@ViajesDelSol.com",
		ServiceType:  "travel",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(reg.Provider.ProviderID, "prov_"))
	assert.True(t, strings.HasPrefix(reg.APIKey, "psk_"))
	assert.Equal(t, "Viajes del Sol", reg.Provider.BusinessName)
	assert.Equal(t, "hola@viajesdelsol.com", reg.Provider.Email)
	assert.Equal(t, subscription.StatusPendingApproval, reg.Subscription.Status)
	assert.Equal(t, subscription.PlanNone, reg.Subscription.Plan)
	assert.True(t, reg.Subscription.IsActive)
}

func TestRegisterProviderValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.providers.Register(context.Background(), RegisterProviderInput{
		BusinessName: "",
		Email:        "not-an-email",
	})
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))

	details := ierr.SafeDetails(err)
	assert.Equal(t, "required", details["BusinessName"])
	assert.Equal(t, "email", details["Email"])
}

func TestRegisterProviderDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "agent@example.com")

	_, err := env.providers.Register(context.Background(), RegisterProviderInput{
		BusinessName: "Copy",
		Email:        "AGENT@example.com",
	})
	assert.True(t, ierr.IsAlreadyExists(err))
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "agent@example.com")

	provider, err := env.providers.Authenticate(ctx, reg.Provider.ProviderID, reg.APIKey)
	require.NoError(t, err)
	assert.Equal(t, reg.Provider.ProviderID, provider.ProviderID)

	tests := []struct {
		name       string
		providerID string
		apiKey     string
	}{
		{"wrong key", reg.Provider.ProviderID, "psk_wrong"},
		{"unknown provider", "prov_missing", reg.APIKey},
		{"empty key", reg.Provider.ProviderID, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.providers.Authenticate(ctx, tt.providerID, tt.apiKey)
			assert.True(t, ierr.IsPermissionDenied(err))
		})
	}
}

func TestDeleteProvider(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "agent@example.com").Provider.ProviderID

	require.NoError(t, env.providers.Delete(ctx, id, "admin"))

	_, err := env.providers.Get(ctx, id)
	assert.True(t, ierr.IsNotFound(err))
	_, err = env.subscriptions.GetStatus(ctx, id)
	assert.True(t, ierr.IsNotFound(err))
}
