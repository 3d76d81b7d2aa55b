package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/investflow/investflow/app/models"
	"github.com/investflow/investflow/internal/pkg/env"
)

func TestPlanFromPriceID(t *testing.T) {
	env.Env = map[string]string{
		"STRIPE_PRICE_BASIC":   "price_basic_123",
		"STRIPE_PRICE_PREMIUM": "price_premium_456",
	}
	t.Cleanup(func() { env.Env = nil })

	tests := []struct {
		name    string
		priceID string
		want    string
	}{
		{"basic price", "price_basic_123", models.PLAN_BASIC},
		{"premium price", "price_premium_456", models.PLAN_PREMIUM},
		{"unknown price defaults to premium", "price_other", models.PLAN_PREMIUM},
		{"empty price defaults to premium", "", models.PLAN_PREMIUM},
		{"whitespace only defaults to premium", "   ", models.PLAN_PREMIUM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanFromPriceID(tt.priceID))
		})
	}
}

func TestPlanFromPriceIDWithoutConfig(t *testing.T) {
	env.Env = map[string]string{}
	t.Cleanup(func() { env.Env = nil })

	assert.Equal(t, models.PLAN_PREMIUM, PlanFromPriceID("price_anything"))
}
