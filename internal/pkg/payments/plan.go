package payments

import (
	"strings"

	"github.com/investflow/investflow/app/models"
	"github.com/investflow/investflow/internal/pkg/env"
)

// PlanFromPriceID maps a Stripe price id to an internal plan key using the
// configured price ids. Unknown prices resolve to premium: a paying
// subscription must never be downgraded to free because of a config gap.
func PlanFromPriceID(priceID string) string {
	id := strings.TrimSpace(priceID)
	if id == "" {
		return models.PLAN_PREMIUM
	}
	if basic := env.GetEnv("STRIPE_PRICE_BASIC", ""); basic != "" && id == basic {
		return models.PLAN_BASIC
	}
	if premium := env.GetEnv("STRIPE_PRICE_PREMIUM", ""); premium != "" && id == premium {
		return models.PLAN_PREMIUM
	}
	return models.PLAN_PREMIUM
}
