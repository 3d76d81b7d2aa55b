package payments

// Provider identifiers recorded on webhook ledger rows.
const (
	ProviderStripe = "stripe"
)

// MetadataTypeInvestment marks a payment intent created for a project
// investment rather than a subscription charge.
const MetadataTypeInvestment = "investment"
