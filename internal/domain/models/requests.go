package models

// Requests for the forecast HTTP endpoints. Defined in domain for consistency and reuse.

type PredictionsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type IndicatorsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"90" validate:"gte=1,lte=365"`
}

type SentimentRequest struct {
	// No parameters today; sentiment is market wide, not per symbol.
}

type NewsRequest struct {
	Limit int `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
}

type PricesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"90" validate:"gte=1,lte=365"`
}
