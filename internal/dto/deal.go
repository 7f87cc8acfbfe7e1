package dto

import "encoding/json"

type EvaluateDealRequest struct {
	Listing    Listing         `json:"listing"`
	Assessment json.RawMessage `json:"assessment" validate:"required"`
}

type AnalyzeDealRequest struct {
	Listing Listing `json:"listing"`
}

type HistoryQuery struct {
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=1000"`
}
