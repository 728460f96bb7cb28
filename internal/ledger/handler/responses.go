package handler

import "assetcore/internal/ledger"

// HistoryResponse lists an asset's retained events, newest first.
type HistoryResponse struct {
	AssetID string         `json:"asset_id"`
	Count   int            `json:"count"`
	Events  []ledger.Event `json:"events"`
}

func NewHistoryResponse(assetID string, events []ledger.Event) *HistoryResponse {
	if events == nil {
		events = []ledger.Event{}
	}
	return &HistoryResponse{AssetID: assetID, Count: len(events), Events: events}
}
