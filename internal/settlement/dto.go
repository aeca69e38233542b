package settlement

// PreviewRequest is the body of POST /settlements/preview
type PreviewRequest struct {
	Entries []Entry `json:"entries"`
}

// PreviewResponse lists the transfers that would settle the given entries
type PreviewResponse struct {
	Balances    []PlayerBalance `json:"balances"`
	Settlements []Settlement    `json:"settlements"`
}
