package app

// CreateRuleRequest is the input for registering a low-stock rule.
// A nil Threshold falls back to the default; a nil Enabled creates the rule
// active.
type CreateRuleRequest struct {
	MerchantID  string
	ProductName string
	Threshold   *int
	Enabled     *bool
	Units       string
}

// UpdateRuleRequest is the input for changing a rule. Nil pointers leave the
// field untouched.
type UpdateRuleRequest struct {
	Threshold *int
	Enabled   *bool
}

// StockUpdateRequest is the input for recording a batch of stock counts.
type StockUpdateRequest struct {
	MerchantID string
	Updates    []StockUpdateInput
}

// StockUpdateInput is a single count within a StockUpdateRequest.
type StockUpdateInput struct {
	ProductName string `json:"productName"`
	NewQuantity int    `json:"newQuantity"`
	Units       string `json:"units,omitempty"`
}
