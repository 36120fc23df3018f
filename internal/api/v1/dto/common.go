package dto

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UpgradeRequiredResponse is returned when a premium feature is requested on the free tier.
type UpgradeRequiredResponse struct {
	Error           string `json:"error"`
	UpgradeRequired bool   `json:"upgradeRequired"`
	UpgradePrompt   string `json:"upgradePrompt"`
}

// ToastResponse carries a client toast title and description.
type ToastResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
