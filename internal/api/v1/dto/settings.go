package dto

import "ducksnap/internal/service"

// SettingsResponse is the settings page payload.
type SettingsResponse struct {
	User         UserResponse                `json:"user"`
	Subscription *service.SubscriptionStatus `json:"subscription"`
	Connection   *service.ConnectionStatus   `json:"connection"`
}

// SettingsUpdateRequest changes profile fields. Omitted fields are left as is.
type SettingsUpdateRequest struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}
