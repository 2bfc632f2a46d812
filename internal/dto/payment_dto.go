package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateIntentRequest struct {
	Plan string `json:"plan" validate:"required,oneof=strategy_pack subscription"`
}

type IntentResponse struct {
	ClientSecret string    `json:"client_secret"`
	PaymentId    uuid.UUID `json:"payment_id"`
	Provider     string    `json:"provider"`
	RedirectURL  string    `json:"redirect_url,omitempty"`
}

type PaymentResponse struct {
	Id          uuid.UUID `json:"id"`
	Provider    string    `json:"provider"`
	ProviderRef string    `json:"provider_ref,omitempty"`
	Plan        string    `json:"plan"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
