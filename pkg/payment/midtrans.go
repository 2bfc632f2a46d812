package payment

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransGateway supports one-time payments only; Snap has no recurring
// flow matching the subscription plan.
type MidtransGateway struct {
	client    snap.Client
	serverKey string
	finishURL string
}

func NewMidtransGateway(serverKey string, production bool, finishURL string) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransGateway{serverKey: serverKey, finishURL: finishURL}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) Name() string { return "midtrans" }

func (g *MidtransGateway) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	if req.Plan != PlanStrategyPack {
		return nil, ErrUnsupportedPlan
	}

	// Snap amounts are whole currency units
	amount := req.AmountCents / 100
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.PaymentID,
			GrossAmt: amount,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Name,
			Email: req.Email,
		},
		Items: &[]midtrans.ItemDetails{
			{ID: string(req.Plan), Price: amount, Qty: 1, Name: "Strategy pack"},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}
	if g.finishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: g.finishURL}
	}

	resp, midErr := g.client.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}
	return &Intent{ClientSecret: resp.Token, ProviderRef: req.PaymentID, RedirectURL: resp.RedirectURL}, nil
}

type midtransNotification struct {
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	SignatureKey      string `json:"signature_key"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
}

// MidtransSignature is SHA512(order_id + status_code + gross_amount + server_key).
func MidtransSignature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (g *MidtransGateway) ParseWebhook(payload []byte, _ func(string) string) (*Event, error) {
	if g.serverKey == "" {
		return nil, ErrNotConfigured
	}
	var n midtransNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("midtrans payload: %w", err)
	}

	expected := MidtransSignature(n.OrderID, n.StatusCode, n.GrossAmount, g.serverKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) != 1 {
		return nil, ErrInvalidSignature
	}

	out := &Event{PaymentID: n.OrderID, ProviderRef: n.OrderID}
	switch n.TransactionStatus {
	case "capture", "settlement":
		out.Kind = EventPaymentSucceeded
		if n.FraudStatus == "deny" {
			out.Kind = EventPaymentFailed
		}
	case "deny", "cancel", "expire", "failure":
		out.Kind = EventPaymentFailed
	default:
		out.Kind = EventIgnored
	}
	return out, nil
}
