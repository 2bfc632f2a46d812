package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
)

func TestMidtransWebhook(t *testing.T) {
	g := NewMidtransGateway("server-key", false, "")

	body := func(status, sig string) []byte {
		b, _ := json.Marshal(map[string]string{
			"order_id":           "pay-1",
			"status_code":        "200",
			"gross_amount":       "299.00",
			"transaction_status": status,
			"signature_key":      sig,
		})
		return b
	}
	good := MidtransSignature("pay-1", "200", "299.00", "server-key")

	ev, err := g.ParseWebhook(body("settlement", good), nil)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, ev.Kind)
	assert.Equal(t, "pay-1", ev.PaymentID)

	ev, err = g.ParseWebhook(body("expire", good), nil)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentFailed, ev.Kind)

	ev, err = g.ParseWebhook(body("pending", good), nil)
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, ev.Kind)

	_, err = g.ParseWebhook(body("settlement", "forged"), nil)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestMidtransRejectsSubscription(t *testing.T) {
	_, err := NewMidtransGateway("k", false, "").CreateIntent(context.Background(), IntentRequest{Plan: PlanSubscription})
	assert.ErrorIs(t, err, ErrUnsupportedPlan)
}

func signedStripe(t *testing.T, secret string, payload []byte) func(string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	h := http.Header{}
	h.Set("Stripe-Signature", signed.Header)
	return h.Get
}

func stripeEvent(eventType string, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":"2024-06-20","type":%q,"data":{"object":%s}}`, eventType, object))
}

func TestStripeWebhook(t *testing.T) {
	g := NewStripeGateway("sk_test", "whsec_test", "price_1")

	pi := stripeEvent("payment_intent.succeeded",
		`{"id":"pi_1","object":"payment_intent","customer":"cus_1","metadata":{"payment_id":"pay-1","plan":"strategy_pack"}}`)
	ev, err := g.ParseWebhook(pi, signedStripe(t, "whsec_test", pi))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSucceeded, ev.Kind)
	assert.Equal(t, "pay-1", ev.PaymentID)
	assert.Equal(t, "cus_1", ev.CustomerRef)

	invoicePI := stripeEvent("payment_intent.succeeded", `{"id":"pi_2","object":"payment_intent","metadata":{}}`)
	ev, err = g.ParseWebhook(invoicePI, signedStripe(t, "whsec_test", invoicePI))
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, ev.Kind)

	sub := stripeEvent("customer.subscription.updated",
		`{"id":"sub_1","object":"subscription","status":"active","customer":"cus_1","current_period_start":1714521600,"current_period_end":1717200000,"metadata":{"payment_id":"pay-2"}}`)
	ev, err = g.ParseWebhook(sub, signedStripe(t, "whsec_test", sub))
	require.NoError(t, err)
	assert.Equal(t, EventSubscriptionActive, ev.Kind)
	assert.Equal(t, "sub_1", ev.SubscriptionRef)
	assert.Equal(t, int64(1717200000), ev.PeriodEnd.Unix())

	deleted := stripeEvent("customer.subscription.deleted",
		`{"id":"sub_1","object":"subscription","status":"canceled","customer":"cus_1"}`)
	ev, err = g.ParseWebhook(deleted, signedStripe(t, "whsec_test", deleted))
	require.NoError(t, err)
	assert.Equal(t, EventSubscriptionCanceled, ev.Kind)

	_, err = g.ParseWebhook(pi, signedStripe(t, "whsec_other", pi))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
