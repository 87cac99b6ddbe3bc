package events_test

import (
	"testing"

	"github.com/doguaydn/microservices-e-commerce/pkg/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_OrderCreated(t *testing.T) {
	body := []byte(`{
		"orderId": "5b0c7f0e-4d1a-4a57-9a55-0ad3d0f1c111",
		"userId": 7,
		"email": "ada@example.com",
		"items": [
			{"productId": 3, "productName": "Mug", "quantity": 2, "price": "10.00"},
			{"productId": 5, "productName": "Lamp", "quantity": 1, "price": 25}
		],
		"totalAmount": "45.00",
		"timestamp": "2025-03-01T10:00:00Z"
	}`)

	evt, err := events.Decode[events.OrderCreatedEvent](body)
	require.NoError(t, err)
	assert.Equal(t, uint(7), evt.UserID)
	assert.Len(t, evt.Items, 2)
	assert.Equal(t, "45", evt.TotalAmount.String())
	assert.Equal(t, "25", evt.Items[1].Price.String())
}

func TestDecode_RejectsInvalidPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"orderId":`,
		"missing order":  `{"userId":7,"items":[{"productId":1,"quantity":1,"price":"1"}],"totalAmount":"1"}`,
		"no items":       `{"orderId":"5b0c7f0e-4d1a-4a57-9a55-0ad3d0f1c111","userId":7,"items":[],"totalAmount":"0"}`,
		"zero quantity":  `{"orderId":"5b0c7f0e-4d1a-4a57-9a55-0ad3d0f1c111","userId":7,"items":[{"productId":1,"quantity":0,"price":"1"}],"totalAmount":"1"}`,
		"negative total": `{"orderId":"5b0c7f0e-4d1a-4a57-9a55-0ad3d0f1c111","userId":7,"items":[{"productId":1,"quantity":1,"price":"1"}],"totalAmount":"-1"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := events.Decode[events.OrderCreatedEvent]([]byte(body))
			assert.ErrorIs(t, err, events.ErrInvalidPayload)
		})
	}
}

func TestDecode_MissingEmailIsAllowed(t *testing.T) {
	evt, err := events.Decode[events.UserRegisteredEvent]([]byte(`{"userId":3,"name":"Grace"}`))
	require.NoError(t, err)
	assert.Empty(t, evt.Email)
}

func TestDecode_AcceptsAnyOrderIDAndEmailText(t *testing.T) {
	body := []byte(`{"orderId":"abc","userId":7,"email":"not-an-address","items":[{"productId":1,"quantity":1,"price":"1"}],"totalAmount":"1"}`)

	evt, err := events.Decode[events.OrderCreatedEvent](body)
	require.NoError(t, err)
	assert.Equal(t, "abc", evt.OrderID)
	assert.Equal(t, "not-an-address", evt.Email)
}

func TestMoney_PinsScale(t *testing.T) {
	for _, in := range []string{"45", "45.0", "45.00", "44.999"} {
		got := events.Money(decimal.RequireFromString(in))
		assert.Equal(t, int32(-events.MoneyScale), got.Exponent(), in)
		assert.Equal(t, "45.00", got.StringFixed(events.MoneyScale), in)
	}

	items := []events.OrderItem{{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("10")}}
	out := events.NormalizeItems(items)
	assert.Equal(t, int32(-2), out[0].Price.Exponent())
	assert.Equal(t, int32(0), items[0].Price.Exponent())
	assert.Nil(t, events.NormalizeItems(nil))
}
