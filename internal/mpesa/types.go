package mpesa

import (
	"encoding/json"
	"fmt"
	"time"
)

type STKPushRequest struct {
	Phone            string
	Amount           int64
	AccountReference string
	Description      string
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type STKQueryResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
}

// CallbackEnvelope mirrors the Daraja webhook payload exactly; the nesting and
// key casing are part of the gateway contract and must not change.
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem values are addressed by name, not position; Amount and
// PhoneNumber arrive as JSON numbers, receipts as strings.
type CallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value,omitempty"`
}

func (m *CallbackMetadata) stringValue(name string) string {
	if m == nil {
		return ""
	}
	for _, it := range m.Item {
		if it.Name != name || len(it.Value) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(it.Value, &s); err == nil {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(it.Value, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

func (m *CallbackMetadata) ReceiptNumber() string {
	return m.stringValue("MpesaReceiptNumber")
}

func (m *CallbackMetadata) PhoneNumber() string {
	return m.stringValue("PhoneNumber")
}

func (m *CallbackMetadata) Amount() int64 {
	if m == nil {
		return 0
	}
	for _, it := range m.Item {
		if it.Name != "Amount" || len(it.Value) == 0 {
			continue
		}
		var f float64
		if err := json.Unmarshal(it.Value, &f); err == nil {
			return int64(f)
		}
	}
	return 0
}

// TransactionDate parses the YYYYMMDDHHMMSS timestamp the gateway sends on
// success, in Nairobi time.
func (m *CallbackMetadata) TransactionDate() *time.Time {
	raw := m.stringValue("TransactionDate")
	if raw == "" {
		return nil
	}
	loc := time.FixedZone("EAT", 3*60*60)
	t, err := time.ParseInLocation("20060102150405", raw, loc)
	if err != nil {
		return nil
	}
	return &t
}

// CallbackAck is what the webhook handler returns to the gateway. Anything
// other than a ResultCode 0 acknowledgement triggers redelivery.
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

func AcceptedAck() CallbackAck {
	return CallbackAck{ResultCode: 0, ResultDesc: "Accepted"}
}

// GatewayError carries the gateway's own error message so callers can surface
// it to the user unmodified.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
