package market

import (
	"bytes"
	"encoding/json"
)

// Product is a Market catalog entry.
type Product struct {
	Identifier json.Number `json:"identifier"`
	Title      string      `json:"title"`
	Details    string      `json:"details"`
	Stock      int         `json:"stock"`
	Situation  string      `json:"situation"`
	Picture    string      `json:"picture"`
	Seller     *Seller     `json:"seller,omitempty"`
	Categories []Category  `json:"categories,omitempty"`
}

// Seller identifies the account publishing a product.
type Seller struct {
	Identifier json.Number `json:"identifier"`
	Name       string      `json:"name"`
}

// Category groups products.
type Category struct {
	Identifier json.Number `json:"identifier"`
	Title      string      `json:"title"`
	Details    string      `json:"details"`
}

// User is the Market-side account record behind users/me.
type User struct {
	Identifier   json.Number `json:"identifier"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	IsVerified   json.Number `json:"isVerified"`
	IsAdmin      bool        `json:"isAdmin"`
	CreationDate string      `json:"creationDate"`
	LastChange   string      `json:"lastChange"`
}

// Transaction is the result of a purchase.
type Transaction struct {
	Identifier json.Number `json:"identifier"`
	Quantity   int         `json:"quantity"`
	Buyer      *User       `json:"buyer,omitempty"`
	Product    *Product    `json:"product,omitempty"`
}

// envelope is the Market reply wrapper: successful payloads arrive under
// "data", failures carry "error". Field presence decides which path applies,
// so both are decoded explicitly rather than probed.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error json.RawMessage `json:"error"`
}

// decodeEnvelope unpacks a Market reply into out, unwrapping the data
// envelope when present and surfacing embedded errors.
func decodeEnvelope(body []byte, op string, statusCode int, out interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		if out == nil {
			return nil
		}
		return &ResponseError{Op: op, StatusCode: statusCode, Message: "empty response body"}
	}
	var wrapped envelope
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return &ResponseError{Op: op, StatusCode: statusCode, Message: "malformed response body"}
	}
	if len(wrapped.Error) > 0 && string(wrapped.Error) != "null" {
		var message string
		if err := json.Unmarshal(wrapped.Error, &message); err != nil {
			message = string(wrapped.Error)
		}
		return &ResponseError{Op: op, StatusCode: statusCode, Message: message}
	}
	if out == nil {
		return nil
	}
	payload := body
	if len(wrapped.Data) > 0 && string(wrapped.Data) != "null" {
		payload = wrapped.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &ResponseError{Op: op, StatusCode: statusCode, Message: "unexpected response shape"}
	}
	return nil
}
