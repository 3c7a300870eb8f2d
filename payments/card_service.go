package payments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	config "github.com/tkaykim/moveit-backend/configs"
)

// ErrChargeDeclined is returned when the gateway rejects the charge; the
// caller surfaces it as a payment failure rather than a server error.
var ErrChargeDeclined = errors.New("card charge declined")

type chargeRequest struct {
	BillingRef string  `json:"billing_ref"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
}

type chargeResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// ChargeCard charges a stored billing profile through the external payment
// gateway and returns the gateway transaction id. The gateway's internals
// are a black box to this service.
func ChargeCard(billingRef string, amount float64) (string, error) {
	gatewayURL := config.Config("PAYMENT_GATEWAY_URL")
	secretKey := config.Config("PAYMENT_SECRET_KEY")
	if gatewayURL == "" || secretKey == "" {
		return "", errors.New("payment gateway not configured")
	}

	payload, err := json.Marshal(chargeRequest{
		BillingRef: billingRef,
		Amount:     amount,
		Currency:   "KRW",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal charge request: %v", err)
	}

	req, err := http.NewRequest("POST", gatewayURL+"/v1/charges", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach payment gateway: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 500 {
		log.Printf("🔥 Payment gateway error: status %d, body: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("payment gateway error: status %d", resp.StatusCode)
	}

	var charge chargeResponse
	if err := json.Unmarshal(body, &charge); err != nil {
		return "", fmt.Errorf("failed to parse gateway response: %v", err)
	}
	if resp.StatusCode != http.StatusOK || charge.Status != "succeeded" {
		log.Printf("Card charge declined for ref %s: %s", billingRef, charge.Message)
		return "", ErrChargeDeclined
	}

	return charge.TransactionID, nil
}
