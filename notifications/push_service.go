package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	config "github.com/tkaykim/moveit-backend/configs"
	"github.com/tkaykim/moveit-backend/database"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/websocket"
	"github.com/google/uuid"
)

type PushService struct {
	GatewayURL string
	APIKey     string
}

var PushClient *PushService

type pushPayload struct {
	UserID string            `json:"user_id"`
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

func InitPushService() {
	gatewayURL := config.Config("PUSH_GATEWAY_URL")
	apiKey := config.Config("PUSH_API_KEY")

	if gatewayURL == "" || apiKey == "" {
		log.Println("⚠️ Push service not configured. Missing gateway URL or API key.")
		PushClient = nil
		return
	}

	PushClient = &PushService{GatewayURL: gatewayURL, APIKey: apiKey}
	log.Println("✅ Push service initialized successfully.")
}

func (s *PushService) send(userID uuid.UUID, eventType, title, body string, data map[string]string) error {
	payload := pushPayload{
		UserID: userID.String(),
		Type:   eventType,
		Title:  title,
		Body:   body,
		Data:   data,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", s.GatewayURL, bytes.NewBuffer(raw))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("push gateway error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Notify delivers an event to a user: a persisted notification row, a live
// websocket push, and a call to the external push gateway. It is
// fire-and-forget; every failure is logged and swallowed so a notification
// can never fail the operation that triggered it.
func Notify(userID uuid.UUID, eventType, title, body string, data map[string]string) {
	var rawData *string
	var rawBytes []byte
	if len(data) > 0 {
		if b, err := json.Marshal(data); err == nil {
			s := string(b)
			rawData = &s
			rawBytes = b
		}
	}

	if database.DB != nil {
		notification := models.Notification{
			UserID: userID,
			Type:   eventType,
			Title:  title,
			Body:   body,
			Data:   rawData,
		}
		if err := database.DB.Create(&notification).Error; err != nil {
			log.Printf("Failed to persist notification for user %s: %v", userID, err)
		}
	}

	websocket.Publish(websocket.Event{
		UserID: userID,
		Type:   eventType,
		Title:  title,
		Body:   body,
		Data:   rawBytes,
	})

	if PushClient == nil {
		log.Println("Push client not initialized, skipping push send.")
		return
	}
	if err := PushClient.send(userID, eventType, title, body, data); err != nil {
		log.Printf("🔥 Failed to push notification to user %s: %v", userID, err)
	}
}
