package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type SMSConfig struct {
	// Gateway endpoint, e.g. https://api.mobizon.kz/service/message/sendsmsmessage
	GatewayURL string
	APIKey     string

	// Optional sender id
	Sender string
}

// SMSNotifier delivers verification codes through an HTTP SMS gateway
type SMSNotifier struct {
	client     *http.Client
	gatewayURL string
	apiKey     string
	sender     string
}

func NewSMS(cfg SMSConfig) *SMSNotifier {
	return &SMSNotifier{
		client:     &http.Client{Timeout: 10 * time.Second},
		gatewayURL: cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		sender:     cfg.Sender,
	}
}

type smsGatewayResponse struct {
	Code int `json:"code"`
	Data struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

func (n *SMSNotifier) Send(ctx context.Context, destination string, code string) error {
	form := url.Values{
		"apiKey":    {n.apiKey},
		"recipient": {destination},
		"text":      {fmt.Sprintf("Verification code: %s", code)},
	}
	if n.sender != "" {
		form.Set("from", n.sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.gatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("error while building sms request. Err: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("error while sending sms request. Err: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway responded with status %d", resp.StatusCode)
	}

	var result smsGatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("error while parsing sms gateway response. Err: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("sms gateway returned error code %d", result.Code)
	}

	return nil
}
