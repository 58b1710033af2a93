package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSClient sends a text message to a phone number.
type SMSClient interface {
	SendSMS(ctx context.Context, to, body string) error
}

// TwilioClient sends SMS through the Twilio REST API. The API surface used
// here is one form-encoded POST, so no SDK is pulled in.
type TwilioClient struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
}

// TwilioConfig configures the Twilio client.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	// BaseURL overrides the Twilio API host; used in tests.
	BaseURL string
}

// NewTwilioClient constructs a Twilio SMS client.
func NewTwilioClient(cfg TwilioConfig) *TwilioClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.twilio.com"
	}

	return &TwilioClient{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendSMS sends a text message.
func (tc *TwilioClient) SendSMS(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", tc.baseURL, tc.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", tc.fromNumber)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}

	req.SetBasicAuth(tc.accountSID, tc.authToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sms provider returned status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}

// SendSMSOTP delivers the code to a phone number.
func (d *Dispatcher) SendSMSOTP(ctx context.Context, phone, code string) (err error) {
	ctx, span := d.startSpan(ctx, "SendSMSOTP")
	defer func() { d.endSpan(span, err) }()

	return d.sms.SendSMS(ctx, phone, fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code))
}
