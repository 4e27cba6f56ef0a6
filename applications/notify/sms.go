package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// StatusSuccess is the gateway status reported for a delivered message.
const StatusSuccess = "success"

// StatusFailed is reported when the call never produced a gateway status.
const StatusFailed = "failed"

// StatusMock is reported when no token is configured and nothing was sent.
const StatusMock = "mock"

// ---- SMS gateway payloads ----

type smsRequest struct {
	Recipient string `json:"recipient"`
	SenderID  string `json:"sender_id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

// Result is the gateway's answer, or a synthesized failure.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r Result) OK() bool { return r.Status == StatusSuccess }

// Sender delivers a welcome message to an attendee's phone.
type Sender interface {
	Send(ctx context.Context, phone, name string) Result
}

type Options struct {
	APIURL    string
	Token     string
	SenderID  string
	EventName string
	Timeout   time.Duration
}

// SMSNotifier posts welcome messages to the SMS gateway with a bearer token.
// With no token configured it only logs the message and reports StatusMock,
// which callers treat as undelivered.
type SMSNotifier struct {
	log    *slog.Logger
	opts   Options
	client *http.Client
}

func NewSMSNotifier(log *slog.Logger, opts Options) *SMSNotifier {
	if opts.Token == "" {
		log.Warn("[notify] SMS_API_TOKEN is not set, messages will be logged instead of sent.")
	}
	return &SMSNotifier{
		log:    log,
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// WelcomeMessage is the text sent to a newly registered or arriving attendee.
func WelcomeMessage(eventName, name string) string {
	return fmt.Sprintf("Hi %s, Welcome to %s! We are glad to have you onboard. Please enjoy the event!", name, eventName)
}

// Send makes one synchronous call to the gateway. It never returns an error:
// every failure is folded into the Result.
func (n *SMSNotifier) Send(ctx context.Context, phone, name string) Result {
	message := WelcomeMessage(n.opts.EventName, name)

	if n.opts.Token == "" {
		n.log.Warn("[notify] Missing SMS_API_TOKEN, mock SMS triggered.")
		n.log.Info(fmt.Sprintf("[notify] MOCK SMS to %s: %s", phone, message))
		return Result{Status: StatusMock, Message: "mock delivery"}
	}

	body, err := json.Marshal(smsRequest{
		Recipient: phone,
		SenderID:  n.opts.SenderID,
		Type:      "plain",
		Message:   message,
	})
	if err != nil {
		return n.fail(phone, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.opts.APIURL, bytes.NewReader(body))
	if err != nil {
		return n.fail(phone, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+n.opts.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return n.fail(phone, fmt.Errorf("failed to send SMS: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return n.fail(phone, fmt.Errorf("read response: %w", err))
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		if resp.StatusCode >= 300 {
			return n.fail(phone, fmt.Errorf("SMS API error: %s", resp.Status))
		}
		return n.fail(phone, fmt.Errorf("decode response: %w", err))
	}
	if resp.StatusCode >= 300 && result.Status == StatusSuccess {
		result.Status = StatusFailed
	}
	if result.Status == "" {
		result.Status = StatusFailed
	}
	if !result.OK() && result.Message == "" {
		result.Message = fmt.Sprintf("SMS API error: %s", resp.Status)
	}

	n.log.Info(fmt.Sprintf("[notify] SMS API response for %s: status=%s message=%q", phone, result.Status, result.Message))
	return result
}

func (n *SMSNotifier) fail(phone string, err error) Result {
	n.log.Error(fmt.Sprintf("[notify] Error sending SMS to %s: %v", phone, err))
	return Result{Status: StatusFailed, Message: err.Error()}
}
