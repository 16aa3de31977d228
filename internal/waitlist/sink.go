package waitlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// WebhookSink posts the payload as JSON to a spreadsheet webhook.
type WebhookSink struct {
	URL        string
	HTTPClient *http.Client
}

func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *WebhookSink) Forward(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(text))
	}

	return nil
}

// SheetsSink appends one row per entry to a Google spreadsheet.
type SheetsSink struct {
	svc     *sheets.Service
	sheetId string
	rng     string
}

// NewSheetsSink authenticates with a service account key file.
func NewSheetsSink(ctx context.Context, credentialsFile, sheetId, rng string) (*SheetsSink, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "read credentials")
	}

	conf, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, errors.Wrap(err, "parse credentials")
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, errors.Wrap(err, "create sheets service")
	}

	return NewSheetsSinkWithService(svc, sheetId, rng), nil
}

func NewSheetsSinkWithService(svc *sheets.Service, sheetId, rng string) *SheetsSink {
	return &SheetsSink{
		svc:     svc,
		sheetId: sheetId,
		rng:     rng,
	}
}

func (s *SheetsSink) Forward(ctx context.Context, p Payload) error {
	vr := &sheets.ValueRange{
		Values: [][]any{p.Row()},
	}

	_, err := s.svc.Spreadsheets.Values.Append(s.sheetId, s.rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return errors.Wrapf(err, "append to sheet %s", s.sheetId)
	}

	return nil
}

// NewSink picks the configured sink: the spreadsheet when a sheet id is set,
// else the webhook, else none.
func NewSink(ctx context.Context, webhookURL, sheetId, sheetRange, credentialsFile string) (Sink, error) {
	switch {
	case sheetId != "":
		sink, err := NewSheetsSink(ctx, credentialsFile, sheetId, sheetRange)
		if err != nil {
			return nil, fmt.Errorf("sheets sink: %w", err)
		}
		return sink, nil
	case webhookURL != "":
		return NewWebhookSink(webhookURL), nil
	}
	return nil, nil
}
