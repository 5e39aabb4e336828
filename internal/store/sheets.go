package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrSheetsUnavailable = errors.New("sheets store is not configured")

type SheetsConfig struct {
	SpreadsheetID string
	AccessToken   string
	BaseURL       string
	Range         string
	Timeout       time.Duration
	MaxRetries    int
	HTTPClient    *http.Client
}

// SheetsStore appends rows through the Google Sheets values:append endpoint.
// This is the primary production backend.
type SheetsStore struct {
	spreadsheetID string
	accessToken   string
	baseURL       string
	writeRange    string
	timeout       time.Duration
	maxRetries    int
	httpClient    *http.Client
}

func NewSheetsStore(cfg SheetsConfig) *SheetsStore {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://sheets.googleapis.com"
	}
	if strings.TrimSpace(cfg.Range) == "" {
		cfg.Range = "Sheet1!A1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &SheetsStore{
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		accessToken:   strings.TrimSpace(cfg.AccessToken),
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		writeRange:    cfg.Range,
		timeout:       cfg.Timeout,
		maxRetries:    cfg.MaxRetries,
		httpClient:    cfg.HTTPClient,
	}
}

func (s *SheetsStore) Available() bool {
	return s.spreadsheetID != "" && s.accessToken != ""
}

func (s *SheetsStore) AppendRow(ctx context.Context, cells []string) error {
	if !s.Available() {
		return ErrSheetsUnavailable
	}

	payload, err := json.Marshal(map[string]any{
		"values": [][]string{cells},
	})
	if err != nil {
		return fmt.Errorf("encode append body: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(time.Duration(attempt) * 200 * time.Millisecond)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = s.callAppendAPI(ctx, payload)
		if lastErr == nil {
			return nil
		}
		if !isRetryableSheetsError(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (s *SheetsStore) callAppendAPI(ctx context.Context, payload []byte) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf(
		"%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		s.baseURL,
		s.spreadsheetID,
		s.writeRange,
	)
	request, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create append request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+s.accessToken)
	request.Header.Set("Content-Type", "application/json")

	response, err := s.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("sheets transport error: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		body, _ := io.ReadAll(response.Body)
		message := strings.TrimSpace(string(body))
		if len(message) > 500 {
			message = message[:500]
		}
		return &sheetsHTTPError{StatusCode: response.StatusCode, Message: message}
	}
	return nil
}

type sheetsHTTPError struct {
	StatusCode int
	Message    string
}

func (e *sheetsHTTPError) Error() string {
	return fmt.Sprintf("sheets status %d: %s", e.StatusCode, e.Message)
}

func isRetryableSheetsError(err error) bool {
	var httpErr *sheetsHTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
