// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     api
// Description: HTTP client for the assistant backend
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"voicedesk/pkg/logging"
)

// API key names the backend knows about
const (
	KeyGemini     = "GEMINI_API_KEY"
	KeyAssemblyAI = "ASSEMBLYAI_API_KEY"
	KeyMurf       = "MURF_API_KEY"
)

// KeyNames lists the configurable API keys in display order
var KeyNames = []string{KeyGemini, KeyAssemblyAI, KeyMurf}

// allowedExtensions are the upload types the backend accepts
var allowedExtensions = map[string]bool{
	".csv":  true,
	".pdf":  true,
	".xls":  true,
	".xlsx": true,
}

// allowedMIMETypes mirrors the backend's accepted content types
var allowedMIMETypes = map[string]string{
	".csv":  "text/csv",
	".pdf":  "application/pdf",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Client talks to the assistant backend. Requests are never retried;
// every failure surfaces to the caller once.
type Client struct {
	baseURL    string
	httpClient *http.Client
	uploader   *http.Client
	log        *logging.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
}

// NewClient creates a backend client
func NewClient(cfg Config, log *logging.Logger) *Client {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout == 0 {
		requestTimeout = 60 * time.Second
	}
	uploadTimeout := cfg.UploadTimeout
	if uploadTimeout == 0 {
		uploadTimeout = 120 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		uploader:   &http.Client{Timeout: uploadTimeout},
		log:        log,
	}
}

// ChatResponse is the reply to a text chat request
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Audio    string `json:"audio,omitempty"`
	ChatID   string `json:"chat_id,omitempty"`
}

// Chat sends a text message and returns the assistant's reply
func (c *Client) Chat(ctx context.Context, message, chatID string) (*ChatResponse, error) {
	body := map[string]string{
		"message": message,
		"chat_id": chatID,
	}

	var resp ChatResponse
	if err := c.postJSON(ctx, "/chat", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadResponse describes an analyzed upload
type UploadResponse struct {
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	Shape      []int  `json:"shape,omitempty"`
	AIInsights string `json:"ai_insights"`
}

// ValidateUploadPath checks a file against the accepted types without
// touching the network.
func ValidateUploadPath(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedExtensions[ext] {
		return &ValidationError{
			Path:   path,
			Reason: fmt.Sprintf("unsupported file type %q, allowed: .csv, .pdf, .xls, .xlsx", ext),
		}
	}
	return nil
}

// Upload sends a file for analysis. The file type is validated before
// any request goes out.
func (c *Client) Upload(ctx context.Context, path string) (*UploadResponse, error) {
	if err := ValidateUploadPath(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(path)))
	header.Set("Content-Type", allowedMIMETypes[strings.ToLower(filepath.Ext(path))])

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Request-ID", uuid.NewString())

	httpResp, err := c.uploader.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(httpResp.StatusCode, data)
	}

	var resp UploadResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}

	c.log.Info("file uploaded", "filename", resp.Filename, "type", resp.FileType)
	return &resp, nil
}

// MultilingualResponse is the reply to a translated voice request
type MultilingualResponse struct {
	Success        bool   `json:"success"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	Audio          string `json:"audio,omitempty"`
	Error          string `json:"error,omitempty"`
}

// MultilingualVoice translates text and speaks it with a persona voice
func (c *Client) MultilingualVoice(ctx context.Context, text, targetLanguage, persona string) (*MultilingualResponse, error) {
	body := map[string]string{
		"text":            text,
		"target_language": targetLanguage,
		"persona":         persona,
	}

	var resp MultilingualResponse
	if err := c.postJSON(ctx, "/multilingual-voice", body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &APIError{Status: http.StatusOK, Message: resp.Error}
	}
	return &resp, nil
}

// KeyState describes one API key on the server
type KeyState struct {
	Configured bool   `json:"configured"`
	MaskedKey  string `json:"masked_key"`
}

// KeyStatus fetches which API keys the server has configured
func (c *Client) KeyStatus(ctx context.Context) (map[string]KeyState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/config/api-keys/status", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("key status request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read key status: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(httpResp.StatusCode, data)
	}

	var resp struct {
		Success bool                `json:"success"`
		APIKeys map[string]KeyState `json:"api_keys"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse key status: %w", err)
	}
	return resp.APIKeys, nil
}

// UpdateKeys submits new API key values. Empty values are stripped so
// an untouched input never clears a key on the server.
func (c *Client) UpdateKeys(ctx context.Context, keys map[string]string) error {
	payload := make(map[string]string)
	for name, value := range keys {
		if strings.TrimSpace(value) != "" {
			payload[name] = value
		}
	}
	if len(payload) == 0 {
		return fmt.Errorf("no API keys to update")
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.postJSON(ctx, "/config/api-keys", map[string]interface{}{"api_keys": payload}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &APIError{Status: http.StatusOK, Message: resp.Message}
	}

	c.log.Info("api keys updated", "count", len(payload))
	return nil
}

// postJSON sends a JSON body and decodes a JSON reply
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer httpResp.Body.Close()

	respData, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return decodeAPIError(httpResp.StatusCode, respData)
	}

	if err := json.Unmarshal(respData, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
