package mediahost

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/formforge/formforge-backend/config"
)

const uploadFolder = "dynamic-forms"

// CloudinaryUploader uploads images to Cloudinary using the signed upload REST
// endpoint
type CloudinaryUploader struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

// NewCloudinaryUploader creates a new Cloudinary uploader from configuration
func NewCloudinaryUploader(cfg config.CloudinaryConfig) *CloudinaryUploader {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &CloudinaryUploader{
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		baseURL:   "https://api.cloudinary.com/v1_1",
		client:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether credentials are present
func (u *CloudinaryUploader) Configured() bool {
	return u.cloudName != "" && u.apiKey != "" && u.apiSecret != ""
}

// Upload pushes an image blob and returns its public URL. The public id is
// the filename without its extension.
func (u *CloudinaryUploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	if !u.Configured() {
		return "", errors.New("cloudinary is not configured")
	}

	publicID := strings.TrimSuffix(filename, extension(filename))
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature := u.sign(map[string]string{
		"folder":    uploadFolder,
		"public_id": publicID,
		"timestamp": timestamp,
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	fields := map[string]string{
		"api_key":   u.apiKey,
		"timestamp": timestamp,
		"signature": signature,
		"folder":    uploadFolder,
		"public_id": publicID,
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/image/upload", u.baseURL, u.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("cloudinary upload failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", err
	}
	if out.SecureURL == "" {
		return "", errors.New("cloudinary response missing secure_url")
	}
	return out.SecureURL, nil
}

// sign builds the SHA-1 request signature over the sorted parameter string
func (u *CloudinaryUploader) sign(params map[string]string) string {
	// Cloudinary signs "folder=...&public_id=...&timestamp=..." + api secret,
	// parameters in alphabetical order
	keys := []string{"folder", "public_id", "timestamp"}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	payload := strings.Join(parts, "&") + u.apiSecret
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return filename[idx:]
}
