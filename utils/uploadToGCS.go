package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC. Set GCS_CREDENTIALS_JSON to pass explicit credentials (e.g. locally).
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// GCSEnabled reports whether report archiving is configured.
func GCSEnabled() bool {
	return strings.TrimSpace(os.Getenv("GCS_BUCKET")) != ""
}

// UploadBytesToGCS writes data to GCS_BUCKET/objectName and returns the gs:// url.
func UploadBytesToGCS(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	bucketName := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucketName == "" {
		return "", errors.New("GCS_BUCKET is required")
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("failed to upload bytes to Google Cloud Storage: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}
	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), nil
}
