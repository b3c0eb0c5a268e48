package receipt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// extensionFor maps the declared mime type to an object name suffix.
func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// Archive uploads a scanned receipt image to GCS and returns its gs:// URI.
// Archival is best effort and happens after a successful scan; callers treat
// a failed upload as non-fatal. Assumes Application Default Credentials.
func Archive(ctx context.Context, bucketName string, image []byte, mimeType string) (string, error) {
	objectName := fmt.Sprintf("receipts/%s/%s%s",
		time.Now().Format("2006/01/02"), uuid.New().String(), extensionFor(mimeType))

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("Archive: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = mimeType

	if _, err := io.Copy(w, bytes.NewReader(image)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Archive: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Archive: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", bucketName, objectName), nil
}
