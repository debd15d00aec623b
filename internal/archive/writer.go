package archive

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/klauspost/compress/zip"
)

// Write packs optimized files into a new ZIP at their original paths.
// Files with empty content are left out.
func Write(files []models.OptimizedFile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	modified := time.Now()
	for _, f := range files {
		if f.Content == "" {
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("creating entry %s: %w", f.Name, err)
		}
		if _, err := w.Write([]byte(f.Content)); err != nil {
			return nil, fmt.Errorf("writing entry %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 encodes archive bytes for embedding in a JSON response.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
