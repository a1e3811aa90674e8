// Package ocr provides receipt text recognition backed by Cloud Vision.
package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// Vision recognizes text in receipt photos via the Cloud Vision API.
type Vision struct {
	svc    *vision.Service
	logger *slog.Logger
}

// NewVision creates a Vision recognizer using the given authenticated client.
func NewVision(httpClient *http.Client, logger *slog.Logger) (*Vision, error) {
	if logger == nil {
		logger = slog.Default()
	}

	svc, err := vision.NewService(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating vision service: %w", err)
	}

	return &Vision{svc: svc, logger: logger}, nil
}

// Recognize returns the text found in the image, or "" when the image holds
// nothing recognizable. The caller decides how to handle an empty result.
func (v *Vision) Recognize(ctx context.Context, image []byte) (string, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{
				Content: base64.StdEncoding.EncodeToString(image),
			},
			Features: []*vision.Feature{{Type: "TEXT_DETECTION"}},
		}},
	}

	resp, err := v.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("annotating image: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", nil
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return "", fmt.Errorf("vision API error: %s", r.Error.Message)
	}

	if r.FullTextAnnotation != nil {
		return r.FullTextAnnotation.Text, nil
	}
	if len(r.TextAnnotations) > 0 {
		return r.TextAnnotations[0].Description, nil
	}

	v.logger.Debug("no text recognized in image", "bytes", len(image))
	return "", nil
}
