// Package vision captions images from Google Cloud Vision label detection.
package vision

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// DefaultMaxLabels is the number of labels requested per image.
const DefaultMaxLabels = 5

const annotateTimeout = 60 * time.Second

type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// LabelCaptioner turns the labels Vision detects into a one-line caption.
type LabelCaptioner struct {
	annotate  annotateFunc
	closer    func() error
	maxLabels int
}

// ClientOptions resolves credentials. An explicit file wins; otherwise
// GOOGLE_APPLICATION_CREDENTIALS_JSON may hold inline JSON or a path.
// With nothing set the client falls back to application default credentials.
func ClientOptions(credentialsFile string) []option.ClientOption {
	creds := strings.TrimSpace(credentialsFile)
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	}
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	opts := []option.ClientOption{}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

// NewLabelCaptioner dials the Vision API.
func NewLabelCaptioner(ctx context.Context, credentialsFile string, maxLabels int) (*LabelCaptioner, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptions(credentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	annotate := func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return client.BatchAnnotateImages(ctx, req)
	}
	return newLabelCaptioner(annotate, client.Close, maxLabels), nil
}

func newLabelCaptioner(annotate annotateFunc, closer func() error, maxLabels int) *LabelCaptioner {
	if maxLabels <= 0 {
		maxLabels = DefaultMaxLabels
	}
	return &LabelCaptioner{annotate: annotate, closer: closer, maxLabels: maxLabels}
}

// Close releases the underlying client.
func (c *LabelCaptioner) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

// Caption returns the detected labels as a sentence, e.g. "A photo showing person, yoga, stretching."
func (c *LabelCaptioner) Caption(ctx context.Context, path string, data []byte, _ string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image %s", path)
	}

	ctx, cancel := context.WithTimeout(ctx, annotateTimeout)
	defer cancel()

	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: data},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: int32(c.maxLabels)},
		},
	}

	resp, err := c.annotate(ctx, &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{req}})
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", fmt.Errorf("no vision response for %s", path)
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	caption := labelsCaption(r0.LabelAnnotations, c.maxLabels)
	if caption == "" {
		return "", fmt.Errorf("no labels detected for %s", path)
	}
	return caption, nil
}

func labelsCaption(annotations []*visionpb.EntityAnnotation, limit int) string {
	seen := make(map[string]bool)
	var labels []string
	for _, a := range annotations {
		if a == nil {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(a.Description))
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
		if len(labels) == limit {
			break
		}
	}
	if len(labels) == 0 {
		return ""
	}
	return "A photo showing " + strings.Join(labels, ", ") + "."
}
