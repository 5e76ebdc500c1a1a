package mood

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moodmate/internal/models"
	"moodmate/internal/observability"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ClassifierClient forwards webcam frames to the emotion classifier.
type ClassifierClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[*models.MoodResult]
}

// NewClassifierClient creates a client for {baseURL}/predict_emotion.
func NewClassifierClient(baseURL string, timeout time.Duration, httpClient *http.Client) *ClassifierClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ClassifierClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    httpClient,
		cb:      newBreaker[*models.MoodResult](ServiceClassifier, defaultBreakerSettings),
	}
}

type classifierResponse struct {
	Emotion    string    `json:"emotion"`
	Confidence any       `json:"confidence"`
	Songs      []rawSong `json:"songs"`
	Error      string    `json:"error"`
}

// Predict classifies a base64 image.
func (c *ClassifierClient) Predict(ctx context.Context, imageBase64 string) (*models.MoodResult, error) {
	if strings.TrimSpace(imageBase64) == "" {
		return nil, ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := observability.TraceUpstreamCall(ctx, ServiceClassifier, "predict_emotion")
	start := time.Now()
	result, err := c.cb.Execute(func() (*models.MoodResult, error) {
		return c.predict(ctx, imageBase64)
	})
	err = breakerErr(err)
	observability.ObserveUpstream(ServiceClassifier, start, err)
	observability.EndSpan(span, err)
	return result, err
}

func (c *ClassifierClient) predict(ctx context.Context, imageBase64 string) (*models.MoodResult, error) {
	b, err := json.Marshal(map[string]string{"image": imageBase64})
	if err != nil {
		return nil, fmt.Errorf("marshal classifier request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict_emotion", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read classifier response: %w", err)
	}

	var parsed classifierResponse
	decodeErr := json.Unmarshal(body, &parsed)

	// 4xx means the frame itself was rejected.
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		msg := parsed.Error
		if decodeErr != nil || msg == "" {
			msg = fmt.Sprintf("classifier rejected the image (status %d)", resp.StatusCode)
		}
		return nil, &RejectedError{Message: msg}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("classifier error: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode classifier response: %w", decodeErr)
	}

	return &models.MoodResult{
		Emotion:    parsed.Emotion,
		Confidence: normalizeConfidence(parsed.Confidence),
		Songs:      convertSongs(parsed.Songs),
	}, nil
}
