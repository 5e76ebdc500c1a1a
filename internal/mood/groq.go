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
	"golang.org/x/time/rate"
)

// DefaultGroqModel is used when GROQ_MODEL is unset.
const DefaultGroqModel = "llama-3.3-70b-versatile"

const defaultOffensiveMessage = "Inappropriate content detected"

const systemPrompt = `You are a music therapist and mood analyst.

First, perform a STRICT SAFETY CHECK:
Analyze the user's input text for any offensive, explicit, hate speech, sexual, or harmful content.

If the input is OFFENSIVE, EXPLICIT, or HARMFUL:
Return ONLY this strict JSON object:
{
    "is_offensive": true,
    "error": "Our vibe check detected inappropriate content. Please keep it chill."
}

If the input is SAFE:
Analyze the user's emotional state and return this strict JSON object:
{
    "is_offensive": false,
    "emotion": "Detected Emotion (e.g., Happy, Melancholic, Energetic)",
    "confidence": "Confidence Level (e.g., 95%)",
    "songs": [
        {
            "track_name": "Song Title",
            "artists": "Artist Name",
            "valence": 0.5,
            "energy": 0.5,
            "track_genre": "Genre",
            "emotion_id": "emotion_label"
        }
    ]
}

Provide exactly 5 song recommendations that perfectly match the detected mood. Return ONLY JSON.`

// GroqConfig configures the text-mood client.
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	RPS     float64
	Timeout time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// GroqClient analyzes free text through an OpenAI-compatible chat
// completions endpoint.
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*models.MoodResult]
}

// NewGroqClient creates a client. An empty APIKey is accepted; Analyze then
// fails with ErrMissingAPIKey.
func NewGroqClient(cfg GroqConfig) *GroqClient {
	if cfg.Model == "" {
		cfg.Model = DefaultGroqModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	burst := int(cfg.RPS)
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GroqClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		cb:      newBreaker[*models.MoodResult](ServiceGroq, defaultBreakerSettings),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type analysis struct {
	IsOffensive bool      `json:"is_offensive"`
	Error       string    `json:"error"`
	Emotion     string    `json:"emotion"`
	Confidence  any       `json:"confidence"`
	Songs       []rawSong `json:"songs"`
}

// Analyze detects the mood of text and returns recommendations.
func (c *GroqClient) Analyze(ctx context.Context, text string) (*models.MoodResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("groq rate limit wait: %w", err)
	}

	ctx, span := observability.TraceUpstreamCall(ctx, ServiceGroq, "chat.completions")
	start := time.Now()
	result, err := c.cb.Execute(func() (*models.MoodResult, error) {
		return c.complete(ctx, text)
	})
	err = breakerErr(err)
	observability.ObserveUpstream(ServiceGroq, start, err)
	observability.EndSpan(span, err)
	return result, err
}

func (c *GroqClient) complete(ctx context.Context, text string) (*models.MoodResult, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.7,
	}
	reqBody.ResponseFormat.Type = "json_object"

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal groq request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build groq request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groq request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read groq response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("groq API error: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("decode groq response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("groq response has no choices")
	}

	var parsed analysis
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	if parsed.IsOffensive {
		msg := parsed.Error
		if msg == "" {
			msg = defaultOffensiveMessage
		}
		return nil, &RejectedError{Message: msg}
	}

	return &models.MoodResult{
		Emotion:    parsed.Emotion,
		Confidence: normalizeConfidence(parsed.Confidence),
		Songs:      convertSongs(parsed.Songs),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
