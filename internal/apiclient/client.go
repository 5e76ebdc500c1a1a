// Package apiclient is a typed HTTP client for the community API. It backs
// the vibectl CLI and the optimistic dashboard in viewstate.
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moodmate/internal/models"
	"moodmate/internal/thread"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DefaultTimeout bounds every request when the caller does not supply a client.
const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", msg, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", msg, e.Status)
}

// Client talks to one API base URL, optionally as an authenticated user.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client. baseURL is the server root, e.g. http://localhost:8375.
// httpClient may be nil.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// WithToken returns a copy of c authenticating as token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// FeedQuery selects a page of the community feed.
type FeedQuery struct {
	Sort  string
	Query string
	Limit int
}

// VibeInput is the body of share and update requests.
type VibeInput struct {
	Emotion string   `json:"emotion"`
	Tagline *string  `json:"tagline,omitempty"`
	Links   []string `json:"links"`
}

// ProfileInput is the body of a profile update.
type ProfileInput struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope models.ErrorResponse
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Error
			apiErr.Details = envelope.Details
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Feed lists community vibes.
func (c *Client) Feed(ctx context.Context, q FeedQuery) ([]models.Playlist, error) {
	v := url.Values{}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	path := "/api/vibes"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out []models.Playlist
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Vibe fetches one vibe with its counts.
func (c *Client) Vibe(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	var out models.Playlist
	if err := c.do(ctx, http.MethodGet, "/api/vibes/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Share publishes a new vibe.
func (c *Client) Share(ctx context.Context, in VibeInput) (*models.Playlist, error) {
	var out models.Playlist
	if err := c.do(ctx, http.MethodPost, "/api/vibes", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateVibe replaces the editable fields of an owned vibe.
func (c *Client) UpdateVibe(ctx context.Context, id uuid.UUID, in VibeInput) (*models.Playlist, error) {
	var out models.Playlist
	if err := c.do(ctx, http.MethodPut, "/api/vibes/"+id.String(), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVibe removes an owned vibe with its comments and likes.
func (c *Client) DeleteVibe(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/vibes/"+id.String(), nil, nil)
}

// ToggleLike flips the caller's like on a vibe and returns the server truth.
func (c *Client) ToggleLike(ctx context.Context, id uuid.UUID) (models.LikeState, error) {
	var out models.LikeState
	if err := c.do(ctx, http.MethodPost, "/api/vibes/"+id.String()+"/like/toggle", nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

// ToggleCommentLike flips the caller's like on a comment.
func (c *Client) ToggleCommentLike(ctx context.Context, id uuid.UUID) (models.LikeState, error) {
	var out models.LikeState
	if err := c.do(ctx, http.MethodPost, "/api/comments/"+id.String()+"/like/toggle", nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Comments lists a vibe's comments oldest first.
func (c *Client) Comments(ctx context.Context, playlistID uuid.UUID) ([]models.Comment, error) {
	var out []models.Comment
	if err := c.do(ctx, http.MethodGet, "/api/vibes/"+playlistID.String()+"/comments", nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Thread fetches a vibe's comments as a reply tree.
func (c *Client) Thread(ctx context.Context, playlistID uuid.UUID) (thread.Tree, error) {
	var out thread.Tree
	if err := c.do(ctx, http.MethodGet, "/api/vibes/"+playlistID.String()+"/comments/thread", nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

// PostComment comments on a vibe, or replies when parentID is set.
func (c *Client) PostComment(ctx context.Context, playlistID uuid.UUID, content string, parentID *uuid.UUID) (*models.Comment, error) {
	body := struct {
		Content  string     `json:"content"`
		ParentID *uuid.UUID `json:"parent_id,omitempty"`
	}{content, parentID}
	var out models.Comment
	if err := c.do(ctx, http.MethodPost, "/api/vibes/"+playlistID.String()+"/comments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteComment removes an owned comment and its replies.
func (c *Client) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+id.String(), nil, nil)
}

// Quota reports the caller's monthly share usage.
func (c *Client) Quota(ctx context.Context) (models.QuotaStatus, error) {
	var out models.QuotaStatus
	if err := c.do(ctx, http.MethodGet, "/api/me/quota", nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Dashboard fetches the caller's own posts, likes and commented vibes.
func (c *Client) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var out models.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/me/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics returns the caller's emotion counts over the last days days;
// zero uses the server default.
func (c *Client) Analytics(ctx context.Context, days int) ([]models.EmotionCount, error) {
	path := "/api/me/analytics"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	var out []models.EmotionCount
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Profile fetches a public profile.
func (c *Client) Profile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile upserts the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileInput) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, http.MethodPut, "/api/profiles/me", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeText asks the server to detect the mood of text.
func (c *Client) AnalyzeText(ctx context.Context, text string) (*models.MoodResult, error) {
	var out models.MoodResult
	if err := c.do(ctx, http.MethodPost, "/api/analyze-text", map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FeatureFlags returns the raw flag configuration and its evaluation for the caller.
func (c *Client) FeatureFlags(ctx context.Context) (raw map[string]string, evaluated map[string]bool, err error) {
	var out struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/feature-flags", nil, &out); err != nil {
		return nil, nil, err
	}
	return out.Raw, out.Evaluated, nil
}

// WebsocketURL returns the ws:// or wss:// address of the event stream. The
// token travels as a query parameter since browsers cannot set headers on
// upgrades.
func (c *Client) WebsocketURL() (string, error) {
	u, err := url.Parse(c.baseURL + "/api/ws")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	if c.token != "" {
		q := u.Query()
		q.Set("token", c.token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
