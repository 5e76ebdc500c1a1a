package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractImage(t *testing.T) {
	t.Parallel()

	base, _ := url.Parse("https://open.spotify.com/playlist/abc")

	tests := []struct {
		name    string
		html    string
		want    string
		wantErr error
	}{
		{
			name: "og image",
			html: `<html><head><meta property="og:image" content="https://i.scdn.co/image/og.jpg"></head></html>`,
			want: "https://i.scdn.co/image/og.jpg",
		},
		{
			name: "content before property",
			html: `<meta content="https://img/x.png" property="og:image">`,
			want: "https://img/x.png",
		},
		{
			name: "twitter fallback",
			html: `<meta name="twitter:image" content="https://img/tw.png"><meta property="og:title" content="t">`,
			want: "https://img/tw.png",
		},
		{
			name: "og wins over twitter",
			html: `<meta name="twitter:image" content="https://img/tw.png"><meta property="og:image" content="https://img/og.png">`,
			want: "https://img/og.png",
		},
		{
			name: "relative resolved",
			html: `<meta property="og:image" content="/static/cover.jpg">`,
			want: "https://open.spotify.com/static/cover.jpg",
		},
		{
			name:    "empty content skipped",
			html:    `<meta property="og:image" content="  ">`,
			wantErr: ErrNoImage,
		},
		{
			name:    "none",
			html:    `<html><body>nothing</body></html>`,
			wantErr: ErrNoImage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractImage(strings.NewReader(tt.html), base)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScraper_FetchImage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`<meta property="og:image" content="/cover.png">`))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	s := NewScraper(srv.Client(), 50*time.Millisecond)

	img, err := s.FetchImage(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/cover.png", img)

	_, err = s.FetchImage(context.Background(), srv.URL+"/blocked")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.Code)

	_, err = s.FetchImage(context.Background(), srv.URL+"/slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
