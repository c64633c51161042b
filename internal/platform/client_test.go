package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicsim/internal/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/api/auth/register":
			assert.Equal(t, "casey@example.org", body["email"])
			assert.Equal(t, "Columbus", body["city"])
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"user":    map[string]string{"id": "u-1"},
			})
		case "/api/auth/login":
			assert.Equal(t, "casey@example.org", body["email"])
			assert.Equal(t, "pw", body["password"])
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"token":   "tok-1",
				"user":    map[string]string{"id": "u-1"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api/", time.Second)
	ctx := context.Background()

	id, err := client.Register(ctx, domain.Profile{Email: "casey@example.org", Password: "pw", City: "Columbus"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)

	session, err := client.Login(ctx, "casey@example.org", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.Session{UserID: "u-1", Token: "tok-1"}, session)
}

func TestRegisterRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "email already registered",
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Register(context.Background(), domain.Profile{})
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	assert.False(t, IsTransport(err))

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusConflict, pe.Status)
	assert.Equal(t, "email already registered", pe.Message)
}

func TestSuccessFalseWithOKStatusIsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"rate limited"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).LikePost(context.Background(), "tok", "p-1")
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	assert.Contains(t, err.Error(), "rate limited")
}

func TestCreatePostSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))
		var body struct {
			Content     string `json:"content"`
			IsPolitical bool   `json:"isPolitical"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Show up to the council meeting.", body.Content)
		assert.True(t, body.IsPolitical)
		_, _ = w.Write([]byte(`{"success":true,"post":{"id":"p-77"}}`))
	}))
	defer srv.Close()

	id, err := NewClient(srv.URL, time.Second).CreatePost(context.Background(), "tok-9", "Show up to the council meeting.", true)
	require.NoError(t, err)
	assert.Equal(t, "p-77", id)
}

func TestLikePostPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, time.Second).LikePost(context.Background(), "tok", "p-5"))
	assert.Equal(t, "/posts/p-5/like", gotPath)
}

func TestTrendingPostsAuthorShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/feed/trending", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"posts":[
			{"id":"p-1","content":"a","authorId":"u-1"},
			{"id":"p-2","content":"b","author":{"id":"u-2"}}
		]}`))
	}))
	defer srv.Close()

	posts, err := NewClient(srv.URL, time.Second).TrendingPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Post{
		{ID: "p-1", Content: "a", AuthorID: "u-1"},
		{ID: "p-2", Content: "b", AuthorID: "u-2"},
	}, posts)
}

func TestTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond).TrendingPosts(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestConnectionRefusedIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Login(context.Background(), "a", "b")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).TrendingPosts(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestLoginWithoutTokenIsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Login(context.Background(), "a", "b")
	assert.True(t, IsRejection(err))
}

func TestRejectionMessageTruncatesOnRuneBoundary(t *testing.T) {
	body := "x" + strings.Repeat("é", 150)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).LikePost(context.Background(), "tok", "p-1")
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.True(t, utf8.ValidString(pe.Message))
	assert.Equal(t, body, pe.Message)

	long := "x" + strings.Repeat("é", 250)
	msg := failureMessage(&envelope{}, []byte(long))
	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, maxMessageRunes, utf8.RuneCountInString(msg))
}
