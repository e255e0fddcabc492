package httpclient_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-homectl/internal/httpclient"
)

func TestNew(t *testing.T) {
	t.Parallel()

	client := httpclient.New()
	require.NotNil(t, client)
	require.NotNil(t, client.HTTPClient())
	assert.Equal(t, httpclient.DefaultTimeout, client.HTTPClient().Timeout)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		client := httpclient.New(httpclient.WithTimeout(10 * time.Second))
		assert.Equal(t, 10*time.Second, client.HTTPClient().Timeout)
	})

	t.Run("zero timeout keeps default", func(t *testing.T) {
		t.Parallel()

		client := httpclient.New(httpclient.WithTimeout(0))
		assert.Equal(t, httpclient.DefaultTimeout, client.HTTPClient().Timeout)
	})

	t.Run("http client", func(t *testing.T) {
		t.Parallel()

		custom := &http.Client{Timeout: 5 * time.Second}
		client := httpclient.New(httpclient.WithHTTPClient(custom))
		assert.Same(t, custom, client.HTTPClient())
	})
}

func TestWithCookieJar(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var sawSession bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("SESSION"); err == nil && cookie.Value == "abc" {
			mu.Lock()
			sawSession = true
			mu.Unlock()
		}
		http.SetCookie(w, &http.Cookie{Name: "SESSION", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	client := httpclient.New(httpclient.WithCookieJar(jar))

	for range 2 {
		req, _ := http.NewRequest(http.MethodPost, server.URL, http.NoBody)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, sawSession, "second request should carry the session cookie")
}

func TestMiddlewareChaining(t *testing.T) {
	t.Parallel()

	var order []string

	record := func(name string) httpclient.Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name+"-before")
				resp, err := next.RoundTrip(req)
				order = append(order, name+"-after")
				return resp, err
			})
		}
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "server")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.New(httpclient.WithMiddleware(record("outer"), record("inner")))

	req, _ := http.NewRequest(http.MethodPost, server.URL, http.NoBody)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, []string{
		"outer-before",
		"inner-before",
		"server",
		"inner-after",
		"outer-after",
	}, order)
}

func TestDo(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("test response"))
	}))
	defer server.Close()

	client := httpclient.New()
	req, _ := http.NewRequest(http.MethodGet, server.URL, http.NoBody)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "test response", string(body))
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func BenchmarkClient(b *testing.B) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	b.Run("NoMiddleware", func(b *testing.B) {
		client := httpclient.New()

		for b.Loop() {
			req, _ := http.NewRequest(http.MethodPost, server.URL, http.NoBody)
			resp, err := client.Do(req)
			if err != nil {
				b.Fatal(err)
			}
			resp.Body.Close()
		}
	})

	b.Run("WithMiddleware", func(b *testing.B) {
		noop := func(next http.RoundTripper) http.RoundTripper {
			return next
		}

		client := httpclient.New(httpclient.WithMiddleware(noop))

		for b.Loop() {
			req, _ := http.NewRequest(http.MethodPost, server.URL, http.NoBody)
			resp, err := client.Do(req)
			if err != nil {
				b.Fatal(err)
			}
			resp.Body.Close()
		}
	})
}
