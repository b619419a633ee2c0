package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/smartlist/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeExchanger struct {
	token *oauth2.Token
	err   error
}

func (f fakeExchanger) Exchange(context.Context, string) (*oauth2.Token, error) {
	return f.token, f.err
}

func callback(t *testing.T, h *OAuthHandler, query string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+query, nil))
	return rec
}

func TestOAuthHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := NewOAuthHandler(fakeExchanger{token: &oauth2.Token{AccessToken: "abc"}}, "state")
		assert.Equal(t, []string{"/callback"}, h.Routes())

		rec := callback(t, h, "state=state&code=xyz")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Spotify connected")
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

		res := <-h.Result()
		require.NoError(t, res.Error())
		assert.Equal(t, "abc", res.Token.AccessToken)
	})

	t.Run("only once", func(t *testing.T) {
		h := NewOAuthHandler(fakeExchanger{token: &oauth2.Token{AccessToken: "abc"}}, "state")
		callback(t, h, "state=state&code=xyz")
		rec := callback(t, h, "state=state&code=xyz")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Link already used")

		require.NoError(t, (<-h.Result()).Error())
		select {
		case extra := <-h.Result():
			t.Fatalf("second callback delivered a result: %+v", extra)
		default:
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		h := NewOAuthHandler(fakeExchanger{}, "state")
		assert.Equal(t, http.StatusBadRequest, callback(t, h, "state=other&code=xyz").Code)
		assert.ErrorIs(t, (<-h.Result()).Error(), shared.ErrAuthFailed)
	})

	t.Run("denied", func(t *testing.T) {
		h := NewOAuthHandler(fakeExchanger{}, "state")
		rec := callback(t, h, "state=state&error=access_denied")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "access_denied")

		res := <-h.Result()
		assert.ErrorIs(t, res.Error(), shared.ErrAuthFailed)
		assert.Nil(t, res.Token)
	})

	t.Run("exchange failure", func(t *testing.T) {
		boom := errors.New("boom")
		h := NewOAuthHandler(fakeExchanger{err: boom}, "state")
		assert.Equal(t, http.StatusBadGateway, callback(t, h, "state=state&code=xyz").Code)
		assert.ErrorIs(t, (<-h.Result()).Error(), boom)
	})

	t.Run("detail is escaped", func(t *testing.T) {
		h := NewOAuthHandler(fakeExchanger{}, "state")
		rec := callback(t, h, "state=state&error=%3Cscript%3E")
		assert.NotContains(t, rec.Body.String(), "<script>")
	})
}

func TestBasicRouter(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := NewBasicRouter()
	r.Use(mw("first"), mw("second"))
	r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, []string{"GET /ping"}, r.Patterns())
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(shared.DiscardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
