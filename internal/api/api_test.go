package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emojimaker/server/internal/fault"
	"github.com/emojimaker/server/internal/generate"
	"github.com/emojimaker/server/internal/likes"
	"github.com/emojimaker/server/internal/storage/model"
)

const testSessionSecret = "test-session-secret"

type fakeGenerator struct {
	lastCaller string
	lastPrompt string
	res        *generate.Result
	err        error
}

func (f *fakeGenerator) Generate(_ context.Context, callerID, promptText string) (*generate.Result, error) {
	f.lastCaller = callerID
	f.lastPrompt = promptText
	return f.res, f.err
}

type fakeToggler struct {
	res *likes.Result
	err error
}

func (f *fakeToggler) Toggle(context.Context, string, int64) (*likes.Result, error) {
	return f.res, f.err
}

type fakeVerifier struct{ err error }

func (f *fakeVerifier) Verify(_ []byte, id, timestamp, signature string) error {
	if id == "" || timestamp == "" || signature == "" {
		return fault.New(fault.KindValidation, "Missing webhook signature headers")
	}
	return f.err
}

type fakeSink struct {
	handled bool
	err     error
}

func (f *fakeSink) Process(context.Context, []byte) (bool, error) {
	return f.handled, f.err
}

type fakeLister struct {
	listings []*model.EmojiListing
	err      error
}

func (f *fakeLister) ListEmojis(context.Context, string, int, int) ([]*model.EmojiListing, error) {
	return f.listings, f.err
}

func newTestAPI(deps Deps) *API {
	gin.SetMode(gin.TestMode)
	return NewAPI(context.Background(), zap.NewNop().Sugar(), NewConfig(0, testSessionSecret), deps)
}

func sessionFor(t *testing.T, userID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSessionSecret))
	require.NoError(t, err)
	return s
}

func do(a *API, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGenerate_RequiresSession(t *testing.T) {
	a := newTestAPI(Deps{Generator: &fakeGenerator{}})

	req := httptest.NewRequest(http.MethodPost, "/api/generate-emoji", strings.NewReader(`{"prompt":"cat"}`))
	w := do(a, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestGenerate_RejectsBadToken(t *testing.T) {
	a := newTestAPI(Deps{Generator: &fakeGenerator{}})

	req := httptest.NewRequest(http.MethodPost, "/api/generate-emoji", strings.NewReader(`{"prompt":"cat"}`))
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := do(a, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerate_MissingPrompt(t *testing.T) {
	g := &fakeGenerator{}
	a := newTestAPI(Deps{Generator: g})

	req := httptest.NewRequest(http.MethodPost, "/api/generate-emoji", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+sessionFor(t, "u1"))
	w := do(a, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, g.lastPrompt, "pipeline must not run")
}

func TestGenerate_Success(t *testing.T) {
	g := &fakeGenerator{res: &generate.Result{
		ImageURL:    "https://cdn.example.com/emojis/emoji_1.png",
		Base64Image: "data:image/png;base64,AAAA",
	}}
	a := newTestAPI(Deps{Generator: g})

	req := httptest.NewRequest(http.MethodPost, "/api/generate-emoji", strings.NewReader(`{"prompt":"cat wearing sunglasses"}`))
	req.Header.Set("Authorization", "Bearer "+sessionFor(t, "u1"))
	w := do(a, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, g.res.ImageURL, body["emoji"])
	assert.Equal(t, g.res.Base64Image, body["base64Image"])
	assert.Equal(t, "u1", g.lastCaller)
	assert.Equal(t, "cat wearing sunglasses", g.lastPrompt)
}

func TestGenerate_PipelineFailureStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fault.New(fault.KindValidation, "Prompt is required"), http.StatusBadRequest},
		{fault.New(fault.KindAuth, "Unauthorized"), http.StatusUnauthorized},
		{fault.New(fault.KindProvider, "Failed to generate emoji").WithDetail("boom"), http.StatusInternalServerError},
		{fault.New(fault.KindUnexpectedShape, "Unexpected output format"), http.StatusInternalServerError},
		{fault.New(fault.KindStorage, "Failed to upload emoji"), http.StatusInternalServerError},
		{fault.New(fault.KindPersistence, "Failed to save emoji data"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		a := newTestAPI(Deps{Generator: &fakeGenerator{err: tc.err}})

		req := httptest.NewRequest(http.MethodPost, "/api/generate-emoji", strings.NewReader(`{"prompt":"cat"}`))
		req.Header.Set("Authorization", "Bearer "+sessionFor(t, "u1"))
		w := do(a, req)

		assert.Equal(t, tc.status, w.Code, "for %s", tc.err)
		assert.Equal(t, false, decode(t, w)["success"])
	}
}

func TestLike_MissingEmojiID(t *testing.T) {
	a := newTestAPI(Deps{Toggler: &fakeToggler{}})

	req := httptest.NewRequest(http.MethodPost, "/api/like-emoji", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+sessionFor(t, "u2"))
	w := do(a, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLike_ToggleRoundTrip(t *testing.T) {
	tg := &fakeToggler{res: &likes.Result{LikesCount: 1, Liked: true}}
	a := newTestAPI(Deps{Toggler: tg})

	req := httptest.NewRequest(http.MethodPost, "/api/like-emoji", strings.NewReader(`{"emojiId":7}`))
	req.Header.Set("Authorization", "Bearer "+sessionFor(t, "u2"))
	w := do(a, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["likesCount"])
	assert.Equal(t, true, body["liked"])

	tg.res = &likes.Result{LikesCount: 0, Liked: false}
	req = httptest.NewRequest(http.MethodPost, "/api/like-emoji", strings.NewReader(`{"emojiId":7}`))
	req.Header.Set("Authorization", "Bearer "+sessionFor(t, "u2"))
	w = do(a, req)

	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.EqualValues(t, 0, body["likesCount"])
	assert.Equal(t, false, body["liked"])
}

func TestLike_UnknownEmojiIsBadRequest(t *testing.T) {
	tg := &fakeToggler{err: fault.New(fault.KindValidation, "Unknown emoji")}
	a := newTestAPI(Deps{Toggler: tg})

	req := httptest.NewRequest(http.MethodPost, "/api/like-emoji", strings.NewReader(`{"emojiId":99}`))
	req.Header.Set("Authorization", "Bearer "+sessionFor(t, "u2"))
	w := do(a, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_MissingHeaders(t *testing.T) {
	a := newTestAPI(Deps{Verifier: &fakeVerifier{}, Identity: &fakeSink{}})

	req := httptest.NewRequest(http.MethodPost, "/api/user", strings.NewReader(`{}`))
	w := do(a, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_BadSignature(t *testing.T) {
	a := newTestAPI(Deps{
		Verifier: &fakeVerifier{err: fault.New(fault.KindAuth, "Webhook signature mismatch")},
		Identity: &fakeSink{},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user", strings.NewReader(`{}`))
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", "123")
	req.Header.Set("svix-signature", "v1,bad")
	w := do(a, req)

	// Verification failures on the webhook are 400, not 401.
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_Acknowledgments(t *testing.T) {
	for _, handled := range []bool{true, false} {
		a := newTestAPI(Deps{Verifier: &fakeVerifier{}, Identity: &fakeSink{handled: handled}})

		req := httptest.NewRequest(http.MethodPost, "/api/user", strings.NewReader(`{"type":"user.created"}`))
		req.Header.Set("svix-id", "msg_1")
		req.Header.Set("svix-timestamp", "123")
		req.Header.Set("svix-signature", "v1,ok")
		w := do(a, req)

		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestListEmojis(t *testing.T) {
	l := &fakeLister{listings: []*model.EmojiListing{
		{Emoji: model.Emoji{ID: 2, ImageURL: "u2", Prompt: "dog", LikesCount: 3, CreatorUserID: "u1"}, Liked: true},
		{Emoji: model.Emoji{ID: 1, ImageURL: "u1", Prompt: "cat", CreatorUserID: "u1"}},
	}}
	a := newTestAPI(Deps{Catalog: l})

	req := httptest.NewRequest(http.MethodGet, "/api/emojis?limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+sessionFor(t, "u2"))
	w := do(a, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	emojis, ok := body["emojis"].([]interface{})
	require.True(t, ok)
	require.Len(t, emojis, 2)

	first := emojis[0].(map[string]interface{})
	assert.EqualValues(t, 2, first["id"])
	assert.Equal(t, true, first["liked"])
	assert.EqualValues(t, 3, first["likes_count"])
}

func TestSessionFromCookie(t *testing.T) {
	g := &fakeGenerator{res: &generate.Result{ImageURL: "u", Base64Image: "d"}}
	a := newTestAPI(Deps{Generator: g})

	req := httptest.NewRequest(http.MethodPost, "/api/generate-emoji", strings.NewReader(`{"prompt":"cat"}`))
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionFor(t, "u9")})
	w := do(a, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u9", g.lastCaller)
}
