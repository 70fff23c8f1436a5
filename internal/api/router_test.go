package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
	"github.com/bizdir/company-api/internal/core/service"
	"github.com/bizdir/company-api/internal/infrastructure/http/handlers"
	"github.com/bizdir/company-api/internal/infrastructure/memory"
	"github.com/bizdir/company-api/internal/pkg/metrics"
	"github.com/bizdir/company-api/internal/pkg/password"
	"github.com/bizdir/company-api/internal/pkg/token"
)

type testApp struct {
	e         *echo.Echo
	users     *memory.UserRepository
	companies *memory.CompanyRepository
	media     *memory.MediaStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	users := memory.NewUserRepository()
	companies := memory.NewCompanyRepository()
	media := memory.NewMediaStore()
	codec, err := token.NewCodec("test-secret")
	require.NoError(t, err)
	hasher := password.NewHasher(password.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	log := zerolog.Nop()

	guard := service.NewGuard(companies, domain.DefaultQuotaPolicy)
	mediaSvc := service.NewMediaService(media, domain.DefaultUploadPolicies(), log)

	e := NewRouter(Dependencies{
		AuthService:    service.NewAuthService(users, codec, hasher, time.Hour, log),
		CompanyService: service.NewCompanyService(companies, guard, mediaSvc, nil, log),
		Resolver:       service.NewPrincipalResolver(users, codec, service.DefaultAuthScheme),
		Pingers: map[string]handlers.Pinger{
			"memory": handlers.PingFunc(func(context.Context) error { return nil }),
		},
		Logger: log,
	})
	return &testApp{e: e, users: users, companies: companies, media: media}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) register(t *testing.T, email string) (string, string) {
	t.Helper()
	body := `{"name":"Tester","email":"` + email + `","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := a.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func companyRequest(t *testing.T, method, target, tok string, fields map[string]string, logo []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if logo != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="logoUrl"; filename="logo.png"`)
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(logo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	return req
}

func decodeCompany(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

var acme = map[string]string{"name": "Acme", "description": "Widgets", "industry": "Manufacturing"}

func TestRouter_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	_, userID := app.register(t, "alice@x.com")

	login := func(pw string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
			strings.NewReader(`{"email":"alice@x.com","password":"`+pw+`"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		return app.do(req)
	}

	rec := login("secret1")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	me := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	me.Header.Set(echo.HeaderAuthorization, "Bearer "+resp.Token)
	meRec := app.do(me)
	require.Equal(t, http.StatusOK, meRec.Code)
	assert.Contains(t, meRec.Body.String(), `"id":"`+userID+`"`)

	rec = login("wrongpass")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, rec.Body.String())

	dup := httptest.NewRequest(http.MethodPost, "/api/v1/users/register",
		strings.NewReader(`{"name":"Again","email":"ALICE@x.com","password":"secret1"}`))
	dup.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusConflict, app.do(dup).Code)
}

func TestRouter_AuthRejections(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(companyRequest(t, http.MethodPost, "/api/v1/company", "", acme, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing authorization header"}`, rec.Body.String())

	rec = app.do(companyRequest(t, http.MethodPost, "/api/v1/company", "garbage", acme, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, total, err := app.companies.List(context.Background(), ports.ListCompaniesFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, app.media.Len(), "nothing may be uploaded for an unauthenticated request")
}

func TestRouter_FreeQuota(t *testing.T) {
	app := newTestApp(t)
	tok, userID := app.register(t, "free@x.com")

	for i := 0; i < 2; i++ {
		rec := app.do(companyRequest(t, http.MethodPost, "/api/v1/company", tok, acme, nil))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := app.do(companyRequest(t, http.MethodPost, "/api/v1/company", tok, acme, []byte("png")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"cannot create more than 2 companies"}`, rec.Body.String())
	assert.Zero(t, app.media.Len(), "a rejected creation must not upload media")

	require.NoError(t, app.users.SetRoles(userID, domain.RolePremium))
	rec = app.do(companyRequest(t, http.MethodPost, "/api/v1/company", tok, acme, nil))
	assert.Equal(t, http.StatusCreated, rec.Code, "premium lifts the limit")
}

func TestRouter_UpdateReplacesLogo(t *testing.T) {
	app := newTestApp(t)
	tok, _ := app.register(t, "owner@x.com")

	rec := app.do(companyRequest(t, http.MethodPost, "/api/v1/company", tok, acme, []byte("v1")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeCompany(t, rec)
	id := created["id"].(string)
	oldLogo := created["logoUrl"].(string)

	rec = app.do(companyRequest(t, http.MethodPut, "/api/v1/company/"+id, tok,
		map[string]string{"industry": "Retail"}, []byte("v2")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeCompany(t, rec)

	assert.NotEqual(t, oldLogo, updated["logoUrl"])
	assert.Equal(t, "Acme", updated["name"], "fields not sent keep their value")
	assert.Equal(t, "Retail", updated["industry"])

	destroyed := app.media.Destroyed()
	require.Len(t, destroyed, 1)
	assert.True(t, strings.HasSuffix(oldLogo, destroyed[0]))
	assert.Equal(t, 1, app.media.Len())

	rec = app.do(companyRequest(t, http.MethodPut, "/api/v1/company/"+id, tok,
		map[string]string{"industry": "Retail", "name": "", "description": "  "}, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	stored, err := app.companies.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.Name)
	assert.Equal(t, "Widgets", stored.Description)

	other, _ := app.register(t, "mallory@x.com")
	rec = app.do(companyRequest(t, http.MethodPut, "/api/v1/company/"+id, other,
		map[string]string{"industry": "Crime"}, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	get := httptest.NewRequest(http.MethodGet, "/api/v1/company/missing", nil)
	get.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	assert.Equal(t, http.StatusNotFound, app.do(get).Code)
}

func TestRouter_PublicListAndProbes(t *testing.T) {
	app := newTestApp(t)
	tok, _ := app.register(t, "lister@x.com")
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusCreated, app.do(companyRequest(t, http.MethodPost, "/api/v1/company", tok, acme, nil)).Code)
	}

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/v1/company?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data       []map[string]any `json:"data"`
		Pagination struct {
			Total      int64 `json:"total"`
			TotalPages int   `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)
	assert.Equal(t, int64(2), list.Pagination.Total)
	assert.Equal(t, 2, list.Pagination.TotalPages)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		assert.Equal(t, http.StatusOK, app.do(httptest.NewRequest(http.MethodGet, path, nil)).Code, path)
	}
}

func TestRouter_MetricsUseClientStatus(t *testing.T) {
	app := newTestApp(t)
	counter := func(code string) float64 {
		return testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/users/me", code))
	}
	before4xx, before5xx := counter("4xx"), counter("5xx")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, 1.0, counter("4xx")-before4xx)
	assert.Equal(t, 0.0, counter("5xx")-before5xx)
}
