package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Service stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

type stubCompanyService struct {
	createFn   func(ctx context.Context, p domain.Principal, in ports.CreateCompanyInput) (*domain.Company, error)
	updateFn   func(ctx context.Context, p domain.Principal, in ports.UpdateCompanyInput) (*domain.Company, error)
	getOwnedFn func(ctx context.Context, p domain.Principal, id string) (*domain.Company, error)
	listFn     func(ctx context.Context, in ports.ListCompaniesInput) (*ports.ListCompaniesResult, error)
}

func (s *stubCompanyService) Create(ctx context.Context, p domain.Principal, in ports.CreateCompanyInput) (*domain.Company, error) {
	return s.createFn(ctx, p, in)
}

func (s *stubCompanyService) Update(ctx context.Context, p domain.Principal, in ports.UpdateCompanyInput) (*domain.Company, error) {
	return s.updateFn(ctx, p, in)
}

func (s *stubCompanyService) GetOwned(ctx context.Context, p domain.Principal, id string) (*domain.Company, error) {
	return s.getOwnedFn(ctx, p, id)
}

func (s *stubCompanyService) List(ctx context.Context, in ports.ListCompaniesInput) (*ports.ListCompaniesResult, error) {
	return s.listFn(ctx, in)
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

var alice = domain.Principal{ID: "user_1", Name: "Alice", Email: "a@x.com"}

// withPrincipal binds p to the request the same way the Auth middleware does.
func withPrincipal(req *http.Request, p domain.Principal) *http.Request {
	return req.WithContext(domain.WithPrincipal(req.Context(), p))
}

type formFileSpec struct {
	field       string
	filename    string
	contentType string
	body        []byte
}

// multipartRequest builds a multipart/form-data request. Repeated keys in
// fields are sent once per value.
func multipartRequest(t *testing.T, method, target string, fields map[string][]string, files ...formFileSpec) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(f.body); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	return he.Code
}
