package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bizdir/company-api/internal/core/domain"
	"github.com/bizdir/company-api/internal/core/ports"
)

// Form field names for the two media slots. The first name of each pair is
// the one existing clients send.
var fileFields = map[string][]string{
	domain.SlotLogo:   {"logoUrl", "logo"},
	domain.SlotBanner: {"bannerUrl", "banner"},
}

// companyForm is the decoded multipart body shared by create and update.
type companyForm struct {
	fields ports.CompanyFields
	logo   *ports.FileInput
	banner *ports.FileInput
}

// parseCompanyForm reads the text fields and files of a company form. Text
// fields absent from the body stay nil so an update leaves them untouched.
func parseCompanyForm(c echo.Context) (*companyForm, error) {
	values, err := c.FormParams()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid form body")
	}

	f := &companyForm{}
	f.fields.Name = formString(values, "name")
	f.fields.Description = formString(values, "description")
	f.fields.Industry = formString(values, "industry")
	f.fields.Phone = formString(values, "phone")
	f.fields.Address = formString(values, "address")
	f.fields.Website = formString(values, "website")

	if raw := formString(values, "isVerified"); raw != nil && *raw != "" {
		v, err := strconv.ParseBool(*raw)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "isVerified must be true or false")
		}
		f.fields.IsVerified = &v
	}

	links, err := socialLinks(values)
	if err != nil {
		return nil, err
	}
	f.fields.SocialLinks = links

	if f.logo, err = formFile(c, fileFields[domain.SlotLogo]); err != nil {
		return nil, err
	}
	if f.banner, err = formFile(c, fileFields[domain.SlotBanner]); err != nil {
		return nil, err
	}
	return f, nil
}

func formString(values url.Values, key string) *string {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := strings.TrimSpace(vs[0])
	return &v
}

// socialLinks accepts either a JSON array in a single field or the field
// repeated once per link. A nil result means the field was not sent.
func socialLinks(values url.Values) ([]string, error) {
	vs, ok := values["socialLinks"]
	if !ok {
		return nil, nil
	}
	if len(vs) == 1 && strings.HasPrefix(strings.TrimSpace(vs[0]), "[") {
		var links []string
		if err := json.Unmarshal([]byte(vs[0]), &links); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "socialLinks must be a JSON array of URLs")
		}
		return compact(links), nil
	}
	return compact(vs), nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// formFile returns the first file sent under any of the given names, or nil.
func formFile(c echo.Context, names []string) (*ports.FileInput, error) {
	for _, name := range names {
		fh, err := c.FormFile(name)
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			continue
		}
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid file field "+name)
		}
		return fileInput(fh), nil
	}
	return nil, nil
}

func fileInput(fh *multipart.FileHeader) *ports.FileInput {
	return &ports.FileInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (f *companyForm) createView() *companyCreateForm {
	return &companyCreateForm{
		Name:        deref(f.fields.Name),
		Description: deref(f.fields.Description),
		Industry:    deref(f.fields.Industry),
		Phone:       deref(f.fields.Phone),
		Address:     deref(f.fields.Address),
		Website:     deref(f.fields.Website),
		SocialLinks: f.fields.SocialLinks,
	}
}

func (f *companyForm) updateView() *companyUpdateForm {
	return &companyUpdateForm{
		Name:        f.fields.Name,
		Description: f.fields.Description,
		Industry:    deref(f.fields.Industry),
		Phone:       deref(f.fields.Phone),
		Address:     deref(f.fields.Address),
		Website:     deref(f.fields.Website),
		SocialLinks: f.fields.SocialLinks,
	}
}
