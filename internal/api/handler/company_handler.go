package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bizdir/company-api/internal/core/ports"
)

type CompanyHandler struct {
	companyService ports.CompanyService
}

func NewCompanyHandler(companyService ports.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Create registers a company for the authenticated user.
//
// @Summary      Create a company
// @Tags         companies
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        name         formData  string  true   "Company name"
// @Param        description  formData  string  true   "Description"
// @Param        industry     formData  string  true   "Industry"
// @Param        phone        formData  string  false  "Phone"
// @Param        address      formData  string  false  "Address"
// @Param        website      formData  string  false  "Website URL"
// @Param        socialLinks  formData  string  false  "JSON array of URLs"
// @Param        isVerified   formData  bool    false  "Verified flag"
// @Param        logoUrl      formData  file    false  "Logo image"
// @Param        bannerUrl    formData  file    false  "Banner image"
// @Success      201  {object}  companyResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /company [post]
func (h *CompanyHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	form, err := parseCompanyForm(c)
	if err != nil {
		return err
	}
	if err := c.Validate(form.createView()); err != nil {
		return err
	}

	company, err := h.companyService.Create(c.Request().Context(), principal, ports.CreateCompanyInput{
		Fields: form.fields,
		Logo:   form.logo,
		Banner: form.banner,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toCompanyResponse(company))
}

// Update modifies a company owned by the authenticated user. Fields left out
// of the form keep their stored value.
//
// @Summary      Update a company
// @Tags         companies
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true   "Company ID"
// @Param        industry     formData  string  true   "Industry"
// @Param        name         formData  string  false  "Company name"
// @Param        description  formData  string  false  "Description"
// @Param        website      formData  string  false  "Website URL"
// @Param        socialLinks  formData  string  false  "JSON array of URLs"
// @Param        logoUrl      formData  file    false  "Logo image"
// @Param        bannerUrl    formData  file    false  "Banner image"
// @Success      200  {object}  companyResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /company/{id} [put]
func (h *CompanyHandler) Update(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	form, err := parseCompanyForm(c)
	if err != nil {
		return err
	}
	if err := c.Validate(form.updateView()); err != nil {
		return err
	}

	company, err := h.companyService.Update(c.Request().Context(), principal, ports.UpdateCompanyInput{
		CompanyID: c.Param("id"),
		Fields:    form.fields,
		Logo:      form.logo,
		Banner:    form.banner,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCompanyResponse(company))
}

// GetOwned returns a company owned by the authenticated user.
//
// @Summary      Get a company
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  companyResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /company/{id} [get]
func (h *CompanyHandler) GetOwned(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	company, err := h.companyService.GetOwned(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toCompanyResponse(company))
}

// List returns the public, paginated company directory.
//
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 20, max 100)"
// @Success      200    {object}  listCompaniesResponse
// @Failure      400    {object}  errorResponse
// @Router       /company [get]
func (h *CompanyHandler) List(c echo.Context) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	res, err := h.companyService.List(c.Request().Context(), ports.ListCompaniesInput{Page: page, Limit: limit})
	if err != nil {
		return err
	}

	data := make([]companyResponse, 0, len(res.Items))
	for _, item := range res.Items {
		data = append(data, toCompanyResponse(item))
	}

	return c.JSON(http.StatusOK, listCompaniesResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      res.Total,
			Page:       res.Page,
			Limit:      res.Limit,
			TotalPages: res.TotalPages,
		},
	})
}

// queryInt parses an optional non-negative integer query parameter; absent
// means zero and lets the service apply its default.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}
