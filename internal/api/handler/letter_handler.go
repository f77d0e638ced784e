package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
)

// LetterHandler handles correspondence record operations. The :direction
// path segment selects incoming or outgoing letters.
type LetterHandler struct {
	letters ports.LetterService
}

func NewLetterHandler(letters ports.LetterService) *LetterHandler {
	return &LetterHandler{letters: letters}
}

func pathDirection(c echo.Context) (domain.Direction, error) {
	d, ok := domain.ParseDirection(c.Param("direction"))
	if !ok {
		return "", echo.NewHTTPError(http.StatusBadRequest, "direction must be incoming or outgoing")
	}
	return d, nil
}

// Create registers a new letter with its uploaded document.
//
// @Summary      Register a letter
// @Tags         letters
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        direction    path      string  true  "incoming or outgoing"
// @Param        number       formData  string  true  "Letter number"
// @Param        counterpart  formData  string  true  "Sender (incoming) or recipient (outgoing)"
// @Param        date         formData  string  true  "Letter date (YYYY-MM-DD)"
// @Param        subject      formData  string  true  "Subject"
// @Param        file         formData  file    true  "Document (PDF, DOCX, or JPEG)"
// @Success      201  {object}  letterResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      415  {object}  errorResponse
// @Router       /v1/letters/{direction} [post]
func (h *LetterHandler) Create(c echo.Context) error {
	direction, err := pathDirection(c)
	if err != nil {
		return err
	}
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	form, date, err := bindLetterForm(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "document file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "cannot read uploaded file"})
	}
	defer file.Close()

	letter, err := h.letters.Create(c.Request().Context(), ports.CreateLetterInput{
		Direction:   direction,
		Number:      form.Number,
		Counterpart: form.Counterpart,
		Date:        date,
		Subject:     form.Subject,
		File: ports.FileUpload{
			Name:    fileHeader.Filename,
			Content: file,
		},
		Actor: actor,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toLetterResponse(letter))
}

// List returns a filtered, sorted, paginated page of letters. Members only
// see their own records.
//
// @Summary      List letters
// @Tags         letters
// @Produce      json
// @Security     BearerAuth
// @Param        direction   path   string  true   "incoming or outgoing"
// @Param        page        query  int     false  "Page (default 1)"
// @Param        limit       query  int     false  "Page size (default 10, max 100)"
// @Param        search      query  string  false  "Search term"
// @Param        search_by   query  string  false  "number, counterpart, or subject"
// @Param        start_date  query  string  false  "Lower date bound (YYYY-MM-DD)"
// @Param        end_date    query  string  false  "Upper date bound (YYYY-MM-DD)"
// @Param        sort_by     query  string  false  "number, counterpart, date, or subject"
// @Param        sort_order  query  string  false  "asc or desc"
// @Success      200  {object}  listLettersResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/letters/{direction} [get]
func (h *LetterHandler) List(c echo.Context) error {
	direction, err := pathDirection(c)
	if err != nil {
		return err
	}
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.letters.List(c.Request().Context(), ports.ListLettersInput{
		Direction: direction,
		Actor:     actor,
		Search:    c.QueryParam("search"),
		SearchBy:  c.QueryParam("search_by"),
		DateFrom:  queryDate(c, "start_date"),
		DateTo:    queryDate(c, "end_date"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return err
	}

	data := make([]letterResponse, 0, len(result.Items))
	for i := range result.Items {
		data = append(data, *toLetterResponse(&result.Items[i]))
	}
	return c.JSON(http.StatusOK, listLettersResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Get returns a single letter.
//
// @Summary      Get a letter
// @Tags         letters
// @Produce      json
// @Security     BearerAuth
// @Param        direction  path  string  true  "incoming or outgoing"
// @Param        id         path  string  true  "Letter id"
// @Success      200  {object}  letterResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/letters/{direction}/{id} [get]
func (h *LetterHandler) Get(c echo.Context) error {
	direction, err := pathDirection(c)
	if err != nil {
		return err
	}
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	letter, err := h.letters.Get(c.Request().Context(), actor, direction, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLetterResponse(letter))
}

// Update edits a letter; the document is replaced when a new file part is
// present.
//
// @Summary      Update a letter
// @Tags         letters
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        direction  path  string  true  "incoming or outgoing"
// @Param        id         path  string  true  "Letter id"
// @Success      200  {object}  letterResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/letters/{direction}/{id} [put]
func (h *LetterHandler) Update(c echo.Context) error {
	direction, err := pathDirection(c)
	if err != nil {
		return err
	}
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	form, date, err := bindLetterForm(c)
	if err != nil {
		return err
	}

	input := ports.UpdateLetterInput{
		ID:          c.Param("id"),
		Direction:   direction,
		Number:      form.Number,
		Counterpart: form.Counterpart,
		Date:        date,
		Subject:     form.Subject,
		Actor:       actor,
	}

	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "cannot read uploaded file"})
		}
		defer file.Close()
		input.File = &ports.FileUpload{
			Name:    fileHeader.Filename,
			Content: file,
		}
	}

	letter, err := h.letters.Update(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toLetterResponse(letter))
}

// Delete removes a letter and its stored document.
//
// @Summary      Delete a letter
// @Tags         letters
// @Security     BearerAuth
// @Param        direction  path  string  true  "incoming or outgoing"
// @Param        id         path  string  true  "Letter id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/letters/{direction}/{id} [delete]
func (h *LetterHandler) Delete(c echo.Context) error {
	direction, err := pathDirection(c)
	if err != nil {
		return err
	}
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.letters.Delete(c.Request().Context(), actor, direction, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Download streams the stored document as an attachment.
//
// @Summary      Download a letter's document
// @Tags         letters
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        direction  path  string  true  "incoming or outgoing"
// @Param        id         path  string  true  "Letter id"
// @Success      200
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/letters/{direction}/{id}/file [get]
func (h *LetterHandler) Download(c echo.Context) error {
	direction, err := pathDirection(c)
	if err != nil {
		return err
	}
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	path, name, err := h.letters.Download(c.Request().Context(), actor, direction, c.Param("id"))
	if err != nil {
		return err
	}
	return c.Attachment(path, name)
}

func bindLetterForm(c echo.Context) (*letterForm, time.Time, error) {
	var form letterForm
	if err := c.Bind(&form); err != nil {
		return nil, time.Time{}, c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&form); err != nil {
		return nil, time.Time{}, c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		return nil, time.Time{}, c.JSON(http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
	}
	return &form, date.UTC(), nil
}

// queryDate parses an optional date query parameter; unparseable values are
// ignored rather than rejected.
func queryDate(c echo.Context, name string) time.Time {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
