package handler

import (
	"time"

	"github.com/mapascal/records-system/internal/core/domain"
)

// letterForm is the multipart form for creating or editing a letter. The
// document itself arrives as the "file" part.
type letterForm struct {
	Number      string `form:"number"      validate:"required,max=100"`
	Counterpart string `form:"counterpart" validate:"required,max=100"`
	Date        string `form:"date"        validate:"required,datetime=2006-01-02"`
	Subject     string `form:"subject"     validate:"required"`
}

type letterResponse struct {
	ID          string    `json:"id"`
	Direction   string    `json:"direction"`
	Number      string    `json:"number"`
	Counterpart string    `json:"counterpart"`
	Date        string    `json:"date"`
	Subject     string    `json:"subject"`
	FileName    string    `json:"file_name"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toLetterResponse(l *domain.Letter) *letterResponse {
	if l == nil {
		return nil
	}
	return &letterResponse{
		ID:          l.ID,
		Direction:   string(l.Direction),
		Number:      l.Number,
		Counterpart: l.Counterpart,
		Date:        l.Date.UTC().Format("2006-01-02"),
		Subject:     l.Subject,
		FileName:    l.FileName,
		UploadedBy:  l.UploadedBy,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listLettersResponse struct {
	Data       []letterResponse   `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}
