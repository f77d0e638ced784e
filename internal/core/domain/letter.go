package domain

import (
	"errors"
	"time"
)

// Direction distinguishes incoming correspondence (surat masuk) from
// outgoing correspondence (surat keluar).
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// ParseDirection maps a raw path segment to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirectionIncoming:
		return DirectionIncoming, true
	case DirectionOutgoing:
		return DirectionOutgoing, true
	}
	return "", false
}

var ErrLetterNotFound = errors.New("letter not found")
var ErrMissingResourceID = errors.New("missing resource identifier")
var ErrDuplicateLetter = errors.New("letter number already registered")
var ErrFileTypeNotAllowed = errors.New("file type not allowed")

// Letter is a single correspondence record. Counterpart is the sender for
// incoming letters and the recipient for outgoing ones; Date is the receive
// date or the letter date respectively.
type Letter struct {
	ID          string    `json:"id"`
	Direction   Direction `json:"direction"`
	Number      string    `json:"number"`
	Counterpart string    `json:"counterpart"`
	Date        time.Time `json:"date"`
	Subject     string    `json:"subject"`
	FileName    string    `json:"file_name"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
