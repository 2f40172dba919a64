// internal/domain/entity/passenger.go
package entity

import (
	"strconv"

	"github.com/google/uuid"
)

// PassengerType is the age bracket of a passenger
type PassengerType string

const (
	PassengerAdult  PassengerType = "ADULT"
	PassengerChild  PassengerType = "CHILD"
	PassengerInfant PassengerType = "INFANT"
)

// RecordStatus is the extraction state of a passenger record
type RecordStatus string

// Record Process Status
const (
	StatusPending    RecordStatus = "pending"
	StatusProcessing RecordStatus = "processing"
	StatusCompleted  RecordStatus = "completed"
	StatusError      RecordStatus = "error"
)

// PassengerRecord is one row of the manifest, created per document or manual entry.
// Date fields hold DD/MM/YYYY text, not parsed dates.
type PassengerRecord struct {
	ID             string        `json:"id"`
	PassengerType  PassengerType `json:"passengerType"`
	Title          string        `json:"title"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	PassportNumber string        `json:"passportNumber"`
	Nationality    string        `json:"nationality"`
	Gender         string        `json:"gender"`
	DateOfBirth    string        `json:"dateOfBirth"`
	IssueDate      string        `json:"issueDate"`
	ExpiryDate     string        `json:"expiryDate"`
	SourceFileName string        `json:"sourceFileName"`
	Status         RecordStatus  `json:"status"`
	ErrorMessage   string        `json:"errorMessage,omitempty"`
	IsDuplicate    bool          `json:"isDuplicate"`
}

// NewPassengerID returns a fresh opaque record id
func NewPassengerID() string {
	return uuid.NewString()
}

// PassengerField names a field of PassengerRecord as used by edits, sorting and filtering
type PassengerField string

const (
	FieldID             PassengerField = "id"
	FieldPassengerType  PassengerField = "passengerType"
	FieldTitle          PassengerField = "title"
	FieldFirstName      PassengerField = "firstName"
	FieldLastName       PassengerField = "lastName"
	FieldPassportNumber PassengerField = "passportNumber"
	FieldNationality    PassengerField = "nationality"
	FieldGender         PassengerField = "gender"
	FieldDateOfBirth    PassengerField = "dateOfBirth"
	FieldIssueDate      PassengerField = "issueDate"
	FieldExpiryDate     PassengerField = "expiryDate"
	FieldSourceFileName PassengerField = "sourceFileName"
	FieldStatus         PassengerField = "status"
	FieldErrorMessage   PassengerField = "errorMessage"
	FieldIsDuplicate    PassengerField = "isDuplicate"
)

// IsEditable reports whether users may set the field directly
func (f PassengerField) IsEditable() bool {
	switch f {
	case FieldTitle, FieldFirstName, FieldLastName, FieldPassportNumber,
		FieldNationality, FieldGender, FieldDateOfBirth, FieldIssueDate, FieldExpiryDate:
		return true
	}
	return false
}

// IsDate reports whether the field carries DD/MM/YYYY text
func (f PassengerField) IsDate() bool {
	return f == FieldDateOfBirth || f == FieldIssueDate || f == FieldExpiryDate
}

// Value returns the string form of a field. The second result is false for unknown fields.
func (r PassengerRecord) Value(field PassengerField) (string, bool) {
	switch field {
	case FieldID:
		return r.ID, true
	case FieldPassengerType:
		return string(r.PassengerType), true
	case FieldTitle:
		return r.Title, true
	case FieldFirstName:
		return r.FirstName, true
	case FieldLastName:
		return r.LastName, true
	case FieldPassportNumber:
		return r.PassportNumber, true
	case FieldNationality:
		return r.Nationality, true
	case FieldGender:
		return r.Gender, true
	case FieldDateOfBirth:
		return r.DateOfBirth, true
	case FieldIssueDate:
		return r.IssueDate, true
	case FieldExpiryDate:
		return r.ExpiryDate, true
	case FieldSourceFileName:
		return r.SourceFileName, true
	case FieldStatus:
		return string(r.Status), true
	case FieldErrorMessage:
		return r.ErrorMessage, true
	case FieldIsDuplicate:
		return strconv.FormatBool(r.IsDuplicate), true
	}
	return "", false
}

// Set assigns an editable field. It returns false when the field is not editable.
func (r *PassengerRecord) Set(field PassengerField, value string) bool {
	switch field {
	case FieldTitle:
		r.Title = value
	case FieldFirstName:
		r.FirstName = value
	case FieldLastName:
		r.LastName = value
	case FieldPassportNumber:
		r.PassportNumber = value
	case FieldNationality:
		r.Nationality = value
	case FieldGender:
		r.Gender = value
	case FieldDateOfBirth:
		r.DateOfBirth = value
	case FieldIssueDate:
		r.IssueDate = value
	case FieldExpiryDate:
		r.ExpiryDate = value
	default:
		return false
	}
	return true
}
