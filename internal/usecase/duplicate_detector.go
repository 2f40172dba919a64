package usecase

import (
	"manifest-service/internal/domain/entity"
	"manifest-service/pkg/utils"
)

// IsDuplicate reports whether candidate matches another completed record by
// passport number or by full name. Records with id excludeID are skipped.
// The result is advisory and never blocks a change.
func IsDuplicate(candidate entity.PassengerRecord, excludeID string, records []entity.PassengerRecord) bool {
	passport := utils.NormalizeUpper(candidate.PassportNumber)
	firstName := utils.NormalizeUpper(candidate.FirstName)
	lastName := utils.NormalizeUpper(candidate.LastName)
	hasNames := firstName != "" && lastName != ""

	if passport == "" && !hasNames {
		return false
	}

	for i := range records {
		other := &records[i]
		if other.ID == excludeID || other.Status != entity.StatusCompleted {
			continue
		}
		if passport != "" && utils.NormalizeUpper(other.PassportNumber) == passport {
			return true
		}
		if hasNames &&
			utils.NormalizeUpper(other.FirstName) == firstName &&
			utils.NormalizeUpper(other.LastName) == lastName {
			return true
		}
	}
	return false
}

// RefreshDuplicates recomputes IsDuplicate for every record in place.
// Callers pass a freshly copied slice, never one belonging to a committed snapshot.
func RefreshDuplicates(records []entity.PassengerRecord) {
	for i := range records {
		records[i].IsDuplicate = IsDuplicate(records[i], records[i].ID, records)
	}
}
