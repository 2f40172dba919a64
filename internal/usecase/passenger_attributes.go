package usecase

import (
	"strings"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/pkg/utils"
)

// PassengerAttributes are the values derived from birth date and gender
type PassengerAttributes struct {
	PassengerType entity.PassengerType
	Title         string
}

// DerivePassengerAttributes classifies a passenger by calendar age on now and
// picks the matching title. Unparseable birth dates yield an adult with no title.
func DerivePassengerAttributes(dateOfBirth, gender string, now time.Time) PassengerAttributes {
	dob, ok := utils.SplitManifestDate(dateOfBirth)
	if !ok {
		return PassengerAttributes{PassengerType: entity.PassengerAdult, Title: ""}
	}

	age := now.Year() - dob.Year
	month := int(now.Month())
	if month < dob.Month || (month == dob.Month && now.Day() < dob.Day) {
		age--
	}

	male := strings.EqualFold(strings.TrimSpace(gender), "MALE")

	switch {
	case age < 2:
		if male {
			return PassengerAttributes{PassengerType: entity.PassengerInfant, Title: "MSTR"}
		}
		return PassengerAttributes{PassengerType: entity.PassengerInfant, Title: "MISS"}
	case age < 12:
		// Children get the adult title table.
		return PassengerAttributes{PassengerType: entity.PassengerChild, Title: adultTitle(male, age)}
	default:
		return PassengerAttributes{PassengerType: entity.PassengerAdult, Title: adultTitle(male, age)}
	}
}

func adultTitle(male bool, age int) string {
	if male {
		return "MR"
	}
	if age > 30 {
		return "MRS"
	}
	return "MS"
}
