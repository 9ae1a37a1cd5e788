// Package donorval checks raw donor submissions and turns them into
// models.DonorInput. It has no side effects and never touches a store.
package donorval

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/domain/models"
)

// Field keys, shared by JSON bodies, forms and fieldErrors maps.
const (
	FieldFirstName        = "firstName"
	FieldLastName         = "lastName"
	FieldNationalID       = "nationalId"
	FieldBirthDate        = "birthDate"
	FieldAddress          = "address"
	FieldPhone            = "phone"
	FieldHasDonatedBefore = "hasDonatedBefore"
	FieldIsMarrowDonor    = "isMarrowDonor"
)

// Minimum lengths, counted in runes after trimming.
const (
	MinNameLen       = 2
	MinNationalIDLen = 7
	MinAddressLen    = 5
	MinPhoneLen      = 10
)

// DateLayouts are the accepted birth date formats, tried in order.
var DateLayouts = []string{"2006-01-02", "02/01/2006"}

// Fields is a raw submission keyed by the Field* constants.
type Fields map[string]string

var labels = map[string]string{
	FieldFirstName:        "First name",
	FieldLastName:         "Last name",
	FieldNationalID:       "National ID",
	FieldBirthDate:        "Birth date",
	FieldAddress:          "Address",
	FieldPhone:            "Phone",
	FieldHasDonatedBefore: "Has donated before",
	FieldIsMarrowDonor:    "Marrow donor",
}

// now is swapped in tests.
var now = time.Now

// Validate checks every field and returns the normalised input, or an
// *apperr.ValidationError listing every failing field.
func Validate(raw Fields) (models.DonorInput, error) {
	ve := apperr.NewValidationError()
	get := func(k string) string { return strings.TrimSpace(raw[k]) }

	in := models.DonorInput{
		FirstName:  get(FieldFirstName),
		LastName:   get(FieldLastName),
		NationalID: get(FieldNationalID),
		Address:    get(FieldAddress),
		Phone:      get(FieldPhone),
	}

	checkMinLen(ve, FieldFirstName, in.FirstName, MinNameLen, "characters")
	checkMinLen(ve, FieldLastName, in.LastName, MinNameLen, "characters")
	checkDigits(ve, FieldNationalID, in.NationalID, MinNationalIDLen)
	checkMinLen(ve, FieldAddress, in.Address, MinAddressLen, "characters")
	checkDigits(ve, FieldPhone, in.Phone, MinPhoneLen)

	if d, ok := parseBirthDate(ve, get(FieldBirthDate)); ok {
		in.BirthDate = d
	}
	in.HasDonatedBefore = parseYesNo(ve, FieldHasDonatedBefore, raw[FieldHasDonatedBefore])
	in.IsMarrowDonor = parseYesNo(ve, FieldIsMarrowDonor, raw[FieldIsMarrowDonor])

	if !ve.Empty() {
		return models.DonorInput{}, ve
	}
	return in, nil
}

func checkMinLen(ve *apperr.ValidationError, field, v string, min int, unit string) {
	if v == "" {
		ve.Add(field, labels[field]+" is required.")
		return
	}
	if utf8.RuneCountInString(v) < min {
		ve.Add(field, labels[field]+" must be at least "+strconv.Itoa(min)+" "+unit+".")
	}
}

// checkDigits reports a non-digit value in preference to a short one.
func checkDigits(ve *apperr.ValidationError, field, v string, min int) {
	if v == "" {
		ve.Add(field, labels[field]+" is required.")
		return
	}
	if !govalidator.IsNumeric(v) {
		ve.Add(field, labels[field]+" must contain only digits.")
		return
	}
	if len(v) < min {
		ve.Add(field, labels[field]+" must be at least "+strconv.Itoa(min)+" digits.")
	}
}

func parseBirthDate(ve *apperr.ValidationError, v string) (time.Time, bool) {
	if v == "" {
		ve.Add(FieldBirthDate, labels[FieldBirthDate]+" is required.")
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		// time.Parse rejects impossible dates such as 2023-02-30.
		d, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		if d.After(now().UTC()) {
			ve.Add(FieldBirthDate, labels[FieldBirthDate]+" cannot be in the future.")
			return time.Time{}, false
		}
		return d.UTC(), true
	}
	ve.Add(FieldBirthDate, labels[FieldBirthDate]+" must be a valid date.")
	return time.Time{}, false
}

// parseYesNo accepts exactly "yes" or "no"; case and padding variants are rejected.
func parseYesNo(ve *apperr.ValidationError, field, v string) bool {
	if !govalidator.IsIn(v, "yes", "no") {
		ve.Add(field, "Please select yes or no for "+strings.ToLower(labels[field])+".")
		return false
	}
	return v == "yes"
}
