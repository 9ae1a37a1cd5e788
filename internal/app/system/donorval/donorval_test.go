package donorval

import (
	"testing"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() Fields {
	return Fields{
		FieldFirstName:        "Ana",
		FieldLastName:         "Pérez",
		FieldNationalID:       "30123456",
		FieldBirthDate:        "1990-05-17",
		FieldAddress:          "Calle Falsa 123",
		FieldPhone:            "1134567890",
		FieldHasDonatedBefore: "yes",
		FieldIsMarrowDonor:    "no",
	}
}

func TestValidate_Valid(t *testing.T) {
	in, err := Validate(validFields())
	require.NoError(t, err)

	assert.Equal(t, "Ana", in.FirstName)
	assert.Equal(t, "30123456", in.NationalID)
	assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), in.BirthDate)
	assert.True(t, in.HasDonatedBefore)
	assert.False(t, in.IsMarrowDonor)
}

func TestValidate_TrimsAndAcceptsAlternateForms(t *testing.T) {
	f := validFields()
	f[FieldFirstName] = "  Ana  "
	f[FieldBirthDate] = "17/05/1990"
	f[FieldHasDonatedBefore] = " YES "

	in, err := Validate(f)
	require.NoError(t, err)

	assert.Equal(t, "Ana", in.FirstName)
	assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), in.BirthDate)
	assert.True(t, in.HasDonatedBefore)
}

func TestValidate_ReportsAllFieldsTogether(t *testing.T) {
	f := validFields()
	f[FieldFirstName] = "A"
	f[FieldNationalID] = "12ab"
	f[FieldAddress] = "abc"
	f[FieldPhone] = "123"

	_, err := Validate(f)
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok, "expected a ValidationError, got %v", err)

	assert.Len(t, ve.Fields, 4)
	assert.Contains(t, ve.Fields[FieldFirstName], "at least 2")
	assert.Contains(t, ve.Fields[FieldNationalID], "only digits")
	assert.Contains(t, ve.Fields[FieldAddress], "at least 5")
	assert.Contains(t, ve.Fields[FieldPhone], "at least 10")
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantMsg string
	}{
		{"missing first name", FieldFirstName, "", "First name is required."},
		{"whitespace last name", FieldLastName, "   ", "Last name is required."},
		{"short national id", FieldNationalID, "123456", "National ID must be at least 7 digits."},
		{"national id letters win over length", FieldNationalID, "12a", "National ID must contain only digits."},
		{"phone with dashes", FieldPhone, "11-3456-7890", "Phone must contain only digits."},
		{"impossible date", FieldBirthDate, "2023-02-30", "Birth date must be a valid date."},
		{"garbage date", FieldBirthDate, "yesterday", "Birth date must be a valid date."},
		{"future date", FieldBirthDate, "2999-01-01", "Birth date cannot be in the future."},
		{"missing date", FieldBirthDate, "", "Birth date is required."},
		{"short address", FieldAddress, "Av 1", "Address must be at least 5 characters."},
		{"bad yes/no", FieldHasDonatedBefore, "maybe", "Please select yes or no for has donated before."},
		{"missing marrow", FieldIsMarrowDonor, "", "Please select yes or no for marrow donor."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := validFields()
			f[tc.field] = tc.value

			_, err := Validate(f)
			ve, ok := apperr.AsValidation(err)
			require.True(t, ok, "expected a ValidationError, got %v", err)
			assert.Equal(t, tc.wantMsg, ve.Fields[tc.field])
			assert.Len(t, ve.Fields, 1)
		})
	}
}

func TestValidate_NameLengthCountsRunes(t *testing.T) {
	f := validFields()
	f[FieldLastName] = "Ñu"

	_, err := Validate(f)
	assert.NoError(t, err)
}

func TestValidate_YesNoIsExact(t *testing.T) {
	for _, v := range []string{"YES", "Yes", " no", "No ", "true", "1"} {
		t.Run(v, func(t *testing.T) {
			f := validFields()
			f[FieldIsMarrowDonor] = v

			_, err := Validate(f)
			ve, ok := apperr.AsValidation(err)
			require.True(t, ok, "expected a ValidationError for %q, got %v", v, err)
			assert.Equal(t, "Please select yes or no for marrow donor.", ve.Fields[FieldIsMarrowDonor])
		})
	}
}
