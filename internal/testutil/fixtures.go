package testutil

import (
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/donorval"
	"github.com/dalemusser/donorhub/internal/domain/models"
)

// DonorFields returns a valid raw submission for the given names and national ID.
func DonorFields(first, last, nationalID string) donorval.Fields {
	return donorval.Fields{
		donorval.FieldFirstName:        first,
		donorval.FieldLastName:         last,
		donorval.FieldNationalID:       nationalID,
		donorval.FieldBirthDate:        "1990-05-17",
		donorval.FieldAddress:          "Calle Falsa 123",
		donorval.FieldPhone:            "1134567890",
		donorval.FieldHasDonatedBefore: "yes",
		donorval.FieldIsMarrowDonor:    "no",
	}
}

// DonorInput returns a valid, already-validated input.
func DonorInput(first, last, nationalID string) models.DonorInput {
	return models.DonorInput{
		FirstName:        first,
		LastName:         last,
		NationalID:       nationalID,
		BirthDate:        time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Address:          "Calle Falsa 123",
		Phone:            "1134567890",
		HasDonatedBefore: true,
		IsMarrowDonor:    false,
	}
}
