// internal/domain/models/donor.go
package models

import "time"

// Donor is a registered blood/bone-marrow donor.
//
// ID is an integer surrogate key assigned by the store; NationalID ("dni")
// is unique across all donors.
type Donor struct {
	ID               int64     `bson:"_id" json:"id"`
	FirstName        string    `bson:"first_name" json:"firstName"`
	LastName         string    `bson:"last_name" json:"lastName"`
	NationalID       string    `bson:"dni" json:"nationalId"`
	BirthDate        time.Time `bson:"birth_date" json:"birthDate"` // UTC midnight
	Address          string    `bson:"address" json:"address"`
	Phone            string    `bson:"phone" json:"phone"`
	HasDonatedBefore bool      `bson:"has_donated_before" json:"hasDonatedBefore"`
	IsMarrowDonor    bool      `bson:"is_marrow_donor" json:"isMarrowDonor"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DonorInput is the validated, mutable part of a Donor. It is what
// registration and edit hand to the repository.
type DonorInput struct {
	FirstName        string
	LastName         string
	NationalID       string
	BirthDate        time.Time
	Address          string
	Phone            string
	HasDonatedBefore bool
	IsMarrowDonor    bool
}

// Apply copies the input's fields onto d, leaving ID and CreatedAt alone.
func (in DonorInput) Apply(d *Donor) {
	d.FirstName = in.FirstName
	d.LastName = in.LastName
	d.NationalID = in.NationalID
	d.BirthDate = in.BirthDate
	d.Address = in.Address
	d.Phone = in.Phone
	d.HasDonatedBefore = in.HasDonatedBefore
	d.IsMarrowDonor = in.IsMarrowDonor
}
