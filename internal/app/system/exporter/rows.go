// Package exporter renders donor lists as printable PDF tables or CSV files.
// It works on flat string rows and knows nothing about stores.
package exporter

import (
	"html"
	"strings"

	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
)

// Columns is the header row shared by every format.
var Columns = []string{
	"First name",
	"Last name",
	"National ID",
	"Phone",
	"Blood donor",
	"Marrow donor",
	"Registered",
}

// Row is one exported donor.
type Row struct {
	FirstName   string
	LastName    string
	NationalID  string
	Phone       string
	BloodDonor  string
	MarrowDonor string
	Registered  string // DD/MM/YYYY
}

// Values returns the cells in Columns order.
func (r Row) Values() []string {
	return []string{r.FirstName, r.LastName, r.NationalID, r.Phone, r.BloodDonor, r.MarrowDonor, r.Registered}
}

var strict = bluemonday.StrictPolicy()

// RowsFromDonors flattens donors in the order given. Free-text cells are
// stripped of markup so a PDF or spreadsheet never carries HTML.
func RowsFromDonors(donors []models.Donor) []Row {
	rows := make([]Row, 0, len(donors))
	for _, d := range donors {
		rows = append(rows, Row{
			FirstName:   plain(d.FirstName),
			LastName:    plain(d.LastName),
			NationalID:  d.NationalID,
			Phone:       d.Phone,
			BloodDonor:  yesNo(d.HasDonatedBefore),
			MarrowDonor: yesNo(d.IsMarrowDonor),
			Registered:  d.CreatedAt.Format("02/01/2006"),
		})
	}
	return rows
}

func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
