// internal/app/features/donors/types.go
package donors

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// donorView is the wire shape of a donor. BirthDate is YYYY-MM-DD.
type donorView struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	NationalID       string    `json:"nationalId"`
	BirthDate        string    `json:"birthDate"`
	Address          string    `json:"address"`
	Phone            string    `json:"phone"`
	HasDonatedBefore bool      `json:"hasDonatedBefore"`
	IsMarrowDonor    bool      `json:"isMarrowDonor"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toView(d models.Donor) donorView {
	return donorView{
		ID:               d.ID,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		NationalID:       d.NationalID,
		BirthDate:        d.BirthDate.Format("2006-01-02"),
		Address:          d.Address,
		Phone:            d.Phone,
		HasDonatedBefore: d.HasDonatedBefore,
		IsMarrowDonor:    d.IsMarrowDonor,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func toViews(ds []models.Donor) []donorView {
	out := make([]donorView, 0, len(ds))
	for _, d := range ds {
		out = append(out, toView(d))
	}
	return out
}

type listResponse struct {
	Success bool        `json:"success"`
	Donors  []donorView `json:"donors"`
}

type donorResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Donor   donorView `json:"donor"`
}

// donorID parses the {id} URL parameter. Anything that is not a positive
// integer cannot name a donor.
func donorID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func actor(r *http.Request) auditlog.Actor {
	username := ""
	if u, ok := auth.CurrentUser(r); ok {
		username = u.Username
	}
	return auditlog.ActorFromRequest(r, username)
}
