package masterdata

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/filter"
	"github.com/odpem/drims/pkg/status"
)

var agencyFields = filter.Fields{
	"agency_id":    "agency_id",
	"agency_name":  "agency_name",
	"agency_type":  "agency_type",
	"parish_code":  "parish_code",
	"warehouse_id": "warehouse_id",
	"status_code":  "status_code",
}

var donorFields = filter.Fields{
	"donor_id":      "donor_id",
	"donor_code":    "donor_code",
	"donor_name":    "donor_name",
	"org_type_desc": "org_type_desc",
}

// AgencyInput is the editable part of an agency. Unlike warehouses, agencies
// must give a full address and contact.
type AgencyInput struct {
	AgencyName   string `json:"agency_name" validate:"required,max=120"`
	AgencyType   string `json:"agency_type" validate:"required,oneof=DISTRIBUTOR SHELTER"`
	Address1Text string `json:"address1_text" validate:"required,max=255"`
	ParishCode   string `json:"parish_code" validate:"required,len=2"`
	ContactName  string `json:"contact_name" validate:"required,max=50"`
	PhoneNo      string `json:"phone_no" validate:"required,max=20"`
	EmailText    string `json:"email_text" validate:"omitempty,email,max=100"`
	WarehouseID  *int64 `json:"warehouse_id" validate:"omitempty,gt=0"`
	StatusCode   string `json:"status_code" validate:"omitempty,oneof=A I"`
}

// AgencyUpdate is an edit of an existing agency.
type AgencyUpdate struct {
	AgencyInput
	VersionInput
}

// DonorInput is the editable part of a donor.
type DonorInput struct {
	DonorCode    string `json:"donor_code" validate:"required,max=16"`
	DonorName    string `json:"donor_name" validate:"required,max=255"`
	OrgTypeDesc  string `json:"org_type_desc" validate:"max=30"`
	Address1Text string `json:"address1_text" validate:"max=255"`
	PhoneNo      string `json:"phone_no" validate:"max=20"`
	EmailText    string `json:"email_text" validate:"omitempty,email,max=100"`
}

// DonorUpdate is an edit of an existing donor.
type DonorUpdate struct {
	DonorInput
	VersionInput
}

func (in *AgencyInput) apply(a *models.Agency) {
	a.AgencyName = upper(in.AgencyName)
	a.AgencyType = in.AgencyType
	a.Address1Text = strings.TrimSpace(in.Address1Text)
	a.ParishCode = in.ParishCode
	a.ContactName = upper(in.ContactName)
	a.PhoneNo = strings.TrimSpace(in.PhoneNo)
	a.EmailText = lower(in.EmailText)
	a.WarehouseID = in.WarehouseID
	a.StatusCode = in.StatusCode
	if a.StatusCode == "" {
		a.StatusCode = status.Active
	}
}

func (in *DonorInput) apply(d *models.Donor) {
	d.DonorCode = upper(in.DonorCode)
	d.DonorName = upper(in.DonorName)
	d.OrgTypeDesc = strings.TrimSpace(in.OrgTypeDesc)
	d.Address1Text = strings.TrimSpace(in.Address1Text)
	d.PhoneNo = strings.TrimSpace(in.PhoneNo)
	d.EmailText = lower(in.EmailText)
}

func (s *Store) checkAgency(ctx context.Context, tx *gorm.DB, a *models.Agency) error {
	if err := s.checkParish(ctx, tx, a.ParishCode); err != nil {
		return err
	}
	if a.WarehouseID != nil {
		found, err := repo.Exists(ctx, tx, &models.Warehouse{}, "warehouse_id = ?", *a.WarehouseID)
		if err != nil {
			return fmt.Errorf("look up warehouse: %w", err)
		}
		if !found {
			return httpio.Invalid("Unknown warehouse %d.", *a.WarehouseID)
		}
	}
	return repo.CheckUnique(s.unique.Tx(tx).AgencyName(ctx, a.AgencyName, a.AgencyID))
}

func (s *Store) checkDonor(ctx context.Context, tx *gorm.DB, d *models.Donor) error {
	v := s.unique.Tx(tx)
	if err := repo.CheckUnique(v.DonorCode(ctx, d.DonorCode, d.DonorID)); err != nil {
		return err
	}
	return repo.CheckUnique(v.DonorName(ctx, d.DonorName, d.DonorID))
}

// ListAgencies returns agencies by name.
func (s *Store) ListAgencies(ctx context.Context, opts ListOptions) ([]models.Agency, error) {
	q, err := repo.StatusFilter(s.db.Model(&models.Agency{}), opts.Status, activeStatuses, "all")
	if err != nil {
		return nil, err
	}
	return repo.List[models.Agency](ctx, q, opts.Filter, agencyFields, "agency_name")
}

// GetAgency returns one agency.
func (s *Store) GetAgency(ctx context.Context, id int64) (*models.Agency, error) {
	return repo.Get[models.Agency](ctx, s.db, id)
}

// CreateAgency registers an agency.
func (s *Store) CreateAgency(ctx context.Context, in *AgencyInput, actor string) (*models.Agency, error) {
	a := &models.Agency{}
	in.apply(a)
	err := repo.Create(ctx, s.db, &s.guard, a, actor, func(tx *gorm.DB) error {
		return s.checkAgency(ctx, tx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAgency edits an agency.
func (s *Store) UpdateAgency(ctx context.Context, id int64, in *AgencyUpdate, actor string) (*models.Agency, error) {
	return repo.Edit[models.Agency](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(tx *gorm.DB, a *models.Agency) error {
		in.apply(a)
		return s.checkAgency(ctx, tx, a)
	})
}

// ListDonors returns donors by name.
func (s *Store) ListDonors(ctx context.Context, opts ListOptions) ([]models.Donor, error) {
	return repo.List[models.Donor](ctx, s.db.Model(&models.Donor{}), opts.Filter, donorFields, "donor_name")
}

// CreateDonor registers a donor.
func (s *Store) CreateDonor(ctx context.Context, in *DonorInput, actor string) (*models.Donor, error) {
	d := &models.Donor{}
	in.apply(d)
	err := repo.Create(ctx, s.db, &s.guard, d, actor, func(tx *gorm.DB) error {
		return s.checkDonor(ctx, tx, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDonor edits a donor.
func (s *Store) UpdateDonor(ctx context.Context, id int64, in *DonorUpdate, actor string) (*models.Donor, error) {
	return repo.Edit[models.Donor](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(tx *gorm.DB, d *models.Donor) error {
		in.apply(d)
		return s.checkDonor(ctx, tx, d)
	})
}
