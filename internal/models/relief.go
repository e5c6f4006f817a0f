package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odpem/drims/pkg/record"
	"github.com/odpem/drims/pkg/status"
)

// Inventory is the stock of one item held in one warehouse.
type Inventory struct {
	InventoryID  int64           `gorm:"primaryKey;column:inventory_id;autoIncrement" json:"inventory_id"`
	WarehouseID  int64           `gorm:"column:warehouse_id;not null;uniqueIndex:uk_inventory_wh_item,priority:1" json:"warehouse_id"`
	ItemID       int64           `gorm:"column:item_id;not null;uniqueIndex:uk_inventory_wh_item,priority:2" json:"item_id"`
	UsableQty    decimal.Decimal `gorm:"column:usable_qty;type:numeric(12,2);not null" json:"usable_qty"`
	ReservedQty  decimal.Decimal `gorm:"column:reserved_qty;type:numeric(12,2);not null" json:"reserved_qty"`
	DefectiveQty decimal.Decimal `gorm:"column:defective_qty;type:numeric(12,2);not null" json:"defective_qty"`
	ExpiredQty   decimal.Decimal `gorm:"column:expired_qty;type:numeric(12,2);not null" json:"expired_qty"`
	UOMCode      string          `gorm:"column:uom_code;type:varchar(25);not null" json:"uom_code"`
	StatusCode   string          `gorm:"column:status_code;type:char(1);not null;index" json:"status_code"`
	CommentsText string          `gorm:"column:comments_text;type:text" json:"comments_text,omitempty"`
	record.Audit
	record.Version
}

func (Inventory) TableName() string { return "inventory" }

// Available is the quantity that can still be allocated.
func (i *Inventory) Available() decimal.Decimal {
	return i.UsableQty.Sub(i.ReservedQty)
}

// Transfer moves stock between two warehouses.
type Transfer struct {
	TransferID      int64           `gorm:"primaryKey;column:transfer_id;autoIncrement" json:"transfer_id"`
	FromWarehouseID int64           `gorm:"column:from_warehouse_id;not null" json:"from_warehouse_id"`
	ToWarehouseID   int64           `gorm:"column:to_warehouse_id;not null" json:"to_warehouse_id"`
	ItemID          int64           `gorm:"column:item_id;not null" json:"item_id"`
	ItemQty         decimal.Decimal `gorm:"column:item_qty;type:numeric(12,2);not null" json:"item_qty"`
	EventID         *int64          `gorm:"column:eligible_event_id" json:"event_id,omitempty"`
	TransferDate    time.Time       `gorm:"column:transfer_date;not null" json:"transfer_date"`
	ReasonText      string          `gorm:"column:reason_text;type:varchar(255)" json:"reason_text,omitempty"`
	StatusCode      string          `gorm:"column:status_code;type:char(1);not null" json:"status_code"`
	record.Audit
	record.Version
	record.Verification
}

func (Transfer) TableName() string { return "transfer" }

// ReliefRequest is an agency's request for relief goods.
type ReliefRequest struct {
	ReliefRqstID     int64                `gorm:"primaryKey;column:reliefrqst_id;autoIncrement" json:"reliefrqst_id"`
	AgencyID         int64                `gorm:"column:agency_id;not null;index" json:"agency_id"`
	RequestDate      time.Time            `gorm:"column:request_date;not null" json:"request_date"`
	UrgencyInd       string               `gorm:"column:urgency_ind;type:char(1);not null" json:"urgency_ind"`
	StatusCode       status.RequestStatus `gorm:"column:status_code;not null;index" json:"status_code"`
	EligibleEventID  *int64               `gorm:"column:eligible_event_id" json:"eligible_event_id,omitempty"`
	RqstNotesText    string               `gorm:"column:rqst_notes_text;type:text" json:"rqst_notes_text,omitempty"`
	ReviewNotesText  string               `gorm:"column:review_notes_text;type:text" json:"review_notes_text,omitempty"`
	StatusReasonDesc string               `gorm:"column:status_reason_desc;type:varchar(255)" json:"status_reason_desc,omitempty"`
	Items            []ReliefRequestItem  `gorm:"foreignKey:ReliefRqstID;references:ReliefRqstID" json:"items,omitempty"`
	record.Audit
	record.Version
	record.Verification
}

func (ReliefRequest) TableName() string { return "reliefrqst" }

// ReliefRequestItem is one requested line. It is keyed by request and item.
type ReliefRequestItem struct {
	ReliefRqstID     int64           `gorm:"primaryKey;column:reliefrqst_id;autoIncrement:false" json:"reliefrqst_id"`
	ItemID           int64           `gorm:"primaryKey;column:item_id;autoIncrement:false" json:"item_id"`
	RequestQty       decimal.Decimal `gorm:"column:request_qty;type:numeric(12,2);not null" json:"request_qty"`
	IssueQty         decimal.Decimal `gorm:"column:issue_qty;type:numeric(12,2);not null" json:"issue_qty"`
	UrgencyInd       string          `gorm:"column:urgency_ind;type:char(1);not null" json:"urgency_ind"`
	RqstReasonDesc   string          `gorm:"column:rqst_reason_desc;type:varchar(255)" json:"rqst_reason_desc,omitempty"`
	StatusCode       string          `gorm:"column:status_code;type:char(1);not null" json:"status_code"`
	StatusReasonDesc string          `gorm:"column:status_reason_desc;type:varchar(255)" json:"status_reason_desc,omitempty"`
	record.Version
}

func (ReliefRequestItem) TableName() string { return "reliefrqst_item" }

// Outstanding is what remains to be issued.
func (i *ReliefRequestItem) Outstanding() decimal.Decimal {
	out := i.RequestQty.Sub(i.IssueQty)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// ReliefPackage is a shipment prepared against a relief request.
type ReliefPackage struct {
	ReliefPkgID       int64               `gorm:"primaryKey;column:reliefpkg_id;autoIncrement" json:"reliefpkg_id"`
	ReliefRqstID      int64               `gorm:"column:reliefrqst_id;not null;index" json:"reliefrqst_id"`
	AgencyID          int64               `gorm:"column:agency_id;not null" json:"agency_id"`
	WarehouseID       int64               `gorm:"column:warehouse_id;not null" json:"warehouse_id"`
	StartDate         time.Time           `gorm:"column:start_date;not null" json:"start_date"`
	DispatchDtime     *time.Time          `gorm:"column:dispatch_dtime" json:"dispatch_dtime,omitempty"`
	TransportModeText string              `gorm:"column:transport_mode_text;type:varchar(255)" json:"transport_mode_text,omitempty"`
	CommentsText      string              `gorm:"column:comments_text;type:text" json:"comments_text,omitempty"`
	StatusCode        string              `gorm:"column:status_code;type:char(1);not null;index" json:"status_code"`
	Items             []ReliefPackageItem `gorm:"foreignKey:ReliefPkgID;references:ReliefPkgID" json:"items,omitempty"`
	record.Audit
	record.Version
	record.Verification
}

func (ReliefPackage) TableName() string { return "reliefpkg" }

// ReliefPackageItem is an allocation of inventory into a package.
type ReliefPackageItem struct {
	ReliefPkgItemID int64           `gorm:"primaryKey;column:reliefpkg_item_id;autoIncrement" json:"reliefpkg_item_id"`
	ReliefPkgID     int64           `gorm:"column:reliefpkg_id;not null;index" json:"reliefpkg_id"`
	InventoryID     int64           `gorm:"column:fr_inventory_id;not null" json:"inventory_id"`
	ItemID          int64           `gorm:"column:item_id;not null" json:"item_id"`
	ItemQty         decimal.Decimal `gorm:"column:item_qty;type:numeric(12,2);not null" json:"item_qty"`
	UOMCode         string          `gorm:"column:uom_code;type:varchar(25);not null" json:"uom_code"`
	record.Audit
	record.Version
}

func (ReliefPackageItem) TableName() string { return "reliefpkg_item" }

// All lists every model for migration, parents first.
func All() []any {
	return []any{
		&Parish{},
		&ItemCategory{},
		&UnitOfMeasure{},
		&Event{},
		&Custodian{},
		&Warehouse{},
		&Item{},
		&Donor{},
		&Agency{},
		&Inventory{},
		&Transfer{},
		&ReliefRequest{},
		&ReliefRequestItem{},
		&ReliefPackage{},
		&ReliefPackageItem{},
	}
}
