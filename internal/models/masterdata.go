// Package models defines the GORM-mapped DRIMS tables.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odpem/drims/pkg/record"
)

// Parish is read-only reference data seeded at install time.
type Parish struct {
	ParishCode string `gorm:"primaryKey;column:parish_code;type:char(2)" json:"parish_code"`
	ParishName string `gorm:"column:parish_name;type:varchar(40);not null" json:"parish_name"`
}

func (Parish) TableName() string { return "parish" }

// ItemCategory groups catalogue items.
type ItemCategory struct {
	CategoryID   int64  `gorm:"primaryKey;column:category_id;autoIncrement" json:"category_id"`
	CategoryCode string `gorm:"column:category_code;type:varchar(30);not null;uniqueIndex:uk_itemcatg_code" json:"category_code"`
	CategoryDesc string `gorm:"column:category_desc;type:varchar(60);not null" json:"category_desc"`
	CommentsText string `gorm:"column:comments_text;type:varchar(300)" json:"comments_text,omitempty"`
	StatusCode   string `gorm:"column:status_code;type:char(1);not null;default:A" json:"status_code"`
	record.Audit
	record.Version
}

func (ItemCategory) TableName() string { return "itemcatg" }

// UnitOfMeasure is keyed by its code.
type UnitOfMeasure struct {
	UOMCode      string `gorm:"primaryKey;column:uom_code;type:varchar(25)" json:"uom_code"`
	UOMDesc      string `gorm:"column:uom_desc;type:varchar(60);not null" json:"uom_desc"`
	CommentsText string `gorm:"column:comments_text;type:varchar(300)" json:"comments_text,omitempty"`
	StatusCode   string `gorm:"column:status_code;type:char(1);not null;default:A" json:"status_code"`
	record.Audit
	record.Version
}

func (UnitOfMeasure) TableName() string { return "unitofmeasure" }

// Event is a disaster relief event.
type Event struct {
	EventID    int64      `gorm:"primaryKey;column:event_id;autoIncrement" json:"event_id"`
	EventType  string     `gorm:"column:event_type;type:varchar(16);not null" json:"event_type"`
	StartDate  time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EventName  string     `gorm:"column:event_name;type:varchar(60);not null" json:"event_name"`
	EventDesc  string     `gorm:"column:event_desc;type:varchar(255);not null" json:"event_desc"`
	ImpactDesc string     `gorm:"column:impact_desc;type:text" json:"impact_desc,omitempty"`
	StatusCode string     `gorm:"column:status_code;type:char(1);not null;index" json:"status_code"`
	ClosedDate *time.Time `gorm:"column:closed_date" json:"closed_date,omitempty"`
	ReasonDesc string     `gorm:"column:reason_desc;type:varchar(255)" json:"reason_desc,omitempty"`
	record.Audit
	record.Version
}

func (Event) TableName() string { return "event" }

// EventTypes lists the accepted event_type values.
var EventTypes = []string{"STORM", "TORNADO", "FLOOD", "TSUNAMI", "FIRE", "EARTHQUAKE", "WAR", "EPIDEMIC"}

// Custodian is the government body responsible for a warehouse.
type Custodian struct {
	CustodianID   int64  `gorm:"primaryKey;column:custodian_id;autoIncrement" json:"custodian_id"`
	CustodianName string `gorm:"column:custodian_name;type:varchar(120);not null;uniqueIndex:uk_custodian_name" json:"custodian_name"`
	Address1Text  string `gorm:"column:address1_text;type:varchar(255)" json:"address1_text,omitempty"`
	ParishCode    string `gorm:"column:parish_code;type:char(2)" json:"parish_code,omitempty"`
	ContactName   string `gorm:"column:contact_name;type:varchar(50)" json:"contact_name,omitempty"`
	PhoneNo       string `gorm:"column:phone_no;type:varchar(20)" json:"phone_no,omitempty"`
	EmailText     string `gorm:"column:email_text;type:varchar(100)" json:"email_text,omitempty"`
	record.Audit
	record.Version
}

func (Custodian) TableName() string { return "custodian" }

// Warehouse stores relief inventory.
type Warehouse struct {
	WarehouseID   int64  `gorm:"primaryKey;column:warehouse_id;autoIncrement" json:"warehouse_id"`
	WarehouseName string `gorm:"column:warehouse_name;type:varchar(255);not null;uniqueIndex:uk_warehouse_name" json:"warehouse_name"`
	WarehouseType string `gorm:"column:warehouse_type;type:varchar(10);not null" json:"warehouse_type"`
	Address1Text  string `gorm:"column:address1_text;type:varchar(255)" json:"address1_text,omitempty"`
	ParishCode    string `gorm:"column:parish_code;type:char(2)" json:"parish_code,omitempty"`
	ContactName   string `gorm:"column:contact_name;type:varchar(50)" json:"contact_name,omitempty"`
	PhoneNo       string `gorm:"column:phone_no;type:varchar(20)" json:"phone_no,omitempty"`
	EmailText     string `gorm:"column:email_text;type:varchar(100)" json:"email_text,omitempty"`
	CustodianID   *int64 `gorm:"column:custodian_id" json:"custodian_id,omitempty"`
	StatusCode    string `gorm:"column:status_code;type:char(1);not null;index" json:"status_code"`
	ReasonDesc    string `gorm:"column:reason_desc;type:varchar(255)" json:"reason_desc,omitempty"`
	record.Audit
	record.Version
}

func (Warehouse) TableName() string { return "warehouse" }

// WarehouseTypes lists the accepted warehouse_type values.
var WarehouseTypes = []string{"MAIN-HUB", "SUB-HUB"}

// Item is a catalogue entry for a relief good.
type Item struct {
	ItemID         int64           `gorm:"primaryKey;column:item_id;autoIncrement" json:"item_id"`
	ItemCode       string          `gorm:"column:item_code;type:varchar(16);not null;uniqueIndex:uk_item_code" json:"item_code"`
	ItemName       string          `gorm:"column:item_name;type:varchar(60);not null;uniqueIndex:uk_item_name" json:"item_name"`
	SKUCode        string          `gorm:"column:sku_code;type:varchar(30);not null;uniqueIndex:uk_item_sku" json:"sku_code"`
	CategoryID     int64           `gorm:"column:category_id;not null;index" json:"category_id"`
	ItemDesc       string          `gorm:"column:item_desc;type:text" json:"item_desc,omitempty"`
	ReorderQty     decimal.Decimal `gorm:"column:reorder_qty;type:numeric(12,2);not null" json:"reorder_qty"`
	DefaultUOMCode string          `gorm:"column:default_uom_code;type:varchar(25);not null" json:"default_uom_code"`
	UsageDesc      string          `gorm:"column:usage_desc;type:text" json:"usage_desc,omitempty"`
	StorageDesc    string          `gorm:"column:storage_desc;type:text" json:"storage_desc,omitempty"`
	IsBatchedFlag  bool            `gorm:"column:is_batched_flag;not null;default:false" json:"is_batched_flag"`
	CanExpireFlag  bool            `gorm:"column:can_expire_flag;not null;default:false" json:"can_expire_flag"`
	StatusCode     string          `gorm:"column:status_code;type:char(1);not null;index" json:"status_code"`
	record.Audit
	record.Version
}

func (Item) TableName() string { return "item" }

// Donor gives goods to relief efforts.
type Donor struct {
	DonorID      int64  `gorm:"primaryKey;column:donor_id;autoIncrement" json:"donor_id"`
	DonorCode    string `gorm:"column:donor_code;type:varchar(16);not null;uniqueIndex:uk_donor_code" json:"donor_code"`
	DonorName    string `gorm:"column:donor_name;type:varchar(255);not null;uniqueIndex:uk_donor_name" json:"donor_name"`
	OrgTypeDesc  string `gorm:"column:org_type_desc;type:varchar(30)" json:"org_type_desc,omitempty"`
	Address1Text string `gorm:"column:address1_text;type:varchar(255)" json:"address1_text,omitempty"`
	PhoneNo      string `gorm:"column:phone_no;type:varchar(20)" json:"phone_no,omitempty"`
	EmailText    string `gorm:"column:email_text;type:varchar(100)" json:"email_text,omitempty"`
	record.Audit
	record.Version
}

func (Donor) TableName() string { return "donor" }

// Agency requests relief on behalf of beneficiaries.
type Agency struct {
	AgencyID     int64  `gorm:"primaryKey;column:agency_id;autoIncrement" json:"agency_id"`
	AgencyName   string `gorm:"column:agency_name;type:varchar(120);not null;uniqueIndex:uk_agency_name" json:"agency_name"`
	AgencyType   string `gorm:"column:agency_type;type:varchar(16);not null" json:"agency_type"`
	Address1Text string `gorm:"column:address1_text;type:varchar(255);not null" json:"address1_text"`
	ParishCode   string `gorm:"column:parish_code;type:char(2);not null" json:"parish_code"`
	ContactName  string `gorm:"column:contact_name;type:varchar(50);not null" json:"contact_name"`
	PhoneNo      string `gorm:"column:phone_no;type:varchar(20);not null" json:"phone_no"`
	EmailText    string `gorm:"column:email_text;type:varchar(100)" json:"email_text,omitempty"`
	WarehouseID  *int64 `gorm:"column:warehouse_id" json:"warehouse_id,omitempty"`
	StatusCode   string `gorm:"column:status_code;type:char(1);not null;default:A" json:"status_code"`
	record.Audit
	record.Version
}

func (Agency) TableName() string { return "agency" }

// AgencyTypes lists the accepted agency_type values.
var AgencyTypes = []string{"DISTRIBUTOR", "SHELTER"}
