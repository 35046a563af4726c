package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CatalogRecord is one curated SKU-level product description. Rows sharing
// a model_number form a variant family; pci/upc distinguish the members.
// Curation happens elsewhere; this service only reads.
type CatalogRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ModelNumber string    `gorm:"column:model_number;not null;index" json:"model_number"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Brand       string    `gorm:"column:brand" json:"brand"`
	Category    string    `gorm:"column:category" json:"category"`
	ImageURL    string    `gorm:"column:image_url" json:"image_url"`

	PCI *string `gorm:"column:pci;index" json:"pci,omitempty"`
	UPC *string `gorm:"column:upc;index" json:"upc,omitempty"`

	Version *string `gorm:"column:version" json:"version,omitempty"`
	Color   *string `gorm:"column:color" json:"color,omitempty"`
	Variant *string `gorm:"column:variant" json:"variant,omitempty"`

	DropshipWarning bool    `gorm:"column:dropship_warning;not null;default:false" json:"dropship_warning"`
	RecallURL       *string `gorm:"column:recall_url" json:"recall_url,omitempty"`
	CoverageWarning bool    `gorm:"column:coverage_warning;not null;default:false" json:"coverage_warning"`

	Attributes datatypes.JSON `gorm:"column:attributes;type:jsonb" json:"attributes,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CatalogRecord) TableName() string { return "catalog_record" }
