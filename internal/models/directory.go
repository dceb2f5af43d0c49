package models

import "time"

// Asset represents an IT asset in the inventory. The ID is the
// operator-assigned inventory tag.
type Asset struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"` // laptop, server, monitor, keyboard, ...
	LocationID     int64      `json:"location_id"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	WarrantyExpiry *time.Time `json:"warranty_expiry,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// BackupEligible reports whether this asset is expected to hold data worth
// protecting. Peripherals are excluded.
func (a *Asset) BackupEligible() bool {
	return a.Type != AssetTypeMonitor && a.Type != AssetTypeKeyboard
}

// AgeYears returns the asset age derived from its purchase date, or 0 when
// the purchase date is unknown.
func (a *Asset) AgeYears(now time.Time) float64 {
	if a.PurchaseDate == nil {
		return 0
	}
	return now.Sub(*a.PurchaseDate).Hours() / (24 * 365)
}

// Employee represents a staff member who can be assigned remediation tasks.
type Employee struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	LocationID int64     `json:"location_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Location represents a physical site.
type Location struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
