package events

import "time"

const TypeCatalogReloaded = "catalog.reloaded"

// CatalogEvent announces that a new index was swapped in.
type CatalogEvent struct {
	Type       string    `json:"type"`
	Source     string    `json:"source"`
	Movies     int       `json:"movies"`
	Vocabulary int       `json:"vocabulary"`
	At         time.Time `json:"at"`
}
