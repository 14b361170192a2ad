package model

import "time"

// Store is a canonical store identity record, keyed by StoreID.
// The catalog is maintained by an external system and read-only here.
type Store struct {
	StoreID   string `json:"store_id" yaml:"store_id"`
	StoreName string `json:"store_name" yaml:"store_name"`
	Region    string `json:"region" yaml:"region"`
	Province  string `json:"province" yaml:"province"`
	Channel   string `json:"channel" yaml:"channel"`
}

// DisplayAssignment says "this store is expected to have this model on
// display". At most one record exists per (StoreID, Model) pair; the owning
// catalog enforces that, not this engine.
type DisplayAssignment struct {
	StoreID     string    `json:"store_id" yaml:"store_id"`
	Model       string    `json:"model" yaml:"model"`
	IsDisplayed bool      `json:"is_displayed" yaml:"is_displayed"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// POSMRequirement defines one POSM code a model requires. The requirement
// index reduces these to a distinct-code count per model.
type POSMRequirement struct {
	Model    string `json:"model" yaml:"model"`
	POSMCode string `json:"posm_code" yaml:"posm_code"`
	POSMName string `json:"posm_name" yaml:"posm_name"`
}
