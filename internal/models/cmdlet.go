package models

import "time"

// Cmdlet is one entry in the command inventory — the set of known PowerShell
// commands the enrichment job enumerates. NameKey is the lowercased name used
// for case-insensitive lookups; Name keeps the display casing.
type Cmdlet struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;size:200" json:"name"`
	NameKey   string    `gorm:"column:name_key;size:200;uniqueIndex:uniq_cmdlets_name_key" json:"-"`
	Module    string    `gorm:"column:module;size:200" json:"module"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Cmdlet) TableName() string {
	return "cmdlets"
}

// CmdletCard holds the enrichment output for one cmdlet name. Overwritten in
// place on re-enrichment, never versioned or deleted by the job.
type CmdletCard struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	Name         string    `gorm:"column:name;size:200" json:"name"`
	NameKey      string    `gorm:"column:name_key;size:200;uniqueIndex:uniq_cmdlet_cards_name_key" json:"-"`
	Description  string    `gorm:"column:description;type:text" json:"description"`
	HowTo        string    `gorm:"column:how_to;type:text" json:"howTo"`
	Parameters   JSONText  `gorm:"column:parameters;type:text" json:"parameters"`
	Examples     JSONText  `gorm:"column:examples;type:text" json:"examples"`
	SampleOutput string    `gorm:"column:sample_output;type:text" json:"sampleOutput"`
	Flags        JSONText  `gorm:"column:flags;type:text" json:"flags"`
	SourceURLs   JSONText  `gorm:"column:source_urls;type:text" json:"sourceUrls"`
	EnrichedAt   time.Time `gorm:"column:enriched_at" json:"enrichedAt"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (CmdletCard) TableName() string {
	return "cmdlet_cards"
}
