package bootstrap

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"psenrich/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts a baseline cmdlet
// inventory when the table is empty.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedCmdlets(db); err != nil {
		return fmt.Errorf("seed cmdlets failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.Cmdlet{},
		&models.CmdletCard{},
		&models.EnrichmentJob{},
	}
}

// Baseline inventory, so a fresh install has something to enrich before the
// script importer registers real usage.
var defaultCmdlets = map[string]string{
	"Get-Process":       "Microsoft.PowerShell.Management",
	"Get-Service":       "Microsoft.PowerShell.Management",
	"Get-ChildItem":     "Microsoft.PowerShell.Management",
	"Get-Item":          "Microsoft.PowerShell.Management",
	"Get-Content":       "Microsoft.PowerShell.Management",
	"Set-Content":       "Microsoft.PowerShell.Management",
	"Copy-Item":         "Microsoft.PowerShell.Management",
	"Remove-Item":       "Microsoft.PowerShell.Management",
	"Test-Path":         "Microsoft.PowerShell.Management",
	"Get-Help":          "Microsoft.PowerShell.Core",
	"Get-Command":       "Microsoft.PowerShell.Core",
	"Get-Member":        "Microsoft.PowerShell.Utility",
	"Select-Object":     "Microsoft.PowerShell.Utility",
	"Where-Object":      "Microsoft.PowerShell.Core",
	"ForEach-Object":    "Microsoft.PowerShell.Core",
	"Sort-Object":       "Microsoft.PowerShell.Utility",
	"Export-Csv":        "Microsoft.PowerShell.Utility",
	"ConvertTo-Json":    "Microsoft.PowerShell.Utility",
	"Invoke-RestMethod": "Microsoft.PowerShell.Utility",
	"Invoke-WebRequest": "Microsoft.PowerShell.Utility",
}

func seedCmdlets(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Cmdlet{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for name, module := range defaultCmdlets {
			row := models.Cmdlet{
				Name:    name,
				NameKey: strings.ToLower(name),
				Module:  module,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
