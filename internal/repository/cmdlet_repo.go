package repository

import (
	"time"

	"gorm.io/gorm"

	"psenrich/internal/models"
)

// CmdletRepository reads the command inventory the enrichment job enumerates.
type CmdletRepository struct {
	db *gorm.DB
}

func NewCmdletRepository(db *gorm.DB) *CmdletRepository {
	return &CmdletRepository{db: db}
}

// ListWorkNames resolves the distinct cmdlet names matching a start request,
// in inventory (id) order so a given inventory always yields the same work
// list. Freshness policy:
//   - default: only cmdlets with no card at all
//   - stale:   also cmdlets whose card is older than staleAfter
//   - force:   everything matching the name filters
func (r *CmdletRepository) ListWorkNames(req models.EnrichRequest, staleAfter time.Duration) ([]string, error) {
	q := r.db.Model(&models.Cmdlet{}).Order("cmdlets.id ASC")

	if req.Prefix != "" {
		q = q.Where("cmdlets.name_key LIKE ?", NameKey(req.Prefix)+"%")
	}
	if len(req.Names) > 0 {
		keys := make([]string, 0, len(req.Names))
		for _, n := range req.Names {
			if k := NameKey(n); k != "" {
				keys = append(keys, k)
			}
		}
		q = q.Where("cmdlets.name_key IN ?", keys)
	}

	if !req.Force {
		q = q.Joins("LEFT JOIN cmdlet_cards ON cmdlet_cards.name_key = cmdlets.name_key")
		if req.Stale {
			cutoff := time.Now().Add(-staleAfter)
			q = q.Where("cmdlet_cards.id IS NULL OR cmdlet_cards.enriched_at < ?", cutoff)
		} else {
			q = q.Where("cmdlet_cards.id IS NULL")
		}
	}

	var names []string
	if err := q.Pluck("cmdlets.name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

type inventoryRow struct {
	ID         uint
	Name       string
	Module     string
	EnrichedAt *time.Time
}

// ListInventory returns a page of the inventory joined with enrichment state.
func (r *CmdletRepository) ListInventory(limit, page int, search string) ([]models.CmdletListEntry, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}

	base := r.db.Model(&models.Cmdlet{})
	if search != "" {
		base = base.Where("cmdlets.name_key LIKE ?", "%"+NameKey(search)+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []inventoryRow
	err := base.
		Select("cmdlets.id, cmdlets.name, cmdlets.module, cmdlet_cards.enriched_at").
		Joins("LEFT JOIN cmdlet_cards ON cmdlet_cards.name_key = cmdlets.name_key").
		Order("cmdlets.id ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	entries := make([]models.CmdletListEntry, 0, len(rows))
	for _, row := range rows {
		entry := models.CmdletListEntry{
			ID:     row.ID,
			Name:   row.Name,
			Module: row.Module,
		}
		if row.EnrichedAt != nil {
			entry.Enriched = true
			formatted := row.EnrichedAt.Format(time.RFC3339)
			entry.EnrichedAt = &formatted
		}
		entries = append(entries, entry)
	}
	return entries, total, nil
}

// UpsertByName registers a cmdlet in the inventory, keeping the first
// display casing seen.
func (r *CmdletRepository) UpsertByName(name, module string) (*models.Cmdlet, error) {
	key := NameKey(name)
	var existing models.Cmdlet
	err := r.db.Where("name_key = ?", key).First(&existing).Error
	if err == nil {
		if module != "" && existing.Module != module {
			existing.Module = module
			if err := r.db.Save(&existing).Error; err != nil {
				return nil, err
			}
		}
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	cmdlet := &models.Cmdlet{Name: name, NameKey: key, Module: module}
	if err := r.db.Create(cmdlet).Error; err != nil {
		return nil, err
	}
	return cmdlet, nil
}
