package repository

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"psenrich/internal/models"
)

// CmdletCardRepository stores enrichment output, one row per cmdlet name.
type CmdletCardRepository struct {
	db *gorm.DB
}

func NewCmdletCardRepository(db *gorm.DB) *CmdletCardRepository {
	return &CmdletCardRepository{db: db}
}

// Upsert creates or overwrites the card for card.Name. Re-enrichment
// replaces the previous card in place; a failed enrichment never reaches
// this method, so prior cards survive per-item failures.
func (r *CmdletCardRepository) Upsert(card *models.CmdletCard) error {
	card.NameKey = NameKey(card.Name)
	if card.NameKey == "" {
		return errors.New("empty cmdlet name")
	}
	if card.EnrichedAt.IsZero() {
		card.EnrichedAt = time.Now()
	}

	var existing models.CmdletCard
	err := r.db.Where("name_key = ?", card.NameKey).First(&existing).Error
	if err == nil {
		card.ID = existing.ID
		card.CreatedAt = existing.CreatedAt
		return r.db.Save(card).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(card).Error
}

// FindByName looks a card up case-insensitively.
func (r *CmdletCardRepository) FindByName(name string) (*models.CmdletCard, error) {
	var card models.CmdletCard
	if err := r.db.Where("name_key = ?", NameKey(name)).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// NameKey is the canonical lookup form of a cmdlet name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
