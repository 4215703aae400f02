package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"psenrich/internal/models"
)

func TestCardUpsertCreatesAndOverwrites(t *testing.T) {
	repo := NewCmdletCardRepository(newTestDB(t))

	first := &models.CmdletCard{
		Name:        "Get-Process",
		Description: "Lists running processes.",
	}
	require.NoError(t, repo.Upsert(first))
	require.False(t, first.EnrichedAt.IsZero())

	stored, err := repo.FindByName("Get-Process")
	require.NoError(t, err)
	require.Equal(t, "Lists running processes.", stored.Description)

	// Re-enrichment overwrites in place, same row.
	second := &models.CmdletCard{
		Name:        "Get-Process",
		Description: "Gets the processes running on the local computer.",
		HowTo:       "Run Get-Process to list all processes.",
	}
	require.NoError(t, repo.Upsert(second))
	require.Equal(t, stored.ID, second.ID)

	stored, err = repo.FindByName("Get-Process")
	require.NoError(t, err)
	require.Equal(t, "Gets the processes running on the local computer.", stored.Description)
	require.Equal(t, "Run Get-Process to list all processes.", stored.HowTo)

	var count int64
	require.NoError(t, repo.db.Model(&models.CmdletCard{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCardLookupIsCaseInsensitive(t *testing.T) {
	repo := NewCmdletCardRepository(newTestDB(t))

	card := &models.CmdletCard{
		Name:        "Get-ChildItem",
		Description: "Lists items in a location.",
		EnrichedAt:  time.Now(),
	}
	require.NoError(t, repo.Upsert(card))

	for _, name := range []string{"Get-ChildItem", "get-childitem", "GET-CHILDITEM"} {
		stored, err := repo.FindByName(name)
		require.NoError(t, err, name)
		require.Equal(t, "Get-ChildItem", stored.Name)
	}
}

func TestCardFindUnknownName(t *testing.T) {
	repo := NewCmdletCardRepository(newTestDB(t))

	_, err := repo.FindByName("Never-Enriched")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCardUpsertRejectsEmptyName(t *testing.T) {
	repo := NewCmdletCardRepository(newTestDB(t))

	err := repo.Upsert(&models.CmdletCard{Name: "   "})
	require.Error(t, err)
}
