package database

import (
	"context"
	"testing"

	"palco/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeSchedule_SaveAndLoad(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	schedule := &models.FeeSchedule{
		StandardRate:   decimal.RequireFromString("0.10"),
		ProRate:        decimal.RequireFromString("0.08"),
		GatewayPercent: decimal.RequireFromString("0.0499"),
		GatewayFixed:   decimal.RequireFromString("3.67"),
	}
	require.NoError(t, db.SaveFeeSchedule(ctx, schedule))

	loaded, err := db.LoadFeeSchedule(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.StandardRate.Equal(schedule.StandardRate))
	assert.True(t, loaded.ProRate.Equal(schedule.ProRate))
	assert.True(t, loaded.GatewayPercent.Equal(schedule.GatewayPercent))
	assert.True(t, loaded.GatewayFixed.Equal(schedule.GatewayFixed))
}

func TestFeeSchedule_NotSeeded(t *testing.T) {
	db := newTestDB(t)
	_, err := db.LoadFeeSchedule(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFeeSchedule_UpsertOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &models.FeeSchedule{
		StandardRate:   decimal.RequireFromString("0.10"),
		ProRate:        decimal.RequireFromString("0.08"),
		GatewayPercent: decimal.RequireFromString("0.0499"),
		GatewayFixed:   decimal.RequireFromString("3.67"),
	}
	require.NoError(t, db.SaveFeeSchedule(ctx, first))

	second := &models.FeeSchedule{
		StandardRate:   decimal.RequireFromString("0.12"),
		ProRate:        decimal.RequireFromString("0.09"),
		GatewayPercent: decimal.RequireFromString("0.05"),
		GatewayFixed:   decimal.RequireFromString("4.00"),
	}
	require.NoError(t, db.SaveFeeSchedule(ctx, second))

	loaded, err := db.LoadFeeSchedule(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.StandardRate.Equal(decimal.RequireFromString("0.12")))
	assert.True(t, loaded.GatewayFixed.Equal(decimal.RequireFromString("4.00")))
}

func TestArtistRoster(t *testing.T) {
	db := newTestDB(t)
	db.SetArtists([]models.Artist{
		{ID: 2, Name: "Bruno", Genres: []string{"rock"}, Plan: models.PlanPro},
		{ID: 1, Name: "Ana", Genres: []string{"samba", "mpb"}, Plan: models.PlanStandard},
	})

	artist, err := db.GetArtist(1)
	require.NoError(t, err)
	assert.Equal(t, "Ana", artist.Name)

	_, err = db.GetArtist(99)
	assert.ErrorIs(t, err, ErrUnknownArtist)

	all := db.Artists()
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID, "roster listing is sorted by id")

	samba := db.ArtistsByGenre("Samba")
	require.Len(t, samba, 1)
	assert.Equal(t, "Ana", samba[0].Name)
}
