package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ten artists race for the same open gig; the conditional write must let
// exactly one through.
func TestConcurrentClaim_ExactlyOneWinner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	gig := seedGig(t, db)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(artistID int64) {
			defer wg.Done()
			_, err := db.ClaimOpenGig(ctx, gig.ID, artistID)
			results <- err
		}(int64(i + 1))
	}

	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, numGoroutines-1, conflicts)
}

func TestConcurrentOfferCommit_ExactlyOneTransition(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	offer := seedOffer(t, db)

	transitions := []string{"accepted", "declined", "countered", "accepted", "declined"}

	var wg sync.WaitGroup
	wg.Add(len(transitions))
	results := make(chan error, len(transitions))

	for _, status := range transitions {
		go func(toStatus string) {
			defer wg.Done()
			_, err := db.CommitOffer(ctx, offer.ID, toStatus, decimal.Zero)
			results <- err
		}(status)
	}

	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, wins, "pending must be left exactly once")
}
