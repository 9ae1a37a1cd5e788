package memstore_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	memstore "github.com/dalemusser/donorhub/internal/app/store/memory"
	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/dalemusser/donorhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDonors_CreateGetRoundTrip(t *testing.T) {
	s := memstore.NewDonors()
	ctx := context.Background()

	in := testutil.DonorInput("Ana", "Gómez", "30123456")
	d, err := s.Create(ctx, in)
	require.NoError(t, err)

	got, err := s.GetByID(ctx, d.ID)
	require.NoError(t, err)

	var want models.Donor
	in.Apply(&want)
	want.ID, want.CreatedAt, want.UpdatedAt = d.ID, d.CreatedAt, d.UpdatedAt
	assert.Equal(t, want, got)
}

func TestDonors_DuplicateNationalID(t *testing.T) {
	s := memstore.NewDonors()
	ctx := context.Background()

	a, err := s.Create(ctx, testutil.DonorInput("Ana", "Gómez", "30123456"))
	require.NoError(t, err)

	_, err = s.Create(ctx, testutil.DonorInput("Otra", "Persona", "30123456"))
	assert.ErrorIs(t, err, apperr.ErrDuplicateKey)

	b, err := s.Create(ctx, testutil.DonorInput("Bruno", "Díaz", "30999888"))
	require.NoError(t, err)
	_, err = s.Update(ctx, b.ID, testutil.DonorInput("Bruno", "Díaz", a.NationalID))
	assert.ErrorIs(t, err, apperr.ErrDuplicateKey)

	got, _ := s.GetByID(ctx, b.ID)
	assert.Equal(t, "30999888", got.NationalID)

	// Changing the national ID frees the old one.
	_, err = s.Update(ctx, b.ID, testutil.DonorInput("Bruno", "Díaz", "30999999"))
	require.NoError(t, err)
	_, err = s.Create(ctx, testutil.DonorInput("Carla", "Ruiz", "30999888"))
	assert.NoError(t, err)
}

func TestDonors_ConcurrentCreatesSameNationalID(t *testing.T) {
	s := memstore.NewDonors()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		oks  int
		dups int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Create(ctx, testutil.DonorInput("Ana", fmt.Sprintf("Gómez%d", i), "30123456"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				oks++
			} else if errors.Is(err, apperr.ErrDuplicateKey) {
				dups++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	assert.Equal(t, 15, dups)
}

func TestDonors_SearchAndDelete(t *testing.T) {
	s := memstore.NewDonors()
	ctx := context.Background()

	a, _ := s.Create(ctx, testutil.DonorInput("Ana", "Gómez", "30777111"))
	b, _ := s.Create(ctx, testutil.DonorInput("Bruno", "Díaz", "20111222"))
	c, _ := s.Create(ctx, testutil.DonorInput("Carla", "Ruiz", "40111777"))

	all, err := s.Search(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	hits, _ := s.Search(ctx, "777")
	require.Len(t, hits, 2)
	assert.Equal(t, c.ID, hits[0].ID)
	assert.Equal(t, a.ID, hits[1].ID)

	hits, _ = s.Search(ctx, "CARLA")
	require.Len(t, hits, 1)

	require.NoError(t, s.Delete(ctx, b.ID))
	require.NoError(t, s.Delete(ctx, b.ID))
	_, err = s.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.Update(ctx, b.ID, testutil.DonorInput("Bruno", "Díaz", "20111222"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDonors_CancelledContext(t *testing.T) {
	s := memstore.NewDonors()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, "")
	var se *apperr.StoreError
	assert.ErrorAs(t, err, &se)
}

func TestAdminUsers(t *testing.T) {
	s := memstore.NewAdminUsers()
	ctx := context.Background()

	u, err := s.Create(ctx, "admin", "hash")
	require.NoError(t, err)

	_, err = s.Create(ctx, "admin", "hash")
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	_, err = s.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSessions_Expiry(t *testing.T) {
	s := memstore.NewSessions()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, models.Session{Token: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, s.Create(ctx, models.Session{Token: "dead", ExpiresAt: now.Add(-time.Second)}))

	_, err := s.Get(ctx, "live")
	assert.NoError(t, err)
	_, err = s.Get(ctx, "dead")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "live"))
	_, err = s.Get(ctx, "live")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSessions_DeleteExpired(t *testing.T) {
	s := memstore.NewSessions()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Create(ctx, models.Session{Token: "old", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, s.Create(ctx, models.Session{Token: "live", ExpiresAt: now.Add(time.Hour)}))

	n, err := s.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Get(ctx, "live")
	assert.NoError(t, err)
}
