package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newShowtimeService(f *fixture) *showtimeService {
	svc := NewShowtimeService(Deps{
		Backend:  f.backend.asBackend(),
		Location: ict,
		Timeout:  time.Second,
	}, zap.NewNop()).(*showtimeService)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, ict) }
	return svc
}

func TestShowtimeBrowse_Today(t *testing.T) {
	f := newFixture()
	svc := newShowtimeService(f)

	resp, err := svc.Browse(context.Background(), &request.ShowtimeQuery{})
	require.NoError(t, err)

	assert.Equal(t, "2026-10-19", resp.Date)
	assert.Equal(t, "all", resp.Cinema)
	assert.Len(t, resp.Cinemas, 2)
	assert.Equal(t, 2, resp.ShowtimeCount)

	require.Len(t, resp.Movies, 1, "cancelled and next-day showtimes are left out")
	assert.Equal(t, "m1", resp.Movies[0].Movie.ID)
	require.Len(t, resp.Movies[0].Cinemas, 2)
	assert.Equal(t, "CGV Vincom", resp.Movies[0].Cinemas[0].Cinema.Name)
	assert.Equal(t, "Galaxy Nguyễn Du", resp.Movies[0].Cinemas[1].Cinema.Name)

	require.Len(t, resp.Days, 7)
	assert.Equal(t, "2026-10-19", resp.Days[0].Date)
	assert.True(t, resp.Days[0].Today)
	assert.Equal(t, "2026-10-25", resp.Days[6].Date)
	assert.False(t, resp.Days[6].Today)

	require.Len(t, f.backend.filters, 1)
	assert.True(t, f.backend.filters[0].Date.Equal(time.Date(2026, 10, 19, 8, 0, 0, 0, ict)))
}

func TestShowtimeBrowse_DateAndCinema(t *testing.T) {
	f := newFixture()
	svc := newShowtimeService(f)

	resp, err := svc.Browse(context.Background(), &request.ShowtimeQuery{Date: "2026-10-20"})
	require.NoError(t, err)
	require.Len(t, resp.Movies, 1)
	assert.Equal(t, "m2", resp.Movies[0].Movie.ID)

	resp, err = svc.Browse(context.Background(), &request.ShowtimeQuery{Date: "2026-10-19", Cinema: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.ShowtimeCount)
	require.Len(t, resp.Movies, 1)
	require.Len(t, resp.Movies[0].Cinemas, 1)
	assert.Equal(t, "s1", resp.Movies[0].Cinemas[0].Times[0].ID)

	resp, err = svc.Browse(context.Background(), &request.ShowtimeQuery{Date: "2026-10-21"})
	require.NoError(t, err)
	assert.Empty(t, resp.Movies)
	assert.Zero(t, resp.ShowtimeCount)
}

func TestShowtimeBrowse_Errors(t *testing.T) {
	f := newFixture()
	svc := newShowtimeService(f)

	_, err := svc.Browse(context.Background(), &request.ShowtimeQuery{Date: "19/10/2026"})
	require.ErrorIs(t, err, ErrInvalidDate)

	f.backend.cinemasErr = fmt.Errorf("list cinemas: %w", gateway.ErrBackendUnavailable)
	_, err = svc.Browse(context.Background(), &request.ShowtimeQuery{})
	require.ErrorIs(t, err, gateway.ErrBackendUnavailable)
}
