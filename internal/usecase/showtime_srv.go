package usecase

import (
	"context"
	"fmt"
	"time"

	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/dto/response"
	"cinema-ticketing/internal/gateway"
	"cinema-ticketing/internal/showtime"
	"cinema-ticketing/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	browseDays = 7
	dateLayout = "2006-01-02"
)

type ShowtimeService interface {
	// Browse returns the showtimes of one day grouped by movie then cinema,
	// together with the cinema list and the day strip for the picker.
	Browse(ctx context.Context, req *request.ShowtimeQuery) (*response.ShowtimeBrowseResponse, error)
}

type showtimeService struct {
	catalog gateway.Catalog
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
	log     *zap.Logger
}

func NewShowtimeService(deps Deps, log *zap.Logger) ShowtimeService {
	return &showtimeService{
		catalog: deps.Backend.Catalog,
		loc:     deps.Location,
		timeout: deps.Timeout,
		now:     time.Now,
		log:     log.With(zap.String("service", "showtime")),
	}
}

func (s *showtimeService) Browse(ctx context.Context, req *request.ShowtimeQuery) (*response.ShowtimeBrowseResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Browse showtimes validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, utils.FormatValidationErrors(errs))
	}

	now := s.now()
	day := now.In(s.loc)
	if req.Date != "" {
		parsed, err := time.ParseInLocation(dateLayout, req.Date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidDate, req.Date, err)
		}
		day = parsed
	}
	cinemaID := req.Cinema
	if cinemaID == "" {
		cinemaID = showtime.AllCinemas
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		showtimes []entity.Showtime
		cinemas   []entity.CinemaSummary
	)
	g, gctx := errgroup.WithContext(callCtx)
	g.Go(func() error {
		var err error
		showtimes, err = s.catalog.ListShowtimes(gctx, gateway.ShowtimeFilter{Date: day})
		if err != nil {
			return fmt.Errorf("list showtimes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cinemas, err = s.catalog.ListCinemas(gctx)
		if err != nil {
			return fmt.Errorf("list cinemas: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to load showtimes", zap.Error(err), zap.String("date", day.Format(dateLayout)))
		return nil, err
	}

	grouping := showtime.Aggregate(showtimes, showtime.Filter{
		Date:     day,
		CinemaID: cinemaID,
		Location: s.loc,
	})

	if cinemas == nil {
		cinemas = []entity.CinemaSummary{}
	}

	return &response.ShowtimeBrowseResponse{
		Date:          day.Format(dateLayout),
		Cinema:        cinemaID,
		Days:          s.dayStrip(now),
		Cinemas:       cinemas,
		Movies:        grouping.Sorted(),
		ShowtimeCount: grouping.ShowtimeCount(),
	}, nil
}

func (s *showtimeService) dayStrip(now time.Time) []response.DayOption {
	days := showtime.NextDays(now, browseDays, s.loc)
	out := make([]response.DayOption, 0, len(days))
	for i, d := range days {
		out = append(out, response.DayOption{
			Date:    d.Format(dateLayout),
			Weekday: d.Weekday().String(),
			Today:   i == 0,
		})
	}
	return out
}
