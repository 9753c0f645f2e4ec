// Package showtime turns the flat showtime listing returned by the backend into
// the movie → cinema → start times view used by the showtime browser and the
// counter booking flow. Everything here is pure: same input, same output.
package showtime

import (
	"sort"
	"time"

	"cinema-ticketing/internal/data/entity"
)

// AllCinemas disables the cinema filter.
const AllCinemas = "all"

const dateLayout = "2006-01-02"

// Filter selects the showtimes a viewer is interested in. A zero Date skips
// date filtering; an empty CinemaID behaves like AllCinemas. A nil Location
// means UTC.
type Filter struct {
	Date     time.Time
	CinemaID string
	Location *time.Location
}

type CinemaGroup struct {
	Cinema entity.CinemaSummary `json:"cinema"`
	Times  []entity.Showtime    `json:"times"`
}

type MovieGroup struct {
	Movie    entity.MovieSummary    `json:"movie"`
	ByCinema map[string]CinemaGroup `json:"by_cinema"`
}

// Grouping maps movie ID to the movie's showtimes grouped by cinema.
type Grouping map[string]MovieGroup

// FilterByDate keeps showtimes starting on the same calendar day as date,
// both observed in loc.
func FilterByDate(showtimes []entity.Showtime, date time.Time, loc *time.Location) []entity.Showtime {
	if loc == nil {
		loc = time.UTC
	}
	day := date.In(loc).Format(dateLayout)

	out := make([]entity.Showtime, 0, len(showtimes))
	for _, st := range showtimes {
		if st.StartTime.In(loc).Format(dateLayout) == day {
			out = append(out, st)
		}
	}
	return out
}

func FilterByCinema(showtimes []entity.Showtime, cinemaID string) []entity.Showtime {
	if cinemaID == "" || cinemaID == AllCinemas {
		return append([]entity.Showtime(nil), showtimes...)
	}

	out := make([]entity.Showtime, 0, len(showtimes))
	for _, st := range showtimes {
		if st.CinemaID() == cinemaID {
			out = append(out, st)
		}
	}
	return out
}

func FilterBookable(showtimes []entity.Showtime) []entity.Showtime {
	out := make([]entity.Showtime, 0, len(showtimes))
	for _, st := range showtimes {
		if st.Bookable() {
			out = append(out, st)
		}
	}
	return out
}

// GroupByMovieThenCinema groups showtimes by movie and then by cinema. Records
// missing either reference are dropped. Times within a cinema are ordered by
// start time, ties broken by ID so the output does not depend on input order.
func GroupByMovieThenCinema(showtimes []entity.Showtime) Grouping {
	grouped := make(Grouping)

	for _, st := range showtimes {
		if st.Movie == nil || st.Movie.ID == "" || st.Cinema == nil || st.Cinema.ID == "" {
			continue
		}

		mg, ok := grouped[st.Movie.ID]
		if !ok {
			mg = MovieGroup{
				Movie:    *st.Movie,
				ByCinema: make(map[string]CinemaGroup),
			}
		}

		cg, ok := mg.ByCinema[st.Cinema.ID]
		if !ok {
			cg = CinemaGroup{Cinema: *st.Cinema}
		}
		cg.Times = append(cg.Times, st)
		mg.ByCinema[st.Cinema.ID] = cg
		grouped[st.Movie.ID] = mg
	}

	for _, mg := range grouped {
		for _, cg := range mg.ByCinema {
			sortByStart(cg.Times)
		}
	}

	return grouped
}

// Aggregate applies date, cinema and bookability filters, in that order, and
// groups what is left.
func Aggregate(showtimes []entity.Showtime, f Filter) Grouping {
	filtered := showtimes
	if !f.Date.IsZero() {
		filtered = FilterByDate(filtered, f.Date, f.Location)
	}
	filtered = FilterByCinema(filtered, f.CinemaID)
	filtered = FilterBookable(filtered)
	return GroupByMovieThenCinema(filtered)
}

// BookableMovies lists each movie that has at least one bookable showtime, in
// order of first appearance.
func BookableMovies(showtimes []entity.Showtime) []entity.MovieSummary {
	seen := make(map[string]struct{})
	var movies []entity.MovieSummary

	for _, st := range showtimes {
		if !st.Bookable() || st.Movie == nil || st.Movie.ID == "" {
			continue
		}
		if _, ok := seen[st.Movie.ID]; ok {
			continue
		}
		seen[st.Movie.ID] = struct{}{}
		movies = append(movies, *st.Movie)
	}

	return movies
}

// NextDays returns n consecutive calendar days starting with today in loc,
// each at local midnight.
func NextDays(now time.Time, n int, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

func sortByStart(times []entity.Showtime) {
	sort.SliceStable(times, func(i, j int) bool {
		if times[i].StartTime.Equal(times[j].StartTime) {
			return times[i].ID < times[j].ID
		}
		return times[i].StartTime.Before(times[j].StartTime)
	})
}
