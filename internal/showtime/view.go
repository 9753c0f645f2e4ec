package showtime

import (
	"sort"
	"strings"

	"cinema-ticketing/internal/data/entity"
)

type CinemaTimes struct {
	Cinema entity.CinemaSummary `json:"cinema"`
	Times  []entity.Showtime    `json:"times"`
}

type MovieListing struct {
	Movie   entity.MovieSummary `json:"movie"`
	Cinemas []CinemaTimes       `json:"cinemas"`
}

// Sorted flattens the grouping into slices ordered by movie title and cinema
// name, falling back to IDs so that equal names still order deterministically.
func (g Grouping) Sorted() []MovieListing {
	listings := make([]MovieListing, 0, len(g))

	for _, mg := range g {
		cinemas := make([]CinemaTimes, 0, len(mg.ByCinema))
		for _, cg := range mg.ByCinema {
			cinemas = append(cinemas, CinemaTimes{Cinema: cg.Cinema, Times: cg.Times})
		}
		sort.Slice(cinemas, func(i, j int) bool {
			return less(cinemas[i].Cinema.Name, cinemas[j].Cinema.Name, cinemas[i].Cinema.ID, cinemas[j].Cinema.ID)
		})
		listings = append(listings, MovieListing{Movie: mg.Movie, Cinemas: cinemas})
	}

	sort.Slice(listings, func(i, j int) bool {
		return less(listings[i].Movie.Title, listings[j].Movie.Title, listings[i].Movie.ID, listings[j].Movie.ID)
	})

	return listings
}

// ShowtimeCount is the total number of start times across the grouping.
func (g Grouping) ShowtimeCount() int {
	n := 0
	for _, mg := range g {
		for _, cg := range mg.ByCinema {
			n += len(cg.Times)
		}
	}
	return n
}

func less(nameA, nameB, idA, idB string) bool {
	a, b := strings.ToLower(nameA), strings.ToLower(nameB)
	if a == b {
		return idA < idB
	}
	return a < b
}
