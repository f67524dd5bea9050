package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"steamcat/internal/catalog"
)

// gameColumnAliases maps accepted header names to their canonical column
// key. The games file binds columns by name, so column order and extra
// columns do not matter; only appid is mandatory.
var gameColumnAliases = map[string]string{
	"appid":            "appid",
	"steam_appid":      "appid",
	"name":             "name",
	"title":            "name",
	"release_date":     "release_date",
	"english":          "english",
	"developer":        "developer",
	"developers":       "developer",
	"publisher":        "publisher",
	"publishers":       "publisher",
	"platforms":        "platforms",
	"required_age":     "required_age",
	"categories":       "categories",
	"genres":           "genres",
	"achievements":     "achievements",
	"positive_ratings": "positive_ratings",
	"negative_ratings": "negative_ratings",
	"average_playtime": "average_playtime",
	"median_playtime":  "median_playtime",
	"owners":           "owners",
	"price":            "price",
}

// GameImporter loads the master games file. Every lookup entity a row
// mentions is resolved find-or-create through a per-kind cache, then the
// game rows themselves are committed in batches.
type GameImporter struct {
	db        *gorm.DB
	batchSize int

	developers *Resolver[catalog.Developer]
	publishers *Resolver[catalog.Publisher]
	platforms  *Resolver[catalog.Platform]
	categories *Resolver[catalog.Category]
	genres     *Resolver[catalog.Genre]
}

func NewGameImporter(db *gorm.DB, batchSize int) *GameImporter {
	return &GameImporter{
		db:        db,
		batchSize: batchSize,
		developers: NewLookupResolver(db, "developer",
			func(name string) *catalog.Developer { return &catalog.Developer{Name: name} },
			func(d *catalog.Developer) string { return d.Name }),
		publishers: NewLookupResolver(db, "publisher",
			func(name string) *catalog.Publisher { return &catalog.Publisher{Name: name} },
			func(p *catalog.Publisher) string { return p.Name }),
		platforms: NewLookupResolver(db, "platform",
			func(name string) *catalog.Platform { return &catalog.Platform{Name: name} },
			func(p *catalog.Platform) string { return p.Name }),
		categories: NewLookupResolver(db, "category",
			func(name string) *catalog.Category { return &catalog.Category{Name: name} },
			func(c *catalog.Category) string { return c.Name }),
		genres: NewLookupResolver(db, "genre",
			func(name string) *catalog.Genre { return &catalog.Genre{Name: name} },
			func(g *catalog.Genre) string { return g.Name }),
	}
}

// Run imports one games CSV stream. The returned statistics are valid even
// when err is non-nil; err reports file-fatal conditions only.
func (g *GameImporter) Run(r io.Reader) (*Stats, error) {
	stats := &Stats{}

	for _, res := range []interface{ Preload() error }{
		preloader[catalog.Developer]{g.developers},
		preloader[catalog.Publisher]{g.publishers},
		preloader[catalog.Platform]{g.platforms},
		preloader[catalog.Category]{g.categories},
		preloader[catalog.Genre]{g.genres},
	} {
		if err := res.Preload(); err != nil {
			return stats, err
		}
	}

	seen, err := existingAppIDs(g.db)
	if err != nil {
		return stats, err
	}

	games := newBatch("games", g.batchSize,
		func(items []catalog.Game) error { return g.db.Create(&items).Error },
		func(n int) {
			stats.Created -= n
			stats.Skipped += n
		})

	err = streamCSV(r, stats, func(header []string) (rowFunc, error) {
		idx := make(map[string]int, len(header))
		for i, h := range header {
			if canon, ok := gameColumnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
				if _, dup := idx[canon]; !dup {
					idx[canon] = i
				}
			}
		}
		if _, ok := idx["appid"]; !ok {
			return nil, fmt.Errorf("%w: no appid column", ErrBadHeader)
		}

		field := func(line []string, key string) string {
			i, ok := idx[key]
			if !ok || i >= len(line) {
				return ""
			}
			return line[i]
		}

		return func(line []string, lineNum int) error {
			appID, ok := ParseAppID(field(line, "appid"))
			if !ok {
				return fmt.Errorf("bad app id %q", field(line, "appid"))
			}
			if _, dup := seen[appID]; dup {
				stats.Skipped++
				return nil
			}
			seen[appID] = struct{}{}

			game, err := g.buildGame(appID, field, line)
			if err != nil {
				return err
			}
			games.add(*game)
			stats.Created++
			return nil
		}, nil
	})
	games.flush()

	stats.DevelopersCreated = g.developers.Created()
	stats.PublishersCreated = g.publishers.Created()
	stats.PlatformsCreated = g.platforms.Created()
	stats.CategoriesCreated = g.categories.Created()
	stats.GenresCreated = g.genres.Created()
	return stats, err
}

func (g *GameImporter) buildGame(appID uint64, field func([]string, string) string, line []string) (*catalog.Game, error) {
	game := &catalog.Game{AppID: appID}

	game.Title = strings.TrimSpace(field(line, "name"))
	if game.Title == "" {
		game.Title = fmt.Sprintf("Unknown Title - %d", appID)
	}

	if t, ok := ParseDate(field(line, "release_date")); ok {
		game.ReleaseDate = t
	} else {
		game.ReleaseDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	game.English = field(line, "english") == "1"
	game.MinAge, _ = ParseInt(field(line, "required_age"))
	game.Achievements, _ = ParseInt(field(line, "achievements"))
	game.PositiveRatings, _ = ParseInt(field(line, "positive_ratings"))
	game.NegativeRatings, _ = ParseInt(field(line, "negative_ratings"))
	game.AvgPlaytime, _ = ParseFloat(field(line, "average_playtime"))
	game.MedianPlaytime, _ = ParseFloat(field(line, "median_playtime"))

	owners := ParseOwners(field(line, "owners"))
	game.OwnersLower = owners.Lower
	game.OwnersUpper = owners.Upper
	game.OwnersMid = owners.Mid

	if price, ok := ParseDecimal(field(line, "price")); ok {
		game.Price = price
	} else {
		game.Price = decimal.Zero
	}

	for _, name := range uniqueNames(SplitMulti(field(line, "developer"))) {
		dev, err := g.developers.Resolve(name)
		if err != nil {
			return nil, err
		}
		game.Developers = append(game.Developers, *dev)
	}
	for _, name := range uniqueNames(SplitMulti(field(line, "publisher"))) {
		pub, err := g.publishers.Resolve(name)
		if err != nil {
			return nil, err
		}
		game.Publishers = append(game.Publishers, *pub)
	}
	for _, name := range uniqueNames(SplitMulti(field(line, "platforms"))) {
		plat, err := g.platforms.Resolve(name)
		if err != nil {
			return nil, err
		}
		game.Platforms = append(game.Platforms, *plat)
	}
	for _, name := range uniqueNames(SplitMulti(field(line, "genres"))) {
		genre, err := g.genres.Resolve(name)
		if err != nil {
			return nil, err
		}
		game.Genres = append(game.Genres, *genre)
	}

	// Only the first category token is kept; the remainder of the column
	// repeats Steam's store-feature flags.
	if cats := SplitMulti(field(line, "categories")); len(cats) > 0 {
		cat, err := g.categories.Resolve(cats[0])
		if err != nil {
			return nil, err
		}
		game.CategoryID = &cat.ID
	}

	return game, nil
}

// preloader adapts a concrete Resolver to a common preload loop.
type preloader[T any] struct{ r *Resolver[T] }

func (p preloader[T]) Preload() error { return p.r.Preload() }

func uniqueNames(names []string) []string {
	if len(names) < 2 {
		return names
	}
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// existingAppIDs returns the set of app ids already persisted. Importers
// for detail files consult it to reject rows for unknown games.
func existingAppIDs(db *gorm.DB) (map[uint64]struct{}, error) {
	var ids []uint64
	if err := db.Model(&catalog.Game{}).Pluck("app_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load existing app ids: %w", err)
	}
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
