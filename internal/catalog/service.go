package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrGameNotFound reports a lookup for an app id the catalog does not hold.
var ErrGameNotFound = errors.New("game not found")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GameFilter narrows a catalog listing. Zero-value fields do not filter.
type GameFilter struct {
	Title     string
	Genre     string
	Developer string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Page      int
	Size      int
}

// GamePage is one page of a filtered listing, ordered by app id.
type GamePage struct {
	Items      []Game `json:"items"`
	Page       int    `json:"page"`
	Size       int    `json:"size"`
	TotalItems int64  `json:"total_items"`
	TotalPages int    `json:"total_pages"`
}

// GameDetail joins a game with its lookup entities and detail records.
// Detail pointers are nil when the matching import file never covered the
// game.
type GameDetail struct {
	Game         Game          `json:"game"`
	Description  *Description  `json:"description,omitempty"`
	Requirements *Requirements `json:"requirements,omitempty"`
	Media        *Media        `json:"media,omitempty"`
	Support      *SupportInfo  `json:"support,omitempty"`
}

// Service exposes read access over the imported catalog.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ListGames returns one page of games matching the filter.
func (s *Service) ListGames(ctx context.Context, f GameFilter) (*GamePage, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.Size
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&Game{})
		if f.Title != "" {
			q = q.Where("games.title LIKE ?", "%"+f.Title+"%")
		}
		if f.Genre != "" {
			q = q.Joins("JOIN game_genres ON game_genres.game_app_id = games.app_id").
				Joins("JOIN genres ON genres.id = game_genres.genre_id").
				Where("genres.name = ?", f.Genre)
		}
		if f.Developer != "" {
			q = q.Joins("JOIN game_developers ON game_developers.game_app_id = games.app_id").
				Joins("JOIN developers ON developers.id = game_developers.developer_id").
				Where("developers.name = ?", f.Developer)
		}
		if f.MinPrice != nil {
			q = q.Where("games.price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			q = q.Where("games.price <= ?", *f.MaxPrice)
		}
		return q
	}

	var total int64
	if err := base().Distinct("games.app_id").Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count games: %w", err)
	}

	var items []Game
	err := base().
		Distinct().
		Preload("Category").
		Preload("Genres").
		Order("games.app_id").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &GamePage{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// GameDetail returns the full record for one app id.
func (s *Service) GameDetail(ctx context.Context, appID uint64) (*GameDetail, error) {
	var game Game
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Developers").
		Preload("Publishers").
		Preload("Platforms").
		Preload("Genres").
		Preload("Tags").
		First(&game, "app_id = ?", appID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %d: %w", appID, err)
	}

	detail := &GameDetail{Game: game}
	detail.Description = detailRecord[Description](ctx, s.db, appID)
	detail.Requirements = detailRecord[Requirements](ctx, s.db, appID)
	detail.Media = detailRecord[Media](ctx, s.db, appID)
	detail.Support = detailRecord[SupportInfo](ctx, s.db, appID)
	return detail, nil
}

func detailRecord[T any](ctx context.Context, db *gorm.DB, appID uint64) *T {
	var rec T
	err := db.WithContext(ctx).Where("game_id = ?", appID).First(&rec).Error
	if err != nil {
		return nil
	}
	return &rec
}
