package catalog

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Game is the central catalog entity. AppID is the Steam application id,
// assigned externally and never generated here.
type Game struct {
	AppID           uint64 `gorm:"primaryKey;autoIncrement:false"`
	Title           string `gorm:"not null"`
	ReleaseDate     time.Time
	English         bool
	MinAge          int
	Achievements    int
	PositiveRatings int
	NegativeRatings int
	AvgPlaytime     float64
	MedianPlaytime  float64
	OwnersLower     int
	OwnersUpper     int
	OwnersMid       int
	Price           decimal.Decimal `gorm:"type:decimal(10,2)"`

	CategoryID *uint
	Category   *Category

	Developers []Developer `gorm:"many2many:game_developers"`
	Publishers []Publisher `gorm:"many2many:game_publishers"`
	Platforms  []Platform  `gorm:"many2many:game_platforms"`
	Genres     []Genre     `gorm:"many2many:game_genres"`
	Tags       []Tag       `gorm:"many2many:game_tags"`
}

func (Game) TableName() string { return "games" }

// Lookup entities share a single shape: a surrogate id plus a unique name.
// Name matching is case-sensitive.

type Developer struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:255;not null"`
}

type Publisher struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:255;not null"`
}

type Platform struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:64;not null"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:255;not null"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:255;not null"`
}

type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:255;not null"`
}

// Detail records extend a Game 1:1 and are populated by separate import
// passes. GameID references Game.AppID.

type Description struct {
	ID          uint   `gorm:"primaryKey"`
	GameID      uint64 `gorm:"uniqueIndex;not null"`
	Game        *Game  `gorm:"foreignKey:GameID;references:AppID"`
	Detailed    string `gorm:"type:text"`
	AboutGame   string `gorm:"type:text"`
	ShortText   string `gorm:"type:text"`
}

func (Description) TableName() string { return "game_descriptions" }

type Requirements struct {
	ID          uint   `gorm:"primaryKey"`
	GameID      uint64 `gorm:"uniqueIndex;not null"`
	Game        *Game  `gorm:"foreignKey:GameID;references:AppID"`
	PC          string `gorm:"type:text"`
	Mac         string `gorm:"type:text"`
	Linux       string `gorm:"type:text"`
	Minimum     string `gorm:"type:text"`
	Recommended string `gorm:"type:text"`
}

func (Requirements) TableName() string { return "game_requirements" }

// Media holds the header/background images plus screenshot and movie URL
// lists stored as JSON arrays of strings.
type Media struct {
	ID          uint   `gorm:"primaryKey"`
	GameID      uint64 `gorm:"uniqueIndex;not null"`
	Game        *Game  `gorm:"foreignKey:GameID;references:AppID"`
	HeaderImage string
	Background  string
	Screenshots datatypes.JSON `gorm:"type:json"`
	Movies      datatypes.JSON `gorm:"type:json"`
}

func (Media) TableName() string { return "game_media" }

func (m *Media) ScreenshotURLs() []string { return decodeURLList(m.Screenshots) }
func (m *Media) MovieURLs() []string      { return decodeURLList(m.Movies) }

func (m *Media) SetScreenshotURLs(urls []string) { m.Screenshots = encodeURLList(urls) }
func (m *Media) SetMovieURLs(urls []string)      { m.Movies = encodeURLList(urls) }

func decodeURLList(raw datatypes.JSON) []string {
	var urls []string
	if len(raw) == 0 {
		return urls
	}
	_ = json.Unmarshal(raw, &urls)
	return urls
}

func encodeURLList(urls []string) datatypes.JSON {
	if len(urls) == 0 {
		return nil
	}
	b, _ := json.Marshal(urls)
	return b
}

type SupportInfo struct {
	ID           uint   `gorm:"primaryKey"`
	GameID       uint64 `gorm:"uniqueIndex;not null"`
	Game         *Game  `gorm:"foreignKey:GameID;references:AppID"`
	Website      string
	SupportURL   string
	SupportEmail string
}

func (SupportInfo) TableName() string { return "game_support_info" }
