// Package model はドメインモデルを定義する。
package model

import "time"

// EventType はイベントの大分類を表す。
type EventType string

const (
	// EventTypeConcert はコンサート。
	EventTypeConcert EventType = "concert"
	// EventTypeFestival はフェスティバル。
	EventTypeFestival EventType = "festival"
	// EventTypeExhibition は展覧会。
	EventTypeExhibition EventType = "exhibition"
	// EventTypeConference はカンファレンス。
	EventTypeConference EventType = "conference"
)

// EventSubtype はイベントの小分類（ジャンル）を表す。
type EventSubtype string

const (
	// EventSubtypeRock はロック。
	EventSubtypeRock EventSubtype = "rock"
	// EventSubtypeHiphop はヒップホップ。
	EventSubtypeHiphop EventSubtype = "hiphop"
	// EventSubtypeJazz はジャズ。
	EventSubtypeJazz EventSubtype = "jazz"
	// EventSubtypeTechno はテクノ。
	EventSubtypeTechno EventSubtype = "techno"
	// EventSubtypeClassical はクラシック。
	EventSubtypeClassical EventSubtype = "classical"
)

// ValidEventType はtypeが定義済みのイベント種別かを返す。
func ValidEventType(t EventType) bool {
	switch t {
	case EventTypeConcert, EventTypeFestival, EventTypeExhibition, EventTypeConference:
		return true
	}
	return false
}

// ValidEventSubtype はsubtypeが定義済みのジャンルかを返す。
func ValidEventSubtype(s EventSubtype) bool {
	switch s {
	case EventSubtypeRock, EventSubtypeHiphop, EventSubtypeJazz, EventSubtypeTechno, EventSubtypeClassical:
		return true
	}
	return false
}

// Event はイベントを表す。
// BannerURLが空の場合、バナー画像は未設定。
type Event struct {
	ID          int64
	Title       string
	Description string
	BannerURL   string
	StartDate   time.Time
	EndDate     time.Time
	StartHour   time.Time
	OpenHour    *time.Time
	Latitude    float64
	Longitude   float64
	PlaceName   string
	Address     string
	City        string
	Type        EventType
	Subtype     EventSubtype
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Artists はFindByIDWithArtistsでプリロードされる出演アーティスト。
	Artists []*Artist
}

// EventArtist はイベントとアーティストの出演関係を表す関連エンティティ。
// 同一イベントの関連セットは更新のたびに全置換される（差分更新は行わない）。
type EventArtist struct {
	ID        int64
	EventID   int64
	ArtistID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventFilter はイベント一覧取得の絞り込み条件を表す。
// 指定された条件はすべてAND結合される。
type EventFilter struct {
	Type      EventType
	Subtype   EventSubtype
	City      string     // 部分一致（大文字小文字を区別しない）
	StartDate *time.Time // start_date >= StartDate
	EndDate   *time.Time // end_date <= EndDate
	Page      int
	Limit     int
}
