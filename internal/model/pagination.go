package model

// デフォルトのページネーション設定
const (
	// DefaultPage は未指定時のページ番号。
	DefaultPage = 1
	// DefaultLimit は未指定時の1ページあたりの件数。
	DefaultLimit = 20
	// MaxLimit は1ページあたりの最大件数。
	MaxLimit = 100
)

// PageMeta はオフセットベースページネーションのメタ情報を表す。
type PageMeta struct {
	Total       int `json:"total"`
	PerPage     int `json:"perPage"`
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
}

// NormalizePage はページ番号と件数を有効範囲に正規化する。
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// NewPageMeta はページネーションメタ情報を生成する。
func NewPageMeta(total, page, limit int) *PageMeta {
	lastPage := (total + limit - 1) / limit
	if lastPage < 1 {
		lastPage = 1
	}
	return &PageMeta{
		Total:       total,
		PerPage:     limit,
		CurrentPage: page,
		LastPage:    lastPage,
	}
}
