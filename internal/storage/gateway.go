// Package storage はエンティティに紐づくファイルの保存・差し替え・削除を提供する。
//
// ファイルはエンティティ種別ごとの名前空間（uploads/events等）配下に
// 衝突しない決定的な名前で保存され、行側にはURLのみが記録される。
// 削除はURLのプレフィックスが自身の名前空間に一致する場合のみ実行される。
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hitoshi/livefes/internal/model"
)

// File はアップロード対象のファイルを表す。
// HTTPレイヤーのmultipartフォームから変換されて渡される。
type File struct {
	Name    string // 元のファイル名（拡張子の判定に使用）
	Size    int64
	Content io.Reader
}

// Ext はファイル名から小文字の拡張子（ドットなし）を返す。
func (f *File) Ext() string {
	ext := filepath.Ext(f.Name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// UploadConfig はエンティティ種別ごとのアップロード設定を表す。
type UploadConfig struct {
	UploadsPath       string   // 公開ルート配下の相対パス（例: "uploads/events"）
	AllowedExtensions []string // 許可する拡張子（ドットなし小文字）
	EntityType        string   // ファイル名の接頭辞（例: "event"）
	EntityID          int64
}

// Cleanup は旧ファイル削除の結果を表す。
// 削除失敗はエンティティの変更を妨げないが、呼び出し側が
// ログとメトリクスで観測できるよう明示的な結果として返す。
type Cleanup struct {
	Attempted bool  // 削除を試行したか（URLが名前空間外の場合はfalse）
	Removed   bool  // 物理ファイルを削除できたか
	Err       error // 削除失敗時のエラー（非致命）
}

// Gateway はエンティティに紐づくファイル操作のインターフェース。
type Gateway interface {
	// Upload はファイルを保存し、公開URLを返す。
	// 拡張子が許可リスト外の場合、または書き込みに失敗した場合はエラーを返す。
	Upload(ctx context.Context, file *File, cfg UploadConfig) (string, error)

	// Replace はpreviousURLのファイルをベストエフォートで削除してから新ファイルを保存する。
	// 旧ファイルの削除に失敗しても、返されるURLは常に新ファイルを指す。
	Replace(ctx context.Context, file *File, cfg UploadConfig, previousURL string) (string, Cleanup, error)

	// Delete はURLが自身の名前空間に属する場合のみ物理ファイルを削除する。
	// URLが空または名前空間外の場合は何もしない。
	// 失敗してもエンティティの削除をブロックしない。
	Delete(ctx context.Context, url string, cfg UploadConfig) Cleanup
}

// BuildFileName は衝突しない決定的なファイル名を生成する。
// 形式: <entityType>_<entityID>_<suffix>.<ext>
func BuildFileName(cfg UploadConfig, suffix, ext string) string {
	return fmt.Sprintf("%s_%d_%s.%s", cfg.EntityType, cfg.EntityID, suffix, ext)
}

// PublicURL は名前空間配下のファイル名から公開URLを組み立てる。
func PublicURL(cfg UploadConfig, fileName string) string {
	return "/" + cfg.UploadsPath + "/" + fileName
}

// InNamespace はURLがこの設定の名前空間配下を指しているかを返す。
func InNamespace(cfg UploadConfig, url string) bool {
	return url != "" && strings.HasPrefix(url, "/"+cfg.UploadsPath+"/")
}

// validateExtension は拡張子が許可リストに含まれるかを検証する。
func validateExtension(file *File, cfg UploadConfig) error {
	ext := file.Ext()
	for _, allowed := range cfg.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return model.NewInvalidFileTypeError(ext, cfg.AllowedExtensions)
}
