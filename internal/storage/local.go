package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/livefes/internal/model"
)

// LocalGateway はローカルファイルシステムを使用したGatewayの実装。
// publicRoot配下にUploadsPathのディレクトリを作成して保存する。
type LocalGateway struct {
	publicRoot string
}

// NewLocalGateway はLocalGatewayを生成する。
// publicRootは公開ファイルのルートディレクトリを指定する。
func NewLocalGateway(publicRoot string) *LocalGateway {
	return &LocalGateway{publicRoot: publicRoot}
}

// Upload はファイルをローカルファイルシステムに保存し、公開URLを返す。
func (g *LocalGateway) Upload(ctx context.Context, file *File, cfg UploadConfig) (string, error) {
	if err := validateExtension(file, cfg); err != nil {
		return "", err
	}

	fileName := BuildFileName(cfg, uuid.NewString(), file.Ext())
	dir := filepath.Join(g.publicRoot, filepath.FromSlash(cfg.UploadsPath))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("アップロード先ディレクトリの作成に失敗しました: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, fileName))
	if err != nil {
		return "", model.NewUploadFailedError(err.Error())
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file.Content); err != nil {
		// 書き込みに失敗した中途半端なファイルは残さない
		os.Remove(dst.Name())
		return "", model.NewUploadFailedError(err.Error())
	}

	return PublicURL(cfg, fileName), nil
}

// Replace は旧ファイルをベストエフォートで削除してから新ファイルを保存する。
// 旧ファイルの削除に失敗しても新ファイルのアップロードは続行し、
// 返されるURLは常に新ファイルを指す。
func (g *LocalGateway) Replace(ctx context.Context, file *File, cfg UploadConfig, previousURL string) (string, Cleanup, error) {
	cleanup := g.Delete(ctx, previousURL, cfg)

	url, err := g.Upload(ctx, file, cfg)
	if err != nil {
		return "", cleanup, err
	}

	return url, cleanup, nil
}

// Delete はURLが名前空間配下を指す場合のみ物理ファイルを削除する。
// 失敗は結果に記録するのみで、エンティティの削除をブロックしない。
func (g *LocalGateway) Delete(ctx context.Context, url string, cfg UploadConfig) Cleanup {
	if !InNamespace(cfg, url) {
		return Cleanup{}
	}

	fileName := strings.TrimPrefix(url, "/"+cfg.UploadsPath+"/")
	path := filepath.Join(g.publicRoot, filepath.FromSlash(cfg.UploadsPath), fileName)

	if err := os.Remove(path); err != nil {
		slog.Warn("旧ファイルの削除に失敗しました",
			slog.String("url", url),
			slog.String("entity_type", cfg.EntityType),
			slog.Int64("entity_id", cfg.EntityID),
			slog.String("error", err.Error()),
		)
		return Cleanup{Attempted: true, Err: err}
	}

	return Cleanup{Attempted: true, Removed: true}
}

// compile-time interface check
var _ Gateway = (*LocalGateway)(nil)
