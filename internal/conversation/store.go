package conversation

import "context"

// DraftStore はユーザーごとの下書きの置き場。期限切れは「無い」と同じ扱い。
type DraftStore interface {
	Get(ctx context.Context, userID int64) (Draft, bool, error)
	Save(ctx context.Context, d Draft) error
	Delete(ctx context.Context, userID int64) error
	// Take は取得と削除を一度に行う。同じ下書きを2回確定させないために使う。
	Take(ctx context.Context, userID int64) (Draft, bool, error)
}
