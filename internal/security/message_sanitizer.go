// Package security はアプリケーションのセキュリティ機能を提供する。
//
// MessageSanitizerService はイベント掲示板に投稿されるメッセージ本文を
// サニタイズし、XSS攻撃などのセキュリティリスクからユーザーを保護する。
// メッセージはプレーンテキストとして扱うため、bluemondayの
// StrictPolicyですべてのHTMLタグを除去する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MessageSanitizerService はメッセージ本文のサニタイズ機能のインターフェースを定義する。
// メッセージの保存前（作成・更新の両方）に使用される。
type MessageSanitizerService interface {
	// Sanitize はメッセージ本文からすべてのHTMLタグを除去し、
	// 前後の空白をトリムしたプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// messageSanitizer はMessageSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type messageSanitizer struct {
	policy *bluemonday.Policy
}

// NewMessageSanitizer はMessageSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのタグと属性を除去し、テキストのみを残す。
func NewMessageSanitizer() *messageSanitizer {
	return &messageSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はメッセージ本文をサニタイズする。
func (s *messageSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}

// compile-time interface check
var _ MessageSanitizerService = (*messageSanitizer)(nil)
