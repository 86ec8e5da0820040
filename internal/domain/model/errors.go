package model

import (
	"errors"
	"fmt"
)

// ErrorKind 失敗の種類。プレゼンテーション層が出し分けに使う
type ErrorKind string

const (
	ErrorKindTransport    ErrorKind = "transport"     // 通信・パース失敗
	ErrorKindNoMatch      ErrorKind = "no_match"      // 該当なし
	ErrorKindCredential   ErrorKind = "credential"    // アクセストークン未設定・無効
	ErrorKindInvalidInput ErrorKind = "invalid_input" // 入力不備
)

var (
	ErrTransport         = errors.New("ルーティングAPIとの通信に失敗しました")
	ErrNoMatch           = errors.New("該当する結果がありません")
	ErrMissingCredential = errors.New("アクセストークンが設定されていないか無効です")

	ErrRouteSearchNotFound = errors.New("検索結果が見つかりません（有効期限切れまたは無効なID）")
	ErrPOINotFound         = errors.New("POIが見つかりません")
)

// GatewayError ルーティングゲートウェイの失敗を種類付きで表す
type GatewayError struct {
	Kind ErrorKind
	Op   string // "geocode", "reverse_geocode", "directions"
	Err  error
}

// NewGatewayError 新しいGatewayErrorを作成
func NewGatewayError(op string, kind ErrorKind, err error) *GatewayError {
	return &GatewayError{Kind: kind, Op: op, Err: err}
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.sentinel().Error())
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.sentinel().Error(), e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is errors.Is(err, ErrNoMatch) などで種類を判定できるようにする
func (e *GatewayError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *GatewayError) sentinel() error {
	switch e.Kind {
	case ErrorKindNoMatch:
		return ErrNoMatch
	case ErrorKindCredential:
		return ErrMissingCredential
	default:
		return ErrTransport
	}
}

// ErrorKindOf エラーから種類を取り出す。GatewayError以外は通信失敗扱い
func ErrorKindOf(err error) ErrorKind {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return ErrorKindInvalidInput
	}
	return ErrorKindTransport
}
