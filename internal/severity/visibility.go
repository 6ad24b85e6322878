package severity

import (
	"errors"
	"fmt"
	"strings"
)

// Visibility определяет, на каких рангах выводятся сообщения.
type Visibility int

const (
	// RankZero — сообщения выводит только ранг 0, барьеры не используются.
	RankZero Visibility = iota
	// AllRanks — сообщения выводят все ранги по порядку номеров.
	AllRanks
)

// ErrUnknownVisibility возвращается ParseVisibility для неизвестного значения.
var ErrUnknownVisibility = errors.New("severity: неизвестная область видимости")

// String возвращает имя области видимости для конфигурации.
func (v Visibility) String() string {
	switch v {
	case RankZero:
		return "zero"
	case AllRanks:
		return "all"
	default:
		return fmt.Sprintf("visibility(%d)", int(v))
	}
}

// ParseVisibility разбирает "zero"/"rank-zero" и "all"/"all-ranks".
func ParseVisibility(value string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "zero", "rank-zero", "rank-zero-only", "0":
		return RankZero, nil
	case "all", "all-ranks":
		return AllRanks, nil
	default:
		return RankZero, fmt.Errorf("%w: %q", ErrUnknownVisibility, value)
	}
}
