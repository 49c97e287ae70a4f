package conversation

import (
	"fmt"
	"strings"

	"orderbot/internal/usecase"
)

// CartText はカート一覧の表示文。下書きにもこの文をそのまま凍結する。
func CartText(s usecase.CartSummary) string {
	lines := make([]string, 0, len(s.Lines)+2)
	lines = append(lines, "🛒 سبد خرید شما:\n")
	for _, l := range s.Lines {
		lines = append(lines, fmt.Sprintf("%s × %d = %d تومان", l.Title, l.Quantity, l.LineTotal()))
	}
	lines = append(lines, fmt.Sprintf("\nجمع کل: %d تومان", s.Total))
	return strings.Join(lines, "\n")
}
