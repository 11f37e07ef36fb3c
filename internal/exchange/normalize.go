package exchange

import "github.com/vadiminshakov/assetwatch/internal/domain"

// collect maps raw exchange records into balances using an adapter's
// format function. Records that fail to parse or whose total is not
// positive are dropped: one malformed entry must not abort the batch.
func collect[T any](raw []T, format func(T) (domain.Balance, error)) []domain.Balance {
	out := make([]domain.Balance, 0, len(raw))
	for _, r := range raw {
		b, err := format(r)
		if err != nil {
			continue
		}
		if !b.Total.IsPositive() {
			continue
		}
		out = append(out, b)
	}
	return out
}
