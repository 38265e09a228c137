package i

import "context"

// SortedQueue is a score-ordered queue shared by every matchmaker instance.
type SortedQueue interface {
	Enqueue(ctx context.Context, queueKey string, score float64, member string) error

	// DequeTops pops amount members with the lowest scores, or none when fewer are queued.
	DequeTops(ctx context.Context, queueKey string, amount int64) ([]string, error)
	Count(ctx context.Context, queueKey string) int64
}
