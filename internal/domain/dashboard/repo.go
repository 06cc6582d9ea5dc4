package dashboard

import "context"

// Repository answers the aggregate queries behind the dashboard. Only rows
// that are not soft-deleted are counted.
type Repository interface {
	Stats(ctx context.Context, w Window) (*Stats, error)
	PeakHours(ctx context.Context, w Window) ([24]int, error)
	TopPathologies(ctx context.Context, w Window, limit int) ([]NamedCount, error)
	TopDoctors(ctx context.Context, w Window, limit int) ([]DoctorLoad, error)
	// CountAttentions returns one count per window, in order.
	CountAttentions(ctx context.Context, windows []Window) ([]int, error)
}
