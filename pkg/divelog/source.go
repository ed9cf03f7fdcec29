package divelog

import "context"

// Source is read access to the records surrounding the dive stream. The
// store implements it; export assemblers consume it.
type Source interface {
	Sites(ctx context.Context) ([]Site, error)
	SiteName(ctx context.Context, id int64, sep string) (string, error)
	Buddies(ctx context.Context) ([]Buddy, error)
	DiveBuddies(ctx context.Context, diveID int64) ([]int64, error)
	Equipment(ctx context.Context) ([]Equipment, error)
	DiveEquipment(ctx context.Context, diveID int64) ([]int64, error)
	Tanks(ctx context.Context) ([]Tank, error)
	DiveTanks(ctx context.Context, diveID int64) ([]DiveTank, error)
	Samples(ctx context.Context, diveID int64, fn func(Sample) error) error
}
