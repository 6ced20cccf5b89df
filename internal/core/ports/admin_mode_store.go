package ports

import "context"

// AdminModeStore persists the acting-mode flag per browser profile. A missing
// flag reads as false.
type AdminModeStore interface {
	Get(ctx context.Context, profile string) (bool, error)
	Set(ctx context.Context, profile string, enabled bool) error
}
