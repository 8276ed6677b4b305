package intrinsic

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/phobologic/reqcheck/internal/model"
)

// Fallback uses Secondary whenever Primary fails.
type Fallback struct {
	Primary   Provider
	Secondary Provider
}

func (f *Fallback) Lookup(ctx context.Context, names []string) (map[string][]model.Symbol, error) {
	out, err := f.Primary.Lookup(ctx, names)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.FromContext(ctx).Warn("using builtin extension symbols", "err", err)
	return f.Secondary.Lookup(ctx, names)
}

func (f *Fallback) Available(ctx context.Context) ([]string, error) {
	out, err := f.Primary.Available(ctx)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.FromContext(ctx).Debug("listing builtin extensions", "err", err)
	return f.Secondary.Available(ctx)
}
