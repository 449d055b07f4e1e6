package summary

import (
	"context"
	"time"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/storage"
)

// StoreReporter builds the report from the message log.
type StoreReporter struct {
	Store storage.Store
}

func (r StoreReporter) Report(ctx context.Context, since time.Time) (Report, error) {
	sent, failed, err := r.Store.CountOutbound(ctx, since)
	if err != nil {
		return Report{}, err
	}
	convs, err := r.Store.CountConversations(ctx, since)
	if err != nil {
		return Report{}, err
	}
	return Report{Conversations: convs, Sent: sent, Failed: failed}, nil
}
