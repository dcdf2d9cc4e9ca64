package services

import (
	"context"
	"time"

	"asistencia-backend/internal/dashboard"
)

type asyncNotifier struct {
	next    dashboard.Notifier
	timeout time.Duration
}

// Async runs a notifier in its own goroutine so slow push or chat APIs do
// not hold up the mutation response.
func Async(next dashboard.Notifier, timeout time.Duration) dashboard.Notifier {
	return &asyncNotifier{next: next, timeout: timeout}
}

func (a *asyncNotifier) Notify(ctx context.Context, ev dashboard.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		a.next.Notify(ctx, ev)
	}()
}
