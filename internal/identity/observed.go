package identity

import (
	"context"
	"time"
)

// Observer records the outcome and latency of provider calls.
type Observer interface {
	ObserveIdentityCall(operation, outcome string, duration time.Duration)
}

type observedProvider struct {
	next     Provider
	observer Observer
}

// Observed wraps p so every call is reported to observer.
func Observed(p Provider, observer Observer) Provider {
	if observer == nil {
		return p
	}
	return &observedProvider{next: p, observer: observer}
}

func (o *observedProvider) CreateIdentity(ctx context.Context, in NewIdentity) (Identity, error) {
	start := time.Now()
	id, err := o.next.CreateIdentity(ctx, in)
	o.observe("create", start, err)
	return id, err
}

func (o *observedProvider) UpdateIdentity(ctx context.Context, id string, in IdentityUpdate) error {
	start := time.Now()
	err := o.next.UpdateIdentity(ctx, id, in)
	o.observe("update", start, err)
	return err
}

func (o *observedProvider) DeleteIdentity(ctx context.Context, id string) error {
	start := time.Now()
	err := o.next.DeleteIdentity(ctx, id)
	o.observe("delete", start, err)
	return err
}

func (o *observedProvider) observe(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	o.observer.ObserveIdentityCall(operation, outcome, time.Since(start))
}
