package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"product-studio-backend/internal/workflow"
)

var _ workflow.PaymentGateway = (*StubGateway)(nil)

// StubGateway accepts every charge. It backs local runs and tests.
type StubGateway struct {
	mu      sync.Mutex
	charges []StubCharge
	byKey   map[string]string
	// Fail, when set, is returned from every Charge.
	Fail error
}

type StubCharge struct {
	Reference      string
	AmountCents    int64
	Description    string
	IdempotencyKey string
}

func NewStubGateway() *StubGateway {
	return &StubGateway{byKey: make(map[string]string)}
}

// Charge records a charge. A key seen before returns the earlier reference
// without charging again, the way a real provider replays it.
func (g *StubGateway) Charge(ctx context.Context, amountCents int64, description, idempotencyKey string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Fail != nil {
		return "", g.Fail
	}
	if amountCents <= 0 {
		return "", fmt.Errorf("amount must be positive, got %d", amountCents)
	}
	if ref, ok := g.byKey[idempotencyKey]; ok && idempotencyKey != "" {
		return ref, nil
	}
	ref := "stub_" + uuid.NewString()
	g.charges = append(g.charges, StubCharge{
		Reference:      ref,
		AmountCents:    amountCents,
		Description:    description,
		IdempotencyKey: idempotencyKey,
	})
	if idempotencyKey != "" {
		if g.byKey == nil {
			g.byKey = make(map[string]string)
		}
		g.byKey[idempotencyKey] = ref
	}
	return ref, nil
}

// Charges returns a copy of every successful charge so far.
func (g *StubGateway) Charges() []StubCharge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]StubCharge(nil), g.charges...)
}
