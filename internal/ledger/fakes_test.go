package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/gyro-pay/gyro/internal/notification"
)

type allowAll struct{}

func (allowAll) RequireAuth(context.Context, string) error { return nil }

type denyAll struct{}

func (denyAll) RequireAuth(context.Context, string) error { return ErrNotAuthorized }

type fakeRegistry struct {
	owner  string
	admins []string
	err    error
}

func (r *fakeRegistry) IsAdmin(_ context.Context, address string) (bool, error) {
	for _, a := range r.admins {
		if a == address {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRegistry) Admins(context.Context) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.admins, nil
}

func (r *fakeRegistry) Owner(context.Context) (string, error) {
	if r.owner == "" {
		return "", ErrOwnerNotSet
	}
	return r.owner, nil
}

type transferCall struct {
	from, to string
	amount   uint32
}

type approveCall struct {
	owner, spender string
	amount         uint32
	expiresAt      time.Time
}

type fakeValue struct {
	allowances map[string]uint32
	queried    []string
	transfers  []transferCall
	approvals  []approveCall
	failTx     error
}

func newFakeValue() *fakeValue {
	return &fakeValue{allowances: make(map[string]uint32)}
}

func (v *fakeValue) Allowance(_ context.Context, owner, spender string) (uint32, error) {
	v.queried = append(v.queried, owner)
	return v.allowances[owner+"|"+spender], nil
}

func (v *fakeValue) Approve(_ context.Context, owner, spender string, amount uint32, expiresAt time.Time) error {
	v.approvals = append(v.approvals, approveCall{owner: owner, spender: spender, amount: amount, expiresAt: expiresAt})
	v.allowances[owner+"|"+spender] = amount
	return nil
}

func (v *fakeValue) Transfer(_ context.Context, from, to string, amount uint32) error {
	if v.failTx != nil {
		return v.failTx
	}
	v.transfers = append(v.transfers, transferCall{from: from, to: to, amount: amount})
	return nil
}

type recordingNotifier struct {
	messages []notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

var errRegistryDown = errors.New("registry down")
