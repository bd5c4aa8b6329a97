package approval

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerFile(t *testing.T) {
	t.Run("files a valid pending request", func(t *testing.T) {
		l := NewLedger()

		req := l.File(KindBudget, "raise limit to 100k", "crew-1", "trading", map[string]any{"amount": 100000})

		require.NoError(t, req.Validate())
		assert.Equal(t, StatusPending, req.Status)
		assert.Equal(t, "raise limit to 100k", req.Description)
		assert.Equal(t, "crew-1", req.RequesterID)
		assert.Equal(t, "trading", req.RequesterName)
		assert.Nil(t, req.DecidedAt)
		assert.Equal(t, uint64(1), req.Seq)
	})

	t.Run("fires the filed hook with a copy", func(t *testing.T) {
		var filed []*Request
		l := NewLedger(WithFiledHook(func(r *Request) { filed = append(filed, r) }))

		req := l.File(KindStrategy, "enter new market", "crew-2", "research", nil)

		require.Len(t, filed, 1)
		assert.Equal(t, req.ID, filed[0].ID)

		filed[0].Description = "mutated"
		stored, ok := l.Get(req.ID)
		require.True(t, ok)
		assert.Equal(t, "enter new market", stored.Description)
	})
}

func TestLedgerDecide(t *testing.T) {
	t.Run("approve settles the request once", func(t *testing.T) {
		l := NewLedger()
		req := l.File(KindBudget, "raise limit to 100k", "crew-1", "trading", nil)

		require.True(t, l.Decide(req.ID, OutcomeApprove, "ok"))

		got, ok := l.Get(req.ID)
		require.True(t, ok)
		assert.Equal(t, StatusApproved, got.Status)
		require.NotNil(t, got.DecidedAt)
		assert.Equal(t, "ok", got.DecisionNote)
		require.NoError(t, got.Validate())
	})

	t.Run("reject settles the request", func(t *testing.T) {
		l := NewLedger()
		req := l.File(KindDirective, "halt venue", "crew-1", "ops", nil)

		require.True(t, l.Decide(req.ID, OutcomeReject, "too risky"))

		got, _ := l.Get(req.ID)
		assert.Equal(t, StatusRejected, got.Status)
		assert.Equal(t, "too risky", got.DecisionNote)
	})

	t.Run("second decision is refused and changes nothing", func(t *testing.T) {
		l := NewLedger()
		req := l.File(KindBudget, "raise limit", "crew-1", "trading", nil)
		require.True(t, l.Decide(req.ID, OutcomeApprove, "first"))

		assert.False(t, l.Decide(req.ID, OutcomeReject, "second"))

		got, _ := l.Get(req.ID)
		assert.Equal(t, StatusApproved, got.Status)
		assert.Equal(t, "first", got.DecisionNote)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.False(t, NewLedger().Decide("missing", OutcomeApprove, ""))
	})

	t.Run("invalid outcome", func(t *testing.T) {
		l := NewLedger()
		req := l.File(KindBudget, "x", "crew-1", "trading", nil)
		assert.False(t, l.Decide(req.ID, Outcome("maybe"), ""))

		got, _ := l.Get(req.ID)
		assert.Equal(t, StatusPending, got.Status)
	})

	t.Run("fires the decided hook", func(t *testing.T) {
		var decided []*Request
		l := NewLedger(WithDecidedHook(func(r *Request) { decided = append(decided, r) }))
		req := l.File(KindBudget, "x", "crew-1", "trading", nil)

		l.Decide(req.ID, OutcomeApprove, "fine")
		l.Decide(req.ID, OutcomeApprove, "again") // refused, no hook

		require.Len(t, decided, 1)
		assert.Equal(t, StatusApproved, decided[0].Status)
	})
}

func TestLedgerAmend(t *testing.T) {
	l := NewLedger()
	req := l.File(KindStrategy, "double position size", "crew-1", "trading", nil)

	require.True(t, l.Amend(req.ID, "approved at half the requested size"))

	got, _ := l.Get(req.ID)
	assert.Equal(t, StatusAmended, got.Status)
	require.NotNil(t, got.DecidedAt)

	// Amended is terminal like any other decision.
	assert.False(t, l.Decide(req.ID, OutcomeApprove, ""))
	assert.False(t, l.Amend(req.ID, "again"))
}

func TestLedgerPending(t *testing.T) {
	t.Run("oldest first, settled requests excluded", func(t *testing.T) {
		base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
		tick := 0
		l := NewLedger(WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}))

		first := l.File(KindBudget, "first", "crew-1", "trading", nil)
		second := l.File(KindBudget, "second", "crew-1", "trading", nil)
		third := l.File(KindBudget, "third", "crew-1", "trading", nil)
		l.Decide(second.ID, OutcomeReject, "no")

		pending := l.Pending()
		require.Len(t, pending, 2)
		assert.Equal(t, first.ID, pending[0].ID)
		assert.Equal(t, third.ID, pending[1].ID)
	})

	t.Run("equal timestamps fall back to filing sequence", func(t *testing.T) {
		frozen := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
		l := NewLedger(WithClock(func() time.Time { return frozen }))

		var ids []string
		for i := 0; i < 5; i++ {
			ids = append(ids, l.File(KindDirective, fmt.Sprintf("req %d", i), "crew-1", "ops", nil).ID)
		}

		pending := l.Pending()
		require.Len(t, pending, 5)
		for i, req := range pending {
			assert.Equal(t, ids[i], req.ID)
		}
	})
}

func TestLedgerResolveRef(t *testing.T) {
	newLedgerWithIDs := func(ids ...string) *Ledger {
		next := 0
		l := NewLedger(WithIDGenerator(func() string {
			id := ids[next]
			next++
			return id
		}))
		return l
	}

	t.Run("empty ref selects oldest pending", func(t *testing.T) {
		l := NewLedger()
		oldest := l.File(KindBudget, "first", "crew-1", "trading", nil)
		l.File(KindBudget, "second", "crew-1", "trading", nil)

		got, err := l.ResolveRef("")
		require.NoError(t, err)
		assert.Equal(t, oldest.ID, got.ID)
	})

	t.Run("empty ref with nothing pending", func(t *testing.T) {
		l := NewLedger()
		req := l.File(KindBudget, "only", "crew-1", "trading", nil)
		l.Decide(req.ID, OutcomeApprove, "")

		_, err := l.ResolveRef("")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("exact id", func(t *testing.T) {
		l := newLedgerWithIDs("aaaa-1111", "bbbb-2222")
		l.File(KindBudget, "first", "crew-1", "trading", nil)
		l.File(KindBudget, "second", "crew-1", "trading", nil)

		got, err := l.ResolveRef("bbbb-2222")
		require.NoError(t, err)
		assert.Equal(t, "second", got.Description)
	})

	t.Run("unique id prefix", func(t *testing.T) {
		l := newLedgerWithIDs("aaaa-1111", "abcd-2222")
		l.File(KindBudget, "first", "crew-1", "trading", nil)
		l.File(KindBudget, "second", "crew-1", "trading", nil)

		got, err := l.ResolveRef("abc")
		require.NoError(t, err)
		assert.Equal(t, "second", got.Description)
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		l := newLedgerWithIDs("aaaa-1111", "aaab-2222")
		l.File(KindBudget, "first", "crew-1", "trading", nil)
		l.File(KindBudget, "second", "crew-1", "trading", nil)

		_, err := l.ResolveRef("aaa")
		require.Error(t, err)
		assert.True(t, IsAmbiguous(err))

		var amb *AmbiguousError
		require.ErrorAs(t, err, &amb)
		assert.Len(t, amb.Matches, 2)
	})

	t.Run("id substring as final tier", func(t *testing.T) {
		l := newLedgerWithIDs("aaaa-1111", "bbbb-2222")
		l.File(KindBudget, "raise notional limit", "crew-1", "trading", nil)
		l.File(KindEscalation, "venue outage", "crew-2", "ops", nil)

		got, err := l.ResolveRef("22")
		require.NoError(t, err)
		assert.Equal(t, KindEscalation, got.Kind)
	})

	t.Run("description text never matches", func(t *testing.T) {
		l := newLedgerWithIDs("aaaa-1111")
		l.File(KindBudget, "raise the limit to 100k", "crew-1", "trading", nil)

		_, err := l.ResolveRef("the")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("refs are case-insensitive", func(t *testing.T) {
		l := newLedgerWithIDs("aaaa-1111")
		l.File(KindBudget, "first", "crew-1", "trading", nil)

		got, err := l.ResolveRef("AAAA-1111")
		require.NoError(t, err)
		assert.Equal(t, "first", got.Description)
	})

	t.Run("no match", func(t *testing.T) {
		l := NewLedger()
		l.File(KindBudget, "first", "crew-1", "trading", nil)

		_, err := l.ResolveRef("zzz")
		assert.True(t, IsNotFound(err))
	})
}

func TestLedgerRestore(t *testing.T) {
	l := NewLedger()
	l.File(KindBudget, "pre-restore", "crew-1", "trading", nil)

	decidedAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	restored := []*Request{
		{ID: "r-2", Kind: KindEscalation, Description: "second", RequesterID: "c", Status: StatusPending, RequestedAt: decidedAt, Seq: 9},
		{ID: "r-1", Kind: KindBudget, Description: "first", RequesterID: "c", Status: StatusApproved, RequestedAt: decidedAt, DecidedAt: &decidedAt, Seq: 4},
	}
	l.Restore(restored)

	all := l.All()
	require.Len(t, all, 2)
	// Restore orders by sequence regardless of input order.
	assert.Equal(t, "r-1", all[0].ID)
	assert.Equal(t, "r-2", all[1].ID)

	next := l.File(KindBudget, "post-restore", "crew-1", "trading", nil)
	assert.Equal(t, uint64(10), next.Seq)
}

func TestRequestValidate(t *testing.T) {
	now := time.Now()
	valid := Request{
		ID:          "r-1",
		Kind:        KindBudget,
		Description: "raise limit",
		Status:      StatusPending,
		RequestedAt: now,
	}

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr string
	}{
		{name: "valid pending", mutate: func(*Request) {}, wantErr: ""},
		{name: "valid decided", mutate: func(r *Request) {
			r.Status = StatusRejected
			r.DecidedAt = &now
		}, wantErr: ""},
		{name: "missing id", mutate: func(r *Request) { r.ID = "" }, wantErr: "ID is empty"},
		{name: "bad kind", mutate: func(r *Request) { r.Kind = "favour" }, wantErr: "invalid request kind"},
		{name: "bad status", mutate: func(r *Request) { r.Status = "limbo" }, wantErr: "invalid request status"},
		{name: "zero timestamp", mutate: func(r *Request) { r.RequestedAt = time.Time{} }, wantErr: "timestamp is zero"},
		{name: "pending with decided_at", mutate: func(r *Request) { r.DecidedAt = &now }, wantErr: "decided_at"},
		{name: "terminal without decided_at", mutate: func(r *Request) { r.Status = StatusApproved }, wantErr: "decided_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
