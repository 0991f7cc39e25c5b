package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/groupfeed/internal/client/feed"
	"github.com/dmitrijs2005/groupfeed/internal/common"
)

func strptr(s string) *string { return &s }
func i64ptr(v int64) *int64   { return &v }

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   feed.RawEntry
		wantErr bool
	}{
		{name: "text only", entry: feed.RawEntry{Author: "alice", Text: strptr("hi")}},
		{name: "image only", entry: feed.RawEntry{Author: "alice", ImageRef: strptr("https://blob/x")}},
		{name: "no payload", entry: feed.RawEntry{Author: "alice"}, wantErr: true},
		{name: "both payloads", entry: feed.RawEntry{Author: "alice", Text: strptr("hi"), ImageRef: strptr("https://blob/x")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := DecodeEntry("m1", tt.entry)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrDecode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "m1", m.ID)
			assert.Equal(t, "alice", m.Author)
		})
	}
}

func TestReconcile_OrdersByTimestampThenID(t *testing.T) {
	snap := feed.RawSnapshot{
		"c": {Author: "carol", Timestamp: i64ptr(300), Text: strptr("three")},
		"a": {Author: "alice", Timestamp: i64ptr(100), Text: strptr("one")},
		"b": {Author: "bob", Timestamp: i64ptr(200), Text: strptr("two")},
	}

	msgs, dropped := Reconcile(snap)
	require.Equal(t, 0, dropped)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
	assert.Equal(t, "one", msgs[0].Text)
}

func TestReconcile_TwoPublishesArriveInFeedOrder(t *testing.T) {
	// publishText("alice","hi") then publishText("bob","yo"), feed-assigned
	// timestamps 100 and 200.
	snap := feed.RawSnapshot{
		"m2": {Author: "bob", Timestamp: i64ptr(200), Text: strptr("yo")},
		"m1": {Author: "alice", Timestamp: i64ptr(100), Text: strptr("hi")},
	}

	msgs, _ := Reconcile(snap)
	require.Len(t, msgs, 2)
	assert.Equal(t, "alice", msgs[0].Author)
	assert.Equal(t, "hi", msgs[0].Text)
	assert.Equal(t, "bob", msgs[1].Author)
	assert.Equal(t, "yo", msgs[1].Text)
}

func TestReconcile_PendingEntriesSortAfterResolved(t *testing.T) {
	snap := feed.RawSnapshot{
		"p2": {Author: "dan", Text: strptr("pending late id")},
		"a":  {Author: "alice", Timestamp: i64ptr(500), Text: strptr("resolved")},
		"p1": {Author: "carol", Text: strptr("pending early id")},
		"b":  {Author: "bob", Timestamp: i64ptr(100), Text: strptr("resolved earlier")},
	}

	msgs, dropped := Reconcile(snap)
	require.Equal(t, 0, dropped)
	require.Len(t, msgs, 4)

	// Resolved first (by timestamp), then the pending group by id.
	assert.Equal(t, []string{"b", "a", "p1", "p2"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID, msgs[3].ID})
	assert.False(t, msgs[2].Resolved())
	assert.False(t, msgs[3].Resolved())
}

func TestReconcile_EqualTimestampsTieBreakByID(t *testing.T) {
	snap := feed.RawSnapshot{
		"z": {Author: "zed", Timestamp: i64ptr(100), Text: strptr("z")},
		"a": {Author: "ann", Timestamp: i64ptr(100), Text: strptr("a")},
		"m": {Author: "mia", Timestamp: i64ptr(100), Text: strptr("m")},
	}

	msgs, _ := Reconcile(snap)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"a", "m", "z"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
}

func TestReconcile_Deterministic(t *testing.T) {
	snap := feed.RawSnapshot{
		"d": {Author: "d", Timestamp: i64ptr(100), Text: strptr("d")},
		"c": {Author: "c", Timestamp: i64ptr(100), Text: strptr("c")},
		"b": {Author: "b", Text: strptr("b")},
		"a": {Author: "a", Timestamp: i64ptr(50), Text: strptr("a")},
	}

	first, _ := Reconcile(snap)
	for i := 0; i < 20; i++ {
		again, _ := Reconcile(snap)
		require.Equal(t, first, again, "run %d differed", i)
	}
}

func TestReconcile_MalformedEntrySkippedNotFatal(t *testing.T) {
	snap := feed.RawSnapshot{
		"ok1": {Author: "alice", Timestamp: i64ptr(100), Text: strptr("hi")},
		"bad": {Author: "mallory"}, // no payload
		"ok2": {Author: "bob", Timestamp: i64ptr(200), Text: strptr("yo")},
	}

	msgs, dropped := Reconcile(snap)
	assert.Equal(t, 1, dropped)
	require.Len(t, msgs, 2)
	assert.Equal(t, "ok1", msgs[0].ID)
	assert.Equal(t, "ok2", msgs[1].ID)
}

func TestReconcile_EmptySnapshot(t *testing.T) {
	msgs, dropped := Reconcile(feed.RawSnapshot{})
	assert.Empty(t, msgs)
	assert.Equal(t, 0, dropped)
}
