package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/cissero/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(id string, status domain.EventStatus) domain.Event {
	return domain.Event{
		ID:     id,
		Title:  "Event " + id,
		Date:   "2026-11-01",
		Status: status,
		Participants: []domain.Participant{
			{ID: id + "-a", Name: "A"},
			{ID: id + "-b", Name: "B"},
		},
	}
}

// --- EventRepository Tests ---

func TestEventRepository_InsertionOrder(t *testing.T) {
	r := NewEventRepository(testEvent("e1", domain.StatusScheduled))
	require.NoError(t, r.Insert(testEvent("e2", domain.StatusNeedsAdmin)))
	require.NoError(t, r.Insert(testEvent("e3", domain.StatusPendingApproval)))

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"e1", "e2", "e3"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestEventRepository_InsertDuplicate(t *testing.T) {
	r := NewEventRepository(testEvent("e1", domain.StatusScheduled))
	err := r.Insert(testEvent("e1", domain.StatusScheduled))
	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}

func TestEventRepository_ReplaceKeepsPosition(t *testing.T) {
	r := NewEventRepository(testEvent("e1", domain.StatusScheduled), testEvent("e2", domain.StatusScheduled))
	e := testEvent("e1", domain.StatusCompleted)
	require.NoError(t, r.Replace("e1", e))

	list := r.List()
	assert.Equal(t, "e1", list[0].ID)
	assert.Equal(t, domain.StatusCompleted, list[0].Status)
}

func TestEventRepository_ReplaceMissing(t *testing.T) {
	r := NewEventRepository()
	err := r.Replace("nope", testEvent("nope", domain.StatusScheduled))
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}

func TestEventRepository_GetReturnsCopy(t *testing.T) {
	r := NewEventRepository(testEvent("e1", domain.StatusScheduled))
	got := r.Get("e1")
	require.NotNil(t, got)
	got.Participants[0].Name = "mutated"
	got.Title = "mutated"

	again := r.Get("e1")
	assert.Equal(t, "A", again.Participants[0].Name)
	assert.Equal(t, "Event e1", again.Title)
	assert.Nil(t, r.Get("missing"))
}

func TestEventRepository_Remove(t *testing.T) {
	r := NewEventRepository(testEvent("e1", domain.StatusScheduled), testEvent("e2", domain.StatusScheduled))
	removed, err := r.Remove("e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", removed.ID)
	assert.Nil(t, r.Get("e1"))
	assert.Len(t, r.List(), 1)

	_, err = r.Remove("e1")
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}

func TestEventRepository_CountByStatus(t *testing.T) {
	r := NewEventRepository(
		testEvent("e1", domain.StatusScheduled),
		testEvent("e2", domain.StatusScheduled),
		testEvent("e3", domain.StatusRejected),
	)
	counts := r.CountByStatus()
	assert.Equal(t, 2, counts[domain.StatusScheduled])
	assert.Equal(t, 1, counts[domain.StatusRejected])
	assert.Equal(t, 0, counts[domain.StatusNeedsAdmin])
	assert.Len(t, counts, len(domain.AllStatuses()))
}

// --- Journal Tests ---

func TestJournal_RecordSnapshotsDeepCopy(t *testing.T) {
	j := NewJournal(10)
	e := testEvent("e1", domain.StatusScheduled)
	j.Record("e1", e, domain.ActionUpdate)

	e.Participants[0].Name = "mutated after record"

	entries := j.EntriesFor("e1")
	require.Len(t, entries, 1)
	assert.Equal(t, "A", entries[0].PreviousState.Participants[0].Name)
	assert.Equal(t, domain.ActionUpdate, entries[0].Action)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestJournal_CapEvictsOldestFirst(t *testing.T) {
	j := NewJournal(DefaultJournalCap)
	for i := 0; i < DefaultJournalCap+25; i++ {
		e := testEvent(fmt.Sprintf("e%d", i), domain.StatusScheduled)
		j.Record(e.ID, e, domain.ActionUpdate)
		assert.LessOrEqual(t, j.Len(), j.Cap())
	}

	assert.Equal(t, DefaultJournalCap, j.Len())
	for i := 0; i < 25; i++ {
		assert.Empty(t, j.EntriesFor(fmt.Sprintf("e%d", i)), "entry %d should be evicted", i)
	}
	assert.Len(t, j.EntriesFor("e25"), 1)
	assert.Len(t, j.EntriesFor(fmt.Sprintf("e%d", DefaultJournalCap+24)), 1)
}

func TestJournal_EvictionIsGlobalNotPerEvent(t *testing.T) {
	j := NewJournal(3)
	j.Record("a", testEvent("a", domain.StatusScheduled), domain.ActionUpdate)
	j.Record("b", testEvent("b", domain.StatusScheduled), domain.ActionUpdate)
	j.Record("b", testEvent("b", domain.StatusScheduled), domain.ActionUpdate)
	j.Record("b", testEvent("b", domain.StatusScheduled), domain.ActionUpdate)

	assert.Empty(t, j.EntriesFor("a"))
	assert.Len(t, j.EntriesFor("b"), 3)
}

func TestJournal_MostRecentForIsNewest(t *testing.T) {
	j := NewJournal(10)
	first := testEvent("e1", domain.StatusPendingApproval)
	second := testEvent("e1", domain.StatusScheduled)
	j.Record("e1", first, domain.ActionApprove)
	j.Record("e2", testEvent("e2", domain.StatusScheduled), domain.ActionUpdate)
	j.Record("e1", second, domain.ActionUpdate)

	entry, ok := j.MostRecentFor("e1")
	require.True(t, ok)
	assert.Equal(t, domain.ActionUpdate, entry.Action)
	assert.Equal(t, domain.StatusScheduled, entry.PreviousState.Status)

	_, ok = j.MostRecentFor("zzz")
	assert.False(t, ok)
}

func TestJournal_EntriesForOldestFirst(t *testing.T) {
	j := NewJournal(10)
	j.Record("e1", testEvent("e1", domain.StatusPendingApproval), domain.ActionApprove)
	j.Record("e1", testEvent("e1", domain.StatusScheduled), domain.ActionUpdate)

	entries := j.EntriesFor("e1")
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionApprove, entries[0].Action)
	assert.Equal(t, domain.ActionUpdate, entries[1].Action)
}

func TestJournal_Remove(t *testing.T) {
	j := NewJournal(10)
	entry := j.Record("e1", testEvent("e1", domain.StatusScheduled), domain.ActionDelete)
	assert.True(t, j.Remove(entry.ID))
	assert.False(t, j.Remove(entry.ID))
	assert.Equal(t, 0, j.Len())
}

func TestJournal_DefaultCap(t *testing.T) {
	assert.Equal(t, DefaultJournalCap, NewJournal(0).Cap())
	assert.Equal(t, 5, NewJournal(5).Cap())
}

// --- Admin/User Repository Tests ---

func TestAdminRepository_FindCaseInsensitive(t *testing.T) {
	r := NewAdminRepository(domain.AdminUser{ID: "a1", Username: "Ann", Email: "Ann@Cissero.gg"})
	assert.NotNil(t, r.FindByUsername("ann"))
	assert.NotNil(t, r.FindByEmail("ann@cissero.gg"))
	assert.Nil(t, r.FindByUsername("bob"))
}

func TestAdminRepository_UpdateAndDelete(t *testing.T) {
	r := NewAdminRepository(domain.AdminUser{ID: "a1", Username: "ann", Permissions: []string{"x"}})

	a := r.FindByID("a1")
	a.Permissions[0] = "mutated"
	assert.Equal(t, "x", r.FindByID("a1").Permissions[0], "FindByID must return a copy")

	a.Name = "Ann"
	require.NoError(t, r.Update(*a))
	assert.Equal(t, "Ann", r.FindByID("a1").Name)

	require.NoError(t, r.Delete("a1"))
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(r.Delete("a1")))
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(r.Update(*a)))
}

func TestUserRepository(t *testing.T) {
	r := NewUserRepository(domain.User{ID: "u1", Username: "viewer1", Balance: 1000})
	require.NoError(t, r.Insert(domain.User{ID: "u2", Username: "viewer2", Balance: 500}))
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(r.Insert(domain.User{ID: "u3", Username: "VIEWER1"})))

	u := r.FindByUsername("Viewer2")
	require.NotNil(t, u)
	u.Balance = 400
	require.NoError(t, r.Update(*u))

	assert.Equal(t, int64(1400), r.TotalBalance())
	assert.Len(t, r.List(), 2)
}

// --- Prediction/Message Repository Tests ---

func TestPredictionRepository_Filters(t *testing.T) {
	r := NewPredictionRepository()
	require.NoError(t, r.Insert(domain.Prediction{ID: "p1", EventID: "e1", UserID: "u1"}))
	require.NoError(t, r.Insert(domain.Prediction{ID: "p2", EventID: "e1", UserID: "u2"}))
	require.NoError(t, r.Insert(domain.Prediction{ID: "p3", EventID: "e2", UserID: "u1"}))
	assert.Error(t, r.Insert(domain.Prediction{ID: "p1"}))

	assert.Len(t, r.ListByEvent("e1"), 2)
	assert.Len(t, r.ListByUser("u1"), 2)
	assert.Len(t, r.List(), 3)

	require.NoError(t, r.Update(domain.Prediction{ID: "p2", EventID: "e1", UserID: "u2", Status: domain.PredictionWon}))
	assert.Equal(t, domain.PredictionWon, r.ListByUser("u2")[0].Status)
}

func TestMessageRepository_ChatLimit(t *testing.T) {
	r := NewMessageRepository()
	for i := 0; i < 5; i++ {
		r.AppendChat(domain.Message{ID: fmt.Sprint(i), EventID: "e1", Text: fmt.Sprint(i)})
	}
	last := r.ListChat("e1", 2)
	require.Len(t, last, 2)
	assert.Equal(t, "3", last[0].Text)
	assert.Equal(t, "4", last[1].Text)
	assert.Len(t, r.ListChat("e1", 0), 5)
	assert.Empty(t, r.ListChat("e2", 10))
}

func TestMessageRepository_ThreadsAndMarkRead(t *testing.T) {
	r := NewMessageRepository()
	now := time.Now()
	r.AppendPrivate(domain.PrivateMessage{ID: "m1", UserID: "u1", Text: "hi", Timestamp: now})
	r.AppendPrivate(domain.PrivateMessage{ID: "m2", UserID: "u2", Text: "hey", Timestamp: now.Add(time.Minute)})
	r.AppendPrivate(domain.PrivateMessage{ID: "m3", UserID: "u1", FromAdmin: true, Text: "hello", Timestamp: now.Add(2 * time.Minute)})

	assert.Equal(t, []string{"u1", "u2"}, r.Threads())
	assert.Equal(t, 1, r.MarkRead("u1"))
	assert.Equal(t, 0, r.MarkRead("u1"))

	thread := r.ListPrivate("u1")
	require.Len(t, thread, 2)
	assert.True(t, thread[0].Read)
	assert.False(t, thread[1].Read, "admin replies are not marked")
}
