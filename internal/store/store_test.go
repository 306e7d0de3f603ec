package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	// Running migrate again should be a no-op
	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	tables := []string{"settings", "admins", "bot_chats", "qna_answers", "message_log"}
	for _, table := range tables {
		var name string
		err := db.sql.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

// --- Settings Store tests ---

func TestSettingsStore_GetUnset(t *testing.T) {
	ss := NewSettingsStore(testDB(t))

	_, ok := ss.Get("missing")
	assert.False(t, ok)
	assert.True(t, ss.GetBool("missing", true))
	assert.False(t, ss.GetBool("missing", false))
}

func TestSettingsStore_SetAndGet(t *testing.T) {
	ss := NewSettingsStore(testDB(t))

	require.NoError(t, ss.Set("greeting", "hello"))
	v, ok := ss.Get("greeting")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	// Overwrite
	require.NoError(t, ss.Set("greeting", "hi"))
	v, _ = ss.Get("greeting")
	assert.Equal(t, "hi", v)
}

func TestSettingsStore_Bool(t *testing.T) {
	ss := NewSettingsStore(testDB(t))

	require.NoError(t, ss.SetBool("respond_all", true))
	assert.True(t, ss.GetBool("respond_all", false))

	require.NoError(t, ss.SetBool("respond_all", false))
	assert.False(t, ss.GetBool("respond_all", true))
}

// --- Admin Store tests ---

func TestAdminStore_AddCheckRemove(t *testing.T) {
	as := NewAdminStore(testDB(t))

	assert.False(t, as.IsAdmin("alice"))

	require.NoError(t, as.Add("alice", "config"))
	assert.True(t, as.IsAdmin("alice"))

	// Adding twice is fine
	require.NoError(t, as.Add("alice", "bob"))
	assert.Equal(t, []string{"alice"}, as.List())

	require.NoError(t, as.Remove("alice"))
	assert.False(t, as.IsAdmin("alice"))
	assert.Empty(t, as.List())
}

// --- Chat Store tests ---

func TestChatStore_AddCheckRemove(t *testing.T) {
	cs := NewChatStore(testDB(t))

	assert.False(t, cs.Contains("irc", "#delta"))

	require.NoError(t, cs.Add("irc", "#delta"))
	require.NoError(t, cs.Add("irc", "#other"))
	require.NoError(t, cs.Add("gateway", "#delta"))

	assert.True(t, cs.Contains("irc", "#delta"))
	assert.False(t, cs.Contains("gateway", "#other"))
	assert.Equal(t, []string{"#delta", "#other"}, cs.List("irc"))

	require.NoError(t, cs.Remove("irc", "#delta"))
	assert.False(t, cs.Contains("irc", "#delta"))
	assert.Equal(t, []string{"#other"}, cs.List("irc"))
}

// --- QnA Store tests ---

func TestQnAStore_AnswerLifecycle(t *testing.T) {
	qs := NewQnAStore(testDB(t))

	_, ok := qs.Answer("opening-hours")
	assert.False(t, ok)

	require.NoError(t, qs.SetAnswer("opening-hours", "We open at 9."))
	a, ok := qs.Answer("opening-hours")
	assert.True(t, ok)
	assert.Equal(t, "We open at 9.", a)

	// Replace
	require.NoError(t, qs.SetAnswer("opening-hours", "We open at 10."))
	a, _ = qs.Answer("opening-hours")
	assert.Equal(t, "We open at 10.", a)

	require.NoError(t, qs.SetAnswer("address", "Main Street 1"))
	assert.Equal(t, []string{"address", "opening-hours"}, qs.Keys())

	require.NoError(t, qs.Delete("address"))
	assert.Equal(t, []string{"opening-hours"}, qs.Keys())
}

// --- Message Log tests ---

func TestMessageLog_RecordAndPurge(t *testing.T) {
	ml := NewMessageLog(testDB(t))

	ml.Record(domain.InboundMessage{
		ID:        "m1",
		ChannelID: "irc",
		ChatID:    "#delta",
		From:      "alice",
		Body:      "hello bot",
		Mentioned: true,
		Timestamp: time.Now(),
	})
	ml.Record(domain.InboundMessage{
		ChannelID: "irc",
		ChatID:    "#delta",
		From:      "bob",
		Body:      "what time is it",
	})

	n, err := ml.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	purged, err := ml.PurgeMessages(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, purged)

	n, err = ml.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}
