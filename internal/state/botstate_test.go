package state

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicsim/internal/domain"
	"civicsim/internal/persona"
	"civicsim/internal/security/secretbox"
	"civicsim/internal/store/file"
	"civicsim/internal/store/memory"
)

func sampleAccount(id string) domain.Account {
	return domain.Account{
		Credentials:    domain.Credentials{Username: "user_" + id, Email: id + "@civicsim.example", Password: "pw-" + id},
		AuthToken:      "tok-" + id,
		PlatformUserID: id,
		Persona:        persona.Seed()[0],
		Location:       domain.Location{City: "Austin", State: "TX"},
		CreatedAt:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestLoadMissingSnapshotDefaults(t *testing.T) {
	s := Load(context.Background(), memory.NewStore())
	snap := s.Snapshot()
	assert.Empty(t, snap.Accounts)
	assert.False(t, snap.Posting)
	assert.Equal(t, domain.Statistics{}, snap.Statistics)
}

func TestLoadCorruptSnapshotDefaults(t *testing.T) {
	s := Load(context.Background(), memory.NewStoreWith([]byte(`{"accounts": [`)))
	assert.Equal(t, 0, s.AccountCount())
	assert.False(t, s.Posting())
}

func TestSaveLoadRoundTripThroughFile(t *testing.T) {
	ctx := context.Background()
	st, err := file.NewStore(filepath.Join(t.TempDir(), "state", "bot-state.json"))
	require.NoError(t, err)

	start := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	s := Load(ctx, st)
	require.NoError(t, s.AddAccount(ctx, sampleAccount("u-1")))
	require.NoError(t, s.AddAccount(ctx, sampleAccount("u-2")))
	require.NoError(t, s.SetPosting(ctx, true, start))
	require.NoError(t, s.RecordPost(ctx, "u-1", start.Add(time.Minute)))
	require.NoError(t, s.RecordEngagement(ctx, "u-2", start.Add(2*time.Minute)))

	reloaded := Load(ctx, st)
	assert.Equal(t, s.Snapshot(), reloaded.Snapshot())

	snap := reloaded.Snapshot()
	assert.Len(t, snap.Accounts, 2)
	assert.True(t, snap.Posting)
	assert.Equal(t, 1, snap.Statistics.PostsCreated)
	assert.Equal(t, 1, snap.Statistics.Engagements)
	assert.Equal(t, 2, snap.Statistics.AccountsCreated)
	require.NotNil(t, snap.Statistics.StartTime)
	assert.True(t, start.Equal(*snap.Statistics.StartTime))
	require.NotNil(t, snap.Statistics.LastPost)
	assert.True(t, start.Add(time.Minute).Equal(*snap.Statistics.LastPost))
}

func TestSnapshotWireFormat(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	s := Load(ctx, st)
	require.NoError(t, s.SetPosting(ctx, false, time.Now()))

	raw, err := st.Load(ctx)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "accounts")
	assert.Contains(t, doc, "posting")
	stats, ok := doc["statistics"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"postsCreated", "engagements", "accountsCreated", "startTime", "lastPost"} {
		assert.Contains(t, stats, key)
	}
	assert.Nil(t, stats["startTime"])
}

func TestEveryMutationPersists(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	s := Load(ctx, st)
	now := time.Now()

	require.NoError(t, s.AddAccount(ctx, sampleAccount("u-1")))
	require.NoError(t, s.SetPosting(ctx, true, now))
	require.NoError(t, s.RecordPost(ctx, "u-1", now))
	require.NoError(t, s.RecordEngagement(ctx, "u-1", now))
	require.NoError(t, s.SetPosting(ctx, false, now))
	assert.Equal(t, 5, st.Saves())
}

func TestSaveFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	st.FailSaves = true
	s := Load(ctx, st)

	err := s.AddAccount(ctx, sampleAccount("u-1"))
	assert.Error(t, err)
	assert.Equal(t, 1, s.AccountCount())
}

func TestUsageResetsOnNewDay(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, memory.NewStore())
	day1 := time.Date(2024, 3, 2, 23, 0, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Hour)

	require.NoError(t, s.RecordPost(ctx, "u-1", day1))
	require.NoError(t, s.RecordPost(ctx, "u-1", day1))
	require.NoError(t, s.RecordEngagement(ctx, "u-1", day1))
	assert.Equal(t, domain.DailyUsage{Day: "2024-03-02", Posts: 2, Engagements: 1}, s.Usage("u-1", DayKey(day1)))

	assert.Equal(t, domain.DailyUsage{Day: "2024-03-03"}, s.Usage("u-1", DayKey(day2)))
	require.NoError(t, s.RecordPost(ctx, "u-1", day2))
	assert.Equal(t, domain.DailyUsage{Day: "2024-03-03", Posts: 1}, s.Usage("u-1", DayKey(day2)))
	assert.Equal(t, 3, s.Snapshot().Statistics.PostsCreated)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, memory.NewStore())
	require.NoError(t, s.AddAccount(ctx, sampleAccount("u-1")))
	require.NoError(t, s.RecordPost(ctx, "u-1", time.Now()))

	snap := s.Snapshot()
	snap.Accounts[0].AuthToken = "mutated"
	snap.DailyUsage["u-1"] = domain.DailyUsage{}
	*snap.Statistics.LastPost = time.Time{}

	fresh := s.Snapshot()
	assert.Equal(t, "tok-u-1", fresh.Accounts[0].AuthToken)
	assert.Equal(t, 1, fresh.DailyUsage["u-1"].Posts)
	assert.False(t, fresh.Statistics.LastPost.IsZero())
}

func testBox(t *testing.T, seed byte) *secretbox.Box {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i) + seed
	}
	box, err := secretbox.New(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	return box
}

func TestSealedSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	box := testBox(t, 3)

	s := Load(ctx, st, WithSecretBox(box))
	require.NoError(t, s.AddAccount(ctx, sampleAccount("u-1")))

	raw, err := st.Load(ctx)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "pw-u-1"))
	assert.False(t, strings.Contains(string(raw), "tok-u-1"))
	assert.Contains(t, string(raw), secretbox.SealedPrefix)

	reloaded := Load(ctx, st, WithSecretBox(box))
	accounts := reloaded.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "pw-u-1", accounts[0].Credentials.Password)
	assert.Equal(t, "tok-u-1", accounts[0].AuthToken)
}

func TestSealedSnapshotWithoutKeyDefaults(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	s := Load(ctx, st, WithSecretBox(testBox(t, 3)))
	require.NoError(t, s.AddAccount(ctx, sampleAccount("u-1")))

	assert.Equal(t, 0, Load(ctx, st).AccountCount())
	assert.Equal(t, 0, Load(ctx, st, WithSecretBox(testBox(t, 7))).AccountCount())
}

func TestPlaintextSnapshotOpensWithKey(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()
	s := Load(ctx, st)
	require.NoError(t, s.AddAccount(ctx, sampleAccount("u-1")))

	reloaded := Load(ctx, st, WithSecretBox(testBox(t, 3)))
	require.Equal(t, 1, reloaded.AccountCount())
	assert.Equal(t, "pw-u-1", reloaded.Accounts()[0].Credentials.Password)
}
