package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository/sqlite"
	"finance-tracker/internal/storage"
)

type memoryStorage struct {
	objects map[string][]byte
	failPut error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) PutObject(_ context.Context, obj storage.Object) error {
	if m.failPut != nil {
		return m.failPut
	}
	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return err
	}
	m.objects[obj.Bucket+"/"+obj.Key] = body
	return nil
}

func (m *memoryStorage) ListObjects(_ context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	out := []storage.ObjectInfo{}
	for k, v := range m.objects {
		key := strings.TrimPrefix(k, bucket+"/")
		if key != k && strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (m *memoryStorage) DeletePrefix(_ context.Context, bucket, prefix string) (int, error) {
	deleted := 0
	for k := range m.objects {
		if strings.HasPrefix(k, bucket+"/"+prefix) {
			delete(m.objects, k)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memoryStorage) GetObjectURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://" + bucket + ".example.test/" + key + "?signed", nil
}

type exportFixture struct {
	ledger  LedgerService
	users   UserService
	store   *memoryStorage
	exports ExportService
	hook    *test.Hook
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()
	db, err := sqlite.OpenAndMigrate(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	f := &exportFixture{
		ledger: NewLedgerService(sqlite.NewTransactionRepository(db)),
		users:  NewUserServiceWithCost(sqlite.NewUserRepository(db), 4),
		store:  newMemoryStorage(),
		hook:   hook,
	}
	f.exports = NewExportService(f.ledger, f.store, ExportOptions{
		Bucket:    "statements",
		KeyPrefix: "/exports/",
	}, logger)
	return f
}

func (f *exportFixture) identity(t *testing.T, username string) domain.Identity {
	user, err := f.users.Register(context.Background(), username, "", "secret123")
	require.NoError(t, err)
	return domain.Identity{UserID: user.ID, Username: user.Username}
}

func TestExportWritesCallerRowsAsCSV(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)
	alice := f.identity(t, "alice")
	bob := f.identity(t, "bob")

	note := "rent, january"
	_, err := f.ledger.Create(ctx, alice, domain.NewTransaction{
		Amount:      domain.MoneyFromCents(70000),
		Date:        domain.NewDate(2024, 1, 31),
		Description: &note,
	})
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, bob, domain.NewTransaction{
		Amount: domain.MoneyFromCents(1),
		Date:   domain.NewDate(2024, 1, 1),
	})
	require.NoError(t, err)

	export, err := f.exports.Export(ctx, alice, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, export.Rows)
	assert.True(t, strings.HasPrefix(export.Key, "exports/user-1/"), export.Key)
	assert.True(t, strings.HasSuffix(export.Key, ".csv"))
	assert.Contains(t, export.URL, export.Key)
	assert.True(t, export.ExpiresAt.After(time.Now()))

	body, ok := f.store.objects["statements/"+export.Key]
	require.True(t, ok)
	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "2024-01-31", records[1][1])
	assert.Equal(t, "700.00", records[1][2])
	assert.Equal(t, "", records[1][3])
	assert.Equal(t, note, records[1][4])

	require.NotEmpty(t, f.hook.AllEntries())
	assert.Equal(t, "statement exported", f.hook.LastEntry().Message)
}

func TestExportPagesThroughWholeLedger(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)
	alice := f.identity(t, "alice")

	total := domain.MaxPageSize + 5
	for i := 0; i < total; i++ {
		_, err := f.ledger.Create(ctx, alice, domain.NewTransaction{
			Amount: domain.MoneyFromCents(int64(i + 1)),
			Date:   domain.Date{Time: domain.NewDate(2024, 1, 1).AddDate(0, 0, i)},
		})
		require.NoError(t, err)
	}

	export, err := f.exports.Export(ctx, alice, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, total, export.Rows)
}

func TestExportListAndPurgeAreScopedToCaller(t *testing.T) {
	ctx := context.Background()
	f := newExportFixture(t)
	alice := f.identity(t, "alice")
	bob := f.identity(t, "bob")

	_, err := f.exports.Export(ctx, alice, domain.TransactionFilter{})
	require.NoError(t, err)
	_, err = f.exports.Export(ctx, alice, domain.TransactionFilter{})
	require.NoError(t, err)
	_, err = f.exports.Export(ctx, bob, domain.TransactionFilter{})
	require.NoError(t, err)

	aliceObjects, err := f.exports.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, aliceObjects, 2)

	deleted, err := f.exports.Purge(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	bobObjects, err := f.exports.List(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobObjects, 1)
}

func TestExportPropagatesStorageFailure(t *testing.T) {
	f := newExportFixture(t)
	alice := f.identity(t, "alice")
	f.store.failPut = errors.New("bucket unavailable")

	_, err := f.exports.Export(context.Background(), alice, domain.TransactionFilter{})
	assert.EqualError(t, err, "bucket unavailable")
}
