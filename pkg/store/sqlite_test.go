package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_ReadEmptyDataset(t *testing.T) {
	s := newTestStore(t)

	records, err := s.Read(DatasetActiveLoans)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_WriteAndReadBack(t *testing.T) {
	s := newTestStore(t)

	in := []Record{
		{"Collection_ID": "C00001", "Date": "2026-03-10 12:00:00", "Loan_ID": "L0001", "Party_Name": "Ravi", "Amount_Collected": "200", "Days_Count": "2", "Payment_Mode": "Cash"},
		{"Collection_ID": "C00002", "Date": "2026-03-11 12:00:00", "Loan_ID": "L0001", "Party_Name": "Ravi", "Amount_Collected": "300", "Days_Count": "3", "Payment_Mode": "UPI"},
	}
	require.NoError(t, s.Write(DatasetCollections, in))

	out, err := s.Read(DatasetCollections)
	require.NoError(t, err)
	require.Len(t, out, 2)
	// Insertion order preserved.
	assert.Equal(t, "C00001", out[0]["Collection_ID"])
	assert.Equal(t, "C00002", out[1]["Collection_ID"])
	assert.Equal(t, in[1], out[1])
}

func TestSQLiteStore_WriteReplacesWholesale(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Write(DatasetUsers, []Record{
		{"username": "admin", "name": "Admin", "password_hash": "aaa"},
		{"username": "other", "name": "Other", "password_hash": "bbb"},
	}))
	require.NoError(t, s.Write(DatasetUsers, []Record{
		{"username": "admin", "name": "Admin", "password_hash": "ccc"},
	}))

	out, err := s.Read(DatasetUsers)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ccc", out[0]["password_hash"])

	// Writing an empty snapshot clears the dataset.
	require.NoError(t, s.Write(DatasetUsers, nil))
	out, err = s.Read(DatasetUsers)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSQLiteStore_MissingFieldsDefaultEmpty(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Write(DatasetUsers, []Record{{"username": "admin"}}))
	out, err := s.Read(DatasetUsers)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "", out[0]["password_hash"])
}

func TestSQLiteStore_UnknownDataset(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Read("Nope")
	assert.Error(t, err)
	assert.Error(t, s.Write("Nope", nil))
}
