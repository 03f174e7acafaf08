package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molsearch/internal/domain/molecule"
	appErrors "github.com/turtacn/molsearch/pkg/errors"
	moleculeTypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

func TestHistorySave(t *testing.T) {
	db := &fakeDB{}
	repo := NewHistoryRepository(db, nil)

	rec := molecule.NewSearchRecord("aspirin", moleculeTypes.SearchByName, 4, 250*time.Millisecond)
	require.NoError(t, repo.Save(context.Background(), rec))

	assert.Contains(t, db.lastSQL, "INSERT INTO search_history")
	assert.Equal(t, rec.ID, db.lastArgs[0])
	assert.Equal(t, "aspirin", db.lastArgs[1])
	assert.Equal(t, int64(250), db.lastArgs[4])
}

func TestHistorySave_ErrorIsTyped(t *testing.T) {
	db := &fakeDB{execErr: assert.AnError}
	repo := NewHistoryRepository(db, nil)

	err := repo.Save(context.Background(), molecule.NewSearchRecord("q", moleculeTypes.SearchByName, 0, 0))
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeHistoryWriteFailed))
}

func TestHistoryList(t *testing.T) {
	now := time.Now()
	db := &fakeDB{rows: &fakeRows{data: [][]any{
		{"id-2", "benzene", "name", 2, int64(120), now},
		{"id-1", "CCO", "smiles", 1, int64(80), now.Add(-time.Minute)},
	}}}
	repo := NewHistoryRepository(db, nil)

	records, err := repo.List(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Contains(t, db.lastSQL, "ORDER BY created_at DESC")
	assert.Equal(t, 50, db.lastArgs[0])
	assert.Equal(t, "benzene", records[0].Query)
	assert.Equal(t, moleculeTypes.SearchBySMILES, records[1].SearchType)
	assert.Equal(t, int64(80), records[1].DurationMS)
}

func TestHistoryList_QueryErrorIsWrapped(t *testing.T) {
	db := &fakeDB{queryErr: assert.AnError}
	repo := NewHistoryRepository(db, nil)

	_, err := repo.List(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrCodeDatabaseError))
}
