package dbsql_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodfeed/internal/dbsql"
	"moodfeed/internal/dbsql/dbsqltest"
)

func TestLoadAuthors(t *testing.T) {
	db, mock := dbsqltest.New(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id`,`username`,`nickname`,`avatar_url` FROM `users` WHERE id IN (?,?)")).
		WithArgs(3, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "nickname", "avatar_url"}).
			AddRow(3, "alice", "Alice", "http://a/avatar.png").
			AddRow(5, "bob", "Bob", nil))

	authors, err := dbsql.LoadAuthors(context.Background(), db, []uint64{3, 5, 3})
	require.NoError(t, err)
	require.Len(t, authors, 2)
	assert.Equal(t, "Alice", authors[3].Nickname)
	require.NotNil(t, authors[3].AvatarURL)
	assert.Nil(t, authors[5].AvatarURL)
}

func TestLoadAuthors_EmptySkipsQuery(t *testing.T) {
	db, _ := dbsqltest.New(t)

	authors, err := dbsql.LoadAuthors(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Empty(t, authors)
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []uint64{4, 1, 9}, dbsql.UniqueIDs([]uint64{4, 1, 4, 9, 1}))
	assert.Empty(t, dbsql.UniqueIDs(nil))
}
