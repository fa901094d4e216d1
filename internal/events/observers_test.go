package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.err
}

func TestNATSObserver_Update(t *testing.T) {
	conn := &fakeConn{}
	obs := &NATSObserver{conn: conn, prefix: "moodfeed"}

	err := obs.Update(New(CommentCreated, 4, 7, 12))
	require.NoError(t, err)
	assert.Equal(t, "moodfeed.comment.created", conn.subject)

	var got Event
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, CommentCreated, got.Type)
	assert.Equal(t, uint64(4), got.ActorID)
	assert.Equal(t, uint64(12), got.SubjectID)
}

func TestNATSObserver_PublishError(t *testing.T) {
	obs := &NATSObserver{conn: &fakeConn{err: errors.New("no responders")}, prefix: "moodfeed"}

	err := obs.Update(New(PostLiked, 1, 2, 3))
	assert.ErrorContains(t, err, "failed to publish event")
}

func TestLogObserver_Update(t *testing.T) {
	logger, hook := test.NewNullLogger()
	obs := NewLogObserver(logger)

	require.NoError(t, obs.Update(New(UserFollowed, 1, 2, 0)))

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, UserFollowed, entry.Data["event"])
	assert.Equal(t, uint64(2), entry.Data["target"])
}
