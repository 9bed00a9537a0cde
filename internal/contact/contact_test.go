package contact

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "contacts.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSubmitTrimsAndStores(t *testing.T) {
	s := openTemp(t)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	m, err := s.Submit(ctx, Message{Name: "  Ada ", Email: "ada@example.com\n", Message: "\thello  "})
	require.NoError(t, err)
	assert.Equal(t, "Ada", m.Name)
	assert.Equal(t, "ada@example.com", m.Email)
	assert.Equal(t, "hello", m.Message)
	assert.NotEmpty(t, m.ID)

	list, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)
	assert.Equal(t, "hello", list[0].Message)
	assert.True(t, list[0].Timestamp.Equal(fixed))
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	tests := []struct {
		name string
		msg  Message
	}{
		{"empty", Message{}},
		{"blank name", Message{Name: "   ", Email: "a@b.c", Message: "hi"}},
		{"blank email", Message{Name: "A", Email: "\t", Message: "hi"}},
		{"blank message", Message{Name: "A", Email: "a@b.c", Message: "\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Submit(ctx, tt.msg)
			assert.ErrorIs(t, err, ErrMissingField)
		})
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "rejected messages must not be stored")
}

func TestNormalizeNamesMissingFields(t *testing.T) {
	m := Message{Name: "A"}
	err := m.Normalize()
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "email, message")
}

func TestListNewestFirstWithLimit(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return at }
		_, err := s.Submit(ctx, Message{Name: name, Email: "x@y.z", Message: "m"})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Name)
	assert.Equal(t, "first", all[2].Name)

	two, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestReopenKeepsMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.db")
	s, err := Open(path, nil)
	require.NoError(t, err)
	_, err = s.Submit(context.Background(), Message{Name: "a", Email: "b", Message: "c"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path, nil)
	require.NoError(t, err)
	defer s2.Close()
	n, err := s2.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSuccessMessage(t *testing.T) {
	assert.Equal(t, "Message sent! I'll get back to you soon.", SuccessMessage)
}
