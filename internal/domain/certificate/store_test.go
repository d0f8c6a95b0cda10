package certificate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "certificates"), zap.NewNop())
	require.NoError(t, err)
	return s
}

func intPtr(v int) *int { return &v }

func TestStore_IssueGetList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.now = func() time.Time { return time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC) }

	m, err := s.Issue(ctx, "user-1", IssueRequest{
		CourseID:    "go-101",
		CourseTitle: "Go Fundamentals",
		UserName:    "<b>Ana</b> Silva",
		Score:       intPtr(92),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", m.UserName)
	assert.Len(t, m.VerificationCode, 12)

	manifest := filepath.Join(s.dir, "manifests", "2024", "03", m.ID+".json")
	_, err = os.Stat(manifest)
	require.NoError(t, err)

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, 92, *got.Score)
	assert.Equal(t, "Go Fundamentals", got.CourseTitle)

	s.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	newer, err := s.Issue(ctx, "user-1", IssueRequest{CourseID: "go-201", CourseTitle: "Concurrency", UserName: "Ana Silva"})
	require.NoError(t, err)
	_, err = s.Issue(ctx, "user-2", IssueRequest{CourseID: "go-101", CourseTitle: "Go Fundamentals", UserName: "Bo"})
	require.NoError(t, err)

	list, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, m.ID, list[1].ID)
	assert.Equal(t, "manifests/2024/05/"+newer.ID+".json", list[0].Path)
}

func TestStore_IssueRejectsMarkupOnlyText(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Issue(context.Background(), "user-1", IssueRequest{
		CourseID:    "go-101",
		CourseTitle: "<script>alert(1)</script>",
		UserName:    "Ana",
	})
	assert.ErrorIs(t, err, ErrEmptyText)

	list, err := s.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_PlainTextSurvivesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, err := s.Issue(ctx, "user-1", IssueRequest{
		CourseID:    "go-rust",
		CourseTitle: "Go & Rust <i>side by side</i>",
		UserName:    "Seán O'Brien",
	})
	require.NoError(t, err)

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Seán O'Brien", got.UserName)
	assert.Equal(t, "Go & Rust side by side", got.CourseTitle)

	list, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Go & Rust side by side", list[0].CourseTitle)
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"../index", "not-a-uuid", "3f1c6f9e-6d7e-4a0b-9b43-7a1d2f1b5c11"} {
		_, err := s.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}

func TestStore_ConcurrentIssueKeepsIndexIntact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Issue(ctx, "user-1", IssueRequest{
				CourseID:    fmt.Sprintf("course-%d", i),
				CourseTitle: "Course",
				UserName:    "Ana",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 20)
	for _, l := range lines {
		var sum Summary
		assert.NoError(t, json.Unmarshal([]byte(l), &sum))
	}

	list, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestStore_SkipsCorruptIndexLines(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m, err := s.Issue(ctx, "user-1", IssueRequest{CourseID: "c", CourseTitle: "Course", UserName: "Ana"})
	require.NoError(t, err)

	f, err := os.OpenFile(filepath.Join(s.dir, indexFile), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	list, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, m.ID, list[0].ID)
}
