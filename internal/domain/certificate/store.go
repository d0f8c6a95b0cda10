package certificate

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	manifestsDir = "manifests"
	indexFile    = "index.jsonl"
)

// Store keeps certificate manifests as JSON files:
//
//	{dir}/manifests/{YYYY}/{MM}/{id}.json
//	{dir}/index.jsonl
//
// Manifests are written with tmp+rename. Index appends are serialized by mu.
type Store struct {
	dir       string
	mu        sync.Mutex
	sanitizer *bluemonday.Policy
	log       *zap.Logger
	now       func() time.Time
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, manifestsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create certificate dir: %w", err)
	}
	return &Store{
		dir:       abs,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
		now:       time.Now,
	}, nil
}

func (s *Store) Issue(ctx context.Context, userID string, req IssueRequest) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &Manifest{
		ID:               uuid.NewString(),
		VerificationCode: verificationCode(),
		UserID:           userID,
		UserName:         s.clean(req.UserName),
		CourseID:         s.clean(req.CourseID),
		CourseTitle:      s.clean(req.CourseTitle),
		Score:            req.Score,
		IssuedAt:         s.now().UTC(),
	}
	if m.UserName == "" || m.CourseTitle == "" || m.CourseID == "" {
		return nil, ErrEmptyText
	}

	rel := path.Join(manifestsDir, m.IssuedAt.Format("2006"), m.IssuedAt.Format("01"), m.ID+".json")
	if err := s.writeManifest(rel, m); err != nil {
		return nil, err
	}
	if err := s.appendIndex(&Summary{
		ID:               m.ID,
		UserID:           m.UserID,
		CourseID:         m.CourseID,
		CourseTitle:      m.CourseTitle,
		VerificationCode: m.VerificationCode,
		IssuedAt:         m.IssuedAt,
		Path:             rel,
	}); err != nil {
		return nil, err
	}

	s.log.Info("certificate issued",
		zap.String("certificate_id", m.ID),
		zap.String("user_id", userID),
		zap.String("course_id", m.CourseID),
	)
	return m, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Manifest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var found *Summary
	err := s.scanIndex(ctx, func(sum *Summary) bool {
		if sum.ID == id {
			found = sum
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(found.Path)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", id, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", id, err)
	}
	return &m, nil
}

// ListByUser returns the user's certificates, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Summary, error) {
	out := []Summary{}
	err := s.scanIndex(ctx, func(sum *Summary) bool {
		if sum.UserID == userID {
			out = append(out, *sum)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

// clean strips markup from plain-text fields. The strict policy escapes what
// it keeps, so entities are decoded again; JSON encoding handles the rest.
func (s *Store) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(v)))
}

func (s *Store) writeManifest(rel string, m *Manifest) error {
	dst := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".manifest-*")
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit manifest: %w", err)
	}
	return nil
}

func (s *Store) appendIndex(sum *Summary) error {
	line, err := json.Marshal(sum)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.dir, indexFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append index: %w", err)
	}
	return f.Close()
}

// scanIndex calls fn for every readable index line until fn returns false.
func (s *Store) scanIndex(ctx context.Context, fn func(*Summary) bool) error {
	f, err := os.Open(filepath.Join(s.dir, indexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for lineNo := 1; sc.Scan(); lineNo++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(sc.Bytes()) == 0 {
			continue
		}
		var sum Summary
		if err := json.Unmarshal(sc.Bytes(), &sum); err != nil {
			s.log.Warn("skip unreadable index line", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		if !fn(&sum) {
			return nil
		}
	}
	return sc.Err()
}

func verificationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
