package progression

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"MindPeak/internal/model"
	"MindPeak/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// memFlagStore 内存版设备侧标志缓存
type memFlagStore struct {
	mu     sync.Mutex
	flags  map[string]bool
	getErr error
	setErr error
	sets   []string
}

func newMemFlagStore() *memFlagStore {
	return &memFlagStore{flags: make(map[string]bool)}
}

func flagStoreKey(userID int64, flag string) string {
	return fmt.Sprintf("%d:%s", userID, flag)
}

func (s *memFlagStore) Get(ctx context.Context, userID int64, flag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return false, s.getErr
	}
	return s.flags[flagStoreKey(userID, flag)], nil
}

func (s *memFlagStore) Set(ctx context.Context, userID int64, flag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.flags[flagStoreKey(userID, flag)] = true
	s.sets = append(s.sets, flag)
	return nil
}

func (s *memFlagStore) Remove(ctx context.Context, userID int64, flag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flags, flagStoreKey(userID, flag))
	return nil
}

func (s *memFlagStore) setCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets)
}

type stubUsers struct {
	user  *model.User
	err   error
	delay time.Duration
	calls int32
	onGet func()
}

func (s *stubUsers) GetByPublicID(ctx context.Context, publicID int64) (*model.User, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.onGet != nil {
		s.onGet()
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type stubRecords struct {
	record *model.ProgressRecord
	err    error
}

func (s *stubRecords) Get(ctx context.Context, userID int64) (*model.ProgressRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

type stubStats struct {
	badges      int64
	exercises   int64
	badgeErr    error
	exerciseErr error
}

func (s *stubStats) BadgeCount(ctx context.Context, userID int64) (int64, error) {
	if s.badgeErr != nil {
		return 0, s.badgeErr
	}
	return s.badges, nil
}

func (s *stubStats) ExerciseCompletionCount(ctx context.Context, userID int64) (int64, error) {
	if s.exerciseErr != nil {
		return 0, s.exerciseErr
	}
	return s.exercises, nil
}

// memPathStore 内存版路径进度存储
type memPathStore struct {
	mu       sync.Mutex
	progress map[int64]*model.PathProgress
	saveErr  error
	saves    int
}

func newMemPathStore() *memPathStore {
	return &memPathStore{progress: make(map[int64]*model.PathProgress)}
}

func (s *memPathStore) Get(ctx context.Context, userID int64) (*model.PathProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.CompletedDays = append(model.DaySet{}, p.CompletedDays...)
	return &cp, nil
}

func (s *memPathStore) Save(ctx context.Context, progress *model.PathProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := *progress
	cp.CompletedDays = append(model.DaySet{}, progress.CompletedDays...)
	s.progress[progress.UserID] = &cp
	s.saves++
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }

func boolPtr(b bool) *bool { return &b }
