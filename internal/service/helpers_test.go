package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/qs3c/coach_go_server/internal/model"
	"github.com/qs3c/coach_go_server/internal/pkg/policy"
	"github.com/qs3c/coach_go_server/internal/pkg/queue"
)

type fakeStorage struct {
	lastData []byte
	deleted  []string
}

func (f *fakeStorage) UploadAvatar(userID int64, data []byte, ext string) (string, error) {
	f.lastData = data
	return fmt.Sprintf("https://cdn.example.com/avatars/%d%s", userID, ext), nil
}

func (f *fakeStorage) UploadBundleCover(bundleID int64, data []byte, ext string) (string, error) {
	f.lastData = data
	return fmt.Sprintf("https://cdn.example.com/covers/%d%s", bundleID, ext), nil
}

func (f *fakeStorage) DeleteByURL(url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	jobs []*queue.AlertJob
}

func (f *fakeEnqueuer) Push(_ context.Context, job *queue.AlertJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeEnqueuer) Jobs() []*queue.AlertJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*queue.AlertJob(nil), f.jobs...)
}

type fakeRefresher struct {
	mu  sync.Mutex
	ids []int64
}

func (f *fakeRefresher) Refresh(_ context.Context, subscriptionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, subscriptionID)
	return nil
}

func (f *fakeRefresher) IDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.ids...)
}

func actorOf(u *model.User) policy.Actor {
	return policy.Actor{UserID: u.ID, Role: u.Role}
}
