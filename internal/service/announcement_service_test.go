package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMirror struct {
	err      error
	mirrored []*model.Announcement
}

func (m *recordingMirror) Mirror(_ context.Context, a *model.Announcement) error {
	m.mirrored = append(m.mirrored, a)
	return m.err
}

func TestPublish_FillsDefaultsAndMirrors(t *testing.T) {
	store := &fakeAnnouncementStore{}
	mirror := &recordingMirror{}
	svc := NewAnnouncementService(store, fixedClock, zap.NewNop(), mirror)

	a := &model.Announcement{Title: "Studio closed", Content: "No classes on Friday", IsActive: true}
	require.NoError(t, svc.Publish(context.Background(), a))

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, model.AnnouncementTypeInfo, a.Type)
	assert.Equal(t, model.AudienceAll, a.Audience)
	assert.Len(t, store.items, 1)
	assert.Len(t, mirror.mirrored, 1)
}

func TestPublish_MirrorFailureIgnored(t *testing.T) {
	store := &fakeAnnouncementStore{}
	broken := &recordingMirror{err: errors.New("telegram is down")}
	healthy := &recordingMirror{}
	svc := NewAnnouncementService(store, fixedClock, zap.NewNop(), broken, healthy)

	require.NoError(t, svc.Publish(context.Background(), &model.Announcement{Title: "x", IsActive: true}))
	assert.Len(t, store.items, 1)
	assert.Len(t, healthy.mirrored, 1)
}

func TestPublish_StoreFailure(t *testing.T) {
	store := &fakeAnnouncementStore{createErr: errStoreDown}
	mirror := &recordingMirror{}
	svc := NewAnnouncementService(store, fixedClock, zap.NewNop(), mirror)

	err := svc.Publish(context.Background(), &model.Announcement{Title: "x"})
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, mirror.mirrored)
}

func TestListActive(t *testing.T) {
	expired := testNow.Add(-time.Minute)
	store := &fakeAnnouncementStore{items: []*model.Announcement{
		{ID: "a1", IsActive: true},
		{ID: "a2", IsActive: false},
		{ID: "a3", IsActive: true, ExpiresAt: &expired},
	}}
	svc := NewAnnouncementService(store, fixedClock, zap.NewNop())

	items := svc.ListActive(context.Background(), 10)
	require.Len(t, items, 1)
	assert.Equal(t, "a1", items[0].ID)

	store.listErr = errStoreDown
	items = svc.ListActive(context.Background(), 10)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
