package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/greta-mvc/flowmap/internal/diagram"
	"github.com/greta-mvc/flowmap/internal/mocks"
)

type loadInput struct {
	ID int
}

func loader(calls *int) func(context.Context, loadInput) ([]diagram.IndustryClass, error) {
	return func(_ context.Context, in loadInput) ([]diagram.IndustryClass, error) {
		*calls++
		return []diagram.IndustryClass{{ID: in.ID}}, nil
	}
}

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []diagram.IndustryClass](t)
	var calls int
	rtc := NewReadThroughCache[string, []diagram.IndustryClass, loadInput](managerMock, loader(&calls), true)

	got, err := rtc.Get(context.Background(), "key", loadInput{ID: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []diagram.IndustryClass{{ID: 1}}, got)

	got, err = rtc.GetWithRefresh(context.Background(), "key", loadInput{ID: 2}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []diagram.IndustryClass{{ID: 2}}, got)
	require.Equal(t, 2, calls)
}

func TestReadThroughCache_Get_WithValueInCache(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []diagram.IndustryClass](t)
	cached := []diagram.IndustryClass{{ID: 9, Name: "cached"}}
	managerMock.On("Get", mock.Anything, "key").Return(cached, true).Once()

	var calls int
	rtc := NewReadThroughCache[string, []diagram.IndustryClass, loadInput](managerMock, loader(&calls), false)

	got, err := rtc.Get(context.Background(), "key", loadInput{ID: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, cached, got)
	require.Zero(t, calls)
}

func TestReadThroughCache_Get_MissLoadsAndStores(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []diagram.IndustryClass](t)
	managerMock.On("Get", mock.Anything, "key").Return(nil, false).Once()
	managerMock.On("Set", mock.Anything, "key", []diagram.IndustryClass{{ID: 1}}, time.Minute).Return().Once()

	var calls int
	rtc := NewReadThroughCache[string, []diagram.IndustryClass, loadInput](managerMock, loader(&calls), false)

	got, err := rtc.Get(context.Background(), "key", loadInput{ID: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []diagram.IndustryClass{{ID: 1}}, got)
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_GetWithRefresh_Hit(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []diagram.IndustryClass](t)
	cached := []diagram.IndustryClass{{ID: 3}}
	managerMock.On("GetWithRefresh", mock.Anything, "key", time.Minute).Return(cached, true).Once()

	var calls int
	rtc := NewReadThroughCache[string, []diagram.IndustryClass, loadInput](managerMock, loader(&calls), false)

	got, err := rtc.GetWithRefresh(context.Background(), "key", loadInput{ID: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, cached, got)
	require.Zero(t, calls)
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, []diagram.IndustryClass](t)
	managerMock.On("Get", mock.Anything, "key").Return(nil, false).Once()

	boom := errors.New("boom")
	rtc := NewReadThroughCache[string, []diagram.IndustryClass, loadInput](managerMock, func(context.Context, loadInput) ([]diagram.IndustryClass, error) {
		return nil, boom
	}, false)

	_, err := rtc.Get(context.Background(), "key", loadInput{}, time.Minute)
	require.ErrorIs(t, err, boom)
	managerMock.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	cache := NewInMemoryCacheManager[string, []diagram.IndustryClass]("classes", DefaultExpiration, DefaultCleanupInterval)
	var calls int
	rtc := NewReadThroughCache[string, []diagram.IndustryClass, loadInput](cache, loader(&calls), false)

	_, err := rtc.Get(context.Background(), "key", loadInput{ID: 1}, time.Minute)
	require.NoError(t, err)
	_, err = rtc.Get(context.Background(), "key", loadInput{ID: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	require.NoError(t, rtc.Invalidate(context.Background(), "key"))
	_, err = rtc.Get(context.Background(), "key", loadInput{ID: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
