package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/streamfinder/internal/application"
	"github.com/ericfisherdev/streamfinder/internal/domain/model"
)

type mockStreamSource struct {
	streams []model.StreamDescriptor
	err     error
	gotType string
	gotID   string
}

func (m *mockStreamSource) FetchStreams(_ context.Context, contentType, contentID string) ([]model.StreamDescriptor, error) {
	m.gotType = contentType
	m.gotID = contentID
	return m.streams, m.err
}

func TestSelectStream_PreferredProviderAnyPosition(t *testing.T) {
	streams := []model.StreamDescriptor{
		{Name: "Foo", URL: "u1"},
		{Name: "VixSrc Premium", URL: "u2"},
		{Name: "Bar", URL: "u3"},
	}

	got, ok := application.SelectStream(streams, "VixSrc")

	require.True(t, ok)
	assert.Equal(t, "VixSrc Premium", got.Name)
}

func TestSelectStream_MatchesDescription(t *testing.T) {
	streams := []model.StreamDescriptor{
		{Name: "Foo", URL: "u1"},
		{Name: "Generic", Description: "via VixSrc mirror", URL: "u2"},
	}

	got, ok := application.SelectStream(streams, "VixSrc")

	require.True(t, ok)
	assert.Equal(t, "u2", got.URL)
}

func TestSelectStream_NoMatchFallsBackToFirst(t *testing.T) {
	streams := []model.StreamDescriptor{
		{Name: "Foo", URL: "u1"},
		{Name: "Bar", URL: "u2"},
	}

	got, ok := application.SelectStream(streams, "VixSrc")

	require.True(t, ok)
	assert.Equal(t, "Foo", got.Name)
}

func TestSelectStream_MatchIsCaseSensitive(t *testing.T) {
	streams := []model.StreamDescriptor{
		{Name: "Foo", URL: "u1"},
		{Name: "vixsrc", URL: "u2"},
	}

	got, ok := application.SelectStream(streams, "VixSrc")

	require.True(t, ok)
	assert.Equal(t, "Foo", got.Name)
}

func TestSelectStream_EmptyInputIsNotFound(t *testing.T) {
	_, ok := application.SelectStream(nil, "VixSrc")
	assert.False(t, ok)
}

func TestResolve_MovieUsesBareID(t *testing.T) {
	source := &mockStreamSource{streams: []model.StreamDescriptor{{Name: "VixSrc", URL: "u1"}}}
	svc := application.NewStreamService(source, "VixSrc")

	res, err := svc.Resolve(context.Background(), "movie", "tt0111161", 0, 0)

	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "movie", source.gotType)
	assert.Equal(t, "tt0111161", source.gotID)
}

func TestResolve_SeriesAppendsSeasonEpisode(t *testing.T) {
	source := &mockStreamSource{streams: []model.StreamDescriptor{{Name: "VixSrc", URL: "u1"}}}
	svc := application.NewStreamService(source, "VixSrc")

	res, err := svc.Resolve(context.Background(), "tv", "tt0903747", 1, 2)

	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "series", source.gotType, "tv must normalize to series")
	assert.Equal(t, "tt0903747:1:2", source.gotID)
}

func TestResolve_EmptyUpstreamIsNotFound(t *testing.T) {
	source := &mockStreamSource{streams: []model.StreamDescriptor{}}
	svc := application.NewStreamService(source, "VixSrc")

	res, err := svc.Resolve(context.Background(), "movie", "tt0000000", 0, 0)

	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestResolve_UpstreamErrorPropagates(t *testing.T) {
	source := &mockStreamSource{err: errors.New("connection refused")}
	svc := application.NewStreamService(source, "VixSrc")

	_, err := svc.Resolve(context.Background(), "movie", "tt0111161", 0, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
