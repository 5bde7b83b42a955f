package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agrisight/plantmap-cli/internal/model"
	"github.com/agrisight/plantmap-cli/pkg/extract"
)

func TestStatusTracker_Transitions(t *testing.T) {
	t.Parallel()

	tr := NewStatusTracker()
	tr.MarkPending("a.jpg")

	st, ok := tr.Get("a.jpg")
	require.True(t, ok)
	assert.Equal(t, model.StatusPending, st.Status)

	tr.MarkProcessing("a.jpg")
	st, _ = tr.Get("a.jpg")
	assert.Equal(t, model.StatusProcessing, st.Status)

	tr.MarkSuccess("a.jpg", model.PlantRecord{ImageName: "a.jpg", Latitude: 1, Longitude: 2})
	st, _ = tr.Get("a.jpg")
	assert.Equal(t, model.StatusSuccess, st.Status)
	require.NotNil(t, st.Record)
	assert.Equal(t, "a.jpg", st.Record.ImageName)
}

func TestStatusTracker_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	tr := NewStatusTracker()
	tr.MarkPending("a.jpg")
	tr.MarkPending("b.jpg")
	tr.MarkFailed("a.jpg", "boom")

	a, _ := tr.Get("a.jpg")
	b, _ := tr.Get("b.jpg")
	assert.Equal(t, model.StatusFailed, a.Status)
	assert.Equal(t, model.StatusPending, b.Status)
}

func TestStatusTracker_ConcurrentUpdates(t *testing.T) {
	t.Parallel()

	tr := NewStatusTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("p%d.jpg", i)
		tr.MarkPending(name)
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.MarkProcessing(name)
			tr.MarkSuccess(name, model.PlantRecord{ImageName: name, Latitude: 1, Longitude: 2})
		}()
	}
	wg.Wait()

	all := tr.All()
	require.Len(t, all, 50)
	for name, st := range all {
		assert.Equal(t, model.StatusSuccess, st.Status, name)
	}
}

func TestStatusTracker_ResetClearsBatch(t *testing.T) {
	t.Parallel()

	tr := NewStatusTracker()
	tr.MarkSuccess("a.jpg", model.PlantRecord{ImageName: "a.jpg", Latitude: 1, Longitude: 2})
	tr.Reset()

	_, ok := tr.Get("a.jpg")
	assert.False(t, ok)
	assert.Empty(t, tr.All())
}

func TestExtract_Success(t *testing.T) {
	t.Parallel()

	ec := &mockExtractClient{}
	ec.On("Extract", mock.Anything, "plant1.jpg", "https://cdn/x/plant1.jpg").
		Return(&extract.Location{Latitude: 12.9, Longitude: 77.6}, nil)

	tr := NewStatusTracker()
	c := NewExtractCoordinator(ec, tr)

	rec, err := c.Extract(context.Background(), "plant1.jpg", "https://cdn/x/plant1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "plant1.jpg", rec.ImageName)
	assert.Equal(t, "https://cdn/x/plant1.jpg", rec.ImageURL)
	assert.InDelta(t, 12.9, rec.Latitude, 1e-9)

	st, _ := tr.Get("plant1.jpg")
	assert.Equal(t, model.StatusSuccess, st.Status)
}

func TestExtract_ServiceFailureIsDataError(t *testing.T) {
	t.Parallel()

	ec := &mockExtractClient{}
	ec.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("extract plant1.jpg: %w", extract.ErrNotSuccessful))

	tr := NewStatusTracker()
	c := NewExtractCoordinator(ec, tr)

	_, err := c.Extract(context.Background(), "plant1.jpg", "u")
	require.Error(t, err)
	assert.True(t, model.IsData(err))

	st, _ := tr.Get("plant1.jpg")
	assert.Equal(t, model.StatusFailed, st.Status)
	assert.NotEmpty(t, st.Reason)
}

func TestExtract_MissingCoordinatesIsDataError(t *testing.T) {
	t.Parallel()

	ec := &mockExtractClient{}
	ec.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("extract plant1.jpg: %w", extract.ErrNoCoordinates))

	c := NewExtractCoordinator(ec, NewStatusTracker())
	_, err := c.Extract(context.Background(), "plant1.jpg", "u")

	require.Error(t, err)
	assert.True(t, model.IsData(err))
}

func TestExtract_TransportFailureIsNetworkError(t *testing.T) {
	t.Parallel()

	ec := &mockExtractClient{}
	ec.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp: connection refused"))

	tr := NewStatusTracker()
	c := NewExtractCoordinator(ec, tr)

	_, err := c.Extract(context.Background(), "plant1.jpg", "u")
	require.Error(t, err)
	assert.True(t, model.IsNetwork(err))

	st, _ := tr.Get("plant1.jpg")
	assert.Equal(t, model.StatusFailed, st.Status)
}

func TestExtract_OutOfRangeCoordinatesFail(t *testing.T) {
	t.Parallel()

	ec := &mockExtractClient{}
	ec.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(&extract.Location{Latitude: 999, Longitude: 77.6}, nil)

	tr := NewStatusTracker()
	c := NewExtractCoordinator(ec, tr)

	_, err := c.Extract(context.Background(), "plant1.jpg", "u")
	require.Error(t, err)
	assert.True(t, model.IsData(err))

	st, _ := tr.Get("plant1.jpg")
	assert.Equal(t, model.StatusFailed, st.Status)
	assert.Contains(t, st.Reason, "out of range")
}
