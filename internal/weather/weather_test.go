package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_SummarizesRainfall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly":{
			"time":["2026-03-14T00:00","2026-03-14T01:00","2026-03-14T02:00"],
			"precipitation":[1.5,0,4.5],
			"temperature_2m":[20,21,19],
			"relative_humidity_2m":[80,82,85],
			"wind_speed_10m":[5,6,7]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	fc, err := c.Fetch(context.Background(), 27.7, 85.3)
	require.NoError(t, err)

	require.Len(t, fc.Hours, 3)
	assert.Equal(t, 1.5, fc.Hours[0].Rainfall)
	assert.Equal(t, 6.0, fc.Summary.TotalRainfall)
	assert.Equal(t, 4.5, fc.Summary.MaxRainfall)
	assert.Equal(t, 2.0, fc.Summary.AvgRainfall)
}

func TestFetch_PadsMissingSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly":{
			"time":["2026-03-14T00:00","2026-03-14T01:00"],
			"precipitation":[2.0]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	fc, err := c.Fetch(context.Background(), 27.7, 85.3)
	require.NoError(t, err)

	require.Len(t, fc.Hours, 2)
	assert.Equal(t, 0.0, fc.Hours[1].Rainfall)
	assert.Equal(t, 0.0, fc.Hours[1].Temperature)
}

func TestFetch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Fetch(context.Background(), 27.7, 85.3)
	assert.Error(t, err)
}
