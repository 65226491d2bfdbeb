package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceName_PrefersCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":{"city":"Kathmandu","state":"Bagmati","country":"Nepal"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.Equal(t, "Kathmandu", c.PlaceName(context.Background(), 27.7, 85.3))
}

func TestPlaceName_FallsThroughAddressLevels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"address":{"country":"Nepal"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.Equal(t, "Nepal", c.PlaceName(context.Background(), 27.7, 85.3))
}

func TestPlaceName_LookupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.Equal(t, "Selected Area", c.PlaceName(context.Background(), 27.7, 85.3))
}
