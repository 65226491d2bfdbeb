package explain

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavachhq/kavach-backend/internal/config"
)

type stubGenerator struct {
	calls atomic.Int32
	text  string
	err   error
}

func (s *stubGenerator) Explain(ctx context.Context, in Input) (string, error) {
	s.calls.Add(1)
	return s.text, s.err
}

func testConfig() config.ExplainConfig {
	return config.ExplainConfig{
		CacheSize:   4,
		CacheTTL:    30 * time.Minute,
		MinInterval: 5 * time.Second,
	}
}

func TestExplain_CachesUpstreamResult(t *testing.T) {
	gen := &stubGenerator{text: "**Risky** terrain"}
	svc := NewService(gen, testConfig(), clockwork.NewFakeClock())

	first := svc.Explain(context.Background(), Input{LandslideRisk: 50, SlopeDeg: 20, RainfallIntensity: 30})
	assert.Equal(t, "Risky terrain", first) // markdown stripped

	// A near-identical input lands in the same bucket: no second call.
	second := svc.Explain(context.Background(), Input{LandslideRisk: 52, SlopeDeg: 21, RainfallIntensity: 31})
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestExplain_CacheEntryExpires(t *testing.T) {
	gen := &stubGenerator{text: "fresh"}
	clock := clockwork.NewFakeClock()
	svc := NewService(gen, testConfig(), clock)

	in := Input{LandslideRisk: 50}
	svc.Explain(context.Background(), in)
	clock.Advance(31 * time.Minute)
	svc.Explain(context.Background(), in)

	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestExplain_ThrottledCallsUseFallbackUncached(t *testing.T) {
	gen := &stubGenerator{text: "upstream"}
	svc := NewService(gen, testConfig(), clockwork.NewFakeClock())

	// First call consumes the limiter token.
	svc.Explain(context.Background(), Input{LandslideRisk: 10})

	// Different bucket, limiter empty: rule-based text, upstream untouched.
	text := svc.Explain(context.Background(), Input{LandslideRisk: 80, SlopeDeg: 35, RainfallIntensity: 60})
	assert.Contains(t, text, "high risk conditions")
	assert.Contains(t, text, "Evacuate")
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestExplain_UpstreamErrorFallsBackAndCaches(t *testing.T) {
	gen := &stubGenerator{err: errors.New("quota exceeded")}
	svc := NewService(gen, testConfig(), clockwork.NewFakeClock())

	in := Input{LandslideRisk: 45, SlopeDeg: 20, RainfallIntensity: 30}
	text := svc.Explain(context.Background(), in)
	assert.Contains(t, text, "moderate risk conditions")

	// The fallback was cached, so the failing upstream is not retried.
	svc.Explain(context.Background(), in)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestExplain_NoUpstreamIsPureRuleBased(t *testing.T) {
	svc := NewService(nil, testConfig(), clockwork.NewFakeClock())

	text := svc.Explain(context.Background(), Input{LandslideRisk: 20, SlopeDeg: 10, RainfallIntensity: 0})
	assert.Contains(t, text, "low risk conditions")
	assert.Contains(t, text, "dry conditions")
	assert.True(t, strings.Contains(text, "Safety Action:"))
}

func TestTTLCache_CapacityEviction(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTTLCache(2, time.Hour, clock)

	c.put("a", "1")
	c.put("b", "2")
	c.put("c", "3") // evicts a

	_, ok := c.get("a")
	assert.False(t, ok)
	v, ok := c.get("b")
	require.True(t, ok)
	assert.Equal(t, "2", v)
}
