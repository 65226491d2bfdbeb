// Package explain turns risk numbers into a natural-language assessment.
// An optional upstream generator (an inference API) sits behind a TTL+LRU
// cache and a rate limiter; a deterministic rule-based generator covers
// cache misses that the limiter rejects and upstream failures.
package explain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/kavachhq/kavach-backend/internal/config"
)

// Input is the risk snapshot an explanation describes.
type Input struct {
	LandslideRisk     float64
	SlopeDeg          float64
	RainfallIntensity float64
}

// Generator produces an explanation for a risk snapshot.
type Generator interface {
	Explain(ctx context.Context, in Input) (string, error)
}

// Service is the cached, rate-limited explanation front. Nearby inputs
// share a cache key (values are bucketed) so repeated queries for similar
// conditions reuse one upstream call.
type Service struct {
	upstream Generator // nil when no inference API is configured
	cache    *ttlCache
	limiter  *rate.Limiter
}

func NewService(upstream Generator, cfg config.ExplainConfig, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		upstream: upstream,
		cache:    newTTLCache(cfg.CacheSize, cfg.CacheTTL, clock),
		limiter:  rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
	}
}

// Explain never fails: when the upstream generator is missing, throttled,
// or erroring, the rule-based text is returned instead. Upstream output is
// cached; the throttled fallback is not, so a later call can still try
// upstream.
func (s *Service) Explain(ctx context.Context, in Input) string {
	key := cacheKey(in)
	if text, ok := s.cache.get(key); ok {
		return text
	}

	if s.upstream == nil {
		text := ruleBased(in)
		s.cache.put(key, text)
		return text
	}

	if !s.limiter.Allow() {
		return ruleBased(in)
	}

	text, err := s.upstream.Explain(ctx, in)
	if err != nil {
		slog.Error("explanation generator failed", "error", err)
		text = ruleBased(in)
	} else {
		text = sanitize(text)
	}

	s.cache.put(key, text)
	return text
}

// cacheKey buckets the inputs so near-identical conditions hit the same
// entry.
func cacheKey(in Input) string {
	return fmt.Sprintf("%.0f_%.0f_%.0f",
		math.Round(in.LandslideRisk/15)*15,
		math.Round(in.SlopeDeg/10)*10,
		math.Round(in.RainfallIntensity/15)*15)
}

var (
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.+?)\*`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
)

// sanitize strips markdown artifacts that inference APIs tend to emit.
func sanitize(text string) string {
	text = boldRe.ReplaceAllString(text, "$1")
	text = italicRe.ReplaceAllString(text, "$1")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ruleBased composes the deterministic assessment used when no upstream
// generator is available.
func ruleBased(in Input) string {
	var b strings.Builder

	switch {
	case in.LandslideRisk > 70:
		fmt.Fprintf(&b, "Current landslide risk stands at %.1f%%, indicating high risk conditions. ", in.LandslideRisk)
	case in.LandslideRisk > 40:
		fmt.Fprintf(&b, "Current landslide risk stands at %.1f%%, indicating moderate risk conditions. ", in.LandslideRisk)
	default:
		fmt.Fprintf(&b, "Current landslide risk stands at %.1f%%, indicating low risk conditions. ", in.LandslideRisk)
	}

	switch {
	case in.SlopeDeg > 30:
		fmt.Fprintf(&b, "The terrain features a steep %g° slope, which significantly increases ground instability and susceptibility to mass movements. ", in.SlopeDeg)
	case in.SlopeDeg > 15:
		fmt.Fprintf(&b, "The terrain has a moderately inclined slope of %g°, creating potential for landslides under adverse conditions. ", in.SlopeDeg)
	default:
		fmt.Fprintf(&b, "The relatively gentle %g° slope provides some natural stability against landslides. ", in.SlopeDeg)
	}

	switch {
	case in.RainfallIntensity > 50:
		fmt.Fprintf(&b, "Heavy rainfall at %gmm/hr is rapidly saturating the soil, dramatically increasing failure risk through pore pressure buildup and reduced soil cohesion.", in.RainfallIntensity)
	case in.RainfallIntensity > 20:
		fmt.Fprintf(&b, "Moderate rainfall (%gmm/hr) is progressively saturating the ground, raising concerns about slope stability over time.", in.RainfallIntensity)
	case in.RainfallIntensity > 0:
		fmt.Fprintf(&b, "Light rainfall (%gmm/hr) presents minimal immediate threat but requires monitoring if conditions intensify.", in.RainfallIntensity)
	default:
		b.WriteString("Current dry conditions provide a favorable factor, as soil moisture levels are not being elevated by precipitation.")
	}

	b.WriteString("\n\nSafety Action: ")
	switch {
	case in.LandslideRisk > 70:
		b.WriteString("Evacuate to higher, stable ground immediately. Avoid valleys, drainage paths, and steep slopes. Alert local authorities and neighbors.")
	case in.LandslideRisk > 40:
		b.WriteString("Identify and prepare evacuation routes. Monitor for warning signs like ground cracks, tilting structures, or sudden water flow changes. Stay alert to weather updates.")
	default:
		b.WriteString("Maintain situational awareness and keep emergency supplies accessible. Stay informed through local disaster management channels.")
	}

	return b.String()
}
