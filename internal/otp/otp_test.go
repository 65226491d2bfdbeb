package otp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavachhq/kavach-backend/internal/observability"
)

type captureSMS struct {
	mu       sync.Mutex
	messages []string
	to       []string
	err      error
}

func (c *captureSMS) SendSMS(ctx context.Context, to, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.to = append(c.to, to)
	c.messages = append(c.messages, message)
	return nil
}

func newTestService(sms *captureSMS) (*Service, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	return NewService(sms, observability.NewMetricsForTesting(), clock), clock
}

// issuedCode digs the generated code out of the stored record so tests can
// verify with it.
func issuedCode(s *Service, userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[userID].Code
}

func TestIssue_EmptyPhone(t *testing.T) {
	svc, _ := newTestService(&captureSMS{})
	err := svc.Issue(context.Background(), "u1", "")
	assert.ErrorIs(t, err, ErrEmptyPhone)
}

func TestIssue_UnconfiguredProvider(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := NewService(nil, observability.NewMetricsForTesting(), clock)

	err := svc.Issue(context.Background(), "u1", "+9779812345678")
	assert.ErrorIs(t, err, ErrNotConfigured)

	// The record is stored even though delivery was impossible.
	assert.NotEmpty(t, issuedCode(svc, "u1"))
}

func TestIssue_SendsSixDigitCode(t *testing.T) {
	sms := &captureSMS{}
	svc, _ := newTestService(sms)

	require.NoError(t, svc.Issue(context.Background(), "u1", "+9779812345678"))
	require.Len(t, sms.to, 1)
	assert.Equal(t, "+9779812345678", sms.to[0])

	code := issuedCode(svc, "u1")
	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "non-digit in code %q", code)
	}
	assert.Contains(t, sms.messages[0], code)
}

func TestVerify_BeforeIssue(t *testing.T) {
	svc, _ := newTestService(&captureSMS{})
	_, err := svc.Verify("fresh-user", "123456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerify_HappyPath(t *testing.T) {
	svc, clock := newTestService(&captureSMS{})
	require.NoError(t, svc.Issue(context.Background(), "u1", "+9779812345678"))

	clock.Advance(9 * time.Minute)

	phone, err := svc.Verify("u1", issuedCode(svc, "u1"))
	require.NoError(t, err)
	assert.Equal(t, "+9779812345678", phone)

	st := svc.Status("u1")
	assert.True(t, st.Verified)
	assert.Equal(t, "+9779812345678", st.Phone)
}

func TestVerify_RepeatVerificationStillSucceeds(t *testing.T) {
	// The record persists after a successful match, so the same code keeps
	// verifying until reissue or expiry.
	svc, _ := newTestService(&captureSMS{})
	require.NoError(t, svc.Issue(context.Background(), "u1", "+9779812345678"))

	code := issuedCode(svc, "u1")
	_, err := svc.Verify("u1", code)
	require.NoError(t, err)
	_, err = svc.Verify("u1", code)
	assert.NoError(t, err)
}

func TestVerify_ExpiredDeletesRecordAndReissueWorks(t *testing.T) {
	sms := &captureSMS{}
	svc, clock := newTestService(sms)
	require.NoError(t, svc.Issue(context.Background(), "u1", "+9779812345678"))
	code := issuedCode(svc, "u1")

	clock.Advance(10*time.Minute + time.Second)

	_, err := svc.Verify("u1", code)
	assert.ErrorIs(t, err, ErrExpired)

	// Record is gone: the next verify reports NotFound, and a fresh issue
	// succeeds.
	_, err = svc.Verify("u1", code)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, svc.Issue(context.Background(), "u1", "+9779812345678"))
}

func TestVerify_MismatchLeavesRecordIntact(t *testing.T) {
	svc, _ := newTestService(&captureSMS{})
	require.NoError(t, svc.Issue(context.Background(), "u1", "+9779812345678"))
	code := issuedCode(svc, "u1")

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	_, err := svc.Verify("u1", wrong)
	assert.ErrorIs(t, err, ErrMismatch)

	// Not deleted, not verified.
	assert.False(t, svc.Status("u1").Verified)
	_, err = svc.Verify("u1", code)
	assert.NoError(t, err)
}

func TestIssue_OverwritesPriorCode(t *testing.T) {
	svc, _ := newTestService(&captureSMS{})
	require.NoError(t, svc.Issue(context.Background(), "u1", "+9779811111111"))
	first := issuedCode(svc, "u1")

	require.NoError(t, svc.Issue(context.Background(), "u1", "+9779822222222"))

	if first != issuedCode(svc, "u1") {
		_, err := svc.Verify("u1", first)
		assert.ErrorIs(t, err, ErrMismatch)
	}
	phone, err := svc.Verify("u1", issuedCode(svc, "u1"))
	require.NoError(t, err)
	assert.Equal(t, "+9779822222222", phone)
}

func TestIssue_DeliveryFailure(t *testing.T) {
	sms := &captureSMS{err: errors.New("throttled")}
	svc, _ := newTestService(sms)

	err := svc.Issue(context.Background(), "u1", "+9779812345678")
	assert.ErrorIs(t, err, ErrSendFailed)
}

func TestStatus_AbsentRecord(t *testing.T) {
	svc, _ := newTestService(&captureSMS{})
	st := svc.Status("nobody")
	assert.False(t, st.Verified)
	assert.Empty(t, st.Phone)
}
