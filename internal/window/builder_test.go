package window

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatter-insights-go/internal/store"
	"chatter-insights-go/internal/types"
)

type fakeSessions struct {
	sessions []store.ShiftSession
	err      error
}

func (f *fakeSessions) SessionsOverlapping(ctx context.Context, ws, we time.Time) ([]store.ShiftSession, error) {
	return f.sessions, f.err
}

func hourWindow() (time.Time, time.Time) {
	start := time.Date(2026, 8, 27, 14, 0, 0, 0, time.UTC)
	return start, start.Add(time.Hour)
}

func session(email, creatorID, name, acct, token string) store.ShiftSession {
	return store.ShiftSession{
		ChatterEmail:   email,
		CreatorID:      creatorID,
		CreatorName:    name,
		OFAPICreatorID: acct,
		OFAPIToken:     token,
		ClockIn:        time.Date(2026, 8, 27, 13, 0, 0, 0, time.UTC),
	}
}

func TestBuildOneWindowPerPair(t *testing.T) {
	ws, we := hourWindow()
	src := &fakeSessions{sessions: []store.ShiftSession{
		session("anna@agency.com", "c1", "Luna", "acct1", "tok1"),
		session("ben@agency.com", "c1", "Luna", "acct1", "tok1"),
		session("anna@agency.com", "c2", "Nova", "acct2", "tok2"),
	}}

	windows, err := Build(context.Background(), src, ws, we)

	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, "anna@agency.com", windows[0].ChatterEmail)
	assert.Equal(t, "c1", windows[0].CreatorID)
	assert.Equal(t, ws, windows[0].WindowStart)
	assert.Equal(t, we, windows[0].WindowEnd)
	for _, w := range windows {
		assert.Equal(t, types.ConfidenceHigh, w.AttributionConfidence)
	}
}

func TestBuildSkipsMissingCredentials(t *testing.T) {
	ws, we := hourWindow()
	src := &fakeSessions{sessions: []store.ShiftSession{
		session("anna@agency.com", "c1", "Luna", "", ""),
		session("anna@agency.com", "c2", "Nova", "acct2", ""),
		session("anna@agency.com", "c3", "Vega", "acct3", "tok3"),
	}}

	windows, err := Build(context.Background(), src, ws, we)

	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "c3", windows[0].CreatorID)
}

func TestBuildLowConfidenceOnOverlappingShifts(t *testing.T) {
	ws, we := hourWindow()
	// Same pair twice: a shift change mid-window.
	src := &fakeSessions{sessions: []store.ShiftSession{
		session("anna@agency.com", "c1", "Luna", "acct1", "tok1"),
		session("anna@agency.com", "c1", "Luna", "acct1", "tok1"),
	}}

	windows, err := Build(context.Background(), src, ws, we)

	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, types.ConfidenceLow, windows[0].AttributionConfidence)
}

func TestBuildNameFallback(t *testing.T) {
	ws, we := hourWindow()
	src := &fakeSessions{sessions: []store.ShiftSession{
		session("anna@agency.com", "c1", "", "acct1", "tok1"),
	}}

	windows, err := Build(context.Background(), src, ws, we)

	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "Unknown", windows[0].CreatorName)
}

func TestBuildPropagatesSourceError(t *testing.T) {
	ws, we := hourWindow()
	src := &fakeSessions{err: errors.New("db down")}

	_, err := Build(context.Background(), src, ws, we)

	assert.Error(t, err)
}
