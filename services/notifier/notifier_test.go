package notifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sjsage522/carwatcher/config"
	"sjsage522/carwatcher/internal/crawler"
	"sjsage522/carwatcher/internal/criteria"
	scerrors "sjsage522/carwatcher/pkg/errors"
	"sjsage522/carwatcher/services/publisher"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testListings = []crawler.Listing{
	{
		ID:        "tr_1001",
		Title:     "BMW 320d Touring",
		URL:       "https://www.ss.com/msg/lv/a1.html",
		Details:   "2005 dīzelis manuāla universāls",
		Price:     "3 200 €",
		Timestamp: "2024-03-01 12:30:00",
	},
	{
		ID:        "tr_1003",
		Title:     "BMW 330d <Touring>",
		URL:       "https://www.ss.com/msg/lv/a3.html?x=1&y=2",
		Details:   "2007 diesel manual touring",
		Price:     "4 500 €",
		Timestamp: "2024-03-01 12:30:00",
	},
}

var reportTime = time.Date(2024, 3, 1, 9, 5, 7, 0, time.UTC)

func TestRenderEmailBody(t *testing.T) {
	body, err := RenderEmailBody(testListings, criteria.Default())
	require.NoError(t, err)

	assert.Contains(t, body, "Found 2 new BMW 3-Series listings")
	assert.Contains(t, body, "Criteria: BMW 3-Series, years 2003-2008")
	assert.Contains(t, body, `<a href="https://www.ss.com/msg/lv/a1.html" target="_blank">BMW 320d Touring</a>`)
	assert.Contains(t, body, "3 200 €")
	assert.Equal(t, 2, strings.Count(body, "View listing"))
	assert.NotContains(t, body, "<!DOCTYPE html>")

	// Titles and URLs are escaped
	assert.Contains(t, body, "BMW 330d &lt;Touring&gt;")
	assert.Contains(t, body, "a3.html?x=1&amp;y=2")
}

func TestRenderReportFile(t *testing.T) {
	filename, html, err := RenderReportFile(testListings, criteria.Default(), reportTime)
	require.NoError(t, err)

	assert.Equal(t, "new_listings_20240301_090507.html", filename)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `<meta charset="UTF-8">`)
	assert.Contains(t, html, "Found 2 new BMW 3-Series listings - 2024-03-01 09:05:07")
	assert.Contains(t, html, "BMW 320d Touring")
}

func TestRenderUnlabelledCriteria(t *testing.T) {
	unnamed := criteria.Default()
	unnamed.Label = ""

	body, err := RenderEmailBody(testListings, unnamed)
	require.NoError(t, err)
	assert.Contains(t, body, "Found 2 new car listings")

	_, html, err := RenderReportFile(testListings, unnamed, reportTime)
	require.NoError(t, err)
	assert.Contains(t, html, "<title>New car Listings</title>")
	assert.NotContains(t, html, "new  listings")
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "New BMW 3-Series listings (3 found)", Subject(criteria.Default(), 3))
	assert.Equal(t, "New car listings (1 found)", Subject(criteria.Criteria{}, 1))
}

func TestEmailNotifier(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{RecipientAddress: "me@example.com"}, criteria.Default(), time.Second)

	var gotSubject, gotBody string
	n.send = func(ctx context.Context, subject, body string) error {
		gotSubject, gotBody = subject, body
		return nil
	}

	require.NoError(t, n.Notify(context.Background(), testListings))
	assert.Equal(t, "New BMW 3-Series listings (2 found)", gotSubject)
	assert.Contains(t, gotBody, "BMW 320d Touring")
	assert.Equal(t, config.NotifyEmail, n.Name())
}

func TestEmailNotifierSendFailure(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{}, criteria.Default(), time.Second)
	n.send = func(ctx context.Context, subject, body string) error {
		return errors.New("535 authentication failed")
	}

	err := n.Notify(context.Background(), testListings)
	require.Error(t, err)
	assert.True(t, scerrors.IsType(err, scerrors.ErrorTypeNotify))
}

func TestEmailNotifierEmptyBatch(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{}, criteria.Default(), time.Second)
	n.send = func(ctx context.Context, subject, body string) error {
		t.Fatal("send must not be called for an empty batch")
		return nil
	}

	assert.NoError(t, n.Notify(context.Background(), nil))
}

func TestFileNotifier(t *testing.T) {
	dir := t.TempDir()
	n := NewFileNotifier(dir, criteria.Default())
	n.now = func() time.Time { return reportTime }

	require.NoError(t, n.Notify(context.Background(), testListings))

	data, err := os.ReadFile(filepath.Join(dir, "new_listings_20240301_090507.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "BMW 330d &lt;Touring&gt;")
	assert.Equal(t, config.NotifyFile, n.Name())
}

func TestFileNotifierWriteFailure(t *testing.T) {
	n := NewFileNotifier(filepath.Join(t.TempDir(), "missing", "dir"), criteria.Default())

	err := n.Notify(context.Background(), testListings)
	require.Error(t, err)
	assert.True(t, scerrors.IsType(err, scerrors.ErrorTypeNotify))
}

// mockPublisher records published messages
type mockPublisher struct {
	messages [][]byte
	keys     []string
	trims    int
	failOn   int
}

func (m *mockPublisher) Publish(ctx context.Context, key string, message []byte) error {
	if m.failOn > 0 && len(m.messages)+1 == m.failOn {
		m.failOn = 0
		return errors.New("connection reset")
	}
	m.keys = append(m.keys, key)
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockPublisher) TrimStreams(ctx context.Context) error {
	m.trims++
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func TestStreamNotifier(t *testing.T) {
	pub := &mockPublisher{}
	n := NewStreamNotifier(pub)

	require.NoError(t, n.Notify(context.Background(), testListings))
	require.Len(t, pub.messages, 2)
	assert.Equal(t, []string{StreamMessageKey, StreamMessageKey}, pub.keys)
	assert.Equal(t, 1, pub.trims)

	var decoded crawler.Listing
	require.NoError(t, json.Unmarshal(pub.messages[0], &decoded))
	assert.Equal(t, testListings[0], decoded)
}

func TestStreamNotifierPartialFailure(t *testing.T) {
	pub := &mockPublisher{failOn: 1}
	n := NewStreamNotifier(pub)

	err := n.Notify(context.Background(), testListings)
	require.Error(t, err)
	assert.True(t, scerrors.IsType(err, scerrors.ErrorTypeNotify))

	// The remaining listings are still published
	require.Len(t, pub.messages, 1)
	assert.Equal(t, 1, pub.trims)
}

func TestNew(t *testing.T) {
	cfg := &config.Config{Criteria: criteria.Default(), ReportDir: t.TempDir()}

	for mode, want := range map[string]string{
		config.NotifyEmail:  config.NotifyEmail,
		config.NotifyFile:   config.NotifyFile,
		config.NotifyStream: config.NotifyStream,
	} {
		cfg.NotifyMode = mode
		n, err := New(cfg, &mockPublisher{})
		require.NoError(t, err)
		assert.Equal(t, want, n.Name())
	}

	cfg.NotifyMode = config.NotifyStream
	_, err := New(cfg, nil)
	assert.True(t, scerrors.IsFatal(err))

	cfg.NotifyMode = "pigeon"
	_, err = New(cfg, nil)
	assert.True(t, scerrors.IsFatal(err))
}

func TestStreamNotifierRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	pub := publisher.NewRedisPublisher(mr.Addr(), 0, "listings", 1, 1)
	defer pub.Close()

	n := NewStreamNotifier(pub)
	require.NoError(t, n.Notify(context.Background(), testListings))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	// Trimmed to the last listing
	entries, err := client.XRange(context.Background(), "listings:0", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	encoded, ok := entries[0].Values[StreamMessageKey].(string)
	require.True(t, ok)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var decoded crawler.Listing
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, testListings[1], decoded)
}
