package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/livefes/internal/model"
)

// --- Ingester テスト用モック ---

type eventKey struct {
	title     string
	startDate time.Time
}

// mockEventStore はテスト用のEventStoreモック。
type mockEventStore struct {
	events     map[eventKey]*model.Event
	nextID     int64
	createErr  error
	deletedIDs []int64
}

func newMockEventStore() *mockEventStore {
	return &mockEventStore{events: make(map[eventKey]*model.Event), nextID: 1}
}

func (m *mockEventStore) FindByTitleAndDate(_ context.Context, title string, startDate time.Time) (*model.Event, error) {
	e, ok := m.events[eventKey{title, startDate}]
	if !ok {
		return nil, nil
	}
	return e, nil
}

func (m *mockEventStore) Create(_ context.Context, event *model.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	event.ID = m.nextID
	m.nextID++
	m.events[eventKey{event.Title, event.StartDate}] = event
	return nil
}

func (m *mockEventStore) DeleteByID(_ context.Context, id int64) error {
	m.deletedIDs = append(m.deletedIDs, id)
	for key, e := range m.events {
		if e.ID == id {
			delete(m.events, key)
		}
	}
	return nil
}

// mockArtistResolver はテスト用のArtistResolverモック。
type mockArtistResolver struct {
	artists map[string]*model.Artist
	nextID  int64
}

func newMockArtistResolver() *mockArtistResolver {
	return &mockArtistResolver{artists: make(map[string]*model.Artist), nextID: 1}
}

func (m *mockArtistResolver) FindOrCreateByName(_ context.Context, name, imageURL string) (*model.Artist, error) {
	if a, ok := m.artists[name]; ok {
		return a, nil
	}
	a := &model.Artist{ID: m.nextID, Name: name, Image: imageURL}
	m.nextID++
	m.artists[name] = a
	return a, nil
}

// mockAssociationStore はテスト用のAssociationStoreモック。
type mockAssociationStore struct {
	byEvent       map[int64][]int64
	createManyErr error
}

func newMockAssociationStore() *mockAssociationStore {
	return &mockAssociationStore{byEvent: make(map[int64][]int64)}
}

func (m *mockAssociationStore) CreateMany(_ context.Context, eventID int64, artistIDs []int64) error {
	if m.createManyErr != nil {
		return m.createManyErr
	}
	m.byEvent[eventID] = append(m.byEvent[eventID], artistIDs...)
	return nil
}

// mockGeocoder はテスト用のGeocoderモック。
type mockGeocoder struct {
	lat, lon float64
	err      error
	queries  []string
}

func (m *mockGeocoder) Geocode(_ context.Context, address string) (float64, float64, error) {
	m.queries = append(m.queries, address)
	if m.err != nil {
		return 0, 0, m.err
	}
	return m.lat, m.lon, nil
}

// mockSSRFGuard はテスト用のSSRFガードモック。
// テストサーバーはループバックで動作するため、検証を素通しにする。
type mockSSRFGuard struct {
	validateErr error
}

func (m *mockSSRFGuard) ValidateURL(_ string) error { return m.validateErr }

func (m *mockSSRFGuard) NewSafeClient(timeout time.Duration, _ int64) *http.Client {
	return &http.Client{Timeout: timeout}
}

const partnerFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:ev="http://purl.org/rss/1.0/modules/event/">
<channel>
<title>Partner Events</title>
<link>https://partner.example.com</link>
<item>
  <title>Green Sound Fes 2026</title>
  <description><![CDATA[<p>出演:</p><ul><li>Acid Bloom</li><li>Night Owls</li></ul>]]></description>
  <ev:startdate>2026-09-12T11:00:00+09:00</ev:startdate>
  <ev:enddate>2026-09-13T21:00:00+09:00</ev:enddate>
  <ev:type>festival/rock</ev:type>
  <ev:location>緑地公園野外ステージ; 大阪府吹田市千里万博公園1-1; 吹田市</ev:location>
</item>
<item>
  <title>Broken Item</title>
  <description>no extensions</description>
</item>
</channel>
</rss>`

func newFeedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
}

func newTestIngester(events *mockEventStore, artists *mockArtistResolver, assocs *mockAssociationStore, geo *mockGeocoder) *Ingester {
	return NewIngester(events, artists, assocs, geo, &mockSSRFGuard{}, 10*time.Second, 10<<20)
}

// --- テスト ---

// TestIngester_Ingest はフィードからのイベント登録と出演者の関連付けを検証する。
// 不正な項目は見送られ、他の項目の取り込みは継続される。
func TestIngester_Ingest(t *testing.T) {
	server := newFeedServer(t, partnerFeedXML)
	defer server.Close()

	events := newMockEventStore()
	artists := newMockArtistResolver()
	assocs := newMockAssociationStore()
	geo := &mockGeocoder{lat: 34.805, lon: 135.535}

	result, err := newTestIngester(events, artists, assocs, geo).Ingest(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if result.Processed != 2 || result.Created != 1 || result.Skipped != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	var event *model.Event
	for _, e := range events.events {
		event = e
	}
	if event == nil {
		t.Fatal("expected created event")
	}
	if event.Title != "Green Sound Fes 2026" {
		t.Errorf("unexpected title: %s", event.Title)
	}
	if event.Type != model.EventTypeFestival || event.Subtype != model.EventSubtypeRock {
		t.Errorf("unexpected type: %s/%s", event.Type, event.Subtype)
	}
	if event.PlaceName != "緑地公園野外ステージ" || event.City != "吹田市" {
		t.Errorf("unexpected location: %q / %q", event.PlaceName, event.City)
	}
	if event.Latitude != 34.805 || event.Longitude != 135.535 {
		t.Errorf("coordinates not applied: %v, %v", event.Latitude, event.Longitude)
	}
	if event.EndDate.Before(event.StartDate) {
		t.Error("end date should not precede start date")
	}

	if len(geo.queries) != 1 || geo.queries[0] != "大阪府吹田市千里万博公園1-1" {
		t.Errorf("unexpected geocode queries: %v", geo.queries)
	}

	if len(artists.artists) != 2 {
		t.Errorf("expected 2 artists, got %d", len(artists.artists))
	}
	if ids := assocs.byEvent[event.ID]; len(ids) != 2 {
		t.Errorf("expected 2 associations, got %v", ids)
	}
}

// TestIngester_Ingest_SkipsExistingEvent は登録済みイベントが再作成されないことを検証する。
func TestIngester_Ingest_SkipsExistingEvent(t *testing.T) {
	server := newFeedServer(t, partnerFeedXML)
	defer server.Close()

	events := newMockEventStore()
	geo := &mockGeocoder{lat: 1, lon: 1}
	ingester := newTestIngester(events, newMockArtistResolver(), newMockAssociationStore(), geo)

	if _, err := ingester.Ingest(context.Background(), server.URL); err != nil {
		t.Fatal(err)
	}

	result, err := ingester.Ingest(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("second Ingest returned error: %v", err)
	}

	if result.Created != 0 || result.Skipped != 2 {
		t.Errorf("expected no new events, got %+v", result)
	}
	if len(events.events) != 1 {
		t.Errorf("expected single event, got %d", len(events.events))
	}
}

// TestIngester_Ingest_GeocodeFailureSkipsItem はジオコーディング失敗時に
// 項目だけが見送られることを検証する。
func TestIngester_Ingest_GeocodeFailureSkipsItem(t *testing.T) {
	server := newFeedServer(t, partnerFeedXML)
	defer server.Close()

	events := newMockEventStore()
	geo := &mockGeocoder{err: fmt.Errorf("resolver down")}

	result, err := newTestIngester(events, newMockArtistResolver(), newMockAssociationStore(), geo).
		Ingest(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if result.Created != 0 || result.Skipped != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(events.events) != 0 {
		t.Error("no event should be created when geocoding fails")
	}
}

// TestIngester_Ingest_AssociationFailureRollsBackEvent は出演者の関連付けに
// 失敗した場合、作成済みのイベント行が取り消されることを検証する。
func TestIngester_Ingest_AssociationFailureRollsBackEvent(t *testing.T) {
	server := newFeedServer(t, partnerFeedXML)
	defer server.Close()

	events := newMockEventStore()
	assocs := newMockAssociationStore()
	assocs.createManyErr = fmt.Errorf("insert failed")
	geo := &mockGeocoder{lat: 1, lon: 1}

	result, err := newTestIngester(events, newMockArtistResolver(), assocs, geo).
		Ingest(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if result.Created != 0 || result.Skipped != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(events.events) != 0 {
		t.Errorf("event row should be rolled back, got %d rows", len(events.events))
	}
	if len(events.deletedIDs) != 1 {
		t.Errorf("expected single rollback delete, got %v", events.deletedIDs)
	}
}

// TestIngester_Ingest_RejectsInvalidURL はSSRF検証に失敗したURLが拒否されることを検証する。
func TestIngester_Ingest_RejectsInvalidURL(t *testing.T) {
	guard := &mockSSRFGuard{validateErr: fmt.Errorf("blocked")}
	ingester := NewIngester(newMockEventStore(), newMockArtistResolver(), newMockAssociationStore(),
		&mockGeocoder{}, guard, 10*time.Second, 10<<20)

	if _, err := ingester.Ingest(context.Background(), "http://169.254.169.254/feed"); err == nil {
		t.Fatal("expected error for blocked URL")
	}
}
