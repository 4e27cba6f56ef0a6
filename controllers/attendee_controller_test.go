package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"jesa-attendance/applications/notify"
	"jesa-attendance/db"
	"jesa-attendance/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	phone string
	name  string
}

type fakeNotifier struct {
	result notify.Result

	mu    sync.Mutex
	calls []sent
}

func (f *fakeNotifier) Send(_ context.Context, phone, name string) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sent{phone, name})
	return f.result
}

func (f *fakeNotifier) Calls() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sent, len(f.calls))
	copy(out, f.calls)
	return out
}

type fixture struct {
	e        *echo.Echo
	store    *db.FileStore
	notifier *fakeNotifier
}

func newFixture(t *testing.T, document string, result notify.Result) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attendees.json")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o644))

	store := db.NewFileStore(path)
	notifier := &fakeNotifier{result: result}
	e := echo.New()
	NewAttendeeController(slog.Default(), store, notifier, "JESA 2023").Register(e)
	return &fixture{e: e, store: store, notifier: notifier}
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) document(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.store.Path())
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) records(t *testing.T) []domain.Attendee {
	t.Helper()
	records, err := f.store.Load(context.Background())
	require.NoError(t, err)
	return detach(records)
}

func detach(records []domain.Attendee) []domain.Attendee {
	return lo.Map(records, func(a domain.Attendee, _ int) domain.Attendee { return a.Detached() })
}

var (
	smsOK   = notify.Result{Status: notify.StatusSuccess, Message: "queued"}
	smsFail = notify.Result{Status: "error", Message: "Insufficient balance"}
)

const alOnly = `[{"id":"1","name":"Al","contactNo":"123","attended":false}]`

func decodeWrite(t *testing.T, rec *httptest.ResponseRecorder) WriteResponse {
	t.Helper()
	var resp WriteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestListReturnsPersistedCollection(t *testing.T) {
	f := newFixture(t, `[{"id":"2","name":"Bo","contactNo":"456","attended":true},{"id":"1","name":"Al","contactNo":"123","attended":false}]`, smsOK)

	rec := f.do(http.MethodGet, "/user/list", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.Attendee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []domain.Attendee{
		{ID: "2", Name: "Bo", ContactNo: "456", Attended: true},
		{ID: "1", Name: "Al", ContactNo: "123"},
	}, detach(got))
}

func TestListStorageFailure(t *testing.T) {
	f := newFixture(t, `not json`, smsOK)

	rec := f.do(http.MethodGet, "/user/list", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestDownloadStreamsCSV(t *testing.T) {
	f := newFixture(t, alOnly, smsOK)

	rec := f.do(http.MethodGet, "/user/list-download", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attendees.csv")
	assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "ID,Name,Contact Number,Award,Category,Attended\n1,Al,123,,,false\n", rec.Body.String())
}

func TestMarkKnownContact(t *testing.T) {
	f := newFixture(t, `[{"id":"1","name":"Al","contactNo":"123","attended":false},{"id":"2","name":"Bo","contactNo":"456","attended":false}]`, smsOK)

	rec := f.do(http.MethodPost, "/user/mark/123", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Attendee marked successfully!","sms":"SMS sent successfully!"}`, rec.Body.String())

	records := f.records(t)
	assert.True(t, records[0].Attended)
	assert.Equal(t, domain.Attendee{ID: "2", Name: "Bo", ContactNo: "456"}, records[1])
	assert.Equal(t, []sent{{"123", "Al"}}, f.notifier.Calls())
}

func TestMarkLeavesOtherRecordsByteForByte(t *testing.T) {
	const other = `{"name":"Bo & Co","contactNo":"456","id":"2","email":"bo@x.lk"}`
	f := newFixture(t, `[{"id":"1","name":"Al","contactNo":"123","attended":false},`+other+`]`, smsOK)

	rec := f.do(http.MethodPost, "/user/mark/123", "")
	require.Equal(t, http.StatusOK, rec.Code)

	document := f.document(t)
	assert.Contains(t, document, "\n  "+other+"\n")
	assert.Contains(t, document, `"attended": true`)
	assert.NotContains(t, document, `\u0026`)
}

func TestMarkWithoutSMSTokenReportsMockDelivery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendees.json")
	require.NoError(t, os.WriteFile(path, []byte(alOnly), 0o644))
	store := db.NewFileStore(path)
	notifier := notify.NewSMSNotifier(slog.Default(), notify.Options{EventName: "JESA 2023"})
	e := echo.New()
	NewAttendeeController(slog.Default(), store, notifier, "JESA 2023").Register(e)
	f := &fixture{e: e, store: store}

	rec := f.do(http.MethodPost, "/user/mark/123", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Attendee marked successfully!","sms":"SMS sent failed!","error":"mock delivery"}`, rec.Body.String())
	assert.True(t, f.records(t)[0].Attended)
}

func TestMarkWithFailedSMSStillSucceeds(t *testing.T) {
	f := newFixture(t, alOnly, smsFail)

	rec := f.do(http.MethodPost, "/user/mark/123", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeWrite(t, rec)
	assert.Equal(t, "Attendee marked successfully!", resp.Message)
	assert.Equal(t, "SMS sent failed!", resp.SMS)
	assert.Equal(t, "Insufficient balance", resp.Error)
	assert.True(t, f.records(t)[0].Attended)
}

func TestMarkUnknownContact(t *testing.T) {
	f := newFixture(t, alOnly, smsOK)

	rec := f.do(http.MethodPost, "/user/mark/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Attendee not found!"}`, rec.Body.String())
	assert.Equal(t, alOnly, f.document(t))
	assert.Empty(t, f.notifier.Calls())
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t, `[]`, smsOK)

	for _, body := range []string{
		`{"name":"Al","contactNo":"123","award":"Gold","category":"Junior"}`,
		`{"name":"Bo","contactNo":"456"}`,
		`{"name":"Cy","contactNo":"789"}`,
	} {
		rec := f.do(http.MethodPost, "/user/add", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "SMS sent successfully!", decodeWrite(t, rec).SMS)
	}

	records := f.records(t)
	require.Len(t, records, 3)
	for i, want := range []string{"1", "2", "3"} {
		assert.Equal(t, want, records[i].ID)
		assert.True(t, records[i].Attended)
	}
	assert.Equal(t, "Gold", records[0].Award)
	assert.Equal(t, []sent{{"123", "Al"}, {"456", "Bo"}, {"789", "Cy"}}, f.notifier.Calls())
}

func TestAddRejectsInvalidBody(t *testing.T) {
	f := newFixture(t, `[]`, smsOK)

	rec := f.do(http.MethodPost, "/user/add", `{"name":"Al"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `[]`, f.document(t))
	assert.Empty(t, f.notifier.Calls())
}

func TestOversizedBodyIsRejected(t *testing.T) {
	f := newFixture(t, alOnly, smsOK)
	big := `{"name":"` + strings.Repeat("a", 65<<10) + `"}`

	rec := f.do(http.MethodPost, "/user/add", `{"contactNo":"9",`+big[1:])
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = f.do(http.MethodPut, "/user/update/1", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	assert.Equal(t, alOnly, f.document(t))
	assert.Empty(t, f.notifier.Calls())
}

func TestUpdateRejectsEmptyContact(t *testing.T) {
	f := newFixture(t, alOnly, smsOK)

	rec := f.do(http.MethodPut, "/user/update/1", `{"contactNo":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, alOnly, f.document(t))
	assert.Empty(t, f.notifier.Calls())
}

func TestUpdateMergesPatch(t *testing.T) {
	f := newFixture(t, `[{"id":"1","name":"Al","contactNo":"123","award":"Gold","category":"Junior","attended":false}]`, smsOK)

	rec := f.do(http.MethodPut, "/user/update/1", `{"name":"Alan"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Attendee marked successfully!", decodeWrite(t, rec).Message)

	assert.Equal(t, []domain.Attendee{
		{ID: "1", Name: "Alan", ContactNo: "123", Award: "Gold", Category: "Junior", Attended: true},
	}, f.records(t))
	assert.Equal(t, []sent{{"123", "Alan"}}, f.notifier.Calls())
}

func TestUpdateUnknownID(t *testing.T) {
	f := newFixture(t, alOnly, smsOK)

	rec := f.do(http.MethodPut, "/user/update/42", `{"name":"X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Attendee not found"}`, rec.Body.String())
	assert.Equal(t, alOnly, f.document(t))
}

func TestBadge(t *testing.T) {
	f := newFixture(t, alOnly, smsOK)

	rec := f.do(http.MethodGet, "/user/badge/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "attachment; filename=badge-1.pdf", rec.Header().Get(echo.HeaderContentDisposition))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = f.do(http.MethodGet, "/user/badge/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddDuplicateContactWithBadgerStore(t *testing.T) {
	bdb, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	store := db.NewBadgerStore(bdb, t.TempDir())
	t.Cleanup(func() { _ = store.Close() })

	e := echo.New()
	notifier := &fakeNotifier{result: smsOK}
	NewAttendeeController(slog.Default(), store, notifier, "JESA 2023").Register(e)
	f := &fixture{e: e, notifier: notifier}

	rec := f.do(http.MethodPost, "/user/add", `{"name":"Al","contactNo":"123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/user/add", `{"name":"Al twin","contactNo":"123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, notifier.Calls(), 1)
}
