package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
)

func TestSessionStore_Expiry(t *testing.T) {
	loads := 0
	store := NewSessionStore(time.Hour, func() (*dataset.Dataset, error) {
		loads++
		return nil, dataset.ErrNotFound
	})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s := store.Create()
	if loads != 1 {
		t.Errorf("dataset loaded %d times, want 1", loads)
	}
	if !errors.Is(s.DatasetErr, dataset.ErrNotFound) {
		t.Errorf("DatasetErr = %v, want ErrNotFound", s.DatasetErr)
	}
	if got := store.Get(s.ID); got != s {
		t.Fatal("Get() did not return the created session")
	}

	now = now.Add(2 * time.Hour)
	if store.Get(s.ID) != nil {
		t.Error("Get() returned an expired session")
	}

	// Creating another session prunes the expired one.
	store.Create()
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after prune", store.Len())
	}
}

func TestSessionStore_Ensure(t *testing.T) {
	store := NewSessionStore(0, func() (*dataset.Dataset, error) { return nil, nil })

	rec := httptest.NewRecorder()
	first := store.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != first.ID {
		t.Fatalf("cookies = %v, want session cookie for %s", cookies, first.ID)
	}
	if cookies[0].MaxAge != int(DefaultSessionTTL.Seconds()) {
		t.Errorf("MaxAge = %d, want %d", cookies[0].MaxAge, int(DefaultSessionTTL.Seconds()))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	if again := store.Ensure(rec, req); again != first {
		t.Error("Ensure() created a new session despite a valid cookie")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("Ensure() reset the cookie for an existing session")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "unknown"})
	if fresh := store.Ensure(httptest.NewRecorder(), req); fresh == first {
		t.Error("Ensure() reused a session for an unknown id")
	}

	store.Delete(first.ID)
	if store.Get(first.ID) != nil {
		t.Error("Get() returned a deleted session")
	}
}
