package newslettertest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler_Default(t *testing.T) {
	h := NewHandler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(`{"firstName":"John","email":"john@doe.com"}`))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), SuccessMessage) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if h.Calls() != 1 || len(h.Requests()) != 1 {
		t.Errorf("calls = %d, requests = %d", h.Calls(), len(h.Requests()))
	}
}

func TestHandler_BadBody(t *testing.T) {
	h := NewHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, Path, strings.NewReader("{")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(h.Requests()) != 0 {
		t.Error("malformed body should not be recorded")
	}
}

func TestHandler_MethodAndRoute(t *testing.T) {
	h := NewHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Path, nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/other", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}

func TestHandler_UseAndReset(t *testing.T) {
	h := NewHandler()
	h.Use(Fail(http.StatusTeapot, "nope"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, Path, strings.NewReader(`{}`)))
	if rec.Code != http.StatusTeapot || !strings.Contains(rec.Body.String(), `"error":"nope"`) {
		t.Errorf("override not applied: %d %s", rec.Code, rec.Body.String())
	}

	h.Reset()
	if h.Calls() != 0 {
		t.Errorf("calls after reset = %d", h.Calls())
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, Path, strings.NewReader(`{}`)))
	if rec.Code != http.StatusOK {
		t.Errorf("status after reset = %d", rec.Code)
	}
}

func TestHandler_HoldRelease(t *testing.T) {
	h := NewHandler()
	h.Hold()

	done := make(chan int)
	go func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, Path, strings.NewReader(`{}`)))
		done <- rec.Code
	}()

	select {
	case <-done:
		t.Fatal("request finished while held")
	default:
	}

	h.Release()
	if code := <-done; code != http.StatusOK {
		t.Errorf("status = %d", code)
	}
}
