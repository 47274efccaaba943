package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, setter, reader *Flasher, msg string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, setter.Set(rec, msg))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return reader.Pop(httptest.NewRecorder(), req)
}

func TestFlashRoundTrip(t *testing.T) {
	f, err := NewFlasher("secret")
	require.NoError(t, err)

	assert.Equal(t, "Booking saved. Thank you!", roundTrip(t, f, f, "Booking saved. Thank you!"))
}

func TestFlashRejectsForeignSignature(t *testing.T) {
	a, _ := NewFlasher("secret-a")
	b, _ := NewFlasher("secret-b")

	assert.Empty(t, roundTrip(t, a, b, "hello"))
}

func TestPopClearsCookie(t *testing.T) {
	f, _ := NewFlasher("secret")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "garbage"})
	rec := httptest.NewRecorder()

	assert.Empty(t, f.Pop(rec, req))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, flashCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestPopWithoutCookie(t *testing.T) {
	f, _ := NewFlasher("secret")
	rec := httptest.NewRecorder()

	assert.Empty(t, f.Pop(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Empty(t, rec.Result().Cookies())
}

func TestNewFlasherRequiresSecret(t *testing.T) {
	_, err := NewFlasher("")
	assert.Error(t, err)
}
