package flash

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
)

// carry переносит cookie из ответа в новый запрос, как это сделал бы браузер.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func newManager(t *testing.T, key string) *Manager {
	t.Helper()
	m, err := NewManager(key, false)
	if err != nil {
		t.Fatalf("NewManager() вернул ошибку: %v", err)
	}
	return m
}

func TestAddPop(t *testing.T) {
	m := newManager(t, "test-secret")

	rec := httptest.NewRecorder()
	if err := m.Add(rec, httptest.NewRequest(http.MethodPost, "/admin", nil), CategorySuccess, "flash.uploaded"); err != nil {
		t.Fatalf("Add() вернул ошибку: %v", err)
	}

	popRec := httptest.NewRecorder()
	msgs := m.Pop(popRec, carry(rec))
	if len(msgs) != 1 {
		t.Fatalf("сообщений = %d, ожидалось 1", len(msgs))
	}
	if msgs[0].Category != CategorySuccess || msgs[0].Key != "flash.uploaded" {
		t.Errorf("сообщение = %+v", msgs[0])
	}

	// Cookie удаляется после чтения
	cleared := false
	for _, c := range popRec.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("cookie не удалён после Pop")
	}
}

func TestAdd_Accumulates(t *testing.T) {
	m := newManager(t, "")

	first := httptest.NewRecorder()
	_ = m.Add(first, httptest.NewRequest(http.MethodPost, "/admin", nil), CategoryError, "flash.no_file")

	second := httptest.NewRecorder()
	_ = m.Add(second, carry(first), CategorySuccess, "flash.uploaded")

	msgs := m.Pop(httptest.NewRecorder(), carry(second))
	if len(msgs) != 2 {
		t.Fatalf("сообщений = %d, ожидалось 2", len(msgs))
	}
	if msgs[0].Key != "flash.no_file" || msgs[1].Key != "flash.uploaded" {
		t.Errorf("порядок сообщений нарушен: %+v", msgs)
	}
}

func TestPop_NoCookie(t *testing.T) {
	m := newManager(t, "")
	rec := httptest.NewRecorder()

	if msgs := m.Pop(rec, httptest.NewRequest(http.MethodGet, "/", nil)); msgs != nil {
		t.Errorf("ожидался nil, получено %+v", msgs)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("без cookie в запросе ответ не должен ставить cookie")
	}
}

func TestPop_ForeignKey(t *testing.T) {
	author := newManager(t, "key-one")
	reader := newManager(t, "key-two")

	rec := httptest.NewRecorder()
	_ = author.Add(rec, httptest.NewRequest(http.MethodPost, "/", nil), CategorySuccess, "flash.deleted")

	if msgs := reader.Pop(httptest.NewRecorder(), carry(rec)); len(msgs) != 0 {
		t.Errorf("сообщение с чужим ключом не должно читаться: %+v", msgs)
	}
}

func TestPop_Garbage(t *testing.T) {
	m := newManager(t, "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "!!!not-base64"})

	if msgs := m.Pop(httptest.NewRecorder(), req); len(msgs) != 0 {
		t.Errorf("ожидался пустой список, получено %+v", msgs)
	}
}

func TestNewManager_Base64Key(t *testing.T) {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	key := base64.StdEncoding.EncodeToString(raw)

	a := newManager(t, key)
	b := newManager(t, key)

	rec := httptest.NewRecorder()
	_ = a.Add(rec, httptest.NewRequest(http.MethodPost, "/", nil), CategorySuccess, "flash.renamed")

	if msgs := b.Pop(httptest.NewRecorder(), carry(rec)); len(msgs) != 1 {
		t.Errorf("менеджеры с одним ключом должны читать сообщения друг друга")
	}
}
