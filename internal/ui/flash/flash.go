// Пакет flash — одноразовые сообщения UI между запросами.
// Сообщения хранятся в cookie, зашифрованном AES-256-GCM, и удаляются
// при первом чтении. В cookie лежат ключи i18n, перевод — при отрисовке.
package flash

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// CookieName — имя cookie с flash-сообщениями.
const CookieName = "filedesk_flash"

// Категории сообщений.
const (
	CategorySuccess = "success"
	CategoryError   = "error"
)

// Message — одно flash-сообщение.
type Message struct {
	// Category — success или error
	Category string `json:"c"`
	// Key — ключ i18n текста сообщения
	Key string `json:"k"`
}

// Manager шифрует и дешифрует flash-сообщения в cookie.
type Manager struct {
	gcm    cipher.AEAD
	secure bool
}

// NewManager создаёт менеджер flash-сообщений.
// key — base64 от 32 байт или произвольная строка (хешируется SHA-256).
// Пустой key — случайный ключ, сообщения не переживают рестарт.
func NewManager(key string, secure bool) (*Manager, error) {
	var keyBytes []byte

	if key == "" {
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа flash: %w", err)
		}
	} else {
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			h := sha256.Sum256([]byte(key))
			keyBytes = h[:]
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &Manager{gcm: gcm, secure: secure}, nil
}

// Add добавляет сообщение к уже ожидающим в запросе и записывает cookie в ответ.
func (m *Manager) Add(w http.ResponseWriter, r *http.Request, category, key string) error {
	msgs := m.read(r)
	msgs = append(msgs, Message{Category: category, Key: key})

	value, err := m.encrypt(msgs)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop возвращает ожидающие сообщения и удаляет cookie.
// Повреждённый или чужой cookie даёт пустой список.
func (m *Manager) Pop(w http.ResponseWriter, r *http.Request) []Message {
	if _, err := r.Cookie(CookieName); err != nil {
		return nil
	}

	msgs := m.read(r)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return msgs
}

func (m *Manager) read(r *http.Request) []Message {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	msgs, err := m.decrypt(cookie.Value)
	if err != nil {
		return nil
	}
	return msgs
}

func (m *Manager) encrypt(msgs []Message) (string, error) {
	plaintext, err := json.Marshal(msgs)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации flash: %w", err)
	}

	nonce := make([]byte, m.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	return base64.URLEncoding.EncodeToString(m.gcm.Seal(nonce, nonce, plaintext, nil)), nil
}

func (m *Manager) decrypt(encoded string) ([]Message, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := m.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := m.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка дешифрования flash: %w", err)
	}

	var msgs []Message
	if err := json.Unmarshal(plaintext, &msgs); err != nil {
		return nil, fmt.Errorf("ошибка десериализации flash: %w", err)
	}
	return msgs, nil
}
