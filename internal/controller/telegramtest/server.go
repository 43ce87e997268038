// Package telegramtest поднимает фейковый Bot API для тестов обработчиков
package telegramtest

import (
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
)

// Call один запрос к Bot API
type Call struct {
	Method string
	Params map[string]string
}

// Server записывает вызовы и отвечает успехом
type Server struct {
	mu    sync.Mutex
	calls []Call
}

// NewBot бот, который ходит в фейковый сервер
func NewBot(t *testing.T) (*bot.Bot, *Server) {
	t.Helper()

	s := &Server{}
	srv := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(srv.Close)

	b, err := bot.New("123456:test-token", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("create bot: %v", err)
	}
	return b, s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	params := map[string]string{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				if len(v) > 0 {
					params[k] = v[0]
				}
			}
		}
	} else if err := r.ParseForm(); err == nil {
		for k := range r.Form {
			params[k] = r.Form.Get(k)
		}
	}

	method := path.Base(r.URL.Path)
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Params: params})
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "sendMessage", "editMessageText":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

// Calls вызовы метода в порядке поступления
func (s *Server) Calls(method string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Call
	for _, c := range s.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Texts тексты всех отправленных сообщений
func (s *Server) Texts() []string {
	var out []string
	for _, c := range s.Calls("sendMessage") {
		out = append(out, c.Params["text"])
	}
	return out
}
