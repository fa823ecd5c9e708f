package storage

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ouvidoria/contact"
	"ouvidoria/models"
	"ouvidoria/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/memory/v2"
)

// recordingStorage remembers every session key written to the backend
type recordingStorage struct {
	fiber.Storage
	mu   sync.Mutex
	keys map[string]bool
}

func newRecordingStorage(t *testing.T) *recordingStorage {
	t.Helper()
	backing := memory.New()
	t.Cleanup(func() { backing.Close() })
	return &recordingStorage{Storage: backing, keys: map[string]bool{}}
}

func (r *recordingStorage) Set(key string, val []byte, exp time.Duration) error {
	r.mu.Lock()
	r.keys[key] = true
	r.mu.Unlock()
	return r.Storage.Set(key, val, exp)
}

func (r *recordingStorage) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

func newTestFormStore(t *testing.T) (*FormStore, *contact.Reducer, *recordingStorage) {
	t.Helper()
	backing := newRecordingStorage(t)
	reducer := contact.NewReducer(contact.MustNewValidator(utils.NewCatalog(), contact.PhoneOptional))
	return NewFormStore(session.New(session.Config{Storage: backing}), reducer), reducer, backing
}

func newFormStoreApp(t *testing.T) (*fiber.App, *recordingStorage) {
	t.Helper()
	forms, reducer, backing := newTestFormStore(t)

	app := fiber.New()
	app.Post("/name/:value", func(c *fiber.Ctx) error {
		state, err := forms.Load(c)
		if err != nil {
			return err
		}
		state, err = reducer.Change(state, models.FieldFullName, c.Params("value"))
		if err != nil {
			return err
		}
		if err := forms.Save(c, state); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/state", func(c *fiber.Ctx) error {
		state, err := forms.Load(c)
		if err != nil {
			return err
		}
		return c.JSON(state)
	})
	return app, backing
}

func sessionCookie(t *testing.T, setCookie string) string {
	t.Helper()
	if setCookie == "" {
		t.Fatal("response did not set a session cookie")
	}
	return strings.SplitN(setCookie, ";", 2)[0]
}

func TestFormStore_RoundTrip(t *testing.T) {
	app, backing := newFormStoreApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/name/Ana", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	cookie := sessionCookie(t, resp.Header.Get("Set-Cookie"))
	if backing.Size() != 1 {
		t.Errorf("stored sessions = %d, want 1", backing.Size())
	}

	req := httptest.NewRequest(fiber.MethodGet, "/state", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}

	var state contact.FormState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.Values.FullName != "Ana" || !state.Dirty {
		t.Errorf("loaded state = %+v, want full name Ana and dirty", state)
	}
}

func TestFormStore_NewVisitorGetsPristineState(t *testing.T) {
	app, _ := newFormStoreApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/state", nil))
	if err != nil {
		t.Fatal(err)
	}

	var state contact.FormState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	if state.Dirty || state.Values != (models.Draft{}) {
		t.Errorf("new visitor state = %+v, want pristine", state)
	}
}

func TestFormStore_SavesTwiceInOneRequest(t *testing.T) {
	forms, reducer, backing := newTestFormStore(t)

	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		state := reducer.Initial()
		for _, name := range []string{"Ana", "Bia"} {
			next, err := reducer.Change(state, models.FieldFullName, name)
			if err != nil {
				return err
			}
			if err := forms.Save(c, next); err != nil {
				return err
			}
			state = next
		}
		loaded, err := forms.Load(c)
		if err != nil {
			return err
		}
		return c.SendString(loaded.Values.FullName)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "Bia" {
		t.Errorf("loaded full name = %q, want Bia", body)
	}
	if backing.Size() != 1 {
		t.Errorf("stored sessions = %d, want 1", backing.Size())
	}
}

func TestFormStore_LockSerializesSameSession(t *testing.T) {
	forms, _, _ := newTestFormStore(t)

	var (
		mu      sync.Mutex
		active  int
		overlap bool
		wg      sync.WaitGroup
	)
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		unlock := forms.Lock(c)
		defer unlock()

		mu.Lock()
		active++
		if active > 1 {
			overlap = true
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(fiber.MethodPost, "/", nil)
			req.Header.Set("Cookie", "session_id=shared")
			if _, err := app.Test(req, -1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if overlap {
		t.Error("requests of one session ran concurrently")
	}
	if len(forms.locks) != 0 {
		t.Errorf("locks left behind: %d", len(forms.locks))
	}
}
