package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Qwealzy/roots-of-sentient/internal/adapters/http/api"
	service "github.com/Qwealzy/roots-of-sentient/internal/app"
	"github.com/Qwealzy/roots-of-sentient/internal/domain/ring"
	"github.com/Qwealzy/roots-of-sentient/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

// newTestMux wires the API against a real service on in-memory stores.
func newTestMux(opts ...service.Option) (*http.ServeMux, *service.Service) {
	svc := service.New(opts...)
	_ = svc.Start(context.Background())

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return mux, svc
}

// postWord builds and performs a multipart POST /words request.
func postWord(mux *http.ServeMux, term, username, token string, avatar []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if term != "" {
		_ = mw.WriteField("term", term)
	}
	if username != "" {
		_ = mw.WriteField("username", username)
	}
	if token != "" {
		_ = mw.WriteField("clientToken", token)
	}
	if avatar != nil {
		fw, _ := mw.CreateFormFile("avatar", "avatar.png")
		_, _ = fw.Write(avatar)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/words", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func deleteWord(mux *http.ServeMux, id, token string) *httptest.ResponseRecorder {
	q := url.Values{}
	if id != "" {
		q.Set("id", id)
	}
	if token != "" {
		q.Set("clientToken", token)
	}
	req := httptest.NewRequest(http.MethodDelete, "/words?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func listWords(mux *http.ServeMux) (*httptest.ResponseRecorder, []api.Word) {
	req := httptest.NewRequest(http.MethodGet, "/words", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var body struct {
		Words []api.Word `json:"words"`
	}
	_ = json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&body)
	return rec, body.Words
}

func decodeWord(t *testing.T, rec *httptest.ResponseRecorder) api.Word {
	t.Helper()
	var body struct {
		Word api.Word `json:"word"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode word response: %v", err)
	}
	return body.Word
}

func TestWordsEndpoint(t *testing.T) {
	Convey("Given the words API on an empty ring", t, func() {
		mux, svc := newTestMux()
		defer svc.Stop()

		Convey("When listing words", func() {
			rec, words := listWords(mux)

			Convey("Then the response is an empty list, not null", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(words, ShouldBeEmpty)
				So(strings.TrimSpace(rec.Body.String()), ShouldEqual, `{"words":[]}`)
			})
		})

		Convey("When contributing a word", func() {
			rec := postWord(mux, "root", "Robin", "tok-1", nil)

			Convey("Then it is created with a coordinate and placement", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				w := decodeWord(t, rec)
				So(w.ID, ShouldNotBeEmpty)
				So(*w.LayerIndex, ShouldEqual, 0)
				So(*w.SlotIndex, ShouldEqual, 0)
				So(*w.Angle, ShouldEqual, 45)
			})

			Convey("And it appears in the listing", func() {
				rec, words := listWords(mux)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(words, ShouldHaveLength, 1)
				So(words[0].Term, ShouldEqual, "root")
				So(words[0].DisplayName, ShouldEqual, "Robin")
			})
		})

		Convey("When contributing with an avatar", func() {
			rec := postWord(mux, "root", "Robin", "tok-1", []byte("img"))

			So(rec.Code, ShouldEqual, http.StatusCreated)
			w := decodeWord(t, rec)
			So(w.AvatarURL, ShouldStartWith, "memory://avatars/")
		})

		Convey("When the term is missing", func() {
			rec := postWord(mux, "", "Robin", "tok-1", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the client token is missing", func() {
			rec := postWord(mux, "root", "Robin", "", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not multipart", func() {
			req := httptest.NewRequest(http.MethodPost, "/words", strings.NewReader(`{"term":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the avatar is over the size limit", func() {
			avatar := bytes.Repeat([]byte("x"), int(service.DefaultMaxAvatarBytes)+1)
			rec := postWord(mux, "root", "Robin", "tok-1", avatar)
			So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("When an unsupported method is used", func() {
			req := httptest.NewRequest(http.MethodPut, "/words", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given the words API with existing words", t, func() {
		mux, svc := newTestMux()
		defer svc.Stop()

		created := decodeWord(t, postWord(mux, "root", "Robin", "tok-1", nil))

		Convey("When the same term arrives again", func() {
			rec := postWord(mux, "ROOT", "Kai", "tok-2", nil)
			So(rec.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When the same visitor contributes again", func() {
			rec := postWord(mux, "branch", "Robin", "tok-1", nil)
			So(rec.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When deleting with the wrong token", func() {
			rec := deleteWord(mux, created.ID, "tok-2")
			So(rec.Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("When deleting an unknown id", func() {
			rec := deleteWord(mux, "ghost", "tok-1")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When deleting without parameters", func() {
			rec := deleteWord(mux, "", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the owner deletes the word", func() {
			rec := deleteWord(mux, created.ID, "tok-1")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(rec.Body.String()), ShouldEqual, `{"success":true}`)

			_, words := listWords(mux)
			So(words, ShouldBeEmpty)
		})

		Convey("Then error responses carry an error message", func() {
			rec := deleteWord(mux, created.ID, "tok-2")
			var body map[string]string
			So(json.NewDecoder(rec.Body).Decode(&body), ShouldBeNil)
			So(body["error"], ShouldNotBeEmpty)
		})
	})

	Convey("Given the words API on a full bounded ring", t, func() {
		mux, svc := newTestMux(service.WithPlan(ring.NewPlan(
			ring.WithBaseCapacity(1),
			ring.WithMaxLayer(0),
		)))
		defer svc.Stop()

		So(postWord(mux, "only", "A", "tok-1", nil).Code, ShouldEqual, http.StatusCreated)

		Convey("Then the next contribution conflicts", func() {
			rec := postWord(mux, "extra", "B", "tok-2", nil)
			So(rec.Code, ShouldEqual, http.StatusConflict)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		mux, svc := newTestMux()
		defer svc.Stop()

		Convey("When requested with GET", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			So(json.NewDecoder(rec.Body).Decode(&stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("When requested with POST", func() {
			req := httptest.NewRequest(http.MethodPost, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		mux, svc := newTestMux()
		defer svc.Stop()

		Convey("When requested", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it serves Prometheus metrics", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body, _ := io.ReadAll(rec.Body)
				So(string(body), ShouldContainSubstring, "roots_ring_")
			})
		})
	})
}
