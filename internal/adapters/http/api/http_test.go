package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/okian/aeroscore/internal/adapters/http/api"
	"github.com/okian/aeroscore/internal/adapters/repository"
	service "github.com/okian/aeroscore/internal/app"
	"github.com/okian/aeroscore/internal/domain/model"
	"github.com/okian/aeroscore/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const category = "Individual Women - Juniors"

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	store, err := repository.Open(context.Background(), repository.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc, err := service.New(store, service.WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return api.NewServer(svc, api.WithLogger(logger.Discard())).Router(context.Background())
}

func do(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func competitorBody(email string) map[string]any {
	return map[string]any{
		"category": category,
		"club":     "CSS Aerobic",
		"members": []map[string]any{
			{"first_name": "Ana", "last_name": "Pop", "email": email, "age": 16, "sex": "F"},
		},
	}
}

func TestRouter_Competitors(t *testing.T) {
	Convey("Given the API router", t, func() {
		h := newRouter(t)

		Convey("When a competitor is created", func() {
			w := do(h, http.MethodPost, "/api/competitors", competitorBody("ana@example.com"))
			So(w.Code, ShouldEqual, http.StatusCreated)
			c := decodeBody[model.Competitor](w)

			Convey("Then it is listed and counted", func() {
				w := do(h, http.MethodGet, "/api/competitors", nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeBody[[]model.Competitor](w), ShouldHaveLength, 1)

				w = do(h, http.MethodGet, "/api/competitors/count", nil)
				So(w.Body.String(), ShouldContainSubstring, `"count":1`)
				w = do(h, http.MethodGet, "/api/competitors/categories/count", nil)
				So(w.Body.String(), ShouldContainSubstring, `"count":1`)
			})

			Convey("Then the by-category view needs a known category", func() {
				So(do(h, http.MethodGet, "/api/competitors/by-category", nil).Code, ShouldEqual, http.StatusBadRequest)
				So(do(h, http.MethodGet, "/api/competitors/by-category?category=Beach", nil).Code, ShouldEqual, http.StatusBadRequest)

				w := do(h, http.MethodGet, "/api/competitors/by-category?category="+url.QueryEscape(category), nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				sheets := decodeBody[[]service.CompetitorSheet](w)
				So(sheets, ShouldHaveLength, 1)
				So(sheets[0].Validated, ShouldBeFalse)
			})

			Convey("Then a duplicate email conflicts", func() {
				w := do(h, http.MethodPost, "/api/competitors", competitorBody("ana@example.com"))
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decodeBody[map[string]string](w)["code"], ShouldEqual, "conflict")
			})

			Convey("Then validation takes a bounded total", func() {
				path := fmt.Sprintf("/api/scores/%d/validate", c.ID)
				So(do(h, http.MethodPost, path, map[string]any{"total_score": 31}).Code, ShouldEqual, http.StatusBadRequest)
				So(do(h, http.MethodPost, path, map[string]any{"total_score": 18.5}).Code, ShouldEqual, http.StatusOK)

				unvalidate := fmt.Sprintf("/api/scores/%d/unvalidate", c.ID)
				So(do(h, http.MethodDelete, unvalidate, nil).Code, ShouldEqual, http.StatusOK)
				So(do(h, http.MethodDelete, unvalidate, nil).Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("Then it can be deleted once", func() {
				path := fmt.Sprintf("/api/competitors/%d", c.ID)
				So(do(h, http.MethodDelete, path, nil).Code, ShouldEqual, http.StatusOK)
				So(do(h, http.MethodDelete, path, nil).Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the body is malformed", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/competitors", bytes.NewBufferString("{"))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody[map[string]string](w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When a path id is not a number", func() {
			So(do(h, http.MethodDelete, "/api/competitors/abc", nil).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRouter_ScoresVotesAndRankings(t *testing.T) {
	Convey("Given a competitor and a judge", t, func() {
		h := newRouter(t)
		c := decodeBody[model.Competitor](do(h, http.MethodPost, "/api/competitors", competitorBody("eva@example.com")))
		w := do(h, http.MethodPost, "/api/judges", map[string]any{"first_name": "Ion", "last_name": "Ene", "role": "difficulty"})
		So(w.Code, ShouldEqual, http.StatusCreated)
		j := decodeBody[model.Judge](w)

		Convey("When rankings are requested before any validation", func() {
			So(do(h, http.MethodGet, "/api/rankings", nil).Code, ShouldEqual, http.StatusNotFound)
			So(do(h, http.MethodGet, "/api/rankings/extended", nil).Code, ShouldEqual, http.StatusNotFound)
			So(do(h, http.MethodGet, "/api/rankings/"+url.PathEscape(category), nil).Code, ShouldEqual, http.StatusNotFound)
			So(do(h, http.MethodGet, "/api/rankings/Beach", nil).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a vote is open and the judge scores", func() {
			So(do(h, http.MethodPost, "/api/votes/start", map[string]any{"competitor_id": c.ID}).Code, ShouldEqual, http.StatusOK)

			current := fmt.Sprintf("/api/votes/current?judge_id=%d", j.ID)
			vote := decodeBody[service.Vote](do(h, http.MethodGet, current, nil))
			So(vote.Competitor.ID, ShouldEqual, c.ID)
			So(vote.AlreadyVoted, ShouldBeFalse)

			score := map[string]any{"judge_id": j.ID, "competitor_id": c.ID, "score_type": "difficulty", "value": 4.2}
			So(do(h, http.MethodPost, "/api/scores", score).Code, ShouldEqual, http.StatusCreated)

			Convey("Then the vote reports it", func() {
				vote := decodeBody[service.Vote](do(h, http.MethodGet, current, nil))
				So(vote.AlreadyVoted, ShouldBeTrue)
				So(do(h, http.MethodGet, "/api/votes/current?judge_id=x", nil).Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then the score sheets show it", func() {
				sheet := decodeBody[map[string]service.JudgeScore](do(h, http.MethodGet, fmt.Sprintf("/api/scores/%d", c.ID), nil))
				So(sheet["Ion Ene (difficulty)"].Value, ShouldAlmostEqual, 4.2, 1e-9)
				So(decodeBody[[]model.Score](do(h, http.MethodGet, fmt.Sprintf("/api/judges/%d/scores", j.ID), nil)), ShouldHaveLength, 1)
				So(decodeBody[[]model.Score](do(h, http.MethodGet, "/api/scores", nil)), ShouldHaveLength, 1)
			})

			Convey("Then validation closes the vote and ranks the competitor", func() {
				So(do(h, http.MethodPost, fmt.Sprintf("/api/scores/%d/validate", c.ID), map[string]any{"total_score": 12}).Code, ShouldEqual, http.StatusOK)
				So(do(h, http.MethodGet, "/api/votes/current", nil).Code, ShouldEqual, http.StatusNotFound)

				w := do(h, http.MethodGet, "/api/rankings", nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				rankings := decodeBody[map[string][]model.RankedEntry](w)
				So(rankings[category], ShouldHaveLength, 1)
				So(rankings[category][0].DifficultyScore, ShouldAlmostEqual, 4.2, 1e-9)
				So(rankings[category][0].Competitor, ShouldEqual, "Pop Ana")

				w = do(h, http.MethodGet, "/api/rankings/"+url.PathEscape(category), nil)
				So(w.Code, ShouldEqual, http.StatusOK)

				ext := decodeBody[map[string][]model.ExtendedEntry](do(h, http.MethodGet, "/api/rankings/extended", nil))
				So(ext[category][0].Scores, ShouldContainKey, "Ion Ene (difficulty)")

				w = do(h, http.MethodGet, "/api/rankings/export.xlsx", nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				f, err := excelize.OpenReader(w.Body)
				So(err, ShouldBeNil)
				defer f.Close()
				So(f.GetSheetList(), ShouldResemble, []string{category})
			})

			Convey("Then deleting the difficulty score clears the panel", func() {
				body := map[string]any{"competitor_id": c.ID, "score_type": "difficulty"}
				w := do(h, http.MethodDelete, "/api/scores", body)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"removed":1`)
				So(do(h, http.MethodDelete, "/api/scores", body).Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("Then stopping the vote twice is not found", func() {
				So(do(h, http.MethodPost, "/api/votes/stop", nil).Code, ShouldEqual, http.StatusOK)
				So(do(h, http.MethodPost, "/api/votes/stop", nil).Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the judge logs in", func() {
			w := do(h, http.MethodPut, fmt.Sprintf("/api/judges/%d/login", j.ID), map[string]any{"first_name": "Ioana", "last_name": "Ene"})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody[model.Judge](w).FirstName, ShouldEqual, "Ioana")
			So(do(h, http.MethodPut, "/api/judges/999/login", map[string]any{"first_name": "A", "last_name": "B"}).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When another judge claims the same name", func() {
			dup := map[string]any{"first_name": "Ion", "last_name": "Ene", "role": "execution"}
			So(do(h, http.MethodPost, "/api/judges", dup).Code, ShouldEqual, http.StatusConflict)

			w := do(h, http.MethodPost, "/api/judges", map[string]any{"first_name": "Dan", "last_name": "Ene", "role": "execution"})
			So(w.Code, ShouldEqual, http.StatusCreated)
			other := decodeBody[model.Judge](w)
			login := fmt.Sprintf("/api/judges/%d/login", other.ID)
			So(do(h, http.MethodPut, login, map[string]any{"first_name": "Ion", "last_name": "Ene"}).Code, ShouldEqual, http.StatusConflict)
		})
	})
}

func TestRouter_ShowAndLogs(t *testing.T) {
	Convey("Given the API router", t, func() {
		h := newRouter(t)
		c := decodeBody[model.Competitor](do(h, http.MethodPost, "/api/competitors", competitorBody("ria@example.com")))

		Convey("When nothing is shown", func() {
			state := decodeBody[service.ShowState](do(h, http.MethodGet, "/api/show/state", nil))
			So(state.Mode, ShouldEqual, service.ShowBanner)
			So(do(h, http.MethodGet, "/api/live", nil).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a competitor is put on screen", func() {
			So(do(h, http.MethodPost, fmt.Sprintf("/api/live/%d", c.ID), nil).Code, ShouldEqual, http.StatusOK)

			Convey("Then the state shows it until cleared", func() {
				state := decodeBody[service.ShowState](do(h, http.MethodGet, "/api/show/state", nil))
				So(state.Mode, ShouldEqual, service.ShowCompetitor)
				So(state.Competitor.ID, ShouldEqual, c.ID)
				So(do(h, http.MethodGet, "/api/live", nil).Code, ShouldEqual, http.StatusOK)

				So(do(h, http.MethodDelete, "/api/live", nil).Code, ShouldEqual, http.StatusOK)
				So(do(h, http.MethodGet, "/api/live", nil).Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When messages are logged", func() {
			So(do(h, http.MethodPost, "/api/logs", map[string]any{"message": "warm-up over"}).Code, ShouldEqual, http.StatusCreated)
			So(do(h, http.MethodPost, "/api/logs", map[string]any{"message": ""}).Code, ShouldEqual, http.StatusBadRequest)

			w := do(h, http.MethodGet, "/api/logs", nil)
			entries := decodeBody[[]model.LogEntry](w)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].ID, ShouldNotBeEmpty)
			So(w.Header().Get(api.LogRetainedHeader), ShouldEqual, "1")
			So(w.Header().Get(api.LogCapacityHeader), ShouldEqual, "100")
		})

		Convey("When metrics are scraped", func() {
			w := do(h, http.MethodGet, "/healthz", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When a request carries an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/logs", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "req-42")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-42")
		})
	})
}

func TestOpError(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")

		Convey("Then kinds and causes both match", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: boom")

			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}

func TestNewServer_ExplicitLogger(t *testing.T) {
	Convey("Given a logger passed as an option", t, func() {
		Convey("Then the server is built without touching the global logger", func() {
			So(func() {
				api.NewServer(nil, api.WithLogger(logger.Discard())).Router(context.Background())
			}, ShouldNotPanic)
		})
	})
}
