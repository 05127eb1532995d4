package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foicore/internal/statute/models"
	"foicore/internal/statute/service"
	"foicore/internal/statute/store"
)

func newTestRouter(t *testing.T) (*chi.Mux, *service.Service) {
	t.Helper()
	svc := service.New(store.NewInMemory())
	h := New(svc, slog.New(slog.DiscardHandler))
	r := chi.NewRouter()
	h.Register(r)
	return r, svc
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestCreateAndGetStatute(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, created := doJSON(t, r, http.MethodPost, "/statutes",
		`{"name": "IFG", "refusal_reasons": "§1: Privacy\n§2: Security", "max_response_time": 30, "max_response_time_unit": "calendar_day"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := created["id"].(string)

	rec, got := doJSON(t, r, http.MethodGet, "/statutes/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IFG", got["name"])
	assert.Equal(t, "ifg", got["slug"])
}

func TestGetStatuteErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	t.Run("malformed id", func(t *testing.T) {
		rec, body := doJSON(t, r, http.MethodGet, "/statutes/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad_request", body["error"].(map[string]any)["code"])
	})

	t.Run("unknown id", func(t *testing.T) {
		rec, body := doJSON(t, r, http.MethodGet, "/statutes/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", body["error"].(map[string]any)["code"])
	})
}

func TestRefusalReasonsEndpoint(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()

	sub, err := svc.CreateStatute(ctx, &models.Statute{
		Name:           "A",
		RefusalReasons: "§1: Privacy\n§2: Security",
	})
	require.NoError(t, err)
	meta, err := svc.CreateStatute(ctx, &models.Statute{
		Name:        "M",
		Meta:        true,
		CombinedIDs: []uuid.UUID{sub.ID},
	})
	require.NoError(t, err)

	rec, body := doJSON(t, r, http.MethodGet, "/statutes/"+meta.ID.String()+"/refusal-reasons", "")
	require.Equal(t, http.StatusOK, rec.Code)
	choices := body["choices"].([]any)
	require.Len(t, choices, 3)
	first := choices[0].(map[string]any)
	assert.Equal(t, "", first["code"])
	second := choices[1].(map[string]any)
	assert.Equal(t, "§1: Privacy", second["code"])
	assert.Equal(t, "A: §1: Privacy", second["label"])
}

func TestDueDateEndpoint(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()

	t.Run("bounded statute with explicit start", func(t *testing.T) {
		n := 30
		st, err := svc.CreateStatute(ctx, &models.Statute{
			Name:                "Bounded",
			MaxResponseTime:     &n,
			MaxResponseTimeUnit: models.UnitCalendarDay,
		})
		require.NoError(t, err)

		rec, body := doJSON(t, r, http.MethodGet,
			"/statutes/"+st.ID.String()+"/due-date?start=2021-06-07T00:00:00Z", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2021-07-07T00:00:00Z", body["due_date"])
	})

	t.Run("unbounded statute answers explicit null", func(t *testing.T) {
		st, err := svc.CreateStatute(ctx, &models.Statute{Name: "Unbounded"})
		require.NoError(t, err)

		rec, body := doJSON(t, r, http.MethodGet, "/statutes/"+st.ID.String()+"/due-date", "")
		require.Equal(t, http.StatusOK, rec.Code)
		val, present := body["due_date"]
		assert.True(t, present)
		assert.Nil(t, val)
	})

	t.Run("bad start parameter", func(t *testing.T) {
		st, err := svc.CreateStatute(ctx, &models.Statute{Name: "Picky"})
		require.NoError(t, err)

		rec, _ := doJSON(t, r, http.MethodGet, "/statutes/"+st.ID.String()+"/due-date?start=tomorrow", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestJurisdictionEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, created := doJSON(t, r, http.MethodPost, "/jurisdictions", `{"name": "Federal", "rank": 1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "federal", created["slug"])

	rec, body := doJSON(t, r, http.MethodGet, "/jurisdictions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := body["jurisdictions"].([]any)
	require.Len(t, listed, 1)
	assert.Equal(t, "Federal", listed[0].(map[string]any)["name"])
}

func TestDefaultStatuteEndpoint(t *testing.T) {
	r, svc := newTestRouter(t)
	ctx := context.Background()
	j := uuid.New()

	_, err := svc.CreateStatute(ctx, &models.Statute{Name: "Plain", JurisdictionID: &j})
	require.NoError(t, err)
	meta, err := svc.CreateStatute(ctx, &models.Statute{Name: "Umbrella", JurisdictionID: &j, Meta: true})
	require.NoError(t, err)

	rec, body := doJSON(t, r, http.MethodGet, "/jurisdictions/"+j.String()+"/default-statute", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, meta.ID.String(), body["id"])

	t.Run("jurisdiction without statutes", func(t *testing.T) {
		rec, body := doJSON(t, r, http.MethodGet, "/jurisdictions/"+uuid.NewString()+"/default-statute", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", body["error"].(map[string]any)["code"])
	})
}
