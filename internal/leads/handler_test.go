package leads

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"laura-backend/internal/kv"
	"laura-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *Store, []string) {
	t.Helper()
	store := newTestStore(t, kv.NewMemory())
	ctx := context.Background()
	var ids []string
	for _, who := range []struct{ name, phone string }{
		{"Mme Martin", "0612345678"},
		{"M. Durand", "0711223344"},
		{"Gîte Lyon", "0698765432"},
	} {
		st := submittedState(t, who.name, who.phone, "")
		id, err := store.Save(ctx, st)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	r := chi.NewRouter()
	r.Route("/leads", NewHandler(store, validation.New(), discardLogger()).Routes)
	return r, store, ids
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAdminListFiltersAndPaginates(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/leads?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []Lead `json:"items"`
		Total int    `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Gîte Lyon", page.Items[0].Name)

	rec = do(t, h, http.MethodGet, "/leads?q=durand", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 1, page.Total)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/leads?status=archived", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/leads?limit=0", "").Code)
}

func TestAdminUpdateStatusAndNotes(t *testing.T) {
	h, store, ids := newTestRouter(t)

	rec := do(t, h, http.MethodPatch, "/leads/"+ids[0]+"/status", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got Lead
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, StatusConfirmed, got.Status)
	require.NotNil(t, got.UpdatedAt)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPatch, "/leads/"+ids[0]+"/status", `{"status":"archived"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPatch, "/leads/DEM-NOPE-0000/status", `{"status":"new"}`).Code)

	rec = do(t, h, http.MethodPut, "/leads/"+ids[1]+"/notes", `{"notes":"rappeler lundi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	l, err := store.Get(context.Background(), ids[1])
	require.NoError(t, err)
	assert.Equal(t, "rappeler lundi", l.Notes)
}

func TestAdminDeleteNeedsConfirmation(t *testing.T) {
	h, store, ids := newTestRouter(t)

	assert.Equal(t, http.StatusPreconditionRequired, do(t, h, http.MethodDelete, "/leads/"+ids[0], "").Code)
	assert.Len(t, store.GetAll(context.Background()), 3)

	rec := do(t, h, http.MethodDelete, "/leads/"+ids[0]+"?confirm=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":true`)

	rec = do(t, h, http.MethodDelete, "/leads/"+ids[0]+"?confirm=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":false`)
}

func TestAdminExportAndStats(t *testing.T) {
	h, _, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/leads/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "demandes_laura_")
	assert.True(t, strings.HasPrefix(rec.Body.String(), utf8BOM+"ID;"))
	assert.Len(t, strings.Split(strings.TrimPrefix(rec.Body.String(), utf8BOM), "\n"), 4)

	rec = do(t, h, http.MethodGet, "/leads/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 3, st.ByStatus[StatusNew])

	rec = do(t, h, http.MethodGet, "/leads/stats.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}
