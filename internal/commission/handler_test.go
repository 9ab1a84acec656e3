package commission

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook/internal/reservations"
)

type openGuard struct{}

func (openGuard) RequireRole(...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return next }
}

func newTestRouter(source ReservationSource) (http.Handler, *memoryRepo) {
	repo := newMemoryRepo()
	r := chi.NewRouter()
	r.Route("/commissions", NewHandler(nil, newLedger(repo, source), openGuard{}).MountRoutes)
	return r, repo
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rr
}

func TestSeedThenPayOverHTTP(t *testing.T) {
	router, _ := newTestRouter(sliceSource{
		reservation(1, staffID(7), reservations.StatusSelesai),
		reservation(2, nil, reservations.StatusPending),
	})

	rr := serve(router, http.MethodPost, "/commissions/seed", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"created":1,"skipped":0}`, rr.Body.String())

	rr = serve(router, http.MethodGet, "/commissions/?staff_id=7", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Data []EntryView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	require.Equal(t, "Rp 50.000", list.Data[0].AmountDisplay)

	id := list.Data[0].ID.String()
	rr = serve(router, http.MethodPost, "/commissions/"+id+"/status", `{"status":"paid"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Contains(t, rr.Body.String(), `"status":"paid"`)

	rr = serve(router, http.MethodPost, "/commissions/"+id+"/status", `{"status":"cancelled"}`)
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestStatusRequestValidation(t *testing.T) {
	router, _ := newTestRouter(sliceSource{})

	rr := serve(router, http.MethodPost, "/commissions/not-a-uuid/status", `{"status":"paid"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(router, http.MethodPost, "/commissions/4f9c2d55-2b0f-4a43-9c8e-0f3f1c6f2a10/status", `{"status":"refunded"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(router, http.MethodGet, "/commissions/4f9c2d55-2b0f-4a43-9c8e-0f3f1c6f2a10", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}
