package passport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecopass/internal/platform/metrics"
)

func newTestRouter() http.Handler {
	svc := newTestService(NewInMemoryStore())
	return NewHandler(svc, metrics.New()).Routes()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCustodyChain(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/items", laptopSubmission())
	require.Equal(t, http.StatusCreated, rec.Code)

	var item Item
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&item))
	assert.Equal(t, StatusScheduled, item.Status)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/items/%s/verify", item.ID), map[string]string{"actor_name": "City Admin"})
	require.Equal(t, http.StatusOK, rec.Code)

	// A bid at the estimate is rejected before any write.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/items/%s/bid", item.ID), map[string]interface{}{
		"bidder_name": "GreenEarth Recyclers",
		"bid_amount":  item.EstimatedValue,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/items/%s/bid", item.ID), map[string]interface{}{
		"bidder_name": "GreenEarth Recyclers",
		"bid_amount":  150,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/items/%s/pickup", item.ID), map[string]string{"actor_name": "GreenEarth Recyclers"})
	require.Equal(t, http.StatusOK, rec.Code)

	var final Item
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&final))
	assert.Equal(t, StatusHandedOver, final.Status)
	assert.Len(t, final.History, 5)

	// Transitions out of the terminal state map to a conflict.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/items/%s/pickup", item.ID), map[string]string{"actor_name": "GreenEarth Recyclers"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerGetEndpoints(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/items", laptopSubmission())
	require.Equal(t, http.StatusCreated, rec.Code)
	var item Item
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&item))

	req := httptest.NewRequest(http.MethodGet, "/items/"+item.ID, nil)
	get := httptest.NewRecorder()
	router.ServeHTTP(get, req)
	require.Equal(t, http.StatusOK, get.Code)

	req = httptest.NewRequest(http.MethodGet, "/items/"+item.ID+"/history", nil)
	history := httptest.NewRecorder()
	router.ServeHTTP(history, req)
	require.Equal(t, http.StatusOK, history.Code)
	var events []HistoryEvent
	require.NoError(t, json.NewDecoder(history.Body).Decode(&events))
	assert.Len(t, events, 2)

	req = httptest.NewRequest(http.MethodGet, "/citizens/u_cit_001/items", nil)
	owned := httptest.NewRecorder()
	router.ServeHTTP(owned, req)
	require.Equal(t, http.StatusOK, owned.Code)
	var items []Item
	require.NoError(t, json.NewDecoder(owned.Body).Decode(&items))
	assert.Len(t, items, 1)

	req = httptest.NewRequest(http.MethodGet, "/items/RES-0000-XX", nil)
	missing := httptest.NewRecorder()
	router.ServeHTTP(missing, req)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestHandlerRejectsMalformedSubmission(t *testing.T) {
	router := newTestRouter()

	req := laptopSubmission()
	req.DeviceType = "Toaster"
	rec := doJSON(t, router, http.MethodPost, "/items", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "device_type")
}
