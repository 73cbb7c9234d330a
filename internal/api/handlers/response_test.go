package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

func TestStatusForKind(t *testing.T) {
	tests := map[domain.ErrorKind]int{
		domain.KindInvalidTimeFormat:           http.StatusBadRequest,
		domain.KindInvalidInput:                http.StatusBadRequest,
		domain.KindInvalidDate:                 http.StatusBadRequest,
		domain.KindDateTooFarInFuture:          http.StatusBadRequest,
		domain.KindServiceNotFound:             http.StatusNotFound,
		domain.KindAppointmentNotFound:         http.StatusNotFound,
		domain.KindServiceNotOfferedByProvider: http.StatusUnprocessableEntity,
		domain.KindInvalidStatusTransition:     http.StatusConflict,
		domain.KindSlotNoLongerAvailable:       http.StatusConflict,
		domain.KindBookingTimeout:              http.StatusRequestTimeout,
		domain.KindRepositoryUnavailable:       http.StatusServiceUnavailable,
	}

	for kind, status := range tests {
		assert.Equal(t, status, StatusForKind(kind), kind)
		assert.NotEmpty(t, kindMessages[kind], kind)
	}
}

func TestRespondDomainError_HidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := fmt.Errorf("%w: pq: relation \"appointments\" does not exist", domain.ErrRepositoryUnavailable)

	RespondDomainError(w, err)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotContains(t, w.Body.String(), "pq:")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusServiceUnavailable, body.Code)
	assert.Equal(t, "RepositoryUnavailable", body.Kind)
}

func TestRespondDomainError_Conflict(t *testing.T) {
	w := httptest.NewRecorder()
	RespondDomainError(w, fmt.Errorf("%w: 10:00-11:00 overlaps appointment id=7", domain.ErrSlotNoLongerAvailable))

	assert.Equal(t, http.StatusConflict, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SlotNoLongerAvailable", body.Kind)
	assert.NotContains(t, body.Message, "id=7")
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"anna"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "anna", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"anna","extra":1}`))
	assert.Error(t, DecodeJSON(r, &v))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, DecodeJSON(r, &v))
}

func TestParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?provider=5&bad=-1", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "42", "zero": "0"})

	id, err := PathInt64(r, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = PathInt64(r, "zero")
	assert.Error(t, err)

	provider, err := QueryInt64(r, "provider")
	require.NoError(t, err)
	assert.Equal(t, int64(5), *provider)

	missing, err := QueryInt64(r, "service")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = QueryInt64(r, "bad")
	assert.Error(t, err)
}
