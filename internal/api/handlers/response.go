// Package handlers общие хелперы HTTP слоя
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgUnknownError  = "непредвиденная ошибка"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// kindMessages сообщения клиенту по kind доменной ошибки
// Детали ошибки хранилища клиенту не отдаются
var kindMessages = map[domain.ErrorKind]string{
	domain.KindInvalidTimeFormat:           "некорректный формат времени, ожидается HH:MM",
	domain.KindInvalidInput:                "некорректные входные данные",
	domain.KindInvalidDate:                 "некорректная дата",
	domain.KindDateTooFarInFuture:          "дата слишком далеко в будущем",
	domain.KindServiceNotFound:             "услуга не найдена",
	domain.KindAppointmentNotFound:         "запись не найдена",
	domain.KindServiceNotOfferedByProvider: "мастер не оказывает эту услугу",
	domain.KindInvalidStatusTransition:     "недопустимая смена статуса записи",
	domain.KindSlotNoLongerAvailable:       "выбранный слот больше недоступен",
	domain.KindBookingTimeout:              "бронирование не успело завершиться, повторите позже",
	domain.KindRepositoryUnavailable:       "хранилище временно недоступно",
}

// StatusForKind HTTP статус для kind доменной ошибки
func StatusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidTimeFormat, domain.KindInvalidInput, domain.KindInvalidDate, domain.KindDateTooFarInFuture:
		return http.StatusBadRequest
	case domain.KindServiceNotFound, domain.KindAppointmentNotFound:
		return http.StatusNotFound
	case domain.KindServiceNotOfferedByProvider:
		return http.StatusUnprocessableEntity
	case domain.KindInvalidStatusTransition, domain.KindSlotNoLongerAvailable:
		return http.StatusConflict
	case domain.KindBookingTimeout:
		return http.StatusRequestTimeout
	case domain.KindRepositoryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON декодирует тело запроса, неизвестные поля запрещены
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError отправляет ошибку без kind
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

// RespondBadRequest 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Kind:    string(domain.KindInvalidInput),
		Message: message,
	})
}

// RespondNotFound 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondInternalError 500
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondDomainError отправляет доменную ошибку с её kind и каноническим сообщением
func RespondDomainError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := StatusForKind(kind)

	message, ok := kindMessages[kind]
	if !ok {
		message = msgUnknownError
	}

	RespondJSON(w, status, ErrorResponse{Code: status, Kind: string(kind), Message: message})
}

// PathInt64 извлекает положительный int64 из переменной пути
func PathInt64(r *http.Request, name string) (int64, error) {
	return parsePositive(mux.Vars(r)[name], name)
}

// QueryInt64 извлекает положительный int64 из query параметра
// Для отсутствующего параметра возвращает nil
func QueryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := parsePositive(raw, name)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func parsePositive(raw, name string) (int64, error) {
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return value, nil
}
