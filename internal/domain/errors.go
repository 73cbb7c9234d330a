package domain

import "errors"

// ErrorKind класс ошибки ядра планирования
// По kind внешний слой выбирает HTTP статус и политику повтора
type ErrorKind string

const (
	KindInvalidTimeFormat           ErrorKind = "InvalidTimeFormat"
	KindInvalidInput                ErrorKind = "InvalidInput"
	KindInvalidDate                 ErrorKind = "InvalidDate"
	KindDateTooFarInFuture          ErrorKind = "DateTooFarInFuture"
	KindServiceNotFound             ErrorKind = "ServiceNotFound"
	KindAppointmentNotFound         ErrorKind = "AppointmentNotFound"
	KindServiceNotOfferedByProvider ErrorKind = "ServiceNotOfferedByProvider"
	KindInvalidStatusTransition     ErrorKind = "InvalidStatusTransition"
	KindSlotNoLongerAvailable       ErrorKind = "SlotNoLongerAvailable"
	KindBookingTimeout              ErrorKind = "BookingTimeout"
	KindRepositoryUnavailable       ErrorKind = "RepositoryUnavailable"
)

// Error структурированная ошибка (kind + message)
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrInvalidTimeFormat время не в формате HH:MM
	ErrInvalidTimeFormat = &Error{Kind: KindInvalidTimeFormat, Message: "invalid time format, expected HH:MM"}

	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = &Error{Kind: KindInvalidInput, Message: "invalid input data"}

	// ErrInvalidDate дата в прошлом
	ErrInvalidDate = &Error{Kind: KindInvalidDate, Message: "invalid date"}

	// ErrDateTooFarInFuture дата дальше, чем разрешает advanceBookingDays
	ErrDateTooFarInFuture = &Error{Kind: KindDateTooFarInFuture, Message: "date is too far in the future"}

	// ErrServiceNotFound услуга не найдена или неактивна
	ErrServiceNotFound = &Error{Kind: KindServiceNotFound, Message: "service not found"}

	// ErrAppointmentNotFound запись не найдена
	ErrAppointmentNotFound = &Error{Kind: KindAppointmentNotFound, Message: "appointment not found"}

	// ErrServiceNotOfferedByProvider у мастера нет активной связки с услугой
	ErrServiceNotOfferedByProvider = &Error{Kind: KindServiceNotOfferedByProvider, Message: "service is not offered by provider"}

	// ErrInvalidStatusTransition переход статуса запрещён
	ErrInvalidStatusTransition = &Error{Kind: KindInvalidStatusTransition, Message: "invalid appointment status transition"}

	// ErrSlotNoLongerAvailable слот занят, заблокирован или вне рабочих часов на момент коммита
	ErrSlotNoLongerAvailable = &Error{Kind: KindSlotNoLongerAvailable, Message: "slot is no longer available"}

	// ErrBookingTimeout транзакция бронирования не уложилась в таймаут или была отменена
	ErrBookingTimeout = &Error{Kind: KindBookingTimeout, Message: "booking timed out"}

	// ErrRepositoryUnavailable временная ошибка хранилища
	ErrRepositoryUnavailable = &Error{Kind: KindRepositoryUnavailable, Message: "repository unavailable"}
)

// AsError извлекает доменную ошибку из цепочки
// Для неклассифицированных ошибок возвращает ErrRepositoryUnavailable
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return ErrRepositoryUnavailable
}

// KindOf возвращает kind ошибки
func KindOf(err error) ErrorKind {
	return AsError(err).Kind
}
