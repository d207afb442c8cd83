package nlp

import "time"

// BookingData is everything a single message can contribute to a booking
// in progress. Zero values mean the field was not mentioned.
type BookingData struct {
	Date         *time.Time
	Time         string
	EmployeeName string
}

// ExtractBookingData runs the date, time and name extractors over one
// message. Callers merge the result into the session, never overwrite
// collected fields with zero values.
func ExtractBookingData(text string, now time.Time) BookingData {
	return BookingData{
		Date:         ExtractDate(text, now),
		Time:         ExtractTime(text),
		EmployeeName: ExtractName(text),
	}
}
