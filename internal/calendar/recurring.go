package calendar

import "time"

// NextOccurrence returns the first anniversary of anchor's month/day that falls
// on or after asOf. The result is never before asOf.
func NextOccurrence(anchor, asOf Date) Date {
	next := onYear(anchor, asOf.Year())
	if next.Before(asOf) {
		next = onYear(anchor, asOf.Year()+1)
	}
	return next
}

// AgeOn returns completed years between dob and on
func AgeOn(dob, on Date) int {
	age := on.Year() - dob.Year()
	if on.Month() < dob.Month() || (on.Month() == dob.Month() && on.Day() < dob.Day()) {
		age--
	}
	return age
}

// IsLeap reports whether year has a Feb 29
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// onYear moves anchor's month/day into year, clamping Feb 29 to Feb 28
func onYear(anchor Date, year int) Date {
	month, day := anchor.Month(), anchor.Day()
	if month == time.February && day == 29 && !IsLeap(year) {
		day = 28
	}
	return New(year, month, day)
}
