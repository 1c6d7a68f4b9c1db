package model

import (
	"sort"
	"time"
)

// Appointment labels used on the patient card and detail screens
const (
	AppointmentLabelUpcoming = "Date prévue le :"
	AppointmentLabelPast     = "Dernière consultation le :"
)

// AppointmentLabel picks the heading for a patient's rdv relative to now.
func AppointmentLabel(rdv *time.Time, now time.Time) string {
	if rdv != nil && rdv.After(now) {
		return AppointmentLabelUpcoming
	}
	return AppointmentLabelPast
}

// UpcomingAppointments returns the patients whose rdv is after now, earliest first.
func UpcomingAppointments(patients []Patient, now time.Time) []Patient {
	out := make([]Patient, 0, len(patients))
	for _, p := range patients {
		if p.HasUpcomingAppointment(now) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rdv.Before(*out[j].Rdv)
	})
	return out
}
