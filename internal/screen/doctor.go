package screen

import (
	"context"
	"sync"
	"time"

	"github.com/vitemonmedoc/medoc/internal/alert"
	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/pkg/logger"
)

// AssignedPatients is the doctor-scoped patient listing.
type AssignedPatients interface {
	ListMyPatients(ctx context.Context, token string) ([]model.Patient, error)
}

// TokenSource yields the bearer token of the logged-in user.
type TokenSource interface {
	Token() (string, bool)
}

// DoctorDashboard shows "Mes patients" and "Mon agenda".
type DoctorDashboard struct {
	src    AssignedPatients
	tokens TokenSource
	now    func() time.Time
	log    *logger.Logger

	mu       sync.Mutex
	loading  bool
	patients []model.Patient
	err      *alert.Alert
}

func NewDoctorDashboard(src AssignedPatients, tokens TokenSource, log *logger.Logger) *DoctorDashboard {
	if log == nil {
		log = logger.Nop()
	}
	return &DoctorDashboard{
		src:     src,
		tokens:  tokens,
		now:     time.Now,
		loading: true,
		log:     log.WithComponent("doctor_dashboard"),
	}
}

// Load fetches the doctor's patients. Without a token nothing is sent.
func (d *DoctorDashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	d.loading = true
	d.err = nil
	d.mu.Unlock()

	token, _ := d.tokens.Token()
	patients, err := d.src.ListMyPatients(ctx, token)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		a := alert.Failure(alert.LoadMyPatients, err)
		d.err = &a
		d.patients = nil
		d.log.Warn("assigned patients fetch failed", "error", err.Error())
		return err
	}
	d.patients = patients
	return nil
}

func (d *DoctorDashboard) State() ListState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ListState{
		Loading:  d.loading,
		Patients: append([]model.Patient(nil), d.patients...),
		Error:    d.err,
	}
}

// Agenda lists the appointments still ahead, soonest first.
func (d *DoctorDashboard) Agenda() []model.Patient {
	d.mu.Lock()
	defer d.mu.Unlock()
	return model.UpcomingAppointments(d.patients, d.now())
}
