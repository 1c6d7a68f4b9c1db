package screen

import (
	"context"
	"sync"

	"github.com/vitemonmedoc/medoc/internal/alert"
	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/mutation"
	"github.com/vitemonmedoc/medoc/pkg/logger"
)

// PatientSource is what the HR patient list reads and deletes through.
type PatientSource interface {
	ListPatients(ctx context.Context) ([]model.Patient, error)
	DeletePatient(ctx context.Context, id int64) error
}

// ListState is a snapshot of a list screen.
type ListState struct {
	Loading  bool
	Patients []model.Patient
	Error    *alert.Alert
	// CanRetry is set with Error; the patient list is the only screen offering it.
	CanRetry bool
}

// PatientList is the HR/Admin patient list. Its data lives server-side; every
// mutation is followed by a fresh fetch.
type PatientList struct {
	src PatientSource
	log *logger.Logger

	mu       sync.Mutex
	loading  bool
	patients []model.Patient
	err      *alert.Alert

	deletion mutation.Tracker
}

func NewPatientList(src PatientSource, log *logger.Logger) *PatientList {
	if log == nil {
		log = logger.Nop()
	}
	return &PatientList{src: src, loading: true, log: log.WithComponent("patient_list")}
}

func (l *PatientList) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ListState{
		Loading:  l.loading,
		Patients: append([]model.Patient(nil), l.patients...),
		Error:    l.err,
		CanRetry: l.err != nil,
	}
}

func (l *PatientList) Load(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.err = nil
	l.mu.Unlock()

	patients, err := l.src.ListPatients(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		a := alert.Failure(alert.LoadPatients, err)
		l.err = &a
		l.patients = nil
		l.log.Warn("patient list fetch failed", "error", err.Error())
		return err
	}
	l.patients = patients
	return nil
}

// Retry is the error state's button.
func (l *PatientList) Retry(ctx context.Context) error { return l.Load(ctx) }

// Refresh is the pull-to-refresh gesture.
func (l *PatientList) Refresh(ctx context.Context) error { return l.Load(ctx) }

// Delete removes a patient after the caller has confirmed, then reloads.
func (l *PatientList) Delete(ctx context.Context, p model.Patient) (alert.Alert, error) {
	err := l.deletion.Run(ctx, func(ctx context.Context) error {
		return l.src.DeletePatient(ctx, p.ID)
	})
	if err != nil {
		return alert.Failure(alert.DeletePatient, err), err
	}
	_ = l.Load(ctx)
	return alert.Success(alert.DeletePatient, p.Nom), nil
}

// DeleteConfirmation is the question asked before Delete.
func DeleteConfirmation(name string) string {
	return "Voulez-vous vraiment supprimer " + name + " ?"
}
