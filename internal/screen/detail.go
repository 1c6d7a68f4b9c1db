package screen

import (
	"context"
	"strings"
	"time"

	"github.com/vitemonmedoc/medoc/internal/alert"
	"github.com/vitemonmedoc/medoc/internal/model"
)

const (
	NotProvided = "Non renseigné"

	dateTimeLayout = "02/01/2006 15:04"
)

// PatientReader fetches a single patient.
type PatientReader interface {
	GetPatient(ctx context.Context, id int64) (*model.Patient, error)
}

// DoctorNames resolves medecin_id for display and never fails.
type DoctorNames interface {
	Name(ctx context.Context, id *int64) string
}

// Row is one labelled line of the patient card.
type Row struct {
	Label string
	Value string
}

type PatientDetail struct {
	Patient    model.Patient
	DoctorName string
	Rows       []Row
}

// LoadPatientDetail fetches a patient and resolves its doctor. A failed doctor
// lookup shows a placeholder; only a failed patient fetch is an error.
func LoadPatientDetail(ctx context.Context, src PatientReader, doctors DoctorNames, id int64, now time.Time) (*PatientDetail, *alert.Alert) {
	p, err := src.GetPatient(ctx, id)
	if err != nil {
		a := alert.Failure(alert.LoadPatient, err)
		return nil, &a
	}
	return BuildPatientDetail(ctx, p, doctors, now), nil
}

func BuildPatientDetail(ctx context.Context, p *model.Patient, doctors DoctorNames, now time.Time) *PatientDetail {
	doctor := doctors.Name(ctx, p.MedecinID)

	rows := []Row{
		{"Nom", text(p.Nom)},
		{"Prénom", text(p.Prenom)},
		{"Âge", number(p.Age)},
		{"Poids", number(p.Poids)},
		{"Taille", number(p.Taille)},
		{"Téléphone", number(p.NumeroDeTelephone)},
		{"Mail", ptrText(p.Mail)},
		{"Médecin", doctor},
		{"Traitement en cours", treatment(p.TraitementEnCours)},
		{"Médicament", ptrText(p.Medicament)},
		{"Statut", status(p.Statut)},
		{"Notes", ptrText(p.Notes)},
		{model.AppointmentLabel(p.Rdv, now), FormatDateTime(p.Rdv)},
	}
	return &PatientDetail{Patient: *p, DoctorName: doctor, Rows: rows}
}

// FormatDateTime renders a timestamp as dd/mm/yyyy hh:mm in local time.
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotProvided
	}
	return t.Local().Format(dateTimeLayout)
}

func text(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotProvided
	}
	return s
}

func ptrText(s *string) string {
	if s == nil {
		return NotProvided
	}
	return text(*s)
}

func number(n *model.Number) string {
	if n == nil {
		return NotProvided
	}
	return n.String()
}

func treatment(t *model.Treatment) string {
	if t == nil || !t.Valid() {
		return NotProvided
	}
	return t.Label()
}

func status(s *model.PatientStatus) string {
	if s == nil || *s == "" {
		return NotProvided
	}
	return string(*s)
}
