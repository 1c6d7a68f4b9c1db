package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PatientStatus is the clinical follow-up state set by the doctor.
type PatientStatus string

const (
	PatientStatusEnCours     PatientStatus = "en_cours"
	PatientStatusGueri       PatientStatus = "guéri"
	PatientStatusASurveiller PatientStatus = "a_surveiller"
	PatientStatusStable      PatientStatus = "stable"
	PatientStatusCritique    PatientStatus = "critique"
	PatientStatusMort        PatientStatus = "mort"
)

// PatientStatuses lists the values offered by the statut picker.
var PatientStatuses = []PatientStatus{
	PatientStatusEnCours,
	PatientStatusGueri,
	PatientStatusASurveiller,
	PatientStatusStable,
	PatientStatusCritique,
	PatientStatusMort,
}

func (s PatientStatus) Valid() bool {
	for _, known := range PatientStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Treatment is the tri-state traitement_en_cours flag. A nil *Treatment means unset.
type Treatment string

const (
	TreatmentYes Treatment = "true"
	TreatmentNo  Treatment = "false"
)

func (t Treatment) Valid() bool {
	return t == TreatmentYes || t == TreatmentNo
}

// Label renders the flag the way the patient card does.
func (t Treatment) Label() string {
	if t == TreatmentNo {
		return "Non"
	}
	return "Oui"
}

// Number is a numeric patient attribute. It encodes as a JSON number and decodes
// from either a number or a numeric string, since the API returns decimal
// columns as strings. A blank string is unset, like null; Patient drops it.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", s, err)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// String formats without a trailing ".0" so round-tripping into a form is lossless.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// NumberPtr is a convenience for literals in tests and fixtures.
func NumberPtr(f float64) *Number {
	n := Number(f)
	return &n
}

// Patient mirrors the patients resource.
type Patient struct {
	Base
	Nom               string         `json:"nom" db:"nom"`
	Prenom            string         `json:"prenom" db:"prenom"`
	Age               *Number        `json:"age" db:"age"`
	Poids             *Number        `json:"poids" db:"poids"`
	Taille            *Number        `json:"taille" db:"taille"`
	TraitementEnCours *Treatment     `json:"traitement_en_cours" db:"traitement_en_cours"`
	Medicament        *string        `json:"medicament" db:"medicament"`
	MedecinID         *int64         `json:"medecin_id" db:"medecin_id"`
	Notes             *string        `json:"notes" db:"notes"`
	Rdv               *time.Time     `json:"rdv" db:"rdv"`
	Statut            *PatientStatus `json:"statut" db:"statut"`
	NumeroDeTelephone *Number        `json:"numero_de_telephone" db:"numero_de_telephone"`
	Mail              *string        `json:"mail" db:"mail"`
}

// UnmarshalJSON leaves a numeric attribute sent as "" nil, so the card shows it
// as not filled in rather than 0.
func (p *Patient) UnmarshalJSON(data []byte) error {
	type plain Patient
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	numbers := map[string]**Number{
		"age":                 &p.Age,
		"poids":               &p.Poids,
		"taille":              &p.Taille,
		"numero_de_telephone": &p.NumeroDeTelephone,
	}
	for key, dst := range numbers {
		if blankString(raw[key]) {
			*dst = nil
		}
	}
	return nil
}

func blankString(data json.RawMessage) bool {
	var s string
	if len(data) == 0 || data[0] != '"' || json.Unmarshal(data, &s) != nil {
		return false
	}
	return strings.TrimSpace(s) == ""
}

// FullName is "nom prenom", matching the card headings.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.Nom + " " + p.Prenom)
}

// HasUpcomingAppointment reports whether rdv is strictly after now.
func (p *Patient) HasUpcomingAppointment(now time.Time) bool {
	return p.Rdv != nil && p.Rdv.After(now)
}

// CreatePatientRequest is the POST /api/patients body. Optional fields are
// always present and encode as null when empty.
type CreatePatientRequest struct {
	Nom               string         `json:"nom"`
	Prenom            string         `json:"prenom"`
	Age               *Number        `json:"age"`
	Poids             *Number        `json:"poids"`
	Taille            *Number        `json:"taille"`
	NumeroDeTelephone *Number        `json:"numero_de_telephone"`
	Mail              *string        `json:"mail"`
	Notes             *string        `json:"notes"`
	Medicament        *string        `json:"medicament"`
	Appointment       *time.Time     `json:"appointment"`
	Statut            *PatientStatus `json:"statut"`
	DoctorID          int64          `json:"doctorId"`
}

// PatientUpdate is a partial PUT /api/patients/{id} body keyed by json field
// name. A present key with a nil value clears the field.
type PatientUpdate map[string]interface{}

// Has reports whether the update touches field.
func (u PatientUpdate) Has(field string) bool {
	_, ok := u[field]
	return ok
}

// PatientFilter narrows patient listings; MedecinID scopes to one doctor.
type PatientFilter struct {
	MedecinID *int64
}
