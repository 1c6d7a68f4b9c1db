// Package form drives the patient create/edit form. What a role may change is
// decided once, when the form opens, by its Capabilities.
package form

import (
	"github.com/vitemonmedoc/medoc/internal/model"
)

// Field is a patient form input, named after its json key.
type Field string

const (
	FieldNom        Field = "nom"
	FieldPrenom     Field = "prenom"
	FieldAge        Field = "age"
	FieldPoids      Field = "poids"
	FieldTaille     Field = "taille"
	FieldTelephone  Field = "numero_de_telephone"
	FieldMail       Field = "mail"
	FieldMedecin    Field = "medecin_id"
	FieldRdv        Field = "rdv"
	FieldTraitement Field = "traitement_en_cours"
	FieldMedicament Field = "medicament"
	FieldNotes      Field = "notes"
	FieldStatut     Field = "statut"
)

// Fields lists every input in display order.
var Fields = []Field{
	FieldNom,
	FieldPrenom,
	FieldAge,
	FieldPoids,
	FieldTaille,
	FieldTelephone,
	FieldMail,
	FieldMedecin,
	FieldRdv,
	FieldTraitement,
	FieldMedicament,
	FieldNotes,
	FieldStatut,
}

// ClinicalFields are owned by the treating doctor.
var ClinicalFields = []Field{FieldTraitement, FieldMedicament, FieldNotes, FieldStatut}

func (f Field) Known() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

func (f Field) Clinical() bool {
	for _, c := range ClinicalFields {
		if f == c {
			return true
		}
	}
	return false
}

// Capabilities is the set of fields a role may mutate. Every field is still
// shown; the rest are read-only.
type Capabilities struct {
	Role     model.Role
	editable map[Field]bool
}

func CapabilitiesFor(role model.Role) Capabilities {
	caps := Capabilities{Role: role, editable: make(map[Field]bool, len(Fields))}
	for _, f := range Fields {
		if f.Clinical() && role != model.RoleDoctor {
			continue
		}
		caps.editable[f] = true
	}
	return caps
}

func (c Capabilities) CanEdit(f Field) bool {
	return c.editable[f]
}

// Editable returns the mutable fields in display order.
func (c Capabilities) Editable() []Field {
	out := make([]Field, 0, len(c.editable))
	for _, f := range Fields {
		if c.editable[f] {
			out = append(out, f)
		}
	}
	return out
}

// ReadOnly returns the fields rendered muted for this role.
func (c Capabilities) ReadOnly() []Field {
	var out []Field
	for _, f := range Fields {
		if !c.editable[f] {
			out = append(out, f)
		}
	}
	return out
}
