package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/repository"
)

const patientColumns = `id, nom, prenom, age, poids, taille, traitement_en_cours, medicament,
	medecin_id, notes, rdv, statut, numero_de_telephone, mail, created_at`

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (nom, prenom, age, poids, taille, traitement_en_cours, medicament,
			medecin_id, notes, rdv, statut, numero_de_telephone, mail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		patient.Nom,
		patient.Prenom,
		patient.Age,
		patient.Poids,
		patient.Taille,
		patient.TraitementEnCours,
		patient.Medicament,
		patient.MedecinID,
		patient.Notes,
		patient.Rdv,
		patient.Statut,
		patient.NumeroDeTelephone,
		patient.Mail,
	).Scan(&patient.ID, &patient.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET nom = $1, prenom = $2, age = $3, poids = $4, taille = $5,
			traitement_en_cours = $6, medicament = $7, medecin_id = $8, notes = $9, rdv = $10,
			statut = $11, numero_de_telephone = $12, mail = $13
		WHERE id = $14
	`
	res, err := r.db.ExecContext(ctx, query,
		patient.Nom,
		patient.Prenom,
		patient.Age,
		patient.Poids,
		patient.Taille,
		patient.TraitementEnCours,
		patient.Medicament,
		patient.MedecinID,
		patient.Notes,
		patient.Rdv,
		patient.Statut,
		patient.NumeroDeTelephone,
		patient.Mail,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return requireRow(res)
}

func (r *patientRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return requireRow(res)
}

func (r *patientRepository) List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
	var args []interface{}
	if filter.MedecinID != nil {
		query += ` WHERE medecin_id = $1`
		args = append(args, *filter.MedecinID)
	}
	query += ` ORDER BY id`

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
