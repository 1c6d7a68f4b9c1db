package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/repository"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
	"github.com/vitemonmedoc/medoc/pkg/logger"
	"github.com/vitemonmedoc/medoc/pkg/validator"
)

type PatientService interface {
	CreatePatient(ctx context.Context, req model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id int64) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id int64, update model.PatientUpdate) (*model.Patient, error)
	DeletePatient(ctx context.Context, id int64) error
	ListPatients(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error)
}

// server-assigned keys an update may carry but never changes
var protected = map[string]bool{"id": true, "created_at": true}

type Service struct {
	repo     repository.PatientRepository
	users    repository.UserRepository
	validate validator.Validator
	log      *logger.Logger
}

func NewService(repo repository.PatientRepository, users repository.UserRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		users:    users,
		validate: validator.New(),
		log:      log.WithComponent("patient_service"),
	}
}

func (s *Service) CreatePatient(ctx context.Context, req model.CreatePatientRequest) (*model.Patient, error) {
	req.Nom = strings.TrimSpace(req.Nom)
	req.Prenom = strings.TrimSpace(req.Prenom)
	if req.Nom == "" || req.Prenom == "" || req.Age == nil || req.DoctorID == 0 {
		return nil, apperrors.NewValidation("nom, prenom, age and doctorId are required", nil)
	}
	if err := s.checkDoctor(ctx, req.DoctorID); err != nil {
		return nil, err
	}

	doctor := req.DoctorID
	patient := &model.Patient{
		Nom:               req.Nom,
		Prenom:            req.Prenom,
		Age:               req.Age,
		Poids:             req.Poids,
		Taille:            req.Taille,
		NumeroDeTelephone: req.NumeroDeTelephone,
		Mail:              req.Mail,
		Notes:             req.Notes,
		Medicament:        req.Medicament,
		Rdv:               req.Appointment,
		Statut:            req.Statut,
		MedecinID:         &doctor,
	}
	if err := s.validatePatient(patient); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.log.Info("patient created", "patient_id", patient.ID, "medecin_id", doctor)
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient %d: %w", id, err)
	}
	return patient, nil
}

// UpdatePatient overlays the present keys of update onto the stored record.
// A key with a null value clears the field.
func (s *Service) UpdatePatient(ctx context.Context, id int64, update model.PatientUpdate) (*model.Patient, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient %d: %w", id, err)
	}

	merged, err := overlay(existing, update)
	if err != nil {
		return nil, apperrors.NewValidation(err.Error(), err)
	}
	merged.Nom = strings.TrimSpace(merged.Nom)
	merged.Prenom = strings.TrimSpace(merged.Prenom)
	if merged.Nom == "" || merged.Prenom == "" {
		return nil, apperrors.NewValidation("nom and prenom cannot be empty", nil)
	}
	if update.Has("medecin_id") && merged.MedecinID != nil {
		if err := s.checkDoctor(ctx, *merged.MedecinID); err != nil {
			return nil, err
		}
	}
	if err := s.validatePatient(merged); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to update patient %d: %w", id, err)
	}

	s.log.Info("patient updated", "patient_id", id, "fields", len(update))
	return merged, nil
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient %d: %w", id, err)
	}
	s.log.Info("patient deleted", "patient_id", id)
	return nil
}

func (s *Service) ListPatients(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) checkDoctor(ctx context.Context, id int64) error {
	doctor, err := s.users.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewValidation(fmt.Sprintf("doctor %d does not exist", id), err)
	}
	if err != nil {
		return fmt.Errorf("failed to get doctor %d: %w", id, err)
	}
	if doctor.Type != model.RoleDoctor {
		return apperrors.NewValidation(fmt.Sprintf("user %d is not a medecin", id), nil)
	}
	return nil
}

func (s *Service) validatePatient(p *model.Patient) error {
	if p.Statut != nil && !p.Statut.Valid() {
		return apperrors.NewValidation(fmt.Sprintf("statut %q is not a known status", *p.Statut), nil)
	}
	if p.TraitementEnCours != nil && !p.TraitementEnCours.Valid() {
		return apperrors.NewValidation(fmt.Sprintf("traitement_en_cours %q must be true or false", *p.TraitementEnCours), nil)
	}
	if p.Mail != nil && *p.Mail != "" {
		if err := s.validate.ValidateVar("mail", *p.Mail, "email"); err != nil {
			return apperrors.NewValidation(err.Error(), err)
		}
	}
	return nil
}

// overlay round-trips through the wire form so the update is decoded with
// exactly the rules a create body is.
func overlay(p *model.Patient, update model.PatientUpdate) (*model.Patient, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	for key, value := range update {
		if protected[key] {
			continue
		}
		if _, known := fields[key]; !known {
			return nil, fmt.Errorf("unknown field %q", key)
		}
		if b, ok := value.(bool); ok && key == "traitement_en_cours" {
			value = strconv.FormatBool(b)
		}
		fields[key] = value
	}

	raw, err = json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var merged model.Patient
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, fmt.Errorf("invalid patient update: %w", err)
	}
	merged.ID = p.ID
	merged.CreatedAt = p.CreatedAt
	return &merged, nil
}
