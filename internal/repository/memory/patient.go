package memory

import (
	"context"
	"sort"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/repository"
)

type patientRepository struct {
	db *DB
}

func NewPatientRepository(db *DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.nextPatID++
	patient.ID = r.db.nextPatID
	patient.CreatedAt = r.db.stamp()
	cp := *patient
	r.db.patients[patient.ID] = &cp
	return nil
}

func (r *patientRepository) Get(_ context.Context, id int64) (*model.Patient, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *patientRepository) Update(_ context.Context, patient *model.Patient) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.patients[patient.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *patient
	cp.CreatedAt = existing.CreatedAt
	r.db.patients[patient.ID] = &cp
	return nil
}

func (r *patientRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.patients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.patients, id)
	return nil
}

func (r *patientRepository) List(_ context.Context, filter model.PatientFilter) ([]*model.Patient, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	patients := make([]*model.Patient, 0, len(r.db.patients))
	for _, p := range r.db.patients {
		if filter.MedecinID != nil && (p.MedecinID == nil || *p.MedecinID != *filter.MedecinID) {
			continue
		}
		cp := *p
		patients = append(patients, &cp)
	}
	sort.Slice(patients, func(i, j int) bool { return patients[i].ID < patients[j].ID })
	return patients, nil
}
