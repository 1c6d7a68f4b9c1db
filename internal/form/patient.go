package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/mutation"
	"github.com/vitemonmedoc/medoc/internal/notification"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
	"github.com/vitemonmedoc/medoc/pkg/logger"
	"github.com/vitemonmedoc/medoc/pkg/validator"
)

var (
	ErrClosed        = errors.New("form is closed")
	ErrUnknownField  = errors.New("unknown field")
	ErrReadOnlyField = errors.New("field is read-only for this role")
	ErrPickerField   = errors.New("appointment is set through the picker")
	ErrNoPendingPick = errors.New("no appointment pick to confirm")
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "editing"
	}
	return "creating"
}

// PatientWriter is the part of the Patients resource the form submits to.
type PatientWriter interface {
	CreatePatient(ctx context.Context, req model.CreatePatientRequest) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id int64, update model.PatientUpdate) error
}

type Options struct {
	Writer PatientWriter
	// Notifier is told about every confirmed appointment pick. Optional.
	Notifier notification.Notifier
	// OnSaved runs after a successful submit, once the form has closed.
	OnSaved func()
	Logger  *logger.Logger
}

// PatientForm holds the raw text of every input. Inputs are parsed on submit.
type PatientForm struct {
	mu sync.Mutex

	mode       Mode
	caps       Capabilities
	open       bool
	submitting bool
	values     map[Field]string
	original   *model.Patient

	rdv     *time.Time
	pending *time.Time

	tracker  mutation.Tracker
	validate validator.Validator

	writer   PatientWriter
	notifier notification.Notifier
	onSaved  func()
	log      *logger.Logger
}

func newForm(mode Mode, role model.Role, opts Options) *PatientForm {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &PatientForm{
		mode:     mode,
		caps:     CapabilitiesFor(role),
		open:     true,
		values:   make(map[Field]string, len(Fields)),
		validate: validator.New(),
		writer:   opts.Writer,
		notifier: opts.Notifier,
		onSaved:  opts.OnSaved,
		log:      log.WithComponent("patient_form"),
	}
}

// NewCreateForm opens an empty form.
func NewCreateForm(role model.Role, opts Options) *PatientForm {
	return newForm(ModeCreate, role, opts)
}

// NewEditForm opens a form prefilled from p.
func NewEditForm(role model.Role, p *model.Patient, opts Options) *PatientForm {
	f := newForm(ModeEdit, role, opts)
	cp := *p
	f.original = &cp

	f.values[FieldNom] = p.Nom
	f.values[FieldPrenom] = p.Prenom
	f.values[FieldAge] = numberText(p.Age)
	f.values[FieldPoids] = numberText(p.Poids)
	f.values[FieldTaille] = numberText(p.Taille)
	f.values[FieldTelephone] = numberText(p.NumeroDeTelephone)
	f.values[FieldMail] = stringText(p.Mail)
	f.values[FieldMedicament] = stringText(p.Medicament)
	f.values[FieldNotes] = stringText(p.Notes)
	if p.MedecinID != nil {
		f.values[FieldMedecin] = strconv.FormatInt(*p.MedecinID, 10)
	}
	if p.TraitementEnCours != nil {
		f.values[FieldTraitement] = string(*p.TraitementEnCours)
	}
	if p.Statut != nil {
		f.values[FieldStatut] = string(*p.Statut)
	}
	if p.Rdv != nil {
		rdv := *p.Rdv
		f.rdv = &rdv
	}
	return f
}

func (f *PatientForm) Mode() Mode { return f.mode }

func (f *PatientForm) Capabilities() Capabilities { return f.caps }

func (f *PatientForm) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Close dismisses the form without submitting.
func (f *PatientForm) Close() {
	f.mu.Lock()
	f.open = false
	f.pending = nil
	f.mu.Unlock()
}

func (f *PatientForm) Status() mutation.Status {
	return f.tracker.Status()
}

func (f *PatientForm) Value(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// Set records raw input. Read-only fields reject the edit and keep their value.
func (f *PatientForm) Set(field Field, value string) error {
	if !field.Known() {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if field == FieldRdv {
		return ErrPickerField
	}
	if !f.caps.CanEdit(field) {
		return fmt.Errorf("%w: %s", ErrReadOnlyField, field)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrClosed
	}
	f.values[field] = value
	return nil
}

// Appointment is the committed rdv value.
func (f *PatientForm) Appointment() *time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyTime(f.rdv)
}

// PendingAppointment is the pick awaiting confirmation, if any.
func (f *PatientForm) PendingAppointment() *time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyTime(f.pending)
}

// PickAppointment stages t. Past dates are accepted.
func (f *PatientForm) PickAppointment(t time.Time) error {
	if !f.caps.CanEdit(FieldRdv) {
		return fmt.Errorf("%w: %s", ErrReadOnlyField, FieldRdv)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrClosed
	}
	f.pending = &t
	return nil
}

// ConfirmAppointment commits the pending pick and announces it.
func (f *PatientForm) ConfirmAppointment(ctx context.Context) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.pending == nil {
		f.mu.Unlock()
		return ErrNoPendingPick
	}
	f.rdv = f.pending
	f.pending = nil
	rdv := *f.rdv
	subject := f.subjectLocked()
	f.mu.Unlock()

	if f.notifier != nil {
		f.notifier.AppointmentScheduled(ctx, subject, rdv)
	}
	return nil
}

// CancelAppointment drops the pending pick and keeps the committed value.
func (f *PatientForm) CancelAppointment() {
	f.mu.Lock()
	f.pending = nil
	f.mu.Unlock()
}

// Missing lists the required fields that are still blank.
func (f *PatientForm) Missing() []Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.missingLocked()
}

// CanSubmit is the submit button's enabled state.
func (f *PatientForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open && !f.submitting && len(f.missingLocked()) == 0 && !f.tracker.Busy()
}

func (f *PatientForm) missingLocked() []Field {
	required := []Field{FieldNom, FieldPrenom, FieldAge}
	if f.mode == ModeCreate {
		required = append(required, FieldMedecin)
	}
	var missing []Field
	for _, r := range required {
		if strings.TrimSpace(f.values[r]) == "" {
			missing = append(missing, r)
		}
	}
	return missing
}

// Submit validates locally, then creates or updates the patient. Nothing is
// sent when a required field is blank or an input does not parse. On success
// the form closes and OnSaved runs. Only one submit runs at a time; a form
// that saved stays closed.
func (f *PatientForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.submitting {
		f.mu.Unlock()
		return apperrors.NewInFlight()
	}
	if missing := f.missingLocked(); len(missing) > 0 {
		f.mu.Unlock()
		return apperrors.NewValidation(fmt.Sprintf("required fields missing: %s", joinFields(missing)), nil)
	}
	mode := f.mode
	var (
		createReq model.CreatePatientRequest
		update    model.PatientUpdate
		err       error
	)
	if mode == ModeCreate {
		createReq, err = f.createRequestLocked()
	} else {
		update, err = f.updateLocked()
	}
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.submitting = true
	f.mu.Unlock()

	err = f.tracker.Run(ctx, func(ctx context.Context) error {
		if mode == ModeCreate {
			_, err := f.writer.CreatePatient(ctx, createReq)
			return err
		}
		return f.writer.UpdatePatient(ctx, f.original.ID, update)
	})

	f.mu.Lock()
	f.submitting = false
	if err == nil {
		f.open = false
		f.pending = nil
	}
	f.mu.Unlock()
	if err != nil {
		f.log.Debug("submit failed", "mode", mode.String(), "error", err.Error())
		return err
	}

	if f.onSaved != nil {
		f.onSaved()
	}
	return nil
}

// CreateRequest builds the POST body without sending it.
func (f *PatientForm) CreateRequest() (model.CreatePatientRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createRequestLocked()
}

// Update builds the PUT body without sending it. Only fields the role may
// mutate are present; blank optional inputs are present as null.
func (f *PatientForm) Update() (model.PatientUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateLocked()
}

type parsed struct {
	age, poids, taille, telephone *model.Number
	medecinID                     *int64
	traitement                    *model.Treatment
	statut                        *model.PatientStatus
	mail, medicament, notes       *string
}

// parseLocked reads the inputs the role may change. Read-only inputs keep
// whatever the server stored and are neither validated nor sent.
func (f *PatientForm) parseLocked() (*parsed, error) {
	var (
		p    parsed
		errs = validator.FieldErrors{}
		err  error
	)

	numbers := []struct {
		field Field
		dst   **model.Number
	}{
		{FieldAge, &p.age},
		{FieldPoids, &p.poids},
		{FieldTaille, &p.taille},
		{FieldTelephone, &p.telephone},
	}
	for _, n := range numbers {
		if !f.caps.CanEdit(n.field) {
			continue
		}
		if *n.dst, err = ParseNumber(f.values[n.field]); err != nil {
			errs[string(n.field)] = fmt.Sprintf("%s must be a number", n.field)
		}
	}

	if raw := f.editable(FieldMedecin); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs[string(FieldMedecin)] = fmt.Sprintf("%s must be a user id", FieldMedecin)
		} else {
			p.medecinID = &id
		}
	}

	p.mail = optional(f.editable(FieldMail))
	if p.mail != nil {
		if err := f.validate.ValidateVar(string(FieldMail), *p.mail, "email"); err != nil {
			mergeFieldErrors(errs, err)
		}
	}

	if raw := optional(f.editable(FieldTraitement)); raw != nil {
		if err := f.validate.ValidateVar(string(FieldTraitement), *raw, "oneof=true false"); err != nil {
			mergeFieldErrors(errs, err)
		} else {
			t := model.Treatment(*raw)
			p.traitement = &t
		}
	}

	if raw := optional(f.editable(FieldStatut)); raw != nil {
		s := model.PatientStatus(*raw)
		if !s.Valid() {
			errs[string(FieldStatut)] = fmt.Sprintf("%s must be one of %v", FieldStatut, model.PatientStatuses)
		} else {
			p.statut = &s
		}
	}

	p.medicament = optional(f.editable(FieldMedicament))
	p.notes = optional(f.editable(FieldNotes))

	if len(errs) > 0 {
		return nil, apperrors.NewValidation(errs.Error(), errs)
	}
	return &p, nil
}

// editable is the trimmed input of field, or "" when the role may not change it.
func (f *PatientForm) editable(field Field) string {
	if !f.caps.CanEdit(field) {
		return ""
	}
	return strings.TrimSpace(f.values[field])
}

func (f *PatientForm) createRequestLocked() (model.CreatePatientRequest, error) {
	p, err := f.parseLocked()
	if err != nil {
		return model.CreatePatientRequest{}, err
	}
	req := model.CreatePatientRequest{
		Nom:               strings.TrimSpace(f.values[FieldNom]),
		Prenom:            strings.TrimSpace(f.values[FieldPrenom]),
		Age:               p.age,
		Poids:             p.poids,
		Taille:            p.taille,
		NumeroDeTelephone: p.telephone,
		Mail:              p.mail,
		Appointment:       copyTime(f.rdv),
	}
	if p.medecinID != nil {
		req.DoctorID = *p.medecinID
	}
	// clinical inputs of a non-doctor are read-only and never sent
	if f.caps.CanEdit(FieldNotes) {
		req.Notes = p.notes
	}
	if f.caps.CanEdit(FieldMedicament) {
		req.Medicament = p.medicament
	}
	if f.caps.CanEdit(FieldStatut) {
		req.Statut = p.statut
	}
	return req, nil
}

func (f *PatientForm) updateLocked() (model.PatientUpdate, error) {
	p, err := f.parseLocked()
	if err != nil {
		return nil, err
	}

	all := map[Field]interface{}{
		FieldNom:        strings.TrimSpace(f.values[FieldNom]),
		FieldPrenom:     strings.TrimSpace(f.values[FieldPrenom]),
		FieldAge:        p.age,
		FieldPoids:      p.poids,
		FieldTaille:     p.taille,
		FieldTelephone:  p.telephone,
		FieldMail:       p.mail,
		FieldRdv:        copyTime(f.rdv),
		FieldTraitement: p.traitement,
		FieldMedicament: p.medicament,
		FieldNotes:      p.notes,
		FieldStatut:     p.statut,
	}
	if p.medecinID != nil {
		all[FieldMedecin] = *p.medecinID
	}

	update := model.PatientUpdate{}
	for _, field := range f.caps.Editable() {
		v, ok := all[field]
		if !ok {
			continue
		}
		update[string(field)] = nullable(v)
	}
	return update, nil
}

// subjectLocked is the patient an appointment notification is about.
func (f *PatientForm) subjectLocked() *model.Patient {
	if f.original != nil {
		cp := *f.original
		if mail := optional(f.values[FieldMail]); mail != nil {
			cp.Mail = mail
		}
		return &cp
	}
	return &model.Patient{
		Nom:    strings.TrimSpace(f.values[FieldNom]),
		Prenom: strings.TrimSpace(f.values[FieldPrenom]),
		Mail:   optional(f.values[FieldMail]),
	}
}

// nullable turns typed nil pointers into untyped nil so the map encodes null.
func nullable(v interface{}) interface{} {
	switch t := v.(type) {
	case *model.Number:
		if t == nil {
			return nil
		}
	case *string:
		if t == nil {
			return nil
		}
	case *time.Time:
		if t == nil {
			return nil
		}
	case *model.Treatment:
		if t == nil {
			return nil
		}
	case *model.PatientStatus:
		if t == nil {
			return nil
		}
	}
	return v
}

func mergeFieldErrors(dst validator.FieldErrors, err error) {
	var fe validator.FieldErrors
	if errors.As(err, &fe) {
		for k, v := range fe {
			dst[k] = v
		}
	}
}

func optional(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

func numberText(n *model.Number) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func stringText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func joinFields(fields []Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
