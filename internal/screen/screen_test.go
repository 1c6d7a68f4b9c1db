package screen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/session"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
)

type stubAuth struct {
	session *model.Session
	err     error
}

func (s stubAuth) Login(context.Context, model.Credentials) (*model.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.session
	return &cp, nil
}

func newStore(t *testing.T, auth session.Authenticator) *session.Store {
	t.Helper()
	fs, err := session.NewFileStorage(t.TempDir(), session.DefaultKey)
	require.NoError(t, err)
	store := session.NewStore(fs, auth, nil)
	store.Restore(context.Background())
	return store
}

func TestRouteFor(t *testing.T) {
	tests := map[model.Role]Screen{
		model.RoleHR:     ScreenHR,
		model.RoleDoctor: ScreenDoctor,
		model.RoleAdmin:  ScreenAdmin,
	}
	for role, want := range tests {
		got, err := RouteFor(role)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := RouteFor("stagiaire")
	assert.ErrorIs(t, err, ErrUnknownRole)
	assert.Equal(t, ScreenLogin, got)
}

func TestLoginRoutesDoctor(t *testing.T) {
	store := newStore(t, stubAuth{session: &model.Session{Token: "abc", User: model.SessionUser{ID: 1, Type: model.RoleDoctor}}})

	next, a := Login(context.Background(), store, model.Credentials{Username: "drsmith", Password: "pw"})
	assert.Nil(t, a)
	assert.Equal(t, ScreenDoctor, next)
}

func TestLoginFailureAlert(t *testing.T) {
	store := newStore(t, stubAuth{err: apperrors.NewServer(401, "")})

	next, a := Login(context.Background(), store, model.Credentials{Username: "drsmith", Password: "bad"})
	require.NotNil(t, a)
	assert.Equal(t, ScreenLogin, next)
	assert.Equal(t, "Nom d'utilisateur ou mot de passe incorrect.", a.Message)
	assert.Nil(t, store.Current())
}

func TestLoginUnknownRole(t *testing.T) {
	store := newStore(t, stubAuth{session: &model.Session{Token: "abc", User: model.SessionUser{ID: 9, Type: "stagiaire"}}})

	next, a := Login(context.Background(), store, model.Credentials{Username: "x", Password: "y"})
	require.NotNil(t, a)
	assert.Equal(t, ScreenLogin, next)
	assert.Equal(t, "Type d'utilisateur non reconnu.", a.Message)
	assert.Nil(t, store.Current())
}

func TestGuard(t *testing.T) {
	fs, err := session.NewFileStorage(t.TempDir(), session.DefaultKey)
	require.NoError(t, err)
	store := session.NewStore(fs, stubAuth{session: &model.Session{Token: "abc", User: model.SessionUser{ID: 2, Type: model.RoleHR}}}, nil)

	gate, _ := Guard(store, model.RoleHR)
	assert.Equal(t, GateWait, gate)

	store.Restore(context.Background())
	gate, _ = Guard(store, model.RoleHR)
	assert.Equal(t, GateRedirect, gate)

	_, err = store.Login(context.Background(), model.Credentials{Username: "rh1", Password: "pw"})
	require.NoError(t, err)

	gate, sess := Guard(store, model.RoleHR, model.RoleAdmin)
	assert.Equal(t, GateAllow, gate)
	assert.Equal(t, model.RoleHR, sess.User.Type)

	gate, _ = Guard(store, model.RoleDoctor)
	assert.Equal(t, GateRedirect, gate)
}

type memPatients struct {
	patients []model.Patient
	listErr  error
	deleted  []int64
	lists    int
}

func (m *memPatients) ListPatients(context.Context) ([]model.Patient, error) {
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]model.Patient(nil), m.patients...), nil
}

func (m *memPatients) DeletePatient(_ context.Context, id int64) error {
	for i, p := range m.patients {
		if p.ID == id {
			m.deleted = append(m.deleted, id)
			m.patients = append(m.patients[:i], m.patients[i+1:]...)
			return nil
		}
	}
	return apperrors.NewServer(404, "Patient introuvable")
}

func (m *memPatients) ListMyPatients(_ context.Context, token string) ([]model.Patient, error) {
	if token == "" {
		return nil, apperrors.NewMissingToken()
	}
	return m.ListPatients(context.Background())
}

func TestPatientListDeleteReloads(t *testing.T) {
	src := &memPatients{patients: []model.Patient{
		{Base: model.Base{ID: 41}, Nom: "Martin"},
		{Base: model.Base{ID: 42}, Nom: "Durand"},
	}}
	list := NewPatientList(src, nil)
	assert.True(t, list.State().Loading)
	require.NoError(t, list.Load(context.Background()))
	require.Len(t, list.State().Patients, 2)

	a, err := list.Delete(context.Background(), model.Patient{Base: model.Base{ID: 42}, Nom: "Durand"})
	require.NoError(t, err)
	assert.Equal(t, "Le patient Durand a été supprimé avec succès.", a.Message)
	assert.Equal(t, []int64{42}, src.deleted)
	assert.Equal(t, 2, src.lists)

	for _, p := range list.State().Patients {
		assert.NotEqual(t, int64(42), p.ID)
	}

	_, err = list.Delete(context.Background(), model.Patient{Base: model.Base{ID: 42}})
	assert.Error(t, err)
	assert.Equal(t, 2, src.lists)
}

func TestPatientListRetry(t *testing.T) {
	src := &memPatients{listErr: apperrors.NewNetwork(errors.New("refused"))}
	list := NewPatientList(src, nil)

	require.Error(t, list.Load(context.Background()))
	st := list.State()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Error)
	assert.Equal(t, "Impossible de récupérer la liste des patients", st.Error.Message)
	assert.True(t, st.CanRetry)

	src.listErr = nil
	src.patients = []model.Patient{{Base: model.Base{ID: 1}, Nom: "Durand"}}
	require.NoError(t, list.Retry(context.Background()))
	st = list.State()
	assert.Nil(t, st.Error)
	assert.False(t, st.CanRetry)
	assert.Len(t, st.Patients, 1)
}

type fixedToken string

func (f fixedToken) Token() (string, bool) { return string(f), f != "" }

func TestDoctorDashboard(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { t := now.Add(d); return &t }
	src := &memPatients{patients: []model.Patient{
		{Base: model.Base{ID: 1}, Nom: "Past", Rdv: at(-time.Hour)},
		{Base: model.Base{ID: 2}, Nom: "Later", Rdv: at(48 * time.Hour)},
		{Base: model.Base{ID: 3}, Nom: "None"},
		{Base: model.Base{ID: 4}, Nom: "Soon", Rdv: at(time.Hour)},
		{Base: model.Base{ID: 5}, Nom: "Now", Rdv: at(0)},
	}}

	d := NewDoctorDashboard(src, fixedToken("abc"), nil)
	d.now = func() time.Time { return now }
	require.NoError(t, d.Load(context.Background()))
	assert.Len(t, d.State().Patients, 5)

	agenda := d.Agenda()
	require.Len(t, agenda, 2)
	assert.Equal(t, "Soon", agenda[0].Nom)
	assert.Equal(t, "Later", agenda[1].Nom)
}

func TestDoctorDashboardWithoutToken(t *testing.T) {
	src := &memPatients{}
	d := NewDoctorDashboard(src, fixedToken(""), nil)

	require.Error(t, d.Load(context.Background()))
	assert.Equal(t, "Token d’authentification manquant", d.State().Error.Message)
	assert.Equal(t, 0, src.lists)
}

type memDoctors map[int64]string

func (m memDoctors) Name(_ context.Context, id *int64) string {
	if id == nil {
		return "Médecin inconnu"
	}
	if n, ok := m[*id]; ok {
		return n
	}
	return "Médecin inconnu"
}

type onePatient struct {
	p   *model.Patient
	err error
}

func (o onePatient) GetPatient(context.Context, int64) (*model.Patient, error) { return o.p, o.err }

func TestPatientDetail(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)
	rdv := time.Date(2025, 3, 10, 9, 15, 0, 0, time.Local)
	yes := model.TreatmentYes
	doc := int64(3)
	p := &model.Patient{
		Base: model.Base{ID: 7}, Nom: "Durand", Prenom: "Léa", Age: model.NumberPtr(30),
		Poids: model.NumberPtr(70.5), MedecinID: &doc, Rdv: &rdv, TraitementEnCours: &yes,
	}

	detail, a := LoadPatientDetail(context.Background(), onePatient{p: p}, memDoctors{3: "drsmith"}, 7, now)
	require.Nil(t, a)
	assert.Equal(t, "drsmith", detail.DoctorName)

	values := map[string]string{}
	for _, r := range detail.Rows {
		values[r.Label] = r.Value
	}
	assert.Equal(t, "70.5", values["Poids"])
	assert.Equal(t, "Non renseigné", values["Taille"])
	assert.Equal(t, "Oui", values["Traitement en cours"])
	assert.Equal(t, "10/03/2025 09:15", values["Date prévue le :"])

	detail = BuildPatientDetail(context.Background(), p, memDoctors{}, rdv.Add(time.Hour))
	assert.Equal(t, "Médecin inconnu", detail.DoctorName)
	last := detail.Rows[len(detail.Rows)-1]
	assert.Equal(t, "Dernière consultation le :", last.Label)

	_, a = LoadPatientDetail(context.Background(), onePatient{err: apperrors.NewServer(404, "")}, memDoctors{}, 7, now)
	require.NotNil(t, a)
	assert.Equal(t, "Impossible de récupérer les détails du patient", a.Message)
}

type memUsers struct {
	users   []model.User
	created []model.CreateUserRequest
	updated map[int64]model.UpdateUserRequest
	err     error
	nextID  int64
}

func (m *memUsers) ListUsers(context.Context) ([]model.User, error) {
	return append([]model.User(nil), m.users...), nil
}

func (m *memUsers) CreateUser(_ context.Context, req model.CreateUserRequest) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	m.created = append(m.created, req)
	u := model.User{Base: model.Base{ID: m.nextID}, Username: req.Username, Type: req.Type}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *memUsers) UpdateUser(_ context.Context, id int64, req model.UpdateUserRequest) error {
	if m.err != nil {
		return m.err
	}
	if m.updated == nil {
		m.updated = map[int64]model.UpdateUserRequest{}
	}
	m.updated[id] = req
	return nil
}

func (m *memUsers) DeleteUser(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
		}
	}
	return nil
}

func TestAdminUsersAdd(t *testing.T) {
	src := &memUsers{}
	screen := NewAdminUsers(src, nil)

	a, err := screen.Add(context.Background(), model.CreateUserRequest{Username: "rh1", Type: model.RoleHR})
	require.Error(t, err)
	assert.Equal(t, "Tous les champs doivent être remplis.", a.Message)
	assert.Empty(t, src.created)

	a, err = screen.Add(context.Background(), model.CreateUserRequest{Username: "x", Type: "superuser", Password: "pw"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Empty(t, src.created)

	a, err = screen.Add(context.Background(), model.CreateUserRequest{Username: " rh1 ", Type: model.RoleHR, Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "L’utilisateur a été ajouté avec succès.", a.Message)
	assert.Equal(t, "rh1", src.created[0].Username)
	assert.Len(t, screen.State().Users, 1)

	src.err = apperrors.NewServer(500, "")
	a, err = screen.Add(context.Background(), model.CreateUserRequest{Username: "rh2", Type: model.RoleHR, Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, "Impossible d’ajouter l’utilisateur.", a.Message)
}

func TestAdminUsersEditAndDelete(t *testing.T) {
	src := &memUsers{users: []model.User{{Base: model.Base{ID: 5}, Username: "drwho", Type: model.RoleDoctor}}}
	screen := NewAdminUsers(src, nil)
	require.NoError(t, screen.Load(context.Background()))

	a, err := screen.Edit(context.Background(), 5, model.UpdateUserRequest{Username: "", Type: model.RoleDoctor})
	require.Error(t, err)
	assert.Equal(t, "Tous les champs doivent être remplis.", a.Message)

	a, err = screen.Edit(context.Background(), 5, model.UpdateUserRequest{Username: "drwho2", Type: model.RoleDoctor})
	require.NoError(t, err)
	assert.Equal(t, "L’utilisateur a été modifié avec succès.", a.Message)
	assert.Equal(t, "drwho2", src.updated[5].Username)

	a, err = screen.Delete(context.Background(), model.User{Base: model.Base{ID: 5}, Username: "drwho2"})
	require.NoError(t, err)
	assert.Equal(t, "L’utilisateur drwho2 a été supprimé avec succès.", a.Message)
	assert.Empty(t, screen.State().Users)

	src.err = apperrors.NewServer(403, "")
	a, err = screen.Delete(context.Background(), model.User{Base: model.Base{ID: 6}})
	require.Error(t, err)
	assert.Equal(t, "Impossible de supprimer l’utilisateur. Veuillez réessayer plus tard.", a.Message)
}

func TestFormatCreatedAt(t *testing.T) {
	ts := time.Date(2024, 11, 5, 8, 7, 0, 0, time.Local)
	assert.Equal(t, "05/11/2024 à 08:07", FormatCreatedAt(&ts))
	assert.Equal(t, "Non renseigné", FormatCreatedAt(nil))
}
