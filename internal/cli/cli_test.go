package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitemonmedoc/medoc/config"
	serverConfig "github.com/vitemonmedoc/medoc/internal/config"
	"github.com/vitemonmedoc/medoc/internal/form"
	"github.com/vitemonmedoc/medoc/internal/server"
	"github.com/vitemonmedoc/medoc/internal/session"
)

type harness struct {
	t   *testing.T
	cfg *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv, err := server.New(context.Background(), &serverConfig.Config{
		ServerConfig: serverConfig.ServerConfig{Port: 3000, RequestTimeout: 5 * time.Second, AllowOrigins: []string{"*"}},
		JWTConfig:    serverConfig.JWTConfig{JWTSecret: "cli-test", JWTExpiry: time.Hour},
		AdminConfig:  serverConfig.AdminConfig{AdminUsername: "admin", AdminPassword: "admin", BcryptCost: 4},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &harness{t: t, cfg: &config.Config{
		BaseURL:        ts.URL,
		RequestTimeout: 5 * time.Second,
		DoctorCacheTTL: time.Minute,
		Session:        config.SessionConfig{Backend: "file", Dir: t.TempDir(), Key: "user"},
		Notification:   config.NotificationConfig{Channels: []string{"local"}},
		Log:            config.LogConfig{Level: "error"},
	}}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	err := Execute(context.Background(), Streams{In: strings.NewReader(stdin), Out: &out, Err: io.Discard}, args, WithConfig(h.cfg))
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, out)
	return out
}

// seed logs in as admin, creates a doctor (id 2) and an HR account (id 3).
func (h *harness) seed() {
	h.t.Helper()
	h.mustRun("login", "-u", "admin", "-p", "admin")
	h.mustRun("users", "add", "--username", "drsmith", "--password", "secret", "--type", "medecin")
	h.mustRun("users", "add", "--username", "rh1", "--password", "secret", "--type", "rh")
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("login", "-u", "admin", "-p", "admin")
	assert.Contains(t, out, "Connecté en tant que admin (Admin) -> AdminScreen")

	out = h.mustRun("whoami")
	assert.Contains(t, out, "admin (Admin)")

	h.mustRun("logout")
	out = h.mustRun("whoami")
	assert.Contains(t, out, "Non connecté.")
}

func TestLoginPromptsForPassword(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("admin\n", "login", "-u", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Mot de passe: ")
	assert.Contains(t, out, "AdminScreen")
}

func TestLoginBadPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "login", "-u", "admin", "-p", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Nom d'utilisateur ou mot de passe incorrect.", err.Error())
}

func TestGuardRejectsAnonymousAndWrongRole(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "patients", "list")
	assert.ErrorIs(t, err, session.ErrUnauthenticated)

	h.seed()
	h.mustRun("login", "-u", "rh1", "-p", "secret")
	_, err = h.run("", "users", "list")
	assert.ErrorIs(t, err, session.ErrRoleMismatch)
	_, err = h.run("", "patients", "mine")
	assert.ErrorIs(t, err, session.ErrRoleMismatch)
}

func TestHRPatientLifecycle(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.mustRun("login", "-u", "rh1", "-p", "secret")

	out := h.mustRun("patients", "add", "--nom", "Martin", "--prenom", "Alice", "--age", "30", "--poids", "", "--medecin_id", "2")
	assert.Contains(t, out, "Le patient a été ajouté avec succès.")

	out = h.mustRun("patients", "list")
	assert.Contains(t, out, "Martin")
	assert.Contains(t, out, "drsmith")

	out = h.mustRun("patients", "get", "1")
	assert.Contains(t, out, "Martin Alice")
	assert.Contains(t, out, "Non renseigné")

	out, err := h.run("n\n", "patients", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Voulez-vous vraiment supprimer Martin Alice ?")
	assert.Contains(t, out, "Suppression annulée.")

	out = h.mustRun("patients", "delete", "1", "--yes")
	assert.Contains(t, out, "Le patient Martin a été supprimé avec succès.")

	out = h.mustRun("patients", "list")
	assert.NotContains(t, out, "Martin")
}

func TestHRCannotSetClinicalFields(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.mustRun("login", "-u", "rh1", "-p", "secret")

	_, err := h.run("", "patients", "add", "--nom", "Martin", "--prenom", "Alice", "--age", "30", "--medecin_id", "2", "--statut", "stable")
	assert.ErrorIs(t, err, form.ErrReadOnlyField)
}

func TestAddPatientMissingFields(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.mustRun("login", "-u", "rh1", "-p", "secret")

	_, err := h.run("", "patients", "add", "--nom", "Martin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prenom")
	assert.Contains(t, err.Error(), "medecin_id")
}

func TestDoctorScheduleAndAgenda(t *testing.T) {
	h := newHarness(t)
	h.seed()
	h.mustRun("login", "-u", "rh1", "-p", "secret")
	h.mustRun("patients", "add", "--nom", "Martin", "--prenom", "Alice", "--age", "30", "--medecin_id", "2")

	h.mustRun("login", "-u", "drsmith", "-p", "secret")
	out := h.mustRun("patients", "mine")
	assert.Contains(t, out, "Martin")

	out = h.mustRun("patients", "agenda")
	assert.Contains(t, out, "Aucun rendez-vous à venir.")

	at := time.Now().Add(48 * time.Hour).Format(RdvLayout)
	out = h.mustRun("patients", "schedule", "1", "--at", at)
	assert.Contains(t, out, "[Nouveau rendez-vous] Votre rendez-vous est programmé pour le "+at)
	assert.Contains(t, out, "Le patient a été modifié avec succès.")

	out = h.mustRun("patients", "agenda")
	assert.Contains(t, out, at)
	assert.Contains(t, out, "Martin Alice")

	out = h.mustRun("patients", "edit", "1", "--statut", "stable", "--traitement_en_cours", "true")
	assert.Contains(t, out, "Le patient a été modifié avec succès.")
	out = h.mustRun("patients", "get", "1")
	assert.Contains(t, out, "stable")
}

func TestAdminUsers(t *testing.T) {
	h := newHarness(t)
	h.seed()

	out := h.mustRun("users", "list", "--role", "medecin")
	assert.Contains(t, out, "drsmith")
	assert.NotContains(t, out, "rh1")

	_, err := h.run("", "users", "add", "--username", "x")
	require.Error(t, err)
	assert.Equal(t, "Tous les champs doivent être remplis.", err.Error())

	out = h.mustRun("users", "edit", "3", "--username", "rh-paris")
	assert.Contains(t, out, "L’utilisateur a été modifié avec succès.")
	out = h.mustRun("users", "get", "3")
	assert.Contains(t, out, "rh-paris")
	assert.Contains(t, out, "RH")

	out = h.mustRun("users", "delete", "3", "-y")
	assert.Contains(t, out, "L’utilisateur rh-paris a été supprimé avec succès.")
}

func TestEncryptedSessionFile(t *testing.T) {
	h := newHarness(t)
	h.cfg.Session.Passphrase = "correct horse"
	h.mustRun("login", "-u", "admin", "-p", "admin")
	assert.Contains(t, h.mustRun("whoami"), "admin (Admin)")

	h.cfg.Session.Passphrase = "another"
	assert.Contains(t, h.mustRun("whoami"), "Non connecté.")
}
