package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitemonmedoc/medoc/internal/model"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
)

type stubAuth struct {
	session *model.Session
	err     error
	calls   int
}

func (s *stubAuth) Login(_ context.Context, _ model.Credentials) (*model.Session, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.session
	return &cp, nil
}

type failingStorage struct {
	loadErr  error
	saveErr  error
	clearErr error
}

func (f failingStorage) Load(context.Context) (*model.Session, error) { return nil, f.loadErr }
func (f failingStorage) Save(context.Context, *model.Session) error   { return f.saveErr }
func (f failingStorage) Clear(context.Context) error                  { return f.clearErr }

func newFileStore(t *testing.T, auth Authenticator) (*Store, *FileStorage) {
	t.Helper()
	fs, err := NewFileStorage(t.TempDir(), DefaultKey)
	require.NoError(t, err)
	return NewStore(fs, auth, nil), fs
}

func doctorSession() *model.Session {
	return &model.Session{
		Token: "abc",
		User:  model.SessionUser{ID: 1, Username: "drsmith", Type: model.RoleDoctor},
	}
}

func TestRestoreWithoutPersistedSession(t *testing.T) {
	store, _ := newFileStore(t, &stubAuth{})
	assert.True(t, store.Loading())

	_, err := store.Require(model.RoleDoctor)
	assert.ErrorIs(t, err, ErrLoading)

	store.Restore(context.Background())
	assert.False(t, store.Loading())
	assert.Nil(t, store.Current())

	_, err = store.Require(model.RoleDoctor)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRestoreRoundTrip(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir(), DefaultKey)
	require.NoError(t, err)
	want := doctorSession()
	require.NoError(t, fs.Save(context.Background(), want))

	store := NewStore(fs, &stubAuth{}, nil)
	store.Restore(context.Background())

	assert.False(t, store.Loading())
	assert.Equal(t, want, store.Current())
	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
}

func TestRestoreIgnoresCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user.json"), []byte("{not json"), 0o600))
	fs, err := NewFileStorage(dir, DefaultKey)
	require.NoError(t, err)

	store := NewStore(fs, &stubAuth{}, nil)
	store.Restore(context.Background())
	assert.False(t, store.Loading())
	assert.Nil(t, store.Current())
}

func TestRestoreIgnoresStorageFailure(t *testing.T) {
	store := NewStore(failingStorage{loadErr: errors.New("disk gone")}, &stubAuth{}, nil)
	store.Restore(context.Background())
	assert.False(t, store.Loading())
	assert.Nil(t, store.Current())
}

func TestLoginPersistsSession(t *testing.T) {
	auth := &stubAuth{session: &model.Session{Token: "abc", User: model.SessionUser{ID: 1, Type: model.RoleDoctor}}}
	store, fs := newFileStore(t, auth)
	store.Restore(context.Background())

	sess, err := store.Login(context.Background(), model.Credentials{Username: " drsmith ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "drsmith", sess.User.Username)
	assert.Equal(t, model.RoleDoctor, store.Current().User.Type)

	persisted, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.Current(), persisted)

	got, err := store.Require(model.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.User.ID)

	_, err = store.Require(model.RoleAdmin, model.RoleHR)
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestFailedLoginKeepsPreviousSession(t *testing.T) {
	store, fs := newFileStore(t, &stubAuth{session: doctorSession()})
	store.Restore(context.Background())
	_, err := store.Login(context.Background(), model.Credentials{Username: "drsmith", Password: "pw"})
	require.NoError(t, err)

	store.auth = &stubAuth{err: apperrors.NewServer(401, "bad")}
	_, err = store.Login(context.Background(), model.Credentials{Username: "other", Password: "nope"})
	require.Error(t, err)

	assert.Equal(t, "drsmith", store.Current().User.Username)
	persisted, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "drsmith", persisted.User.Username)
}

func TestLoginRequiresCredentials(t *testing.T) {
	auth := &stubAuth{session: doctorSession()}
	store, _ := newFileStore(t, auth)

	_, err := store.Login(context.Background(), model.Credentials{Username: "  ", Password: "pw"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, 0, auth.calls)
}

func TestLoginFailsWhenPersistFails(t *testing.T) {
	store := NewStore(failingStorage{saveErr: errors.New("read-only")}, &stubAuth{session: doctorSession()}, nil)
	store.Restore(context.Background())

	_, err := store.Login(context.Background(), model.Credentials{Username: "drsmith", Password: "pw"})
	require.Error(t, err)
	assert.Nil(t, store.Current())
}

func TestLogoutThenRestoreYieldsNoUser(t *testing.T) {
	store, fs := newFileStore(t, &stubAuth{session: doctorSession()})
	store.Restore(context.Background())
	_, err := store.Login(context.Background(), model.Credentials{Username: "drsmith", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, store.Logout(context.Background()))
	assert.Nil(t, store.Current())
	_, ok := store.Token()
	assert.False(t, ok)

	fresh := NewStore(fs, &stubAuth{}, nil)
	fresh.Restore(context.Background())
	assert.Nil(t, fresh.Current())
}

func TestLogoutDropsMemoryEvenIfStorageFails(t *testing.T) {
	store := NewStore(failingStorage{clearErr: errors.New("busy")}, &stubAuth{session: doctorSession()}, nil)
	store.Restore(context.Background())
	_, err := store.Login(context.Background(), model.Credentials{Username: "drsmith", Password: "pw"})
	require.NoError(t, err)

	assert.Error(t, store.Logout(context.Background()))
	assert.Nil(t, store.Current())
}

func TestCurrentReturnsCopy(t *testing.T) {
	store, _ := newFileStore(t, &stubAuth{session: doctorSession()})
	store.Restore(context.Background())
	_, err := store.Login(context.Background(), model.Credentials{Username: "drsmith", Password: "pw"})
	require.NoError(t, err)

	cur := store.Current()
	cur.User.Type = model.RoleAdmin
	assert.Equal(t, model.RoleDoctor, store.Current().User.Type)
}
