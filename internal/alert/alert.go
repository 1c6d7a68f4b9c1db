// Package alert turns operation results into the French, dismiss-only
// messages shown to staff. It is the only place that knows user-facing text.
package alert

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
)

type Kind string

const (
	KindSuccess Kind = "Succès"
	KindError   Kind = "Erreur"
)

// Alert is a modal message with a single dismiss action.
type Alert struct {
	Kind    Kind
	Message string
}

func (a Alert) String() string {
	return fmt.Sprintf("%s: %s", a.Kind, a.Message)
}

// Action names the operation an alert reports on.
type Action string

const (
	Login          Action = "login"
	LoadPatients   Action = "load_patients"
	LoadMyPatients Action = "load_my_patients"
	LoadPatient    Action = "load_patient"
	AddPatient     Action = "add_patient"
	EditPatient    Action = "edit_patient"
	DeletePatient  Action = "delete_patient"
	LoadUsers      Action = "load_users"
	AddUser        Action = "add_user"
	EditUser       Action = "edit_user"
	DeleteUser     Action = "delete_user"
)

const (
	MsgBadCredentials    = "Nom d'utilisateur ou mot de passe incorrect."
	MsgUnknownRole       = "Type d'utilisateur non reconnu."
	MsgMissingToken      = "Token d’authentification manquant"
	MsgServerUnreachable = "Problème de connexion au serveur."
	MsgMissingFields     = "Tous les champs doivent être remplis."
	MsgInFlight          = "Une opération est déjà en cours."
	MsgRetry             = "Réessayer"
)

var failures = map[Action]string{
	Login:          MsgBadCredentials,
	LoadPatients:   "Impossible de récupérer la liste des patients",
	LoadMyPatients: "Impossible de récupérer les patients",
	LoadPatient:    "Impossible de récupérer les détails du patient",
	AddPatient:     "Impossible d’ajouter le patient.",
	EditPatient:    "Impossible de modifier le patient. Veuillez réessayer plus tard.",
	DeletePatient:  "Impossible de supprimer le patient. Veuillez réessayer plus tard.",
	LoadUsers:      "Impossible de charger les utilisateurs. Veuillez réessayer plus tard.",
	AddUser:        "Impossible d’ajouter l’utilisateur.",
	EditUser:       "Impossible de modifier l’utilisateur. Veuillez réessayer plus tard.",
	DeleteUser:     "Impossible de supprimer l’utilisateur. Veuillez réessayer plus tard.",
}

// Failure maps err to the alert for action. 4xx and 5xx read the same; only
// the doctor's own patient list surfaces the server's message.
func Failure(action Action, err error) Alert {
	return Alert{Kind: KindError, Message: failureMessage(action, err)}
}

func failureMessage(action Action, err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrInFlight:
		return MsgInFlight
	case apperrors.ErrMissingToken:
		return MsgMissingToken
	}

	if action == Login {
		return MsgBadCredentials
	}

	if action == LoadMyPatients {
		if apperrors.Is(err, apperrors.ErrNetwork) {
			return MsgServerUnreachable
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Status != 0 && !isGeneric(appErr.Message) {
			return appErr.Message
		}
	}

	if msg, ok := failures[action]; ok {
		return msg
	}
	return "Une erreur est survenue."
}

// isGeneric reports whether msg is the placeholder set when the server sent no message.
func isGeneric(msg string) bool {
	return msg == "" || strings.HasPrefix(msg, "request failed with status")
}

// Success is the confirmation for a completed mutation. subject names the
// affected record where the message mentions one.
func Success(action Action, subject string) Alert {
	var msg string
	switch action {
	case AddPatient:
		msg = "Le patient a été ajouté avec succès."
	case EditPatient:
		msg = "Le patient a été modifié avec succès."
	case DeletePatient:
		msg = withSubject("Le patient %s a été supprimé avec succès.", "Le patient a été supprimé avec succès.", subject)
	case AddUser:
		msg = "L’utilisateur a été ajouté avec succès."
	case EditUser:
		msg = "L’utilisateur a été modifié avec succès."
	case DeleteUser:
		msg = withSubject("L’utilisateur %s a été supprimé avec succès.", "L’utilisateur a été supprimé avec succès.", subject)
	default:
		msg = "Opération réussie."
	}
	return Alert{Kind: KindSuccess, Message: msg}
}

// UnknownRole is shown when a login succeeds for an unsupported account type.
func UnknownRole() Alert {
	return Alert{Kind: KindError, Message: MsgUnknownRole}
}

// MissingFields is shown when an admin form is submitted incomplete.
func MissingFields() Alert {
	return Alert{Kind: KindError, Message: MsgMissingFields}
}

func withSubject(format, fallback, subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return fallback
	}
	return fmt.Sprintf(format, subject)
}
