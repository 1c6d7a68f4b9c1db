package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitemonmedoc/medoc/internal/alert"
	"github.com/vitemonmedoc/medoc/internal/form"
	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/screen"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
)

// RdvLayout is how appointments are typed on the command line, in local time.
const RdvLayout = "02/01/2006 15:04"

func patientsCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patients",
		Aliases: []string{"patient"},
		Short:   "Patient records",
	}
	cmd.AddCommand(
		patientsListCmd(r),
		patientsGetCmd(r),
		patientsMineCmd(r),
		patientsAgendaCmd(r),
		patientsAddCmd(r),
		patientsEditCmd(r),
		patientsScheduleCmd(r),
		patientsDeleteCmd(r),
	)
	return cmd
}

func patientsListCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := r.app
			if _, err := app.mount(model.RoleHR, model.RoleAdmin); err != nil {
				return err
			}
			list := screen.NewPatientList(app.Client, app.Log)
			if err := list.Load(cmd.Context()); err != nil {
				return failed(list.State().Error.Message, err)
			}
			state := list.State()
			return table(app.out, patientHeader, app.patientRows(cmd.Context(), state.Patients))
		},
	}
}

func patientsGetCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a patient card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := r.app
			if _, err := app.mount(model.RoleHR, model.RoleDoctor, model.RoleAdmin); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			detail, a := screen.LoadPatientDetail(cmd.Context(), app.Client, app.Doctors, id, app.now())
			if a != nil {
				return failed(a.Message, nil)
			}
			rows := make([][]string, 0, len(detail.Rows))
			for _, row := range detail.Rows {
				rows = append(rows, []string{row.Label, row.Value})
			}
			fmt.Fprintln(app.out, detail.Patient.FullName())
			return table(app.out, []string{"CHAMP", "VALEUR"}, rows)
		},
	}
}

func patientsMineCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the patients assigned to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := r.app
			dash, err := app.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			return table(app.out, patientHeader, app.patientRows(cmd.Context(), dash.State().Patients))
		},
	}
}

func patientsAgendaCmd(r *root) *cobra.Command {
	return &cobra.Command{
		Use:   "agenda",
		Short: "Your upcoming appointments, soonest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := r.app
			dash, err := app.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			agenda := dash.Agenda()
			if len(agenda) == 0 {
				fmt.Fprintln(app.out, "Aucun rendez-vous à venir.")
				return nil
			}
			rows := make([][]string, 0, len(agenda))
			for i := range agenda {
				rows = append(rows, []string{screen.FormatDateTime(agenda[i].Rdv), agenda[i].FullName()})
			}
			return table(app.out, []string{"RDV", "PATIENT"}, rows)
		},
	}
}

func (a *App) loadDashboard(ctx context.Context) (*screen.DoctorDashboard, error) {
	if _, err := a.mount(model.RoleDoctor); err != nil {
		return nil, err
	}
	dash := screen.NewDoctorDashboard(a.Client, a.Sessions, a.Log)
	if err := dash.Load(ctx); err != nil {
		return nil, failed(dash.State().Error.Message, err)
	}
	return dash, nil
}

func patientsAddCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a patient",
		Long:  "Add a patient. nom, prenom, age and medecin_id are required.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := r.app
			sess, err := app.mount(model.RoleHR, model.RoleAdmin)
			if err != nil {
				return err
			}
			pf := form.NewCreateForm(sess.User.Type, app.formOptions())
			if err := applyFieldFlags(cmd, pf); err != nil {
				return err
			}
			if err := pf.Submit(cmd.Context()); err != nil {
				return submitFailure(alert.AddPatient, err)
			}
			fmt.Fprintln(app.out, alert.Success(alert.AddPatient, "").Message)
			return nil
		},
	}
	addFieldFlags(cmd)
	return cmd
}

func patientsEditCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a patient; fields your role may not change are rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.app.editPatient(cmd, args[0], func(pf *form.PatientForm) error {
				return applyFieldFlags(cmd, pf)
			})
		},
	}
	addFieldFlags(cmd)
	return cmd
}

func patientsScheduleCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule <id>",
		Short: "Set a patient's appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, _ := cmd.Flags().GetString("at")
			return r.app.editPatient(cmd, args[0], func(pf *form.PatientForm) error {
				return pickAppointment(cmd.Context(), pf, at)
			})
		},
	}
	cmd.Flags().String("at", "", "appointment as "+RdvLayout)
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func (a *App) editPatient(cmd *cobra.Command, rawID string, apply func(*form.PatientForm) error) error {
	sess, err := a.mount(model.RoleHR, model.RoleDoctor, model.RoleAdmin)
	if err != nil {
		return err
	}
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	p, err := a.Client.GetPatient(cmd.Context(), id)
	if err != nil {
		return failed(alert.Failure(alert.LoadPatient, err).Message, err)
	}

	pf := form.NewEditForm(sess.User.Type, p, a.formOptions())
	if err := apply(pf); err != nil {
		return err
	}
	if err := pf.Submit(cmd.Context()); err != nil {
		return submitFailure(alert.EditPatient, err)
	}
	fmt.Fprintln(a.out, alert.Success(alert.EditPatient, "").Message)
	return nil
}

func patientsDeleteCmd(r *root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := r.app
			if _, err := app.mount(model.RoleHR, model.RoleAdmin); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := app.Client.GetPatient(cmd.Context(), id)
			if err != nil {
				return failed(alert.Failure(alert.LoadPatient, err).Message, err)
			}

			yes, _ := cmd.Flags().GetBool("yes")
			if !app.confirm(screen.DeleteConfirmation(p.FullName()), yes) {
				fmt.Fprintln(app.out, "Suppression annulée.")
				return nil
			}
			list := screen.NewPatientList(app.Client, app.Log)
			a, err := list.Delete(cmd.Context(), *p)
			if err != nil {
				return failed(a.Message, err)
			}
			fmt.Fprintln(app.out, a.Message)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *App) formOptions() form.Options {
	return form.Options{
		Writer:   a.Client,
		Notifier: a.Notifier,
		OnSaved:  a.Doctors.Invalidate,
		Logger:   a.Log,
	}
}

// addFieldFlags registers one flag per form input, named after its json key.
func addFieldFlags(cmd *cobra.Command) {
	for _, f := range form.Fields {
		if f == form.FieldRdv {
			continue
		}
		cmd.Flags().String(string(f), "", "")
	}
	cmd.Flags().String(string(form.FieldRdv), "", "appointment as "+RdvLayout)
}

// applyFieldFlags copies the flags the user typed into the form. An empty value
// clears an optional field.
func applyFieldFlags(cmd *cobra.Command, pf *form.PatientForm) error {
	for _, f := range form.Fields {
		flag := cmd.Flags().Lookup(string(f))
		if flag == nil || !flag.Changed {
			continue
		}
		if f == form.FieldRdv {
			if err := pickAppointment(cmd.Context(), pf, flag.Value.String()); err != nil {
				return err
			}
			continue
		}
		if err := pf.Set(f, flag.Value.String()); err != nil {
			return err
		}
	}
	return nil
}

func pickAppointment(ctx context.Context, pf *form.PatientForm, raw string) error {
	at, err := time.ParseInLocation(RdvLayout, raw, time.Local)
	if err != nil {
		return fmt.Errorf("invalid appointment %q, expected %s", raw, RdvLayout)
	}
	if err := pf.PickAppointment(at); err != nil {
		return err
	}
	return pf.ConfirmAppointment(ctx)
}

// submitFailure keeps local validation messages, which name the offending
// fields, and maps everything else to the screen's alert.
func submitFailure(action alert.Action, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrValidation && appErr.Status == 0 {
		return failed(appErr.Message, err)
	}
	return failed(alert.Failure(action, err).Message, err)
}
