package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/screen"
)

func table(out io.Writer, header []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

var patientHeader = []string{"ID", "NOM", "PRÉNOM", "ÂGE", "MÉDECIN", "STATUT", "RDV"}

func (a *App) patientRows(ctx context.Context, patients []model.Patient) [][]string {
	rows := make([][]string, 0, len(patients))
	for i := range patients {
		p := &patients[i]
		age := screen.NotProvided
		if p.Age != nil {
			age = p.Age.String()
		}
		statut := screen.NotProvided
		if p.Statut != nil {
			statut = string(*p.Statut)
		}
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Nom,
			p.Prenom,
			age,
			a.Doctors.Name(ctx, p.MedecinID),
			statut,
			screen.FormatDateTime(p.Rdv),
		})
	}
	return rows
}

func userRows(users []model.User) [][]string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.Type.Label(),
			screen.FormatCreatedAt(u.CreatedAt),
		})
	}
	return rows
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
