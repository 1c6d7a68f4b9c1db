package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vitemonmedoc/medoc/internal/model"
	apperrors "github.com/vitemonmedoc/medoc/pkg/errors"
)

func (c *Client) ListPatients(ctx context.Context) ([]model.Patient, error) {
	var patients []model.Patient
	if err := c.do(ctx, request{op: "list_patients", method: http.MethodGet, path: "/api/patients"}, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

// ListMyPatients returns the patients assigned to the doctor owning token.
// An empty token fails locally without sending anything.
func (c *Client) ListMyPatients(ctx context.Context, token string) ([]model.Patient, error) {
	if token == "" {
		return nil, apperrors.NewMissingToken()
	}
	var patients []model.Patient
	err := c.do(ctx, request{
		op:     "list_my_patients",
		method: http.MethodGet,
		path:   "/api/patients/medecin",
		token:  token,
	}, &patients)
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (c *Client) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	var patient model.Patient
	err := c.do(ctx, request{op: "get_patient", method: http.MethodGet, path: fmt.Sprintf("/api/patients/%d", id)}, &patient)
	if err != nil {
		return nil, err
	}
	return &patient, nil
}

// CreatePatient returns the created record when the server echoes it, nil otherwise.
func (c *Client) CreatePatient(ctx context.Context, req model.CreatePatientRequest) (*model.Patient, error) {
	resp, err := c.send(ctx, request{op: "create_patient", method: http.MethodPost, path: "/api/patients", body: req})
	if err != nil {
		return nil, err
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, apperrors.NewServer(resp.status, serverMessage(resp.body))
	}
	var patient model.Patient
	if !decodeOptional(resp.body, &patient) {
		return nil, nil
	}
	return &patient, nil
}

func (c *Client) UpdatePatient(ctx context.Context, id int64, update model.PatientUpdate) error {
	if len(update) == 0 {
		return apperrors.NewValidation("nothing to update", nil)
	}
	return c.do(ctx, request{
		op:     "update_patient",
		method: http.MethodPut,
		path:   fmt.Sprintf("/api/patients/%d", id),
		body:   update,
	}, nil)
}

func (c *Client) DeletePatient(ctx context.Context, id int64) error {
	return c.do(ctx, request{op: "delete_patient", method: http.MethodDelete, path: fmt.Sprintf("/api/patients/%d", id)}, nil)
}
