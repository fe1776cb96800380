package mapper

import (
	"encoding/json"
	"time"

	"comms-metrics-backend/internal/model"
)

const (
	DefaultErrorMessage = "No error message"
	DefaultOrigin       = "Unknown"
)

// MapFailureRows flattens backend rows into failure detail rows. It does not
// modify rows and returns the first malformed row as an error.
func MapFailureRows(rows []model.Row) ([]model.FailureDetailRow, error) {
	out := make([]model.FailureDetailRow, 0, len(rows))
	for i, row := range rows {
		detail, err := mapFailureRow(i, row)
		if err != nil {
			return nil, err
		}
		out = append(out, detail)
	}
	return out, nil
}

func mapFailureRow(i int, row model.Row) (model.FailureDetailRow, error) {
	var (
		d   model.FailureDetailRow
		err error
	)
	epoch, err := requiredInt(row, i, "timestamp")
	if err != nil {
		return d, err
	}
	d.Timestamp = time.Unix(epoch, 0).UTC()

	if d.TenantID, err = requiredString(row, i, "tenantId"); err != nil {
		return d, err
	}
	if d.DealerID, err = requiredString(row, i, "dealerId"); err != nil {
		return d, err
	}
	if d.EventSubType, err = optionalString(row, i, "eventSubType", ""); err != nil {
		return d, err
	}
	if d.EventMessage, err = optionalString(row, i, "eventMessage", ""); err != nil {
		return d, err
	}
	if d.ErrorMessage, err = optionalString(row, i, "errorMessage", DefaultErrorMessage); err != nil {
		return d, err
	}
	if d.Origin, err = optionalString(row, i, "origin", DefaultOrigin); err != nil {
		return d, err
	}
	if d.Metadata, err = rawMetadata(row, i); err != nil {
		return d, err
	}
	return d, nil
}

// rawMetadata keeps metadata as delivered: JSON text stays as-is when valid,
// anything else is re-encoded.
func rawMetadata(row model.Row, i int) (json.RawMessage, error) {
	v, ok := lookup(row, "metadata")
	if !ok || v == nil {
		return nil, nil
	}
	if s, isString := v.(string); isString {
		if s == "" {
			return nil, nil
		}
		if json.Valid([]byte(s)) {
			return json.RawMessage(s), nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, malformed(i, "metadata", "%v", err)
	}
	return b, nil
}
