package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"travelease/internal/common/errors"
)

const maxBodyBytes = 1 << 20

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}

type errorBody struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	stdErr, ok := errors.AsStandard(err)
	if !ok {
		rt.logger.Error("Unhandled error", map[string]interface{}{"error": err.Error()})
		stdErr = &errors.StandardError{Code: errors.ErrCodeInternal, Message: "Internal error"}
	}

	detail := errorDetail{Code: string(stdErr.Code), Message: stdErr.Message, Details: stdErr.Details}
	if field, ok := stdErr.Metadata["field"].(string); ok {
		detail.Field = field
	}
	writeJSON(w, errors.HTTPStatus(stdErr.Code), errorBody{Success: false, Error: detail})
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched
// when optional is set.
func decodeBody(r *http.Request, dst interface{}, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if optional && stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.NewInvalidInputError("body", err.Error())
	}
	return nil
}
