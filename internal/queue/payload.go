package queue

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DecodePayload unmarshals and validates a job's payload into its typed
// form. The payloads form a tagged union keyed by queue name; validation
// failures surface as a permanent PayloadError so malformed jobs fail fast
// instead of propagating empty fields.
func DecodePayload[T any](job *Job) (T, error) {
	var payload T
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return payload, Permanent(&PayloadError{
			Queue:   job.Queue,
			Message: "payload is not valid JSON",
			Cause:   err,
		})
	}
	if err := validate.Struct(payload); err != nil {
		return payload, Permanent(&PayloadError{
			Queue:   job.Queue,
			Message: "payload failed validation",
			Cause:   err,
		})
	}
	return payload, nil
}
