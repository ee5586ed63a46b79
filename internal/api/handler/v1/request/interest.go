package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

const ActionRemove = "remove"

// InterestRequest is accepted as JSON or as a form post. Action "remove"
// withdraws the interest instead of recording Status.
type InterestRequest struct {
	EventID string `json:"eventId" form:"eventId"`
	Status  string `json:"status" form:"status"`
	Action  string `json:"action" form:"action"`
}

func (req *InterestRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.Action, validation.In(ActionRemove)),
	)
}
