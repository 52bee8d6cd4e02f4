package dto

type DecideRequest struct {
	Verdict string `json:"verdict" binding:"required,oneof=Approve Reject"`
	// Signature is a data-URL encoded PNG, same contract as the fill form.
	Signature string `json:"signature"`
}
