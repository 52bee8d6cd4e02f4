package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForVerdict(t *testing.T) {
	status, ok := StatusForVerdict(VerdictApprove)
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, status)

	status, ok = StatusForVerdict(VerdictReject)
	assert.True(t, ok)
	assert.Equal(t, StatusRejected, status)

	// Verdicts are not statuses; passing one through unmapped is a bug.
	_, ok = StatusForVerdict(StatusApproved)
	assert.False(t, ok)
	_, ok = StatusForVerdict("")
	assert.False(t, ok)
}

func TestValidAnswer(t *testing.T) {
	for _, answer := range []string{AnswerYes, AnswerNo, AnswerPartial, AnswerNotApplicable} {
		assert.True(t, ValidAnswer(answer))
	}
	assert.False(t, ValidAnswer("yes"))
	assert.False(t, ValidAnswer("Maybe"))
	assert.False(t, ValidAnswer(""))
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdministrator, RoleLeader, RoleOperator} {
		assert.True(t, ValidRole(role))
	}
	assert.False(t, ValidRole("administrator"))
	assert.False(t, ValidRole(""))
}
