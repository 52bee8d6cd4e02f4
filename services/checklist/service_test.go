package checklist

import (
	"fmt"
	"testing"
	"time"

	"sectorcheck/apperr"
	"sectorcheck/model"
	"sectorcheck/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memStore struct {
	stored int
}

func (m *memStore) Store(data []byte, suggestedName string) (string, error) {
	m.stored++
	return fmt.Sprintf("blob-%d-%s", m.stored, suggestedName), nil
}

type fakeNotifier struct {
	calls   int
	leaders int
	err     error
}

func (f *fakeNotifier) Submitted(instance *model.ChecklistInstance, template *model.ChecklistTemplate, operator *model.User) (int, error) {
	f.calls++
	return f.leaders, f.err
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	notifier *fakeNotifier
	operator model.User
	leader   model.User
	admin    model.User
	sector   model.Sector
	template model.ChecklistTemplate
	items    []model.ChecklistItem
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)

	f := &fixture{db: db, notifier: &fakeNotifier{leaders: 2}}
	f.svc = NewService(db, &memStore{}, &memStore{}, f.notifier, zap.NewNop())
	f.svc.now = func() time.Time { return time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC) }

	f.operator = model.User{Username: "op", Email: "op@example.com", HashedPassword: "x", Role: model.RoleOperator}
	f.leader = model.User{Username: "lea", Email: "lea@example.com", HashedPassword: "x", Role: model.RoleLeader}
	f.admin = model.User{Username: "adm", Email: "adm@example.com", HashedPassword: "x", Role: model.RoleAdministrator}
	require.NoError(t, db.Create(&f.operator).Error)
	require.NoError(t, db.Create(&f.leader).Error)
	require.NoError(t, db.Create(&f.admin).Error)

	f.sector = model.Sector{Name: "Assembly"}
	require.NoError(t, db.Create(&f.sector).Error)
	require.NoError(t, db.Create(&model.LeaderSector{UserID: f.leader.UserID, SectorID: f.sector.SectorID}).Error)

	f.template = model.ChecklistTemplate{Title: "Morning walkround", SectorID: f.sector.SectorID}
	require.NoError(t, db.Create(&f.template).Error)
	for _, q := range []string{"Machine guards in place?", "Floor free of spills?"} {
		item := model.ChecklistItem{Question: q, TemplateID: f.template.TemplateID}
		require.NoError(t, db.Create(&item).Error)
		f.items = append(f.items, item)
	}
	return f
}

func (f *fixture) answers() []Answer {
	return []Answer{
		{ItemID: f.items[0].ItemID, Response: model.AnswerYes},
		{ItemID: f.items[1].ItemID, Response: model.AnswerNo, Comment: "oil near press 3"},
	}
}

func (f *fixture) submit(t *testing.T) *Result {
	t.Helper()
	result, err := f.svc.CreateInstance(&f.operator, f.template.TemplateID, f.answers(), []byte("sig"))
	require.NoError(t, err)
	return result
}

func TestCreateInstancePersistsPendingWithResponses(t *testing.T) {
	f := setup(t)

	result := f.submit(t)
	assert.Equal(t, 2, result.LeadersNotified)
	assert.Equal(t, 1, f.notifier.calls)

	var instance model.ChecklistInstance
	require.NoError(t, f.db.First(&instance, "instance_id = ?", result.InstanceID).Error)
	assert.Equal(t, model.StatusPending, instance.Status)
	assert.Nil(t, instance.DecidedAt)
	assert.Nil(t, instance.LeaderID)
	assert.Equal(t, f.operator.UserID, instance.OperatorID)
	assert.NotEmpty(t, instance.OperatorSignature)

	var responses []model.ChecklistItemResponse
	require.NoError(t, f.db.Where("instance_id = ?", result.InstanceID).Order("item_id").Find(&responses).Error)
	require.Len(t, responses, 2)
	assert.Equal(t, model.AnswerYes, responses[0].Response)
	assert.Equal(t, "oil near press 3", responses[1].Comment)
}

func TestCreateInstanceReportsWhenNoLeadersWereNotified(t *testing.T) {
	f := setup(t)
	f.notifier.leaders = 0

	result := f.submit(t)
	assert.Zero(t, result.LeadersNotified)
}

func TestCreateInstanceSurvivesNotifierFailure(t *testing.T) {
	f := setup(t)
	f.notifier.err = fmt.Errorf("smtp down")

	result, err := f.svc.CreateInstance(&f.operator, f.template.TemplateID, f.answers(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.LeadersNotified)

	var count int64
	require.NoError(t, f.db.Model(&model.ChecklistInstance{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateInstanceRejectsIncompleteSubmissions(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name    string
		answers []Answer
	}{
		{"missing item", []Answer{{ItemID: f.items[0].ItemID, Response: model.AnswerYes}}},
		{"invalid answer value", []Answer{
			{ItemID: f.items[0].ItemID, Response: "Maybe"},
			{ItemID: f.items[1].ItemID, Response: model.AnswerYes},
		}},
		{"duplicate item", []Answer{
			{ItemID: f.items[0].ItemID, Response: model.AnswerYes},
			{ItemID: f.items[0].ItemID, Response: model.AnswerNo},
			{ItemID: f.items[1].ItemID, Response: model.AnswerYes},
		}},
		{"foreign item", []Answer{
			{ItemID: f.items[0].ItemID, Response: model.AnswerYes},
			{ItemID: f.items[1].ItemID, Response: model.AnswerYes},
			{ItemID: 9999, Response: model.AnswerYes},
		}},
		{"empty submission", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateInstance(&f.operator, f.template.TemplateID, tt.answers, nil)
			assert.Equal(t, apperr.CodeInvalidState, apperr.CodeOf(err))
		})
	}

	// Nothing may have been persisted by any rejected attempt.
	var instances, responses int64
	require.NoError(t, f.db.Model(&model.ChecklistInstance{}).Count(&instances).Error)
	require.NoError(t, f.db.Model(&model.ChecklistItemResponse{}).Count(&responses).Error)
	assert.Zero(t, instances)
	assert.Zero(t, responses)
	assert.Zero(t, f.notifier.calls)
}

func TestCreateInstanceUnknownTemplate(t *testing.T) {
	f := setup(t)
	_, err := f.svc.CreateInstance(&f.operator, 9999, f.answers(), nil)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestCreateInstanceEmptyTemplate(t *testing.T) {
	f := setup(t)
	empty := model.ChecklistTemplate{Title: "No items yet", SectorID: f.sector.SectorID}
	require.NoError(t, f.db.Create(&empty).Error)

	_, err := f.svc.CreateInstance(&f.operator, empty.TemplateID, nil, nil)
	assert.Equal(t, apperr.CodeInvalidState, apperr.CodeOf(err))
}

func TestDecideApprove(t *testing.T) {
	f := setup(t)
	result := f.submit(t)

	require.NoError(t, f.svc.Decide(&f.leader, result.InstanceID, model.VerdictApprove, []byte("sig")))

	var instance model.ChecklistInstance
	require.NoError(t, f.db.First(&instance, "instance_id = ?", result.InstanceID).Error)
	assert.Equal(t, model.StatusApproved, instance.Status)
	require.NotNil(t, instance.DecidedAt)
	require.NotNil(t, instance.LeaderID)
	assert.Equal(t, f.leader.UserID, *instance.LeaderID)
	assert.NotEmpty(t, instance.LeaderSignature)
}

func TestDecideReject(t *testing.T) {
	f := setup(t)
	result := f.submit(t)

	require.NoError(t, f.svc.Decide(&f.admin, result.InstanceID, model.VerdictReject, nil))

	var instance model.ChecklistInstance
	require.NoError(t, f.db.First(&instance, "instance_id = ?", result.InstanceID).Error)
	assert.Equal(t, model.StatusRejected, instance.Status)
}

func TestDecideForbiddenForUnassignedLeader(t *testing.T) {
	f := setup(t)
	result := f.submit(t)

	outsider := model.User{Username: "out", Email: "out@example.com", HashedPassword: "x", Role: model.RoleLeader}
	require.NoError(t, f.db.Create(&outsider).Error)

	err := f.svc.Decide(&outsider, result.InstanceID, model.VerdictApprove, nil)
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	err = f.svc.Decide(&f.operator, result.InstanceID, model.VerdictApprove, nil)
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	var instance model.ChecklistInstance
	require.NoError(t, f.db.First(&instance, "instance_id = ?", result.InstanceID).Error)
	assert.Equal(t, model.StatusPending, instance.Status)
}

func TestDecideIsTerminal(t *testing.T) {
	f := setup(t)
	result := f.submit(t)

	require.NoError(t, f.svc.Decide(&f.leader, result.InstanceID, model.VerdictApprove, nil))

	err := f.svc.Decide(&f.admin, result.InstanceID, model.VerdictReject, nil)
	assert.Equal(t, apperr.CodeInvalidState, apperr.CodeOf(err))

	// The first decision must be untouched by the losing attempt.
	var instance model.ChecklistInstance
	require.NoError(t, f.db.First(&instance, "instance_id = ?", result.InstanceID).Error)
	assert.Equal(t, model.StatusApproved, instance.Status)
	require.NotNil(t, instance.LeaderID)
	assert.Equal(t, f.leader.UserID, *instance.LeaderID)
}

func TestDecideValidation(t *testing.T) {
	f := setup(t)
	result := f.submit(t)

	err := f.svc.Decide(&f.leader, result.InstanceID, "Maybe", nil)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	err = f.svc.Decide(&f.leader, 9999, model.VerdictApprove, nil)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestPendingForReviewScoping(t *testing.T) {
	f := setup(t)
	mine := f.submit(t)

	// A second sector this leader does not manage.
	other := model.Sector{Name: "Logistics"}
	require.NoError(t, f.db.Create(&other).Error)
	otherTemplate := model.ChecklistTemplate{Title: "Dock check", SectorID: other.SectorID}
	require.NoError(t, f.db.Create(&otherTemplate).Error)
	foreign := model.ChecklistInstance{
		Status: model.StatusPending, SubmittedAt: time.Now(),
		OperatorID: f.operator.UserID, TemplateID: otherTemplate.TemplateID,
	}
	require.NoError(t, f.db.Create(&foreign).Error)

	fromLeader, err := f.svc.PendingForReview(&f.leader)
	require.NoError(t, err)
	require.Len(t, fromLeader, 1)
	assert.Equal(t, mine.InstanceID, fromLeader[0].InstanceID)

	fromAdmin, err := f.svc.PendingForReview(&f.admin)
	require.NoError(t, err)
	assert.Len(t, fromAdmin, 2)

	idle := model.User{Username: "idle", Email: "idle@example.com", HashedPassword: "x", Role: model.RoleLeader}
	require.NoError(t, f.db.Create(&idle).Error)
	fromIdle, err := f.svc.PendingForReview(&idle)
	require.NoError(t, err)
	assert.Empty(t, fromIdle)

	_, err = f.svc.PendingForReview(&f.operator)
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
}

func TestPendingForReviewExcludesDecided(t *testing.T) {
	f := setup(t)
	result := f.submit(t)
	require.NoError(t, f.svc.Decide(&f.leader, result.InstanceID, model.VerdictApprove, nil))

	pending, err := f.svc.PendingForReview(&f.leader)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestGet(t *testing.T) {
	f := setup(t)
	result := f.submit(t)

	instance, responses, err := f.svc.Get(&f.leader, result.InstanceID)
	require.NoError(t, err)
	assert.Equal(t, result.InstanceID, instance.InstanceID)
	assert.Equal(t, "Morning walkround", instance.Template.Title)
	require.Len(t, responses, 2)
	assert.Equal(t, "Machine guards in place?", responses[0].Item.Question)

	outsider := model.User{Username: "out", Email: "out@example.com", HashedPassword: "x", Role: model.RoleLeader}
	require.NoError(t, f.db.Create(&outsider).Error)
	_, _, err = f.svc.Get(&outsider, result.InstanceID)
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	_, _, err = f.svc.Get(&f.leader, 9999)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
