package report

import (
	"bytes"
	"testing"
	"time"

	"sectorcheck/apperr"
	"sectorcheck/model"
	"sectorcheck/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	admin    model.User
	leader   model.User
	operator model.User

	logistics model.Sector
	assembly  model.Sector

	logItems []model.ChecklistItem
	asmItems []model.ChecklistItem

	// Submission order: logPending is newest, then asmPending, then logDecided.
	logDecided model.ChecklistInstance
	logPending model.ChecklistInstance
	asmPending model.ChecklistInstance
}

// setup seeds two sectors with responses and one without:
//
//	Logistics: 4 responses, 2 Yes  → 50.00, item L2 answered No twice
//	Assembly:  3 responses, 1 Yes  → 33.33, items A2 and A3 answered No once each
//	Idle:      no responses        → omitted from compliance
func setup(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	f := &fixture{db: db, svc: NewService(db)}

	f.admin = model.User{Username: "adm", Email: "adm@example.com", HashedPassword: "x", Role: model.RoleAdministrator}
	f.leader = model.User{Username: "lea", Email: "lea@example.com", HashedPassword: "x", Role: model.RoleLeader}
	f.operator = model.User{Username: "op", Email: "op@example.com", HashedPassword: "x", Role: model.RoleOperator}
	require.NoError(t, db.Create(&f.admin).Error)
	require.NoError(t, db.Create(&f.leader).Error)
	require.NoError(t, db.Create(&f.operator).Error)

	f.logistics = model.Sector{Name: "Logistics"}
	f.assembly = model.Sector{Name: "Assembly"}
	idle := model.Sector{Name: "Idle"}
	require.NoError(t, db.Create(&f.logistics).Error)
	require.NoError(t, db.Create(&f.assembly).Error)
	require.NoError(t, db.Create(&idle).Error)
	require.NoError(t, db.Create(&model.LeaderSector{UserID: f.leader.UserID, SectorID: f.logistics.SectorID}).Error)

	logTemplate := model.ChecklistTemplate{Title: "Dock check", SectorID: f.logistics.SectorID}
	asmTemplate := model.ChecklistTemplate{Title: "Line check", SectorID: f.assembly.SectorID}
	require.NoError(t, db.Create(&logTemplate).Error)
	require.NoError(t, db.Create(&asmTemplate).Error)

	for _, q := range []string{"Ramps locked?", "Pallets stable?"} {
		item := model.ChecklistItem{Question: q, TemplateID: logTemplate.TemplateID}
		require.NoError(t, db.Create(&item).Error)
		f.logItems = append(f.logItems, item)
	}
	for _, q := range []string{"Torque set?", "Parts labelled?", "Bins emptied?"} {
		item := model.ChecklistItem{Question: q, TemplateID: asmTemplate.TemplateID}
		require.NoError(t, db.Create(&item).Error)
		f.asmItems = append(f.asmItems, item)
	}

	base := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	decidedAt := base.Add(2 * time.Hour)
	f.logDecided = model.ChecklistInstance{
		Status: model.StatusApproved, SubmittedAt: base, DecidedAt: &decidedAt,
		OperatorID: f.operator.UserID, LeaderID: &f.leader.UserID, TemplateID: logTemplate.TemplateID,
	}
	f.asmPending = model.ChecklistInstance{
		Status: model.StatusPending, SubmittedAt: base.Add(24 * time.Hour),
		OperatorID: f.operator.UserID, TemplateID: asmTemplate.TemplateID,
	}
	f.logPending = model.ChecklistInstance{
		Status: model.StatusPending, SubmittedAt: base.Add(48 * time.Hour),
		OperatorID: f.operator.UserID, TemplateID: logTemplate.TemplateID,
	}
	require.NoError(t, db.Create(&f.logDecided).Error)
	require.NoError(t, db.Create(&f.asmPending).Error)
	require.NoError(t, db.Create(&f.logPending).Error)

	respond := func(instanceID, itemID int, answer, comment string) {
		require.NoError(t, db.Create(&model.ChecklistItemResponse{
			Response: answer, Comment: comment, InstanceID: instanceID, ItemID: itemID,
		}).Error)
	}
	respond(f.logDecided.InstanceID, f.logItems[0].ItemID, model.AnswerYes, "")
	respond(f.logDecided.InstanceID, f.logItems[1].ItemID, model.AnswerNo, "pallet leaning")
	respond(f.logPending.InstanceID, f.logItems[0].ItemID, model.AnswerYes, "")
	respond(f.logPending.InstanceID, f.logItems[1].ItemID, model.AnswerNo, "")
	respond(f.asmPending.InstanceID, f.asmItems[0].ItemID, model.AnswerYes, "")
	respond(f.asmPending.InstanceID, f.asmItems[1].ItemID, model.AnswerNo, "")
	respond(f.asmPending.InstanceID, f.asmItems[2].ItemID, model.AnswerNo, "")

	return f
}

func TestComplianceBySector(t *testing.T) {
	f := setup(t)

	rows, err := f.svc.ComplianceBySector()
	require.NoError(t, err)

	// Ordered by sector name; "Idle" has no responses and is omitted.
	require.Len(t, rows, 2)
	assert.Equal(t, "Assembly", rows[0].Sector)
	assert.InDelta(t, 33.33, rows[0].Rate, 0.001)
	assert.Equal(t, "Logistics", rows[1].Sector)
	assert.InDelta(t, 50.00, rows[1].Rate, 0.001)
}

func TestTopNonCompliantItems(t *testing.T) {
	f := setup(t)

	rows, err := f.svc.TopNonCompliantItems(5)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, f.logItems[1].ItemID, rows[0].ItemID)
	assert.Equal(t, 2, rows[0].Count)
	// A2 and A3 tie at one "No" each; lower item id wins.
	assert.Equal(t, f.asmItems[1].ItemID, rows[1].ItemID)
	assert.Equal(t, f.asmItems[2].ItemID, rows[2].ItemID)

	rows, err = f.svc.TopNonCompliantItems(1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pallets stable?", rows[0].Question)
}

func instanceIDs(instances []model.ChecklistInstance) []int {
	ids := make([]int, 0, len(instances))
	for _, instance := range instances {
		ids = append(ids, instance.InstanceID)
	}
	return ids
}

func TestFilteredHistory(t *testing.T) {
	f := setup(t)

	all, err := f.svc.FilteredHistory(&f.admin, HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int{f.logPending.InstanceID, f.asmPending.InstanceID, f.logDecided.InstanceID}, instanceIDs(all))

	pending, err := f.svc.FilteredHistory(&f.admin, HistoryFilter{Status: model.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, []int{f.logPending.InstanceID, f.asmPending.InstanceID}, instanceIDs(pending))

	logistics, err := f.svc.FilteredHistory(&f.admin, HistoryFilter{SectorID: f.logistics.SectorID})
	require.NoError(t, err)
	assert.Equal(t, []int{f.logPending.InstanceID, f.logDecided.InstanceID}, instanceIDs(logistics))

	scoped, err := f.svc.FilteredHistory(&f.leader, HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int{f.logPending.InstanceID, f.logDecided.InstanceID}, instanceIDs(scoped))

	// A leader cannot widen their view by filtering on a foreign sector.
	foreign, err := f.svc.FilteredHistory(&f.leader, HistoryFilter{SectorID: f.assembly.SectorID})
	require.NoError(t, err)
	assert.Empty(t, foreign)

	idle := model.User{Username: "idle", Email: "idle@example.com", HashedPassword: "x", Role: model.RoleLeader}
	require.NoError(t, f.db.Create(&idle).Error)
	none, err := f.svc.FilteredHistory(&idle, HistoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.FilteredHistory(&f.operator, HistoryFilter{})
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
}

// The export must contain exactly the instances the listing shows, in the
// same order, one row per response.
func TestExportRowsMatchFilteredHistory(t *testing.T) {
	f := setup(t)

	for _, filter := range []HistoryFilter{
		{},
		{Status: model.StatusPending},
		{SectorID: f.logistics.SectorID},
	} {
		listed, err := f.svc.FilteredHistory(&f.leader, filter)
		require.NoError(t, err)
		rows, err := f.svc.ExportRows(&f.leader, filter)
		require.NoError(t, err)

		var exported []int
		for _, row := range rows {
			if len(exported) == 0 || exported[len(exported)-1] != row.InstanceID {
				exported = append(exported, row.InstanceID)
			}
		}
		assert.Equal(t, instanceIDs(listed), exported)
	}
}

func TestExportRowContents(t *testing.T) {
	f := setup(t)

	rows, err := f.svc.ExportRows(&f.admin, HistoryFilter{Status: model.StatusApproved})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, f.logDecided.InstanceID, row.InstanceID)
	assert.Equal(t, model.StatusApproved, row.Status)
	assert.Equal(t, "op", row.Operator)
	assert.Equal(t, "lea", row.Leader)
	assert.Equal(t, "Logistics", row.Sector)
	assert.Equal(t, "Dock check", row.TemplateTitle)
	assert.Equal(t, "Pallets stable?", row.Question)
	assert.Equal(t, model.AnswerNo, row.Answer)
	assert.Equal(t, "pallet leaning", row.Comment)
	assert.Equal(t, "2026-08-20 08:00:00", row.SubmittedAt)
	assert.Equal(t, "2026-08-20 10:00:00", row.DecidedAt)
}

func TestRenderExcel(t *testing.T) {
	f := setup(t)

	rows, err := f.svc.ExportRows(&f.admin, HistoryFilter{})
	require.NoError(t, err)
	data, err := RenderExcel(rows)
	require.NoError(t, err)

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer workbook.Close()

	cells, err := workbook.GetRows("Checklist Report")
	require.NoError(t, err)
	require.Len(t, cells, len(rows)+1)
	assert.Equal(t, ExportHeader, cells[0])
	assert.Equal(t, rows[0].Question, cells[1][9])
}

func TestInstanceReport(t *testing.T) {
	f := setup(t)

	report, err := f.svc.InstanceReport(&f.leader, f.logDecided.InstanceID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, report.Status)
	assert.Equal(t, "Dock check", report.TemplateTitle)
	assert.Equal(t, "lea", report.Leader)
	require.Len(t, report.Items, 2)
	assert.Equal(t, "Ramps locked?", report.Items[0].Question)

	_, err = f.svc.InstanceReport(&f.leader, f.asmPending.InstanceID)
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	_, err = f.svc.InstanceReport(&f.admin, 9999)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestRenderInstancePDF(t *testing.T) {
	f := setup(t)

	report, err := f.svc.InstanceReport(&f.admin, f.logDecided.InstanceID)
	require.NoError(t, err)
	data, err := RenderInstancePDF(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
