package service

import (
	"context"
	"testing"

	"cleanhive/internal/database"
	"cleanhive/internal/models"
	"cleanhive/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateLeadNormalizesAndQueuesWelcome(t *testing.T) {
	repo := new(mockRepo)
	outbox := new(mockOutbox)

	repo.On("CreateLead", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Lead).ID = 3
		}).Return(nil)
	outbox.On("EnqueueTask", mock.Anything, worker.TaskEmailSend, int64(3), mock.Anything).Return(nil)

	svc := NewLeadService(repo, nil, outbox, testLogger())

	lead := &models.Lead{Name: " Sam Lee ", Email: " Sam@Example.COM "}
	require.NoError(t, svc.CreateLead(context.Background(), lead))

	assert.Equal(t, "sam@example.com", lead.Email)
	assert.Equal(t, "Sam Lee", lead.Name)
	assert.Equal(t, "residential", lead.Kind)
	outbox.AssertExpectations(t)
}

func TestCreateLeadKeepsExplicitKind(t *testing.T) {
	repo := new(mockRepo)
	repo.On("CreateLead", mock.Anything, mock.Anything).Return(nil)

	svc := NewLeadService(repo, nil, nil, testLogger())

	lead := &models.Lead{Name: "Biz", Email: "biz@example.com", Kind: "commercial"}
	require.NoError(t, svc.CreateLead(context.Background(), lead))
	assert.Equal(t, "commercial", lead.Kind)
}

func TestAdvanceStageRejectsIllegalJump(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetLead", mock.Anything, int64(3)).Return(&models.Lead{
		ID: 3, Stage: models.StageNew, Version: 1,
	}, nil)

	svc := NewLeadService(repo, nil, nil, testLogger())

	err := svc.AdvanceStage(context.Background(), 3, 1, models.StageConverted, 99)
	var invalid *models.ErrInvalidTransition
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "lead", invalid.Entity)
	repo.AssertNotCalled(t, "UpdateLeadStageWithVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdvanceStagePropagatesVersionConflict(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetLead", mock.Anything, int64(3)).Return(&models.Lead{
		ID: 3, Stage: models.StageNew, Version: 2,
	}, nil)
	repo.On("UpdateLeadStageWithVersion", mock.Anything, int64(3), int64(1), models.StageContacted).
		Return(database.ErrConcurrentModification)

	svc := NewLeadService(repo, nil, nil, testLogger())

	err := svc.AdvanceStage(context.Background(), 3, 1, models.StageContacted, 99)
	assert.ErrorIs(t, err, database.ErrConcurrentModification)
}

func TestAdvanceStagePublishesAndAudits(t *testing.T) {
	repo := new(mockRepo)
	bus := new(mockBus)
	outbox := new(mockOutbox)

	repo.On("GetLead", mock.Anything, int64(3)).Return(&models.Lead{
		ID: 3, Stage: models.StageContacted, Version: 2,
	}, nil)
	repo.On("UpdateLeadStageWithVersion", mock.Anything, int64(3), int64(2), models.StageQualified).Return(nil)
	bus.On("PublishJSON", "lead_stage_changed", mock.Anything).Return(nil)
	outbox.On("EnqueueTask", mock.Anything, worker.TaskAuditWrite, int64(3), mock.Anything).Return(nil)

	svc := NewLeadService(repo, bus, outbox, testLogger())

	require.NoError(t, svc.AdvanceStage(context.Background(), 3, 2, models.StageQualified, 99))
	bus.AssertExpectations(t)
	outbox.AssertExpectations(t)
}

func TestLostLeadCanBeRecontacted(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetLead", mock.Anything, int64(3)).Return(&models.Lead{
		ID: 3, Stage: models.StageLost, Version: 4,
	}, nil)
	repo.On("UpdateLeadStageWithVersion", mock.Anything, int64(3), int64(4), models.StageContacted).Return(nil)

	svc := NewLeadService(repo, nil, nil, testLogger())

	assert.NoError(t, svc.AdvanceStage(context.Background(), 3, 4, models.StageContacted, 99))
}

func TestUpdateNotes(t *testing.T) {
	repo := new(mockRepo)
	repo.On("UpdateLeadNotes", mock.Anything, int64(3), "called twice").Return(nil)

	svc := NewLeadService(repo, nil, nil, testLogger())

	assert.NoError(t, svc.UpdateNotes(context.Background(), 3, "called twice"))
	repo.AssertExpectations(t)
}

func TestAdvanceStageConvertedCreatesCustomer(t *testing.T) {
	repo := new(mockRepo)

	repo.On("GetLead", mock.Anything, int64(3)).Return(&models.Lead{
		ID: 3, Stage: models.StageQualified, Version: 4,
		Name: "Sam Lee", Email: "sam@example.com", Phone: "+15550001",
	}, nil)
	repo.On("UpdateLeadStageWithVersion", mock.Anything, int64(3), int64(4), models.StageConverted).Return(nil)
	repo.On("EnsureCustomer", mock.Anything, "sam@example.com", "Sam Lee", "+15550001").Return(&models.User{
		ID: 21, Role: models.RoleCustomer, Status: models.UserActive,
	}, nil)

	svc := NewLeadService(repo, nil, nil, testLogger())

	require.NoError(t, svc.AdvanceStage(context.Background(), 3, 4, models.StageConverted, 99))
	repo.AssertExpectations(t)
}

func TestAdvanceStageOtherStagesSkipCustomer(t *testing.T) {
	repo := new(mockRepo)

	repo.On("GetLead", mock.Anything, int64(3)).Return(&models.Lead{
		ID: 3, Stage: models.StageNew, Version: 1, Email: "sam@example.com",
	}, nil)
	repo.On("UpdateLeadStageWithVersion", mock.Anything, int64(3), int64(1), models.StageContacted).Return(nil)

	svc := NewLeadService(repo, nil, nil, testLogger())

	require.NoError(t, svc.AdvanceStage(context.Background(), 3, 1, models.StageContacted, 99))
	repo.AssertNotCalled(t, "EnsureCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
