package service

import (
	"context"
	"strings"

	"cleanhive/internal/domain"
	"cleanhive/internal/email"
	"cleanhive/internal/events"
	"cleanhive/internal/models"
	"cleanhive/internal/worker"

	"github.com/rs/zerolog"
)

type LeadService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	outbox   domain.OutboxEnqueuer
	logger   *zerolog.Logger
}

func NewLeadService(repo domain.Repository, eventBus domain.EventPublisher, outbox domain.OutboxEnqueuer, logger *zerolog.Logger) *LeadService {
	return &LeadService{
		repo:     repo,
		eventBus: eventBus,
		outbox:   outbox,
		logger:   logger,
	}
}

// CreateLead registers an inbound inquiry and queues the welcome email.
func (s *LeadService) CreateLead(ctx context.Context, lead *models.Lead) error {
	lead.Email = strings.ToLower(strings.TrimSpace(lead.Email))
	lead.Name = strings.TrimSpace(lead.Name)
	if lead.Kind == "" {
		lead.Kind = "residential"
	}

	if err := s.repo.CreateLead(ctx, lead); err != nil {
		return err
	}

	if s.outbox != nil {
		html, err := email.BuildLeadWelcomeHTML(lead)
		if err == nil {
			err = s.outbox.EnqueueTask(ctx, worker.TaskEmailSend, lead.ID, map[string]interface{}{
				"to":      lead.Email,
				"subject": "Thanks for your inquiry",
				"html":    html,
			})
		}
		if err != nil {
			s.logger.Error().Err(err).Int64("lead_id", lead.ID).Msg("lead welcome email enqueue error")
		}
	}

	return nil
}

func (s *LeadService) GetLead(ctx context.Context, id int64) (*models.Lead, error) {
	return s.repo.GetLead(ctx, id)
}

func (s *LeadService) ListLeads(ctx context.Context, stage string) ([]*models.Lead, error) {
	return s.repo.ListLeads(ctx, stage)
}

// AdvanceStage moves the lead through the pipeline, rejecting illegal jumps.
func (s *LeadService) AdvanceStage(ctx context.Context, id, version int64, stage string, actorID int64) error {
	lead, err := s.repo.GetLead(ctx, id)
	if err != nil {
		return err
	}

	if err := models.CheckLeadTransition(lead.Stage, stage); err != nil {
		return err
	}

	if err := s.repo.UpdateLeadStageWithVersion(ctx, id, version, stage); err != nil {
		return err
	}

	// Converted leads get a customer profile right away, so their first
	// booking does not depend on self-registration.
	if stage == models.StageConverted {
		customer, err := s.repo.EnsureCustomer(ctx, lead.Email, lead.Name, lead.Phone)
		if err != nil {
			s.logger.Error().Err(err).Int64("lead_id", id).Msg("ensure customer error")
		} else {
			s.logger.Info().Int64("lead_id", id).Int64("customer_id", customer.ID).Msg("lead converted to customer")
		}
	}

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventLeadStageChanged, events.LeadEventPayload{
			LeadID:    id,
			Stage:     stage,
			PrevStage: lead.Stage,
		})
	}

	if s.outbox != nil {
		entry := models.AuditEntry{
			ActorID:  actorID,
			Action:   "lead_stage_" + stage,
			Entity:   "lead",
			EntityID: id,
		}
		if err := s.outbox.EnqueueTask(ctx, worker.TaskAuditWrite, id, entry); err != nil {
			s.logger.Error().Err(err).Int64("lead_id", id).Msg("audit enqueue error")
		}
	}

	return nil
}

func (s *LeadService) UpdateNotes(ctx context.Context, id int64, notes string) error {
	return s.repo.UpdateLeadNotes(ctx, id, notes)
}
