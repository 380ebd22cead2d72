package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	obsmetrics "github.com/sunterra/sunplan/internal/observability/metrics"
	plandomain "github.com/sunterra/sunplan/internal/plan/domain"
	"github.com/sunterra/sunplan/internal/providers/email"
	"github.com/sunterra/sunplan/internal/providers/pdf"
	"github.com/sunterra/sunplan/internal/submission/domain"
	"github.com/sunterra/sunplan/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Service struct {
	log     *zap.Logger
	plans   plandomain.Service
	repo    repository.Repository[domain.Lead]
	genID   *snowflake.Node
	email   email.Provider
	pdf     pdf.Provider
	metrics *obsmetrics.Metrics
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Plans   plandomain.Service
	Repo    repository.Repository[domain.Lead]
	GenID   *snowflake.Node
	Email   email.Provider
	PDF     pdf.Provider
	Metrics *obsmetrics.Metrics
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:     p.Log.Named("submission.service"),
		plans:   p.Plans,
		repo:    p.Repo,
		genID:   p.GenID,
		email:   p.Email,
		pdf:     p.PDF,
		metrics: p.Metrics,
	}
}

// Submit freezes the session's current snapshot into a lead and queues the
// proposal email. The submission succeeds once the lead is stored; email
// delivery happens in the background and never fails the request.
func (s *Service) Submit(ctx context.Context, sessionID string, req domain.Request) (*domain.Lead, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.FirstName == "" {
		s.metrics.RecordSubmission(ctx, "rejected")
		return nil, domain.ErrMissingContact
	}
	if !emailPattern.MatchString(req.Email) {
		s.metrics.RecordSubmission(ctx, "rejected")
		return nil, domain.ErrInvalidEmail
	}

	snapshot, err := s.plans.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	var answers []byte
	if len(snapshot.Inputs.Answers) > 0 {
		if answers, err = json.Marshal(snapshot.Inputs.Answers); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	lead := &domain.Lead{
		ID:        s.genID.Generate(),
		SessionID: sessionID,
		BrandSlug: snapshot.BrandSlug,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   snapshot.Inputs.Location.Address,
		Eircode:   snapshot.Inputs.Location.Eircode,
		Snapshot:  payload,
		Answers:   answers,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}
	s.metrics.RecordSubmission(ctx, "accepted")
	s.log.Info("quote submitted",
		zap.String("session_id", sessionID),
		zap.String("brand", snapshot.BrandSlug),
		zap.Float64("net_total", snapshot.Costs.NetTotal))

	go s.sendProposal(context.WithoutCancel(ctx), lead, snapshot)

	return lead, nil
}

func (s *Service) sendProposal(ctx context.Context, lead *domain.Lead, snapshot *plandomain.Snapshot) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var attachments []email.Attachment
	doc, err := s.pdf.GenerateProposal(ctx, snapshot)
	if err != nil {
		s.log.Warn("proposal render failed", zap.String("session_id", lead.SessionID), zap.Error(err))
	} else if doc != nil {
		data, err := io.ReadAll(doc)
		if err == nil {
			attachments = append(attachments, email.Attachment{
				Filename:    "solar-proposal.pdf",
				ContentType: "application/pdf",
				Data:        data,
			})
		}
	}

	subject := fmt.Sprintf("Your solar quote from %s", snapshot.BrandSlug)
	body := proposalBody(lead, snapshot)
	if err := s.email.Send(ctx, []string{lead.Email}, subject, body, attachments...); err != nil {
		s.metrics.RecordSubmission(ctx, "email_failed")
		s.log.Warn("proposal email failed", zap.String("session_id", lead.SessionID), zap.Error(err))
		return
	}

	s.metrics.RecordSubmission(ctx, "email_sent")
	sent := time.Now().UTC()
	lead.ProposalSentAt = &sent
	lead.UpdatedAt = sent
	if err := s.repo.Save(ctx, lead); err != nil {
		s.log.Warn("lead update failed", zap.String("session_id", lead.SessionID), zap.Error(err))
	}
}

func proposalBody(lead *domain.Lead, snapshot *plandomain.Snapshot) string {
	return fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Thanks for building your solar quote. Your %d panel system (%.2f kWp) comes to
<strong>EUR %.2f</strong> after grants, with estimated savings of EUR %.2f per year
and a payback period of %s years.</p>
<p>Your full proposal is attached. One of our team will be in touch to arrange a site survey.</p>`,
		lead.FirstName,
		snapshot.Specs.PanelCount,
		snapshot.Specs.SystemSizeKwp,
		snapshot.Costs.NetTotal,
		snapshot.Savings.TotalAnnual,
		snapshot.Savings.PaybackYears,
	)
}
