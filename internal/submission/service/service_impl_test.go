package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	plandomain "github.com/sunterra/sunplan/internal/plan/domain"
	"github.com/sunterra/sunplan/internal/providers/email"
	"github.com/sunterra/sunplan/internal/providers/pdf"
	"github.com/sunterra/sunplan/internal/submission/domain"
	"github.com/sunterra/sunplan/pkg/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type staticPlans struct {
	snapshot *plandomain.Snapshot
}

func (s *staticPlans) Recompute(ctx context.Context, sessionID string, in plandomain.Inputs) (*plandomain.Snapshot, error) {
	return s.snapshot, nil
}

func (s *staticPlans) Get(ctx context.Context, sessionID string) (*plandomain.Snapshot, error) {
	return s.snapshot, nil
}

type recordingEmail struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingEmail) Send(ctx context.Context, to []string, subject, htmlBody string, attachments ...email.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, to...)
	return nil
}

func (r *recordingEmail) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func testSnapshot() *plandomain.Snapshot {
	return &plandomain.Snapshot{
		SessionID: "sess-1",
		BrandSlug: "sunterra",
		Inputs: plandomain.Inputs{
			PanelCount: 12,
			Location:   plandomain.Location{Address: "1 Main Street, Cork", Eircode: "T12AB34"},
			Answers:    map[string]string{"roof_type": "slate"},
		},
		Specs:   plandomain.SystemSpecs{PanelCount: 12, SystemSizeKwp: 5.4},
		Costs:   plandomain.CostBreakdown{NetTotal: 6000},
		Savings: plandomain.SavingsSummary{TotalAnnual: 1205.4, PaybackYears: "5.0"},
	}
}

func newTestService(t *testing.T) (domain.Service, repository.Repository[domain.Lead], *recordingEmail) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Lead{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := repository.ProvideStore[domain.Lead](gdb)
	outbox := &recordingEmail{}

	svc := NewService(ServiceParam{
		Log:   zap.NewNop(),
		Plans: &staticPlans{snapshot: testSnapshot()},
		Repo:  repo,
		GenID: node,
		Email: outbox,
		PDF:   &pdf.NoOpProvider{},
	})
	return svc, repo, outbox
}

func TestSubmit_PersistsLeadAndSendsProposal(t *testing.T) {
	svc, repo, outbox := newTestService(t)

	lead, err := svc.Submit(context.Background(), "sess-1", domain.Request{
		FirstName: "Aoife",
		LastName:  "Byrne",
		Email:     "aoife@example.com",
		Phone:     "0851234567",
	})
	require.NoError(t, err)

	assert.Equal(t, "sunterra", lead.BrandSlug)
	assert.Equal(t, "1 Main Street, Cork", lead.Address)
	assert.NotEmpty(t, lead.Snapshot)

	stored, err := repo.FindOne(context.Background(), &domain.Lead{SessionID: "sess-1"})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "aoife@example.com", stored.Email)
	assert.JSONEq(t, `{"roof_type":"slate"}`, string(stored.Answers))

	assert.Eventually(t, func() bool { return outbox.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		updated, err := repo.FindOne(context.Background(), &domain.Lead{SessionID: "sess-1"})
		return err == nil && updated != nil && updated.ProposalSentAt != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubmit_RejectsMissingName(t *testing.T) {
	svc, _, outbox := newTestService(t)

	_, err := svc.Submit(context.Background(), "sess-1", domain.Request{
		Email: "aoife@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrMissingContact)
	assert.Zero(t, outbox.count())
}

func TestSubmit_RejectsBadEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, bad := range []string{"", "not-an-email", "a@b", "a b@example.com"} {
		_, err := svc.Submit(context.Background(), "sess-1", domain.Request{
			FirstName: "Aoife",
			Email:     bad,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail, "email %q", bad)
	}
}
