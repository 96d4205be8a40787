package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tableau-notifier/internal/config"
	"github.com/tableau-notifier/internal/domain"
	"github.com/tableau-notifier/internal/infrastructure/tableau"
)

// --- mocks ---

type mockTableau struct{ mock.Mock }

func (m *mockTableau) SignInPAT(ctx context.Context, patName, patSecret string) (*tableau.Session, error) {
	args := m.Called(ctx, patName, patSecret)
	if s, _ := args.Get(0).(*tableau.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTableau) SignOut(ctx context.Context, s *tableau.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockTableau) ListDatasources(ctx context.Context, s *tableau.Session) ([]domain.DataSource, error) {
	args := m.Called(ctx, s)
	if ds, _ := args.Get(0).([]domain.DataSource); ds != nil {
		return ds, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendSMS(ctx context.Context, body string) (string, error) {
	args := m.Called(ctx, body)
	return args.String(0), args.Error(1)
}

func (m *mockSender) SendWhatsApp(ctx context.Context, body string) (string, error) {
	args := m.Called(ctx, body)
	return args.String(0), args.Error(1)
}

func (m *mockSender) PlaceCall(ctx context.Context, body string) (string, error) {
	args := m.Called(ctx, body)
	return args.String(0), args.Error(1)
}

// memLog records appended blocks in order.
type memLog struct{ blocks []string }

func (l *memLog) Append(block string) error {
	l.blocks = append(l.blocks, block)
	return nil
}

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{
		TableauPATName:   "pat-name",
		TableauPATSecret: "pat-secret",
		TwilioFromNumber: "+15550001111",
		TwilioToNumber:   "+15550002222",
		WhatsAppFrom:     "whatsapp:+15550001111",
		WhatsAppTo:       "whatsapp:+15550002222",
	}
}

func datasources(n int) []domain.DataSource {
	out := make([]domain.DataSource, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.DataSource{
			ID:          string(rune('a' + i)),
			Name:        "source-" + string(rune('A'+i)),
			Description: "nightly extract",
			UpdatedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		})
	}
	return out
}

// --- Dispatch ---

func TestDispatch_AllChannelsPerDatasource(t *testing.T) {
	tc := &mockTableau{}
	sender := &mockSender{}
	log := &memLog{}
	session := &tableau.Session{Token: "tok", SiteID: "site"}

	tc.On("SignInPAT", mock.Anything, "pat-name", "pat-secret").Return(session, nil)
	tc.On("SignOut", mock.Anything, session).Return(nil)
	tc.On("ListDatasources", mock.Anything, session).Return(datasources(2), nil)
	sender.On("SendSMS", mock.Anything, mock.Anything).Return("SM1", nil).Twice()
	sender.On("SendWhatsApp", mock.Anything, mock.Anything).Return("WA1", nil).Twice()
	sender.On("PlaceCall", mock.Anything, mock.Anything).Return("CA1", nil).Twice()

	svc := NewService(tc, sender, log, testConfig())
	report, err := svc.Dispatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.DataSources)
	assert.Equal(t, 6, report.Sent)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, report.Deliveries, 6)

	// One header block plus one block per data source.
	require.Len(t, log.blocks, 3)
	assert.Contains(t, log.blocks[0], "There are 2 datasources on site")
	assert.Contains(t, log.blocks[1], "Datasource Refresh failed")
	assert.Contains(t, log.blocks[1], "source-A")
	assert.Contains(t, log.blocks[1], "Text message SID: SM1")
	assert.Contains(t, log.blocks[1], "Whatsapp message SID: WA1")
	assert.Contains(t, log.blocks[1], "Call SID: CA1")
	assert.Contains(t, log.blocks[2], "source-B")

	tc.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestDispatch_EmptySite(t *testing.T) {
	tc := &mockTableau{}
	sender := &mockSender{}
	log := &memLog{}
	session := &tableau.Session{Token: "tok", SiteID: "site"}

	tc.On("SignInPAT", mock.Anything, "pat-name", "pat-secret").Return(session, nil)
	tc.On("SignOut", mock.Anything, session).Return(nil)
	tc.On("ListDatasources", mock.Anything, session).Return([]domain.DataSource{}, nil)

	svc := NewService(tc, sender, log, testConfig())
	report, err := svc.Dispatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.DataSources)
	assert.Empty(t, report.Deliveries)
	require.Len(t, log.blocks, 1)
	assert.Contains(t, log.blocks[0], "There are 0 datasources on site")
	sender.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "SendWhatsApp", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "PlaceCall", mock.Anything, mock.Anything)
}

func TestDispatch_ChannelFailureDoesNotAbortBatch(t *testing.T) {
	tc := &mockTableau{}
	sender := &mockSender{}
	log := &memLog{}
	session := &tableau.Session{Token: "tok", SiteID: "site"}

	tc.On("SignInPAT", mock.Anything, "pat-name", "pat-secret").Return(session, nil)
	tc.On("SignOut", mock.Anything, session).Return(nil)
	tc.On("ListDatasources", mock.Anything, session).Return(datasources(2), nil)
	// SMS fails for every data source; the other channels still run.
	sender.On("SendSMS", mock.Anything, mock.Anything).Return("", errors.New("carrier down")).Twice()
	sender.On("SendWhatsApp", mock.Anything, mock.Anything).Return("WA1", nil).Twice()
	sender.On("PlaceCall", mock.Anything, mock.Anything).Return("CA1", nil).Twice()

	svc := NewService(tc, sender, log, testConfig())
	report, err := svc.Dispatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, report.Sent)
	assert.Equal(t, 2, report.Failed)
	assert.Contains(t, log.blocks[1], "Text message delivery failed: carrier down")
	sender.AssertExpectations(t)
}

func TestDispatch_SignInError(t *testing.T) {
	tc := &mockTableau{}
	log := &memLog{}
	tc.On("SignInPAT", mock.Anything, "pat-name", "pat-secret").Return(nil, domain.ErrUnauthorized)

	svc := NewService(tc, &mockSender{}, log, testConfig())
	_, err := svc.Dispatch(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.Empty(t, log.blocks)
}

func TestDispatch_ListError(t *testing.T) {
	tc := &mockTableau{}
	session := &tableau.Session{Token: "tok", SiteID: "site"}
	tc.On("SignInPAT", mock.Anything, "pat-name", "pat-secret").Return(session, nil)
	tc.On("SignOut", mock.Anything, session).Return(nil)
	tc.On("ListDatasources", mock.Anything, session).Return(nil, errors.New("listing failed"))

	svc := NewService(tc, &mockSender{}, &memLog{}, testConfig())
	_, err := svc.Dispatch(context.Background())
	require.Error(t, err)
}
