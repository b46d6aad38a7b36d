package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jusunglee/manchuscript/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) With(args ...any) Logger {
	ret := m.Called(args)
	return ret.Get(0).(Logger)
}

type MockDiscordSession struct {
	mock.Mock
}

func (m *MockDiscordSession) AddHandler(handler interface{}) func() {
	ret := m.Called(handler)
	return ret.Get(0).(func())
}

func (m *MockDiscordSession) Open() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *MockDiscordSession) Close() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *MockDiscordSession) ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	ret := m.Called(appID, guildID, commands, options)
	return ret.Get(0).([]*discordgo.ApplicationCommand), ret.Error(1)
}

func (m *MockDiscordSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	ret := m.Called(interaction, resp, options)
	return ret.Error(0)
}

func (m *MockDiscordSession) GetUserID() string {
	ret := m.Called()
	return ret.String(0)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) UpsertConversion(ctx context.Context, arg db.UpsertConversionParams) (db.Conversion, error) {
	ret := m.Called(ctx, arg)
	return ret.Get(0).(db.Conversion), ret.Error(1)
}

func (m *MockRepository) GetConversion(ctx context.Context, romanized string) (db.Conversion, error) {
	ret := m.Called(ctx, romanized)
	return ret.Get(0).(db.Conversion), ret.Error(1)
}

func (m *MockRepository) ListRecentConversions(ctx context.Context, limit int32) ([]db.Conversion, error) {
	ret := m.Called(ctx, limit)
	return ret.Get(0).([]db.Conversion), ret.Error(1)
}

func (m *MockRepository) CountConversions(ctx context.Context) (int64, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *MockRepository) DeleteOldConversions(ctx context.Context, before time.Time) (int64, error) {
	ret := m.Called(ctx, before)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *MockRepository) UpsertGloss(ctx context.Context, arg db.UpsertGlossParams) (db.Gloss, error) {
	ret := m.Called(ctx, arg)
	return ret.Get(0).(db.Gloss), ret.Error(1)
}

func (m *MockRepository) GetGloss(ctx context.Context, romanized string) (db.Gloss, error) {
	ret := m.Called(ctx, romanized)
	return ret.Get(0).(db.Gloss), ret.Error(1)
}

func (m *MockRepository) WithTx(ctx context.Context, fn func(repo db.Repository) error) error {
	ret := m.Called(ctx, fn)
	return ret.Error(0)
}

func (m *MockRepository) Close() error {
	ret := m.Called()
	return ret.Error(0)
}

// Helpers

func newTestBot(repo db.Repository) *Bot {
	log := &MockLogger{}
	log.On("InfoContext", mock.Anything, mock.Anything, mock.Anything).Maybe()
	log.On("ErrorContext", mock.Anything, mock.Anything, mock.Anything).Maybe()
	log.On("WarnContext", mock.Anything, mock.Anything, mock.Anything).Maybe()
	return New(log, &MockDiscordSession{}, repo, nil, Config{})
}

func commandInteraction(name string, options map[string]string) *discordgo.InteractionCreate {
	opts := make([]*discordgo.ApplicationCommandInteractionDataOption, 0, len(options))
	for k, v := range options {
		opts = append(opts, &discordgo.ApplicationCommandInteractionDataOption{
			Name:  k,
			Type:  discordgo.ApplicationCommandOptionString,
			Value: v,
		})
	}
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: opts,
			},
			ChannelID: "channel-1",
			User:      &discordgo.User{ID: "user-1"},
		},
	}
}

// Tests

func TestHandleConvert(t *testing.T) {
	repo := &MockRepository{}
	repo.On("UpsertConversion", mock.Anything, db.UpsertConversionParams{
		Romanized: "manju",
		Script:    "ᠮᠠᠨᠵᡠ",
		Source:    "discord",
	}).Return(db.Conversion{}, nil).Once()
	repo.On("UpsertConversion", mock.Anything, db.UpsertConversionParams{
		Romanized: "gisun",
		Script:    "ᡤᡳᠰᡠᠨ",
		Source:    "discord",
	}).Return(db.Conversion{}, nil).Once()

	b := newTestBot(repo)
	result := b.handleConvert(context.Background(), commandInteraction("convert", map[string]string{"text": "manju gisun"}))

	require.NoError(t, result.Err)
	assert.Contains(t, result.Response, "ᠮᠠᠨᠵᡠ ᡤᡳᠰᡠᠨ")
	repo.AssertExpectations(t)
}

func TestHandleConvertLowercasesBeforeRecording(t *testing.T) {
	repo := &MockRepository{}
	repo.On("UpsertConversion", mock.Anything, mock.MatchedBy(func(arg db.UpsertConversionParams) bool {
		return arg.Romanized == "manju"
	})).Return(db.Conversion{}, nil).Once()

	b := newTestBot(repo)
	result := b.handleConvert(context.Background(), commandInteraction("convert", map[string]string{"text": "Manju"}))

	require.NoError(t, result.Err)
	repo.AssertExpectations(t)
}

func TestHandleConvertUnrecognizedInput(t *testing.T) {
	repo := &MockRepository{}

	b := newTestBot(repo)
	result := b.handleConvert(context.Background(), commandInteraction("convert", map[string]string{"text": "manju b3"}))

	require.Error(t, result.Err)
	var uerr *userError
	assert.True(t, errors.As(result.Err, &uerr), "should be a user error")
	assert.Contains(t, result.Response, "b3")
	repo.AssertNotCalled(t, "UpsertConversion", mock.Anything, mock.Anything)
}

func TestHandleConvertEmptyText(t *testing.T) {
	b := newTestBot(&MockRepository{})
	result := b.handleConvert(context.Background(), commandInteraction("convert", map[string]string{"text": "   "}))

	assert.NoError(t, result.Err)
	assert.Contains(t, result.Response, "Nothing to convert")
}

func TestHandleGlossNotConfigured(t *testing.T) {
	b := newTestBot(&MockRepository{})
	result := b.handleGloss(context.Background(), commandInteraction("gloss", map[string]string{"word": "morin"}))

	assert.NoError(t, result.Err)
	assert.Contains(t, result.Response, "not configured")
}

func TestHandleRecent(t *testing.T) {
	repo := &MockRepository{}
	repo.On("ListRecentConversions", mock.Anything, int32(10)).Return([]db.Conversion{
		{Romanized: "morin", Script: "ᠮᠣᡵᡳᠨ"},
		{Romanized: "manju", Script: "ᠮᠠᠨᠵᡠ"},
	}, nil).Once()

	b := newTestBot(repo)
	result := b.handleRecent(context.Background(), commandInteraction("recent", nil))

	require.NoError(t, result.Err)
	assert.Contains(t, result.Response, "morin")
	assert.Contains(t, result.Response, "ᠮᠠᠨᠵᡠ")
	repo.AssertExpectations(t)
}

func TestHandleRecentEmpty(t *testing.T) {
	repo := &MockRepository{}
	repo.On("ListRecentConversions", mock.Anything, int32(10)).Return([]db.Conversion{}, nil).Once()

	b := newTestBot(repo)
	result := b.handleRecent(context.Background(), commandInteraction("recent", nil))

	require.NoError(t, result.Err)
	assert.Contains(t, result.Response, "No conversions yet")
}

func TestHandleInteractionLogsUserError(t *testing.T) {
	session := &MockDiscordSession{}
	session.On("InteractionRespond", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	log := &MockLogger{}
	log.On("WarnContext", mock.Anything, "user error", mock.Anything).Once()

	b := New(log, session, &MockRepository{}, nil, Config{})
	b.handleInteraction(nil, commandInteraction("convert", map[string]string{"text": "b3"}))

	log.AssertExpectations(t)
	session.AssertExpectations(t)
}

func TestHandleInteractionRateLimited(t *testing.T) {
	session := &MockDiscordSession{}
	session.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(resp *discordgo.InteractionResponse) bool {
		return resp.Data != nil && resp.Data.Content == "⚠️ Slow down! Try again in a minute."
	}), mock.Anything).Return(nil).Once()

	log := &MockLogger{}
	log.On("ErrorContext", mock.Anything, mock.Anything, mock.Anything).Maybe()
	b := New(log, session, &MockRepository{}, nil, Config{})
	for range rateLimitMaxCommands {
		require.True(t, b.limiter.Allow("user-1"))
	}

	b.handleInteraction(nil, commandInteraction("convert", map[string]string{"text": "manju"}))
	session.AssertExpectations(t)
}
