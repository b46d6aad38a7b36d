package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jusunglee/manchuscript/internal/db"
	"github.com/jusunglee/manchuscript/internal/gloss"
	"github.com/jusunglee/manchuscript/internal/metrics"
	"github.com/jusunglee/manchuscript/manchu"
	"github.com/samber/lo"
)

type Config struct {
	GuildID         string
	CleanupInterval time.Duration
	RetentionPeriod time.Duration
}

type Bot struct {
	log     Logger
	session DiscordSession
	repo    db.Repository
	glosser *gloss.Glosser // nil when no LLM is configured
	limiter *RateLimiter
	config  Config
}

func New(
	log Logger,
	session DiscordSession,
	repo db.Repository,
	glosser *gloss.Glosser,
	config Config,
) *Bot {
	return &Bot{
		log:     log,
		session: session,
		repo:    repo,
		glosser: glosser,
		limiter: NewRateLimiter(),
		config:  config,
	}
}

func (b *Bot) Run(ctx context.Context, cancel context.CancelCauseFunc) error {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.InfoContext(ctx, "connected to Discord", "username", r.User.Username)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening Discord connection: %w", err)
	}

	if err := b.registerCommands(ctx); err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go b.runCleaner(ctx, &wg)

	b.log.InfoContext(ctx, "bot is running, press Ctrl+C to stop")

	<-ctx.Done()
	b.log.Info("shutdown signal received")
	cancel(errors.New("shutdown signal received"))
	wg.Wait()
	b.session.Close()
	b.log.InfoContext(ctx, "shut down complete")

	return nil
}

func (b *Bot) registerCommands(ctx context.Context) error {
	guildID := b.config.GuildID
	if guildID != "" {
		b.log.InfoContext(ctx, "registering commands to guild", "guild_id", guildID)
		_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), "", []*discordgo.ApplicationCommand{})
		if err != nil {
			b.log.WarnContext(ctx, "failed to clear global commands", "error", err)
		} else {
			b.log.InfoContext(ctx, "cleared global commands")
		}
	} else {
		b.log.InfoContext(ctx, "registering commands globally (may take up to 1 hour to propagate)")
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), guildID, commands)
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	b.log.InfoContext(ctx, "registered commands", "count", len(commands))
	return nil
}

// runCleaner prunes old conversion rows so the history table stays bounded.
func (b *Bot) runCleaner(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for ctx.Err() == nil {
		cleanupCtx, cancel := context.WithTimeout(ctx, 1*time.Minute)
		deleted, err := b.repo.DeleteOldConversions(cleanupCtx, time.Now().Add(-b.config.RetentionPeriod))
		cancel()
		if err != nil {
			b.log.Error("deleting old conversions", "error", err)
		} else if deleted > 0 {
			b.log.InfoContext(ctx, "deleted old conversions", "count", deleted)
		}
		sleepWithContext(ctx, b.config.CleanupInterval)
	}
}

func sleepWithContext(ctx context.Context, dur time.Duration) {
	timer := time.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-timer.C:
		return
	case <-ctx.Done():
		return
	}
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "convert",
		Description: "Convert romanized Manchu to Manchu script",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Romanized text (Möllendorff, e.g. `manju gisun`)",
				Required:    true,
			},
		},
	},
	{
		Name:        "gloss",
		Description: "Convert a romanized Manchu word and gloss it in English",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "word",
				Description: "A single romanized word (e.g. `morin`)",
				Required:    true,
			},
		},
	},
	{
		Name:        "recent",
		Description: "Show recently converted words",
	},
}

type handlerResult struct {
	Response string
	Err      error
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()
	cmd := i.ApplicationCommandData().Name

	if !b.limiter.Allow(interactionUserID(i)) {
		metrics.RateLimitHits.Inc()
		b.respond(i, "⚠️ Slow down! Try again in a minute.")
		return
	}

	var result handlerResult
	switch cmd {
	case "convert":
		result = b.handleConvert(ctx, i)
	case "gloss":
		result = b.handleGloss(ctx, i)
	case "recent":
		result = b.handleRecent(ctx, i)
	}

	b.respond(i, result.Response)

	if result.Err == nil {
		return
	}

	var uerr *userError
	if errors.As(result.Err, &uerr) {
		b.log.WarnContext(ctx, "user error", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
	} else {
		b.log.ErrorContext(ctx, "command failed", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
	}
}

func (b *Bot) handleConvert(ctx context.Context, i *discordgo.InteractionCreate) handlerResult {
	text := strings.TrimSpace(getOption(i.ApplicationCommandData().Options, "text"))
	if text == "" {
		return handlerResult{Response: "❌ Nothing to convert."}
	}

	script, err := manchu.ConvertText(text)
	if err != nil {
		metrics.ConversionsTotal.WithLabelValues("discord", "rejected").Inc()
		var inputErr *manchu.UnrecognizedInputError
		if errors.As(err, &inputErr) {
			return handlerResult{
				Response: fmt.Sprintf("❌ Can't read `%s` in **%s**. Stick to Möllendorff romanization.", inputErr.Substring, inputErr.Word),
				Err:      newUserError(err),
			}
		}
		return handlerResult{
			Response: "❌ Conversion failed. Please try again later.",
			Err:      fmt.Errorf("converting %q: %w", text, err),
		}
	}

	for _, word := range strings.Fields(text) {
		// The whole text converted, so each word converts too.
		s, _ := manchu.ConvertWord(word)
		if _, err := b.repo.UpsertConversion(ctx, db.UpsertConversionParams{
			Romanized: strings.ToLower(word),
			Script:    s,
			Source:    "discord",
		}); err != nil {
			b.log.ErrorContext(ctx, "recording conversion", "word", word, "error", err)
		}
	}

	metrics.ConversionsTotal.WithLabelValues("discord", "ok").Inc()
	return handlerResult{Response: fmt.Sprintf("**%s**\n# %s", text, script)}
}

func (b *Bot) handleGloss(ctx context.Context, i *discordgo.InteractionCreate) handlerResult {
	if b.glosser == nil {
		return handlerResult{Response: "❌ Glossing is not configured on this bot."}
	}

	word := strings.ToLower(strings.TrimSpace(getOption(i.ApplicationCommandData().Options, "word")))
	if word == "" || strings.ContainsAny(word, " \t") {
		return handlerResult{Response: "❌ Give me exactly one word."}
	}

	script, err := manchu.ConvertWord(word)
	if err != nil {
		return handlerResult{
			Response: fmt.Sprintf("❌ **%s** is not a romanized Manchu word.", word),
			Err:      newUserError(err),
		}
	}

	g, err := b.glosser.Gloss(ctx, word)
	if err != nil {
		return handlerResult{
			Response: "❌ Glossing failed. Please try again later.",
			Err:      fmt.Errorf("glossing %q: %w", word, err),
		}
	}

	return handlerResult{Response: fmt.Sprintf("**%s** · %s\n%s", word, script, g.Gloss)}
}

func (b *Bot) handleRecent(ctx context.Context, i *discordgo.InteractionCreate) handlerResult {
	conversions, err := b.repo.ListRecentConversions(ctx, 10)
	if err != nil {
		return handlerResult{
			Response: "❌ Failed to list conversions. Please try again later.",
			Err:      fmt.Errorf("listing conversions: %w", err),
		}
	}

	if len(conversions) == 0 {
		return handlerResult{Response: "No conversions yet. Use `/convert` to add one!"}
	}

	lines := lo.Map(conversions, func(c db.Conversion, _ int) string {
		return fmt.Sprintf("• **%s** → %s", c.Romanized, c.Script)
	})
	return handlerResult{Response: "**Recently converted:**\n" + strings.Join(lines, "\n")}
}

func (b *Bot) respond(i *discordgo.InteractionCreate, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
	if err != nil {
		b.log.ErrorContext(ctx, "failed to respond to interaction", "error", err)
	}
}

type userError struct {
	Err error
}

func (e *userError) Error() string {
	return e.Err.Error()
}

func (e *userError) Unwrap() error {
	return e.Err
}

func newUserError(err error) *userError {
	return &userError{Err: err}
}

func getOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return i.ChannelID
}
