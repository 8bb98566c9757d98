package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var jsonUnmarshal = json.Unmarshal

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

var bundle *i18n.Bundle

// Message IDs for recommendation reasons.
const (
	MsgReasonImprove   = "ReasonImprove"
	MsgReasonChallenge = "ReasonChallenge"
)

// Init loads the translation bundle. English is the fallback language.
func Init() error {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", jsonUnmarshal)

	// Load all locale files from embedded FS.
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
		slog.Debug("loaded locale file", "file", e.Name())
	}

	return nil
}

// ValidateLang checks that lang is a well-formed BCP 47 tag.
func ValidateLang(lang string) error {
	if _, err := language.Parse(lang); err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}
	return nil
}

// NewLocalizer creates a localizer preferring the given languages, which may
// be tags or Accept-Language header values.
func NewLocalizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, langs...)
}

// WithLocalizer stores a localizer in the context.
func WithLocalizer(ctx context.Context, loc *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, loc)
}

// localizerFromCtx retrieves the localizer from context.
func localizerFromCtx(ctx context.Context) (*i18n.Localizer, bool) {
	loc, ok := ctx.Value(ctxKey{}).(*i18n.Localizer)
	return loc, ok
}

// Td translates a message by ID with template data. Without a localizer in
// ctx it uses English.
func Td(ctx context.Context, msgID string, data map[string]any) string {
	loc, ok := localizerFromCtx(ctx)
	if !ok {
		loc = i18n.NewLocalizer(bundle, "en")
	}
	s, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
	if err != nil {
		slog.Warn("missing translation", "id", msgID, "error", err)
		return msgID
	}
	return s
}

// Phrases renders recommendation reasons in Lang, unless the context already
// carries a localizer (as HTTP requests do).
type Phrases struct {
	Lang string
}

func (p Phrases) Improve(ctx context.Context, subject string) string {
	return Td(p.context(ctx), MsgReasonImprove, map[string]any{"Subject": subject})
}

func (p Phrases) Challenge(ctx context.Context, subject string) string {
	return Td(p.context(ctx), MsgReasonChallenge, map[string]any{"Subject": subject})
}

func (p Phrases) context(ctx context.Context) context.Context {
	if _, ok := localizerFromCtx(ctx); ok {
		return ctx
	}
	return WithLocalizer(ctx, NewLocalizer(p.Lang))
}
