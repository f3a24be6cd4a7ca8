// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/approval"
	"github.com/msksk8cool/sk8school-bot/pkg/channel"
	"github.com/msksk8cool/sk8school-bot/pkg/common"
	"github.com/msksk8cool/sk8school-bot/pkg/flow"
	"github.com/msksk8cool/sk8school-bot/pkg/metrics"
	"github.com/msksk8cool/sk8school-bot/pkg/progress"
)

const (
	CommandStart = "start"
	CommandCoach = "coach"

	// Deep link arguments of /start.
	DeepLinkCoach    = "msk_sk8cool"
	DeepLinkTraining = "training"

	DefaultCoachURL         = "https://t.me/wip_sxiueohd?start=msk_sk8cool"
	DefaultLeaderboardLimit = 5
)

// Decider applies admin decisions on bookings.
type Decider interface {
	Approve(ctx context.Context, actor channel.Actor, ref flow.DecisionRef, msg channel.MessageRef) ([]approval.StepResult, error)
	Reject(ctx context.Context, actor channel.Actor, ref flow.DecisionRef, msg channel.MessageRef, reason string) ([]approval.StepResult, error)
}

// ProgressReader serves the progress and leaderboard screens.
type ProgressReader interface {
	UserProgress(ctx context.Context, userID int64) (*progress.Summary, bool)
	Leaderboard(ctx context.Context, limit int) []progress.Entry
}

// Config configures a Bot.
type Config struct {
	CoachURL         string
	LeaderboardLimit int
	Location         *time.Location
	Now              func() time.Time
}

// Bot routes chat updates to the booking flow, the approval gate and the
// info screens.
type Bot struct {
	cfg      Config
	ch       channel.Channel
	machine  *flow.Machine
	decider  Decider
	progress ProgressReader
}

// NewBot creates the update router.
func NewBot(cfg Config, ch channel.Channel, machine *flow.Machine, decider Decider, tracker ProgressReader) *Bot {
	if cfg.CoachURL == "" {
		cfg.CoachURL = DefaultCoachURL
	}
	if cfg.LeaderboardLimit <= 0 {
		cfg.LeaderboardLimit = DefaultLeaderboardLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Bot{
		cfg:      cfg,
		ch:       ch,
		machine:  machine,
		decider:  decider,
		progress: tracker,
	}
}

func eventName(u channel.Update) string {
	if u.Kind == channel.KindCommand {
		return "/" + u.Command
	}
	return u.Token
}

// Handle processes one update. It never panics: handler errors and
// recovered panics are answered with the generic error and the main menu.
func (b *Bot) Handle(ctx context.Context, u channel.Update) {
	scope := common.NewUpdateScope(ctx, "Bot.Handle", u.Actor.ID, eventName(u))
	defer scope.Finish()

	started := time.Now()
	metrics.BotUpdatesTotal.WithLabelValues(string(u.Kind)).Inc()
	defer func() {
		metrics.BotUpdateDuration.Observe(time.Since(started).Seconds())
	}()

	err := b.dispatch(scope, u)
	if err != nil {
		scope.TraceError(err)
		scope.Log.Errorf("failed to handle update: %v", err)
		b.fail(scope.Ctx, u)
		return
	}

	if u.Kind == channel.KindMenuChoice {
		if err := b.ch.Answer(scope.Ctx, u.CallbackID, ""); err != nil {
			scope.Log.Warnf("failed to answer callback: %v", err)
		}
	}
}

// dispatch runs the route for u, turning a panic into an error.
func (b *Bot) dispatch(scope *common.Scope, u channel.Update) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while handling update: %v", r)
		}
	}()

	switch u.Kind {
	case channel.KindCommand:
		return b.handleCommand(scope, u)
	case channel.KindMenuChoice:
		return b.handleChoice(scope, u)
	}

	scope.Log.Debugf("ignoring update of kind %q", u.Kind)
	return nil
}

// fail answers the user with the generic error and the main menu.
func (b *Bot) fail(ctx context.Context, u channel.Update) {
	if u.Kind == channel.KindMenuChoice {
		if err := b.ch.Answer(ctx, u.CallbackID, genericErrorText); err != nil {
			common.GetScopeFromContext(ctx, "Bot.fail").Log.Errorf("failed to answer callback: %v", err)
		}
	}
	if _, err := b.ch.Send(ctx, u.ChatID, errorScreen()); err != nil {
		common.GetScopeFromContext(ctx, "Bot.fail").Log.Errorf("failed to send error screen: %v", err)
	}
}

func (b *Bot) handleCommand(scope *common.Scope, u channel.Update) error {
	ctx := scope.Ctx

	switch u.Command {
	case CommandStart:
		arg := ""
		if len(u.Args) > 0 {
			arg = u.Args[0]
		}
		return b.start(scope, u, arg)

	case CommandCoach:
		_, err := b.ch.Send(ctx, u.ChatID, coachCommandScreen(b.cfg.CoachURL))
		return err
	}

	scope.Log.Debugf("ignoring unknown command /%s", u.Command)
	return nil
}

func (b *Bot) start(scope *common.Scope, u channel.Update, arg string) error {
	ctx := scope.Ctx

	switch arg {
	case DeepLinkCoach:
		scope.Log.Infof("coach deep link opened")
		if _, err := b.ch.Send(ctx, u.ChatID, deepLinkGreeting(u.Actor, b.cfg.Now().In(b.cfg.Location))); err != nil {
			return err
		}
		_, err := b.ch.Send(ctx, u.ChatID, deepLinkOffer())
		return err

	case DeepLinkTraining:
		msg, err := b.machine.Apply(ctx, u.Actor, flow.Event{Kind: flow.EventStartBooking})
		if err != nil {
			return err
		}
		_, err = b.ch.Send(ctx, u.ChatID, msg)
		return err
	}

	_, err := b.ch.Send(ctx, u.ChatID, flow.WelcomeScreen())
	return err
}

func (b *Bot) handleChoice(scope *common.Scope, u channel.Update) error {
	ctx := scope.Ctx

	ev, err := flow.DecodeToken(u.Token)
	if errors.Is(err, flow.ErrUnknownToken) {
		scope.Log.Warnf("ignoring unknown menu token %q", u.Token)
		return nil
	}
	if err != nil {
		return err
	}

	switch ev.Kind {
	case flow.EventAdminApprove:
		results, err := b.decider.Approve(ctx, u.Actor, ev.Decision, u.Ref)
		return b.decided(scope, "approve", results, err)

	case flow.EventAdminReject:
		results, err := b.decider.Reject(ctx, u.Actor, ev.Decision, u.Ref, "")
		return b.decided(scope, "reject", results, err)

	case flow.EventAboutSchool:
		return b.ch.Edit(ctx, u.Ref, aboutSchoolScreen())

	case flow.EventContactCoach:
		return b.ch.Edit(ctx, u.Ref, contactCoachScreen(b.cfg.CoachURL))

	case flow.EventMyProgress:
		summary, _ := b.progress.UserProgress(ctx, u.Actor.ID)
		return b.ch.Edit(ctx, u.Ref, progressScreen(progress.FormatProgress(summary)))

	case flow.EventLeaderboard:
		entries := b.progress.Leaderboard(ctx, b.cfg.LeaderboardLimit)
		return b.ch.Edit(ctx, u.Ref, leaderboardScreen(progress.FormatLeaderboard(entries)))
	}

	if !b.machine.Handles(ev.Kind) {
		scope.Log.Warnf("no route for event %s", ev.Kind)
		return nil
	}

	msg, err := b.machine.Apply(ctx, u.Actor, ev)
	if err != nil {
		return err
	}
	return b.ch.Edit(ctx, u.Ref, msg)
}

// decided logs the outcome of an admin decision. An unauthorized attempt has
// already been answered with a notice and is not an error for the router.
func (b *Bot) decided(scope *common.Scope, decision string, results []approval.StepResult, err error) error {
	if errors.Is(err, approval.ErrUnauthorized) {
		return nil
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	scope.SetAttributes("failed_steps", failed)
	scope.Log.Infof("%s handled: %d steps, %d failed", decision, len(results), failed)
	return nil
}
