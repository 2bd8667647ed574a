package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"synthlobby/internal/catalog"
	"synthlobby/internal/model"
	"synthlobby/internal/storage"
)

const searchResultLimit = 10

func (b *Bot) handleStart(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.reply(chatID, `Welcome to SynthLobby!

Link your account to get price-drop alerts for the synths on your wishlist.

Quick start:
1. /start <account key> — link your SynthLobby account
2. /search <term> — find a synth
3. /watch <id> — add it to your wishlist
4. /notify <id> on — enable price-drop alerts

Use /help for the full command reference.`)
		return
	}

	user, err := b.store.GetOrCreateUser(ctx, args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to link account: %v", err))
		return
	}
	if err := b.store.BindChat(ctx, user.ID, chatID); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to link account: %v", err))
		return
	}

	b.reply(chatID, "Account linked. Use /search to find synths and /watch to build your wishlist.")
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Account:
/start <account key> — link your SynthLobby account

Catalogue:
/search <term> — search synths by brand and name

Wishlist:
/watch <id> — add or remove a synth from your wishlist
/unwatch <id> — remove a synth from your wishlist
/notify <id> on|off — toggle price-drop alerts for a watched synth
/list — show your wishlist with current prices

Comparison:
/compare <id> — add or remove a synth from your compare list
/uncompare <id> — remove a synth from your compare list
/comparelist — show your compare list`)
}

func (b *Bot) handleSearch(chatID int64, args string) {
	if args == "" {
		b.reply(chatID, "Usage: /search <term>")
		return
	}

	matches := catalog.FilterAndSort(b.catalog.Snapshot(), catalog.Query{Search: args}, time.Now())
	b.reply(chatID, FormatSearchResults(args, matches, searchResultLimit))
}

func (b *Bot) handleWatch(ctx context.Context, chatID int64, args string) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}

	synth, ok := b.resolveSynth(chatID, args, "/watch <id>")
	if !ok {
		return
	}

	profile, err := b.store.ToggleWatch(ctx, user.ID, synth.ID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	if profile.WatchedIDs()[synth.ID] {
		b.reply(chatID, fmt.Sprintf("Added %s to your wishlist.\nUse /notify %s on to get price-drop alerts.",
			FormatSynthName(synth), synth.ID))
	} else {
		b.reply(chatID, fmt.Sprintf("Removed %s from your wishlist.", FormatSynthName(synth)))
	}
}

// handleUnwatch removes a synth from the wishlist without the toggle
// semantics of /watch: unwatching something not on the list is a no-op with
// a hint, never an accidental add.
func (b *Bot) handleUnwatch(ctx context.Context, chatID int64, args string) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}

	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /unwatch <id>")
		return
	}

	profile, err := b.store.GetProfile(ctx, user.ID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if !profile.WatchedIDs()[id] {
		b.reply(chatID, fmt.Sprintf("%s is not on your wishlist.", id))
		return
	}

	if _, err := b.store.ToggleWatch(ctx, user.ID, id); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Removed %s from your wishlist.", id))
}

func (b *Bot) handleCompare(ctx context.Context, chatID int64, args string) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}

	synth, ok := b.resolveSynth(chatID, args, "/compare <id>")
	if !ok {
		return
	}

	profile, err := b.store.ToggleCompare(ctx, user.ID, synth.ID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	if profile.CompareIDs()[synth.ID] {
		b.reply(chatID, fmt.Sprintf("Added %s to your compare list.", FormatSynthName(synth)))
	} else {
		b.reply(chatID, fmt.Sprintf("Removed %s from your compare list.", FormatSynthName(synth)))
	}
}

func (b *Bot) handleUncompare(ctx context.Context, chatID int64, args string) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}

	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /uncompare <id>")
		return
	}

	profile, err := b.store.GetProfile(ctx, user.ID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if !profile.CompareIDs()[id] {
		b.reply(chatID, fmt.Sprintf("%s is not on your compare list.", id))
		return
	}

	if _, err := b.store.ToggleCompare(ctx, user.ID, id); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Removed %s from your compare list.", id))
}

func (b *Bot) handleNotify(ctx context.Context, chatID int64, args string) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}

	synthID, enable, err := ParseNotifyArgs(args)
	if err != nil {
		b.reply(chatID, "Usage: /notify <id> on|off")
		return
	}

	if _, err := b.store.SetNotifications(ctx, user.ID, synthID, enable); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.reply(chatID, fmt.Sprintf("%s is not on your wishlist. Use /watch %s first.", synthID, synthID))
			return
		}
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	if enable {
		b.reply(chatID, fmt.Sprintf("Price-drop alerts enabled for %s.", synthID))
	} else {
		b.reply(chatID, fmt.Sprintf("Price-drop alerts disabled for %s.", synthID))
	}
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}

	profile, err := b.store.GetProfile(ctx, user.ID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	b.reply(chatID, FormatWishlist(profile.WatchedSynths, b.catalog, time.Now()))
}

func (b *Bot) handleCompareList(ctx context.Context, chatID int64) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}

	profile, err := b.store.GetProfile(ctx, user.ID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}

	b.reply(chatID, FormatCompareList(profile.CompareList, b.catalog))
}

func (b *Bot) linkedUser(ctx context.Context, chatID int64) (*model.User, bool) {
	user, err := b.store.UserByChat(ctx, chatID)
	if errors.Is(err, storage.ErrNotFound) {
		b.reply(chatID, "No account linked to this chat. Use /start <account key> first.")
		return nil, false
	}
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return nil, false
	}
	return user, true
}

func (b *Bot) resolveSynth(chatID int64, args, usage string) (model.Synth, bool) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: "+usage)
		return model.Synth{}, false
	}

	synth, ok := b.catalog.Get(id)
	if !ok {
		b.reply(chatID, fmt.Sprintf("No synth with id %q in the catalogue. Use /search to find one.", id))
		return model.Synth{}, false
	}
	return synth, true
}
