package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"

	"github.com/urnby/campbot/urnby/config"
	"github.com/urnby/campbot/urnby/timeutil"
)

//go:generate mockgen -source=names.go -destination=mock/names.go -package=mock

// NameResolver looks up a member's display name in a guild.
type NameResolver interface {
	DisplayName(ctx context.Context, guildID, userID snowflake.ID) (string, error)
}

type cachedName struct {
	name    string
	fetched time.Time
}

// Names caches display names. Failed lookups are not cached and come back
// as the placeholder.
type Names struct {
	next   NameResolver
	cache  *lru.Cache
	expiry time.Duration
	clock  timeutil.Clock
}

func NewNames(next NameResolver, size int, expiry time.Duration, clock timeutil.Clock) *Names {
	cache, _ := lru.New(size)
	return &Names{
		next:   next,
		cache:  cache,
		expiry: expiry,
		clock:  clock,
	}
}

func nameKey(guildID, userID snowflake.ID) string {
	return fmt.Sprintf("%s:%s", guildID, userID)
}

// Name never fails.
func (n *Names) Name(ctx context.Context, guildID, userID snowflake.ID) string {
	key := nameKey(guildID, userID)
	now := n.clock.Now()
	if v, ok := n.cache.Get(key); ok {
		if c := v.(cachedName); now.Sub(c.fetched) < n.expiry {
			return c.name
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, config.NameLookupTimeout)
	defer cancel()

	name, err := n.next.DisplayName(lookupCtx, guildID, userID)
	if err != nil || name == "" {
		slog.Debug("Display name lookup failed",
			slog.String("type", "dash"),
			slog.String("guild_id", guildID.String()),
			slog.String("user_id", userID.String()),
			slog.Any("error", err))
		return config.UnknownMember
	}
	n.cache.Add(key, cachedName{name: name, fetched: now})
	return name
}

// NameOr resolves a user id stored as text, falling back to stored when the
// lookup gives nothing better.
func (n *Names) NameOr(ctx context.Context, guildID snowflake.ID, userID, stored string) string {
	id, err := snowflake.Parse(userID)
	if err != nil {
		if stored != "" {
			return stored
		}
		return config.UnknownMember
	}
	name := n.Name(ctx, guildID, id)
	if name == config.UnknownMember && stored != "" {
		return stored
	}
	return name
}
