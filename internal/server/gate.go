package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/agrolink/chat-service/internal/cache"
	"github.com/agrolink/chat-service/internal/database"
)

var (
	ErrNotFriends              = errors.New("not friends")
	ErrNotAMember              = errors.New("not a member")
	ErrInvalidRecipient        = errors.New("invalid recipient")
	ErrPostNotOwnedByRecipient = errors.New("post not owned by recipient")
	ErrNotAuthorizedToMarkRead = errors.New("not authorized to mark read")
)

// authCacheTTL bounds how stale a friendship or membership verdict may be.
// A revoked friendship or removed member is enforced on the next lookup
// after expiry.
const authCacheTTL = 5 * time.Second

// cache value for "no row exists"
const verdictAbsent = "none"

// Target is a logical chat destination: exactly one of PeerId and GroupId
// is set.
type Target struct {
	PeerId  int
	GroupId int
}

func (t Target) IsGroup() bool {
	return t.GroupId != 0
}

func newTarget(peerId, groupId int) (Target, error) {
	if (peerId == 0) == (groupId == 0) {
		return Target{}, fmt.Errorf("exactly one of peer_id and group_id must be set")
	}
	return Target{PeerId: peerId, GroupId: groupId}, nil
}

// Intent classifies a private send as ordinary or bargaining. Bargaining
// messages are exempt from the friendship requirement because they are
// anchored to a marketplace listing.
type Intent struct {
	Bargaining bool
	PostId     int
}

func classifyIntent(p *Publish) Intent {
	if p.PostId != 0 {
		return Intent{Bargaining: true, PostId: p.PostId}
	}
	if p.Kind == MessageKindBargain {
		return Intent{Bargaining: true}
	}
	return Intent{}
}

// AuthorizationGate is the single choke point deciding whether a send is
// allowed. It only reads; lookups go through a short-TTL cache.
type AuthorizationGate struct {
	db    database.ChatRepository
	cache cache.Cache
	log   *log.Logger
}

func NewAuthorizationGate(db database.ChatRepository, c cache.Cache, logger *log.Logger) *AuthorizationGate {
	return &AuthorizationGate{
		db:    db,
		cache: c,
		log:   logger,
	}
}

// Authorize decides whether senderId may deliver to target with the given
// intent. It returns one of the gate's sentinel errors on denial, or a
// wrapped lookup error when a dependency failed.
func (g *AuthorizationGate) Authorize(ctx context.Context, senderId int, target Target, intent Intent) error {
	if target.IsGroup() {
		role, err := g.membership(ctx, target.GroupId, senderId)
		if err != nil {
			return fmt.Errorf("membership lookup: %w", err)
		}
		if role == "" {
			return ErrNotAMember
		}
		return nil
	}

	if intent.Bargaining {
		return g.authorizeBargain(senderId, target.PeerId, intent.PostId)
	}

	status, err := g.friendship(ctx, senderId, target.PeerId)
	if err != nil {
		return fmt.Errorf("friendship lookup: %w", err)
	}
	if status != database.FriendshipAccepted {
		return ErrNotFriends
	}
	return nil
}

// authorizeBargain lets a non-friend buyer contact a seller, but only in a
// verifiable marketplace context: both parties must exist, and a supplied
// post must belong to the recipient.
func (g *AuthorizationGate) authorizeBargain(senderId, peerId, postId int) error {
	for _, id := range []int{senderId, peerId} {
		if _, err := g.db.GetAccountById(id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInvalidRecipient
			}
			return fmt.Errorf("account lookup: %w", err)
		}
	}

	if postId != 0 {
		ownerId, err := g.db.GetMarketplacePostOwner(postId)
		if err != nil {
			return fmt.Errorf("post owner lookup: %w", err)
		}
		if ownerId != peerId {
			return ErrPostNotOwnedByRecipient
		}
	}

	return nil
}

// CanMarkRead decides whether userId may mark msg as read: they must be
// the stored receiver or a current member of the stored group.
func (g *AuthorizationGate) CanMarkRead(ctx context.Context, userId int, msg database.Message) error {
	if msg.GroupId != 0 {
		role, err := g.membership(ctx, msg.GroupId, userId)
		if err != nil {
			return fmt.Errorf("membership lookup: %w", err)
		}
		if role == "" {
			return ErrNotAuthorizedToMarkRead
		}
		return nil
	}

	if msg.ReceiverId != userId {
		return ErrNotAuthorizedToMarkRead
	}
	return nil
}

func (g *AuthorizationGate) friendship(ctx context.Context, userA, userB int) (string, error) {
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	key := fmt.Sprintf("friends:%d:%d", lo, hi)

	if status, ok := g.cache.Get(ctx, key); ok {
		if status == verdictAbsent {
			return "", nil
		}
		return status, nil
	}

	status, err := g.db.GetFriendshipStatus(userA, userB)
	if err != nil {
		return "", err
	}

	value := status
	if value == "" {
		value = verdictAbsent
	}
	g.cache.Set(ctx, key, value, authCacheTTL)

	return status, nil
}

func (g *AuthorizationGate) membership(ctx context.Context, groupId, userId int) (string, error) {
	key := fmt.Sprintf("member:%d:%d", groupId, userId)

	if role, ok := g.cache.Get(ctx, key); ok {
		if role == verdictAbsent {
			return "", nil
		}
		return role, nil
	}

	role, err := g.db.GetGroupMembership(groupId, userId)
	if err != nil {
		return "", err
	}

	value := role
	if value == "" {
		value = verdictAbsent
	}
	g.cache.Set(ctx, key, value, authCacheTTL)

	return role, nil
}
