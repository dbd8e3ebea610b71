package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jakeunsted/pub/internal/repository"
)

// Dispatcher fans out notifications for domain events. Implementations are
// fire-and-forget: failures must be logged, never returned, so callers can
// treat dispatch as independent of the primary mutation.
type Dispatcher interface {
	PubRequestCreated(requestID, groupID, requesterID uint, groupName, requesterName string)
	InviteCreated(email, token, groupName, inviterName string)
}

// Fanout notifies group members by email and Expo push. Either channel may be
// nil when its transport is not configured.
type Fanout struct {
	groupRepo repository.GroupRepositoryInterface
	userRepo  repository.UserRepositoryInterface
	tokenRepo repository.DeviceTokenRepositoryInterface
	email     *EmailSender
	expo      *ExpoClient
}

func NewFanout(
	groupRepo repository.GroupRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	tokenRepo repository.DeviceTokenRepositoryInterface,
	email *EmailSender,
	expo *ExpoClient,
) *Fanout {
	return &Fanout{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		email:     email,
		expo:      expo,
	}
}

func (f *Fanout) PubRequestCreated(requestID, groupID, requesterID uint, groupName, requesterName string) {
	go f.fanoutPubRequest(requestID, groupID, requesterID, groupName, requesterName)
}

func (f *Fanout) fanoutPubRequest(requestID, groupID, requesterID uint, groupName, requesterName string) {
	memberIDs, err := f.groupRepo.GetMemberIDs(groupID)
	if err != nil {
		log.Printf("notify: failed to load members for group %d: %v", groupID, err)
		return
	}

	recipients := make([]uint, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != requesterID {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}

	if f.email != nil {
		users, err := f.userRepo.FindByIDs(recipients)
		if err != nil {
			log.Printf("notify: failed to load users for group %d: %v", groupID, err)
		} else {
			for _, u := range users {
				if err := f.email.SendPubRequestEmail(u.Email, groupName, requesterName); err != nil {
					log.Printf("notify: pub request email to user %d failed: %v", u.ID, err)
				}
			}
		}
	}

	if f.expo != nil {
		tokens, err := f.tokenRepo.FindByUserIDs(recipients)
		if err != nil {
			log.Printf("notify: failed to load device tokens for group %d: %v", groupID, err)
			return
		}
		tokenStrings := make([]string, 0, len(tokens))
		for _, t := range tokens {
			tokenStrings = append(tokenStrings, t.Token)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err = f.expo.Push(ctx, tokenStrings, "Pub? 🍺",
			fmt.Sprintf("%s asks %s: pub?", requesterName, groupName),
			map[string]string{"request_id": fmt.Sprint(requestID), "group_id": fmt.Sprint(groupID)})
		if err != nil {
			log.Printf("notify: push for request %d failed: %v", requestID, err)
		}
	}
}

func (f *Fanout) InviteCreated(email, token, groupName, inviterName string) {
	if f.email == nil {
		log.Printf("notify: email not configured, invite token for %s: %s", email, token)
		return
	}
	go func() {
		if err := f.email.SendInviteEmail(email, token, groupName, inviterName); err != nil {
			log.Printf("notify: invite email to %s failed: %v", email, err)
		}
	}()
}
