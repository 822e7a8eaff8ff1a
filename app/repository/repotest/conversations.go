package repotest

import (
	"sort"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
)

type Conversations struct{ s *Store }

func (r *Conversations) Create(conversation *models.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	conversation.ID, conversation.CreatedAt = r.s.id()
	conversation.UpdatedAt = conversation.CreatedAt
	r.s.conversations[conversation.ID] = *conversation
	return nil
}

func (r *Conversations) GetByID(id uint) (*models.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c, ok := r.s.conversations[id]
	if !ok {
		return nil, errNotFound
	}
	return &c, nil
}

func (r *Conversations) GetByListingAndBuyer(listingID, buyerID uint) (*models.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, c := range r.s.conversations {
		if c.ListingID == listingID && c.BuyerID == buyerID {
			return &c, nil
		}
	}
	return nil, errNotFound
}

func (r *Conversations) MarkReadAndLoad(id uint, readerID uint) (*models.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c, ok := r.s.conversations[id]
	if !ok {
		return nil, errNotFound
	}
	var msgs []models.Message
	for mid, m := range r.s.messages {
		if m.ConversationID != id {
			continue
		}
		if m.ReceiverID == readerID && !m.IsRead {
			m.IsRead = true
			r.s.messages[mid] = m
		}
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	c.Messages = msgs
	if l, ok := r.s.listings[c.ListingID]; ok {
		v := r.s.listingView(l)
		c.Listing = &v
	}
	if u, ok := r.s.users[c.BuyerID]; ok {
		c.Buyer = &u
	}
	if u, ok := r.s.users[c.SellerID]; ok {
		c.Seller = &u
	}
	return &c, nil
}

func (r *Conversations) ListByUserID(userID uint) ([]repository.ConversationSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []repository.ConversationSummary
	for _, c := range r.s.conversations {
		if !c.HasParty(userID) {
			continue
		}
		summary := repository.ConversationSummary{Conversation: c}
		for _, m := range r.s.messages {
			if m.ConversationID != c.ID {
				continue
			}
			if summary.LastMessage == nil || m.CreatedAt.After(summary.LastMessage.CreatedAt) {
				last := m
				summary.LastMessage = &last
			}
			if m.ReceiverID == userID && !m.IsRead {
				summary.UnreadCount++
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Conversation.UpdatedAt.After(out[j].Conversation.UpdatedAt)
	})
	return out, nil
}

func (r *Conversations) AddMessage(message *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	c, ok := r.s.conversations[message.ConversationID]
	if !ok {
		return errNotFound
	}
	message.ID, message.CreatedAt = r.s.id()
	r.s.messages[message.ID] = *message
	c.UpdatedAt = message.CreatedAt
	r.s.conversations[c.ID] = c
	return nil
}
