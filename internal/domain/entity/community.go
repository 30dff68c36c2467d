package entity

import (
	"time"
)

type CommunityType string

const (
	CommunityPermanent CommunityType = "Permanent"
	CommunityTemporary CommunityType = "Temporary"
)

// Community is a located group of users. Members behaves as a set.
type Community struct {
	ID        string        `json:"id" firestore:"id"`
	CreatorID string        `json:"creatorId" firestore:"creatorId"`
	Name      string        `json:"name" firestore:"name"`
	Type      CommunityType `json:"type" firestore:"type"`
	Purpose   string        `json:"purpose" firestore:"purpose"`
	Bio       string        `json:"bio" firestore:"bio"`
	Members   []string      `json:"members" firestore:"members"`
	Location  Coordinate    `json:"location" firestore:"location"`
	CreatedAt time.Time     `json:"createdAt" firestore:"createdAt"`
}

func (c *Community) GetLocation() Coordinate {
	return c.Location
}

func (c *Community) HasMember(userID string) bool {
	for _, id := range c.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// WithMember returns a copy that contains userID exactly once.
func (c *Community) WithMember(userID string) *Community {
	out := *c
	if c.HasMember(userID) {
		out.Members = append([]string(nil), c.Members...)
		return &out
	}
	out.Members = append(append([]string(nil), c.Members...), userID)
	return &out
}

// WithoutMember returns a copy with userID removed, if present.
func (c *Community) WithoutMember(userID string) *Community {
	out := *c
	out.Members = make([]string, 0, len(c.Members))
	for _, id := range c.Members {
		if id != userID {
			out.Members = append(out.Members, id)
		}
	}
	return &out
}
