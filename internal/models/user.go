package models

import "time"

// UnlockedStory records when a user unlocked a chapter.
type UnlockedStory struct {
	StoryID    string    `firestore:"storyId" json:"storyId"`
	UnlockedAt time.Time `firestore:"unlockedAt" json:"unlockedAt"`
}

// Preferences holds reader preferences.
type Preferences struct {
	Subgenres []Subgenre `firestore:"subgenres" json:"subgenres"`
}

// UserProfile is the users/{uid} document.
type UserProfile struct {
	UserID           string          `firestore:"userId" json:"userId"`
	Email            string          `firestore:"email" json:"email"`
	DisplayName      string          `firestore:"displayName" json:"displayName"`
	Coins            int             `firestore:"coins" json:"coins"`
	UnlockedStories  []UnlockedStory `firestore:"unlockedStories" json:"unlockedStories"`
	ReadStories      []string        `firestore:"readStories" json:"readStories"`
	FavoriteStories  []string        `firestore:"favoriteStories" json:"favoriteStories"`
	Preferences      Preferences     `firestore:"preferences" json:"preferences"`
	StripeCustomerID string          `firestore:"stripeCustomerId,omitempty" json:"-"`
	CreatedAt        time.Time       `firestore:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time       `firestore:"updatedAt" json:"updatedAt"`
}

// HasUnlocked reports whether storyID is in the user's unlocked list.
func (u UserProfile) HasUnlocked(storyID string) bool {
	for _, s := range u.UnlockedStories {
		if s.StoryID == storyID {
			return true
		}
	}
	return false
}

// UnlockedIDs returns the unlocked story ids in unlock order.
func (u UserProfile) UnlockedIDs() []string {
	ids := make([]string, 0, len(u.UnlockedStories))
	for _, s := range u.UnlockedStories {
		ids = append(ids, s.StoryID)
	}
	return ids
}
