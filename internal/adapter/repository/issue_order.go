package repository

import (
	"sort"

	"furiousrepair/internal/domain/entity"
)

// sortNewestFirst orders issues by dateReported descending, then createdAt
// descending, then id so the order is stable across backends.
func sortNewestFirst(issues []*entity.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if !a.DateReported.Equal(b.DateReported) {
			return a.DateReported.After(b.DateReported)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// distinctTags drops empty and repeated tags.
func distinctTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func cloneIssue(issue *entity.Issue) *entity.Issue {
	c := *issue
	if issue.ClaimedAt != nil {
		t := *issue.ClaimedAt
		c.ClaimedAt = &t
	}
	c.Location = cloneLocation(issue.Location)
	return &c
}

func cloneLocation(loc entity.Location) entity.Location {
	if loc.Geo != nil {
		g := *loc.Geo
		loc.Geo = &g
	}
	return loc
}

func cloneChat(chat *entity.Chat) *entity.Chat {
	c := *chat
	c.Messages = append([]entity.Message(nil), chat.Messages...)
	if c.Messages == nil {
		c.Messages = []entity.Message{}
	}
	return &c
}

func cloneRepairer(r *entity.Repairer) *entity.Repairer {
	c := *r
	c.Expertise = append([]string{}, r.Expertise...)
	c.Issues = append([]string{}, r.Issues...)
	c.Location = cloneLocation(r.Location)
	return &c
}
