package session

import (
	"sort"

	"github.com/xtding233/capsule-gacha/internal/gacha"
)

// Order selects how Collection entries are listed.
type Order string

const (
	OrderAcquired Order = "acquired" // first time each reward was pulled
	OrderRank     Order = "rank"     // best grade first, then acquisition
)

// Entry is one reward in the player's bag.
type Entry struct {
	Reward    gacha.Reward `json:"reward"`
	Count     int          `json:"count"`
	BestGrade gacha.Grade  `json:"best_grade"`
	seq       int
}

// Collection tallies rewards pulled in a session.
type Collection struct {
	entries map[gacha.Reward]*Entry
	next    int
}

func newCollection() *Collection {
	return &Collection{entries: make(map[gacha.Reward]*Entry)}
}

func (c *Collection) record(outs []gacha.Outcome) {
	for _, o := range outs {
		e, ok := c.entries[o.Reward]
		if !ok {
			e = &Entry{Reward: o.Reward, BestGrade: o.Grade, seq: c.next}
			c.next++
			c.entries[o.Reward] = e
		}
		e.Count++
		if o.Grade > e.BestGrade {
			e.BestGrade = o.Grade
		}
	}
}

// Entries lists the collection; unknown orders fall back to OrderAcquired.
func (c *Collection) Entries(order Order) []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if order == OrderRank && out[i].BestGrade != out[j].BestGrade {
			return out[i].BestGrade > out[j].BestGrade
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Owned reports how many distinct rewards have been pulled.
func (c *Collection) Owned() int { return len(c.entries) }
