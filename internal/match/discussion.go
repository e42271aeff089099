package match

import (
	"strings"

	"protoflow/internal/models"
	"protoflow/internal/util"
)

// DiscussionRef is one extracted agenda item heading up for matching.
type DiscussionRef struct {
	IssueNo string
	Title   string
}

// DiscussionMatch pairs a ref with its best database discussion; DB is nil
// when nothing cleared the threshold.
type DiscussionMatch struct {
	Ref   DiscussionRef
	DB    *models.Discussion
	Score float64
}

// issueNoBonus rewards exact issue-number agreement on top of the title
// ratio.
const issueNoBonus = 0.2

// Discussions greedily pairs extracted items with database discussions by
// title ratio plus the issue-number bonus. Each database row is claimed at
// most once.
func (m *Matcher) Discussions(refs []DiscussionRef, db []models.Discussion) []DiscussionMatch {
	taken := make(map[int]bool, len(db))
	out := make([]DiscussionMatch, 0, len(refs))
	for _, ref := range refs {
		title := strings.ToLower(util.ClipRunes(ref.Title, 100))
		best, bestScore := -1, 0.0
		for i := range db {
			if taken[db[i].DiscussionID] {
				continue
			}
			score := Ratio(title, strings.ToLower(db[i].Title))
			if ref.IssueNo != "" && ref.IssueNo == db[i].IssueNo {
				score += issueNoBonus
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		dm := DiscussionMatch{Ref: ref}
		if best >= 0 && bestScore > m.Thresholds.Discussion {
			taken[db[best].DiscussionID] = true
			dm.DB = &db[best]
			dm.Score = bestScore
		}
		out = append(out, dm)
	}
	return out
}

// Unmatched returns the database discussions no extracted item claimed.
func Unmatched(db []models.Discussion, matches []DiscussionMatch) []models.Discussion {
	taken := make(map[int]bool, len(matches))
	for _, m := range matches {
		if m.DB != nil {
			taken[m.DB.DiscussionID] = true
		}
	}
	var out []models.Discussion
	for _, d := range db {
		if !taken[d.DiscussionID] {
			out = append(out, d)
		}
	}
	return out
}
