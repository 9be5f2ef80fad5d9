// Package qna converts between nested answer trees and the flat
// arena-style rows they are persisted as.
//
// The persisted model mirrors the tree with explicit links instead of
// pointers: a non-leaf answer owns an ordered list of group rows, and each
// answer row of a group instance references its group. Flatten and Rebuild
// are exact inverses, so a stored submission always reconstructs the tree
// the whistleblower submitted, repeated-group order included.
package qna

import (
	"sort"

	"github.com/tiplinehq/tipline/internal/utils"
	"github.com/tiplinehq/tipline/models"
)

// AnswerRow is one persisted answer node. Root answers carry an empty
// GroupID; answers nested inside a repeated group reference the group row
// they belong to.
type AnswerRow struct {
	ID           string
	TenantID     int64
	SubmissionID string

	// Key is the id of the schema field this node answers.
	Key string

	IsLeaf bool
	Value  string

	// GroupID links the row to its enclosing group instance, empty for
	// top-level answers.
	GroupID string
}

// GroupRow is one instance of a repeatable group, ordered by Number within
// its owning answer.
type GroupRow struct {
	ID       string
	TenantID int64

	// AnswerID is the non-leaf answer row this instance belongs to.
	AnswerID string

	// Number preserves the order the respondent entered the instances in.
	Number int
}

// Codec flattens answer trees into rows. The id generator is injectable
// for deterministic tests.
type Codec struct {
	newID func() string
}

// New constructs a Codec generating UUIDv7 row identifiers.
func New() *Codec {
	gen := utils.NewUUIDGenerator()
	return &Codec{newID: gen.Generate}
}

// NewWithIDFunc constructs a Codec with a custom id generator.
func NewWithIDFunc(newID func() string) *Codec {
	return &Codec{newID: newID}
}

// Flatten converts an answer tree into its persisted rows. Leaf answers
// become single rows; repeatable groups become one group row per instance,
// numbered in input order, with the instance's answers flattened
// recursively underneath.
func (c *Codec) Flatten(tenantID int64, submissionID string, answers models.Answers) ([]AnswerRow, []GroupRow) {
	var rows []AnswerRow
	var groups []GroupRow

	c.flatten(tenantID, submissionID, "", answers, &rows, &groups)

	return rows, groups
}

func (c *Codec) flatten(tenantID int64, submissionID, groupID string, answers map[string]*models.AnswerNode, rows *[]AnswerRow, groups *[]GroupRow) {
	for key, node := range answers {
		row := AnswerRow{
			ID:           c.newID(),
			TenantID:     tenantID,
			SubmissionID: submissionID,
			Key:          key,
			IsLeaf:       node.IsLeaf,
			Value:        node.Value,
			GroupID:      groupID,
		}
		*rows = append(*rows, row)

		if node.IsLeaf {
			continue
		}

		for n, instance := range node.Groups {
			group := GroupRow{
				ID:       c.newID(),
				TenantID: tenantID,
				AnswerID: row.ID,
				Number:   n,
			}
			*groups = append(*groups, group)

			c.flatten(tenantID, submissionID, group.ID, instance, rows, groups)
		}
	}
}

// Rebuild reconstructs the nested answer tree from persisted rows. It is
// the inverse of Flatten: group membership is resolved through the link
// columns and instance order through the group numbers.
func Rebuild(rows []AnswerRow, groups []GroupRow) models.Answers {
	answersByGroup := make(map[string][]AnswerRow)
	for _, row := range rows {
		answersByGroup[row.GroupID] = append(answersByGroup[row.GroupID], row)
	}

	groupsByAnswer := make(map[string][]GroupRow)
	for _, group := range groups {
		groupsByAnswer[group.AnswerID] = append(groupsByAnswer[group.AnswerID], group)
	}
	for _, list := range groupsByAnswer {
		sort.Slice(list, func(i, j int) bool { return list[i].Number < list[j].Number })
	}

	return rebuild(answersByGroup[""], answersByGroup, groupsByAnswer)
}

func rebuild(rows []AnswerRow, answersByGroup map[string][]AnswerRow, groupsByAnswer map[string][]GroupRow) models.Answers {
	out := make(models.Answers, len(rows))

	for _, row := range rows {
		if row.IsLeaf {
			out[row.Key] = models.Leaf(row.Value)
			continue
		}

		node := &models.AnswerNode{Groups: []models.AnswerGroup{}}
		for _, group := range groupsByAnswer[row.ID] {
			instance := rebuild(answersByGroup[group.ID], answersByGroup, groupsByAnswer)
			node.Groups = append(node.Groups, models.AnswerGroup(instance))
		}
		out[row.Key] = node
	}

	return out
}
