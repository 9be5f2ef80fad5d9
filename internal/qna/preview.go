package qna

import "github.com/tiplinehq/tipline/models"

// ExtractPreview returns the subset of top-level answers whose field is
// flagged previewable. Only questionnaire-step roots are considered: the
// preview is a summary for list views, not a window into nested content.
// Returned nodes are deep copies, detached from the source tree.
func ExtractPreview(steps []models.Step, answers models.Answers) models.Answers {
	preview := make(models.Answers)

	for _, step := range steps {
		for _, field := range step.Children {
			if !field.Preview {
				continue
			}
			if node, answered := answers[field.ID]; answered {
				preview[field.ID] = cloneNode(node)
			}
		}
	}

	return preview
}

func cloneNode(node *models.AnswerNode) *models.AnswerNode {
	if node == nil {
		return nil
	}

	clone := &models.AnswerNode{IsLeaf: node.IsLeaf, Value: node.Value}
	if node.Groups != nil {
		clone.Groups = make([]models.AnswerGroup, 0, len(node.Groups))
		for _, instance := range node.Groups {
			cloned := make(models.AnswerGroup, len(instance))
			for key, child := range instance {
				cloned[key] = cloneNode(child)
			}
			clone.Groups = append(clone.Groups, cloned)
		}
	}

	return clone
}
