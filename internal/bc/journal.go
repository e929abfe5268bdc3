package bc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// journalLinePayload is the wire body for create/update calls.
type journalLinePayload struct {
	JournalTemplateName string  `json:"journalTemplateName,omitempty"`
	JournalBatchName    string  `json:"journalBatchName,omitempty"`
	LineNo              int     `json:"lineNo,omitempty"`
	JobNo               string  `json:"jobNo"`
	JobTaskNo           string  `json:"jobTaskNo"`
	Type                string  `json:"type"`
	No                  string  `json:"no"`
	PostingDate         string  `json:"postingDate"`
	Quantity            float64 `json:"quantity"`
	Description         string  `json:"description"`
	WorkTypeCode        string  `json:"workTypeCode,omitempty"`
	UnitCost            float64 `json:"unitCost"`
	UnitPrice           float64 `json:"unitPrice"`
}

func payloadFromSpec(spec JournalLineSpec) journalLinePayload {
	return journalLinePayload{
		JournalTemplateName: spec.JournalTemplateName,
		JournalBatchName:    spec.JournalBatchName,
		LineNo:              spec.LineNo,
		JobNo:               spec.JobNo,
		JobTaskNo:           spec.JobTaskNo,
		Type:                "Resource",
		No:                  spec.ResourceNo,
		PostingDate:         spec.PostingDate,
		Quantity:            spec.Quantity,
		Description:         spec.Description,
		WorkTypeCode:        spec.WorkTypeCode,
	}
}

// CreateJournalLine creates a new editable job journal line and returns the
// BC-assigned identifier and line number.
func (c *Client) CreateJournalLine(ctx context.Context, spec JournalLineSpec) (*JournalLine, error) {
	var raw rawJournalLine
	err := c.doJSON(ctx, http.MethodPost, c.companyURL("/jobJournalLines"), payloadFromSpec(spec), &raw)
	if err != nil {
		return nil, err
	}
	line := raw.normalize()
	return &line, nil
}

// GetJournalLine fetches one line by its BC identifier. Used to recover the
// composite key (template + batch + line no) when it is not known locally.
func (c *Client) GetJournalLine(ctx context.Context, id string) (*JournalLine, error) {
	var raw rawJournalLine
	err := c.doJSON(ctx, http.MethodGet, c.companyURL(fmt.Sprintf("/jobJournalLines(%s)", id)), nil, &raw)
	if err != nil {
		return nil, err
	}
	line := raw.normalize()
	return &line, nil
}

// UpdateJournalLine updates an existing line addressed by spec.ID. BC needs
// the composite key on the body; when the caller does not know the line
// number a lookup by id recovers it first.
func (c *Client) UpdateJournalLine(ctx context.Context, spec JournalLineSpec) (*JournalLine, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("update requires a journal line id")
	}

	if spec.LineNo == 0 || spec.JournalTemplateName == "" {
		existing, err := c.GetJournalLine(ctx, spec.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve journal line %s before update: %w", spec.ID, err)
		}
		spec.LineNo = existing.LineNo
		if spec.JournalTemplateName == "" {
			spec.JournalTemplateName = existing.JournalTemplateName
		}
		if spec.JournalBatchName == "" {
			spec.JournalBatchName = existing.JournalBatchName
		}
	}

	var raw rawJournalLine
	err := c.doJSON(ctx, http.MethodPatch, c.companyURL(fmt.Sprintf("/jobJournalLines(%s)", spec.ID)), payloadFromSpec(spec), &raw)
	if err != nil {
		return nil, err
	}
	line := raw.normalize()
	if line.ID == "" {
		line.ID = spec.ID
	}
	if line.LineNo == 0 {
		line.LineNo = spec.LineNo
	}
	return &line, nil
}

// DeleteJournalLine deletes a line by its BC identifier.
func (c *Client) DeleteJournalLine(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.companyURL(fmt.Sprintf("/jobJournalLines(%s)", id)), nil, nil)
}

// GetLineStatuses returns approval status and comments for each of the given
// line identifiers. Ids not found in BC are simply absent from the result.
func (c *Client) GetLineStatuses(ctx context.Context, ids []string) (map[string]LineStatus, error) {
	result := make(map[string]LineStatus, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	clauses := make([]string, 0, len(ids))
	for _, id := range ids {
		clauses = append(clauses, fmt.Sprintf("id eq %s", id))
	}
	filter := strings.Join(clauses, " or ")

	target := c.companyURL("/jobJournalLines") + "?$filter=" + url.QueryEscape(filter)
	var list odataList[rawJournalLine]
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &list); err != nil {
		return nil, err
	}

	for i := range list.Value {
		line := list.Value[i].normalize()
		if line.ID == "" {
			continue
		}
		result[line.ID] = LineStatus{
			ApprovalStatus: line.ApprovalStatus,
			Comments:       line.Comments,
		}
	}
	return result, nil
}
